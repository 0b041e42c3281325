package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/app"
)

// @title           Jarvis Gate API
// @version         1.0
// @description     Password and one-time-code login in front of the Jarvis Mark2 and Mark01 APIs.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token or service key.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
