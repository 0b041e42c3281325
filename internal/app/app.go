package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/hash"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/mail"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID

	// tokens
	otpCodec token.Codec
	session  *token.Session

	// resources, cacheConn and mail stay nil when not configured
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Messaging
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initToken()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
