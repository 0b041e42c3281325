package inbound

import (
	"net/http"

	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notification/alerts", end.ListAlerts)
	r.GETRaw("/api/v1/notification/stream", http.HandlerFunc(end.StreamAlerts))
}
