package inbound

import (
	"github.com/shandysiswandi/jarvisgate/internal/notification/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// ListAlerts returns the security feed, newest first.
// @Summary List security alerts
// @Description Lists the recent lockout, login and OTP delivery alerts.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max alerts, 0 for all"
// @Success 200 {object} router.successResponse{data=ListAlertsResponse}
// @Failure 400 {object} router.errorResponse "Invalid limit"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/notification/alerts [get]
func (h *HTTPEndpoint) ListAlerts(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt("limit", 0)
	if err != nil {
		return nil, err
	}

	alerts, err := h.uc.ListAlerts(r.Context(), usecase.ListAlertsInput{Limit: limit})
	if err != nil {
		return nil, err
	}

	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlert(a))
	}

	return ListAlertsResponse{Alerts: out}, nil
}
