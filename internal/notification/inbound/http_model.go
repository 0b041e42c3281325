package inbound

import (
	"strconv"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
)

type Alert struct {
	// ID is a string since snowflake ids overflow JavaScript numbers.
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ClientIP  string    `json:"clientIp"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAlert(a entity.Alert) Alert {
	return Alert{
		ID:        strconv.FormatInt(a.ID, 10),
		Kind:      a.Kind.String(),
		ClientIP:  a.ClientIP,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

type ListAlertsResponse struct {
	Alerts []Alert `json:"alerts"`
}

func (ListAlertsResponse) Message() string {
	return "Alerts retrieved"
}
