package notification

import (
	"context"
	"errors"

	"github.com/shandysiswandi/jarvisgate/internal/notification/inbound"
	"github.com/shandysiswandi/jarvisgate/internal/notification/outbound/email"
	"github.com/shandysiswandi/jarvisgate/internal/notification/outbound/feed"
	"github.com/shandysiswandi/jarvisgate/internal/notification/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/mail"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
)

var ErrMailRequired = errors.New("notification: alert email needs a mail client")

type Dependency struct {
	// Ctx bounds the consumers; without it no consumer is started.
	Ctx context.Context
	// Mail is required only when modules.notification.alert_email_to is set.
	Mail mail.Mail

	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Router     *router.Router             `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		RepoFeed:   feed.NewRing(dep.Config.GetInt("modules.notification.feed_size")),
		Validator:  dep.Validator,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	}

	if to := dep.Config.GetArray("modules.notification.alert_email_to"); len(to) > 0 {
		if dep.Mail == nil {
			return ErrMailRequired
		}
		ucDep.RepoMail = email.New(dep.Mail, to, dep.Instrument)
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
