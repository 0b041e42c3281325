package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/jarvisgate/internal/auth"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis"
	"github.com/shandysiswandi/jarvisgate/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		dep := auth.Dependency{
			Messaging:  a.messaging,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Validator:  a.validator,
			Clock:      a.clock,
			UUID:       a.uuid,
			HMAC:       a.hmac,
			Session:    a.session,
			OTPCodec:   a.otpCodec,
			Mail:       a.mail,
		}
		if a.cacheConn != nil {
			dep.CacheConn = a.cacheConn
		}
		if err := auth.New(dep); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.jarvis.enabled") {
		dep := jarvis.Dependency{
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Validator:  a.validator,
			Clock:      a.clock,
			Snowflake:  a.uid,
			Enforcer:   a.casbin,
		}
		if a.cacheConn != nil {
			dep.CacheConn = a.cacheConn
		}
		if err := jarvis.New(dep); err != nil {
			slog.Error("failed to init module jarvis", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Mail:       a.mail,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
