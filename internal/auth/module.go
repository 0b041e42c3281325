package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/jarvisgate/internal/auth/inbound"
	"github.com/shandysiswandi/jarvisgate/internal/auth/outbound/email"
	"github.com/shandysiswandi/jarvisgate/internal/auth/outbound/mq"
	"github.com/shandysiswandi/jarvisgate/internal/auth/outbound/store"
	"github.com/shandysiswandi/jarvisgate/internal/auth/outbound/telegram"
	"github.com/shandysiswandi/jarvisgate/internal/auth/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/hash"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/mail"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/messaging"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/otp"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	DeliveryTelegram = "telegram"
	DeliveryEmail    = "email"
)

var (
	ErrUnknownStore    = errors.New("auth: unknown store")
	ErrUnknownDelivery = errors.New("auth: unknown delivery channel")
	ErrCacheRequired   = errors.New("auth: redis store needs a cache connection")
	ErrMailRequired    = errors.New("auth: email delivery needs a mail client")
)

type Dependency struct {
	// CacheConn is required only when modules.auth.store is redis.
	CacheConn redis.UniversalClient
	// Mail is required only when modules.auth.delivery is email.
	Mail mail.Mail

	Messaging  messaging.Messaging        `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Session    *token.Session             `validate:"required"`
	OTPCodec   token.Codec                `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	cred, err := usecase.NewCredential(
		dep.Config.GetString("modules.auth.password"),
		dep.Config.GetString("modules.auth.password_hash"),
		dep.Config.GetString("modules.auth.password_pepper"),
		dep.HMAC,
	)
	if err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Credential:    cred,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		OTP:           otp.NewGenerator(),
		OTPCodec:      dep.OTPCodec,
		Session:       dep.Session,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	}

	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.auth.store"))); driver {
	case "", StoreMemory:
		ucDep.RepoStore = store.NewMemory(dep.Clock)
	case StoreRedis:
		if dep.CacheConn == nil {
			return ErrCacheRequired
		}
		ucDep.RepoStore = store.NewRedis(dep.CacheConn, dep.Instrument)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStore, driver)
	}

	switch channel := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.auth.delivery"))); channel {
	case "", DeliveryTelegram:
		cfg := telegram.Config{
			BaseURL:  dep.Config.GetString("modules.auth.telegram.base_url"),
			BotToken: dep.Config.GetString("modules.auth.telegram.bot_token"),
			ChatID:   dep.Config.GetString("modules.auth.telegram.chat_id"),
			Timeout:  dep.Config.GetSecond("modules.auth.telegram.timeout_seconds"),
		}
		if cfg.BotToken == "" || cfg.ChatID == "" {
			return telegram.ErrNotConfigured
		}
		ucDep.RepoDelivery = telegram.New(cfg, dep.Instrument)
	case DeliveryEmail:
		if dep.Mail == nil {
			return ErrMailRequired
		}
		to := dep.Config.GetArray("modules.auth.email.to")
		if len(to) == 0 {
			return email.ErrNoRecipient
		}
		ucDep.RepoDelivery = email.New(dep.Mail, to, dep.Instrument)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDelivery, channel)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, usecase.New(ucDep))

	return nil
}
