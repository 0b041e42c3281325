package jarvis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/inbound"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/outbound/history"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/outbound/mark01"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/outbound/mark2"
	"github.com/shandysiswandi/jarvisgate/internal/jarvis/usecase"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/rbac"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/router"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var (
	ErrMark2URLRequired = errors.New("jarvis: modules.jarvis.mark2.url is required")
	ErrUnknownStore     = errors.New("jarvis: unknown store")
	ErrCacheRequired    = errors.New("jarvis: redis store needs a cache connection")
)

type Dependency struct {
	// CacheConn is required only when modules.jarvis.store is redis.
	CacheConn redis.UniversalClient

	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Snowflake  uid.NumberID               `validate:"required"`
	Enforcer   rbac.Enforcer              `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	mark2URL := strings.TrimSpace(dep.Config.GetString("modules.jarvis.mark2.url"))
	if mark2URL == "" {
		return ErrMark2URLRequired
	}

	ucDep := usecase.Dependency{
		RepoMark2: mark2.New(mark2.Config{
			BaseURL: mark2URL,
			APIKey:  dep.Config.GetString("modules.jarvis.mark2.api_key"),
			Timeout: dep.Config.GetSecond("modules.jarvis.mark2.timeout_seconds"),
		}, dep.Instrument),
		RepoMark01: mark01.New(mark01.Config{
			BaseURL: strings.TrimSpace(dep.Config.GetString("modules.jarvis.mark01.url")),
			APIKey:  dep.Config.GetString("modules.jarvis.mark01.api_key"),
			Timeout: dep.Config.GetSecond("modules.jarvis.mark01.timeout_seconds"),
		}, dep.Instrument),
		Enforcer:   dep.Enforcer,
		Validator:  dep.Validator,
		Config:     dep.Config,
		UID:        dep.Snowflake,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	}

	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.jarvis.store"))); driver {
	case "", StoreMemory:
		ucDep.RepoHistory = history.NewMemory()
		ucDep.Idempotency = idempotency.NewMemory(dep.Clock)
	case StoreRedis:
		if dep.CacheConn == nil {
			return ErrCacheRequired
		}
		ucDep.RepoHistory = history.NewRedis(dep.CacheConn, dep.Instrument)
		ucDep.Idempotency = idempotency.New(dep.CacheConn)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStore, driver)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, usecase.New(ucDep))

	return nil
}
