package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/hash"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL           = 5 * time.Minute
	defaultOTPMaxAttempts   = 5
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute
)

type LoginLockedEvent struct {
	ClientKey    string
	Failures     int64
	BlockedUntil time.Time
}

type LoginSucceededEvent struct {
	ClientKey string
	Subject   string
	ExpiresAt time.Time
}

type OTPDeliveryFailedEvent struct {
	ClientKey string
	Channel   string
	Reason    string
}

type repoMessaging interface {
	PublishLoginLocked(ctx context.Context, msg LoginLockedEvent) error
	PublishLoginSucceeded(ctx context.Context, msg LoginSucceededEvent) error
	PublishOTPDeliveryFailed(ctx context.Context, msg OTPDeliveryFailedEvent) error
}

type repoStore interface {
	GetLoginAttempt(ctx context.Context, key string) (*entity.LoginAttempt, error)
	IncrLoginFailure(ctx context.Context, key string, at time.Time, window time.Duration) (int64, error)
	BlockLogin(ctx context.Context, key string, until time.Time) error
	ResetLoginAttempt(ctx context.Context, key string) error

	SaveChallenge(ctx context.Context, ch entity.Challenge, ttl time.Duration) error
	GetChallenge(ctx context.Context) (*entity.Challenge, error)
	IncrChallengeAttempts(ctx context.Context) (int64, error)
	DeleteChallenge(ctx context.Context) error
}

type repoDelivery interface {
	Channel() string
	SendOTP(ctx context.Context, code string, expiresAt time.Time) error
}

type codeGenerator interface {
	Generate() (string, error)
}

type sessionIssuer interface {
	Issue() (string, error)
	Subject() string
	TTL() time.Duration
}

type Usecase struct {
	repoStore     repoStore
	repoDelivery  repoDelivery
	repoMessaging repoMessaging
	credential    Credential
	cfg           config.Config
	hmac          hash.Hash
	otp           codeGenerator
	otpCodec      token.Codec
	session       sessionIssuer
	uuid          uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoStore     repoStore
	RepoDelivery  repoDelivery
	RepoMessaging repoMessaging
	Credential    Credential
	Config        config.Config
	HMAC          hash.Hash
	OTP           codeGenerator
	OTPCodec      token.Codec
	Session       sessionIssuer
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:     dep.RepoStore,
		repoDelivery:  dep.RepoDelivery,
		repoMessaging: dep.RepoMessaging,
		credential:    dep.Credential,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		otp:           dep.OTP,
		otpCodec:      dep.OTPCodec,
		session:       dep.Session,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if v := s.cfg.GetMinute("modules.auth.otp_ttl_minutes"); v > 0 {
		return v
	}
	return defaultOTPTTL
}

func (s *Usecase) otpMaxAttempts() int64 {
	if v := s.cfg.GetInt64("modules.auth.otp_max_attempts"); v > 0 {
		return v
	}
	return defaultOTPMaxAttempts
}

func (s *Usecase) lockoutThreshold() int64 {
	if v := s.cfg.GetInt64("modules.auth.lockout_threshold"); v > 0 {
		return v
	}
	return defaultLockoutThreshold
}

func (s *Usecase) lockoutDuration() time.Duration {
	if v := s.cfg.GetMinute("modules.auth.lockout_minutes"); v > 0 {
		return v
	}
	return defaultLockoutDuration
}
