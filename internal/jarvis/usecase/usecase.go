package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/jarvis/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/config"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/rbac"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultHistoryLimit     = 200
	defaultTTSVoice         = "onyx"
	defaultWebhookDedupeTTL = 24 * time.Hour
)

type repoMark2 interface {
	Health(ctx context.Context) (*entity.Reply, error)
	TelegramWebhook(ctx context.Context, update []byte) (*entity.Reply, error)
	Agents(ctx context.Context) (*entity.Reply, error)
	History(ctx context.Context, agentID string, limit int) (*entity.Reply, error)
	DeleteHistory(ctx context.Context, agentID string) (*entity.Reply, error)
	Models(ctx context.Context) (*entity.Reply, error)
	SwitchModel(ctx context.Context, body []byte) (*entity.Reply, error)
	Job(ctx context.Context, jobID string) (*entity.Reply, error)
	ChatAsync(ctx context.Context, body []byte) (*entity.Reply, error)
	Voice(ctx context.Context, body []byte) (*entity.Reply, error)
	TTS(ctx context.Context, text, voice string) (*entity.Reply, error)
}

type repoMark01 interface {
	VoiceCode(ctx context.Context, prompt string) (*entity.Reply, error)
}

type repoHistory interface {
	Append(ctx context.Context, msg entity.ChatMessage, limit int) error
	List(ctx context.Context) ([]entity.ChatMessage, error)
}

type Usecase struct {
	repoMark2   repoMark2
	repoMark01  repoMark01
	repoHistory repoHistory
	idempotency idempotency.Idempotency
	enforcer    rbac.Enforcer
	validator   validator.Validator
	cfg         config.Config
	uid         uid.NumberID
	clock       clock.Clocker
	ins         instrument.Instrumentation
}

type Dependency struct {
	RepoMark2   repoMark2
	RepoMark01  repoMark01
	RepoHistory repoHistory
	Idempotency idempotency.Idempotency
	Enforcer    rbac.Enforcer
	Validator   validator.Validator
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoMark2:   dep.RepoMark2,
		repoMark01:  dep.RepoMark01,
		repoHistory: dep.RepoHistory,
		idempotency: dep.Idempotency,
		enforcer:    dep.Enforcer,
		validator:   dep.Validator,
		cfg:         dep.Config,
		uid:         dep.UID,
		clock:       dep.Clock,
		ins:         dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("jarvis.usecase").Start(ctx, name)
}

func (s *Usecase) historyLimit() int {
	if v := s.cfg.GetInt("modules.jarvis.history_limit"); v > 0 {
		return v
	}
	return defaultHistoryLimit
}

func (s *Usecase) webhookDedupeTTL() time.Duration {
	if v := s.cfg.GetMinute("modules.jarvis.webhook_dedupe_minutes"); v > 0 {
		return v
	}
	return defaultWebhookDedupeTTL
}
