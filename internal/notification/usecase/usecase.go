package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/jarvisgate/internal/notification/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/clock"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/uid"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoFeed interface {
	Add(ctx context.Context, a entity.Alert) error
	List(ctx context.Context, limit int) ([]entity.Alert, error)
}

type repoMail interface {
	SendAlert(ctx context.Context, a entity.Alert) error
}

type Usecase struct {
	repoFeed  repoFeed
	repoMail  repoMail
	validator validator.Validator
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation

	streamMu sync.RWMutex
	streams  map[*subscriber]struct{}
}

type Dependency struct {
	RepoFeed repoFeed
	// RepoMail is optional; lockout alerts are emailed only when it is set.
	RepoMail   repoMail
	Validator  validator.Validator
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoFeed:  dep.RepoFeed,
		repoMail:  dep.RepoMail,
		validator: dep.Validator,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		streams:   make(map[*subscriber]struct{}),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// record stores the alert and pushes it to live streams.
func (s *Usecase) record(ctx context.Context, kind entity.Kind, clientIP, message string) entity.Alert {
	a := entity.Alert{
		ID:        s.uid.Generate(),
		Kind:      kind,
		ClientIP:  clientIP,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repoFeed.Add(ctx, a); err != nil {
		slog.ErrorContext(ctx, "failed to repo add alert", "kind", kind.String(), "error", err)
	}
	s.broadcast(a)

	return a
}
