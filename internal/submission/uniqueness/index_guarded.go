package uniqueness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"formflow/pkg/domain"
	"formflow/pkg/platform/circuit"
	"formflow/pkg/platform/sentinel"
)

// Guarded fails fast with sentinel.ErrUnavailable while its breaker is open,
// so a struggling index does not hold every submission until its timeout.
type Guarded struct {
	next    Index
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Index, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Owner(ctx context.Context, questionID domain.QuestionID, field, value string) (domain.ApplicationID, bool, error) {
	if err := g.allow(); err != nil {
		return domain.ApplicationID{}, false, err
	}
	owner, ok, err := g.next.Owner(ctx, questionID, field, value)
	g.record(ctx, err)
	return owner, ok, err
}

func (g *Guarded) Claim(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error {
	if err := g.allow(); err != nil {
		return err
	}
	err := g.next.Claim(ctx, applicationID, questionID, field, value)
	g.record(ctx, err)
	return err
}

func (g *Guarded) Release(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error {
	if err := g.allow(); err != nil {
		return err
	}
	err := g.next.Release(ctx, applicationID, questionID, field, value)
	g.record(ctx, err)
	return err
}

func (g *Guarded) allow() error {
	if g.breaker.Allow() {
		return nil
	}
	return fmt.Errorf("%s circuit open: %w", g.breaker.Name(), sentinel.ErrUnavailable)
}

// record treats a conflict as a healthy answer from the index.
func (g *Guarded) record(ctx context.Context, err error) {
	if err == nil || errors.Is(err, sentinel.ErrConflict) {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "uniqueness index recovered", "breaker", g.breaker.Name())
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "uniqueness index circuit opened", "breaker", g.breaker.Name(), "error", err)
	}
}
