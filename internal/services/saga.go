package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// Saga runs one primary action and, if it fails, each registered
// compensation exactly once in reverse registration order. Compensation
// failures are logged and reported, never returned: the caller always sees
// the primary error.
type Saga struct {
	name          string
	compensations []compensation
}

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

func NewSaga(name string) *Saga {
	return &Saga{name: name}
}

func (s *Saga) Compensate(name string, fn func(ctx context.Context) error) *Saga {
	s.compensations = append(s.compensations, compensation{name: name, fn: fn})
	return s
}

func (s *Saga) Run(ctx context.Context, action func(ctx context.Context) error) error {
	err := action(ctx)
	if err == nil {
		return nil
	}

	// Compensations must run even when the request context was cancelled.
	cctx := context.WithoutCancel(ctx)
	for i := len(s.compensations) - 1; i >= 0; i-- {
		c := s.compensations[i]
		if cerr := c.fn(cctx); cerr != nil {
			slog.Error("saga compensation failed",
				"saga", s.name, "compensation", c.name, "cause", err.Error(), "error", cerr)
			sentry.CaptureException(fmt.Errorf("saga %s: compensation %s: %w", s.name, c.name, cerr))
			continue
		}
		slog.Info("saga compensated", "saga", s.name, "compensation", c.name, "cause", err.Error())
	}
	return err
}
