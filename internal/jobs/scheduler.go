package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type MembershipExpirer interface {
	ExpireMemberships(ctx context.Context) (int64, error)
}

type AvailabilityExtender interface {
	ExtendAvailability(ctx context.Context) (int, error)
}

type TokenPurger interface {
	PurgeRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type OTPSweeper interface {
	Sweep() int
}

// Schedules use the six-field (seconds first) cron format.
const (
	ExpireMembershipsSpec  = "0 0 2 * * *"
	ExtendAvailabilitySpec = "0 0 3 * * *"
	PurgeTokensSpec        = "0 0 4 * * *"
	SweepOTPSpec           = "0 */5 * * * *"
)

type Deps struct {
	Memberships  MembershipExpirer
	Availability AvailabilityExtender
	Tokens       TokenPurger
	OTPs         OTPSweeper
	// TokenRetention is how long revoked refresh tokens are kept.
	TokenRetention time.Duration
}

type Scheduler struct {
	cron *cron.Cron
	deps Deps
	now  func() time.Time
}

func New(deps Deps) *Scheduler {
	if deps.TokenRetention <= 0 {
		deps.TokenRetention = 7 * 24 * time.Hour
	}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		deps: deps,
		now:  time.Now,
	}
}

// Register adds every job whose dependency is set.
func (s *Scheduler) Register() error {
	type job struct {
		name string
		spec string
		run  func()
		on   bool
	}
	list := []job{
		{"membership-expiry", ExpireMembershipsSpec, s.ExpireMemberships, s.deps.Memberships != nil},
		{"availability-topup", ExtendAvailabilitySpec, s.ExtendAvailability, s.deps.Availability != nil},
		{"refresh-token-purge", PurgeTokensSpec, s.PurgeTokens, s.deps.Tokens != nil},
		{"otp-sweep", SweepOTPSpec, s.SweepOTPs, s.deps.OTPs != nil},
	}
	for _, j := range list {
		if !j.on {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			return fmt.Errorf("schedule %s: %w", j.name, err)
		}
		slog.Info("job scheduled", "job", j.name, "spec", j.spec)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits up to timeout for running jobs to finish.
func (s *Scheduler) Stop(timeout time.Duration) {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		slog.Info("scheduler stopped")
	case <-time.After(timeout):
		slog.Warn("scheduler stop timed out, jobs still running")
	}
}

func (s *Scheduler) ExpireMemberships() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := s.deps.Memberships.ExpireMemberships(ctx)
	if err != nil {
		slog.Error("membership expiry failed", "error", err, "duration", time.Since(start))
		return
	}
	slog.Info("membership expiry finished", "expired", n, "duration", time.Since(start))
}

func (s *Scheduler) ExtendAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := s.deps.Availability.ExtendAvailability(ctx)
	if err != nil {
		slog.Error("availability top-up failed", "error", err, "days_added", n)
		return
	}
	slog.Info("availability top-up finished", "days_added", n, "duration", time.Since(start))
}

func (s *Scheduler) PurgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := s.deps.Tokens.PurgeRefreshTokens(ctx, s.now().Add(-s.deps.TokenRetention))
	if err != nil {
		slog.Error("refresh token purge failed", "error", err)
		return
	}
	slog.Info("refresh token purge finished", "deleted", n)
}

func (s *Scheduler) SweepOTPs() {
	if n := s.deps.OTPs.Sweep(); n > 0 {
		slog.Debug("expired otps dropped", "count", n)
	}
}
