package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PruneScheduler runs ClearOldAlerts on a cron schedule so the in-memory
// alert store stays bounded without operator intervention.
type PruneScheduler struct {
	alerter *Alerter
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewPruneScheduler creates a scheduler for the alerter.
func NewPruneScheduler(alerter *Alerter) *PruneScheduler {
	return &PruneScheduler{
		alerter: alerter,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "alerting.scheduler"),
	}
}

// Start begins scheduled pruning based on the configured cron expression.
// An empty schedule disables the scheduler. Stop is called automatically
// when the context is cancelled.
func (s *PruneScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.alerter.config.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		removed := s.alerter.ClearOldAlerts(0)
		if removed > 0 {
			s.logger.Info("scheduled alert pruning completed", "removed", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule alert pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("alert prune scheduler started",
		"schedule", schedule,
		"retention_hours", s.alerter.config.RetentionHours,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running prune to complete.
func (s *PruneScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("alert prune scheduler stopped")
	}
}

// NextRun returns the next scheduled prune time, or nil when the
// scheduler is not running.
func (s *PruneScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
