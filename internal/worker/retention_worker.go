package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/service"
)

// RetentionWorker runs the nightly sweep that deletes inactive courses which
// have sat unmodified past the retention window. System courses (no
// instructor) are exempt by the sweep query itself.
type RetentionWorker struct {
	courses   *service.CourseService
	schedule  string
	retention time.Duration
	cron      *cron.Cron
	log       zerolog.Logger
}

// NewRetentionWorker creates a RetentionWorker. schedule is a standard cron
// expression; retentionDays is the unmodified-inactive window.
func NewRetentionWorker(courses *service.CourseService, schedule string, retentionDays int, log zerolog.Logger) *RetentionWorker {
	return &RetentionWorker{
		courses:   courses,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.With().Str("component", "retention_worker").Logger(),
	}
}

// Start registers the sweep with the cron scheduler and starts it.
func (w *RetentionWorker) Start(ctx context.Context) error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.schedule, func() { w.sweep(ctx) }); err != nil {
		return fmt.Errorf("register sweep schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	w.log.Info().Str("schedule", w.schedule).Msg("RetentionWorker started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (w *RetentionWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	n, err := w.courses.SweepStale(ctx, w.retention)
	if err != nil {
		w.log.Error().Err(err).Msg("Retention sweep failed")
		return
	}
	w.log.Info().Int64("deleted", n).Msg("Retention sweep completed")
}
