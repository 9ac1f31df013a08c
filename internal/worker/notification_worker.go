package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/service"
)

const (
	NotifyPollTimeout = 1 * time.Second
	NotifyMaxAttempts = 3
	NotifyRetryDelay  = 500 * time.Millisecond
)

// NotificationWorker consumes enrollment events from the Redis queue and
// hands them to the notification service with bounded retries. Events that
// still fail after NotifyMaxAttempts are dropped and logged; the enrollment
// itself is long committed and must not be affected.
type NotificationWorker struct {
	rdb           *redis.Client
	notifications *service.NotificationService
	log           zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(rdb *redis.Client, notifications *service.NotificationService, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		rdb:           rdb,
		notifications: notifications,
		log:           log.With().Str("component", "notification_worker").Logger(),
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotificationWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("NotificationWorker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, NotifyPollTimeout, config.WorkerKey.EnrollmentEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var event model.EnrollmentEvent
			if err := json.Unmarshal([]byte(item[1]), &event); err != nil {
				w.log.Error().Err(err).Str("raw", item[1]).Msg("Malformed event dropped")
				continue
			}

			w.deliverWithRetry(ctx, event)
		}
	}
}

func (w *NotificationWorker) deliverWithRetry(ctx context.Context, event model.EnrollmentEvent) {
	var err error
	for attempt := 1; attempt <= NotifyMaxAttempts; attempt++ {
		if err = w.notifications.Deliver(ctx, event); err == nil {
			return
		}
		w.log.Warn().Err(err).
			Str("kind", string(event.Kind)).
			Int("course_id", event.CourseID).
			Int("attempt", attempt).
			Msg("Notification delivery failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(NotifyRetryDelay):
		}
	}

	w.log.Error().Err(err).
		Str("kind", string(event.Kind)).
		Int("course_id", event.CourseID).
		Msg("Notification dropped after max attempts")
}
