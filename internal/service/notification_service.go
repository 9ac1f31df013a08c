package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/mailer"
	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/response"
)

// NotificationService persists notifications, pushes them to the recipient's
// live stream channel, and emails them.
type NotificationService struct {
	notifications NotificationStore
	users         UserStore
	rdb           *redis.Client
	sender        mailer.Sender
	log           zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications NotificationStore, users UserStore, rdb *redis.Client, sender mailer.Sender, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		rdb:           rdb,
		sender:        sender,
		log:           log.With().Str("component", "notification_service").Logger(),
	}
}

// ListForUser returns a user's notifications, newest first, paginated.
func (s *NotificationService) ListForUser(ctx context.Context, userID, page, perPage int) ([]model.Notification, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	notifications, total, err := s.notifications.ListByRecipient(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return notifications, pagination, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	return s.notifications.MarkRead(ctx, id, userID)
}

// Deliver turns an enrollment event into a persisted notification, a PubSub
// message on the recipient's channel, and an email. Called by the
// notification worker; the originating mutation has long since committed, so
// an error here only drives the worker's retry.
func (s *NotificationService) Deliver(ctx context.Context, event model.EnrollmentEvent) error {
	recipientID, subject, body := composeNotification(event)
	if recipientID == 0 {
		return nil
	}

	n := &model.Notification{
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	// Live stream push is best-effort; connected clients just miss one.
	if payload, err := json.Marshal(n); err == nil {
		channel := config.CacheKey.UserNotificationChannel(recipientID)
		if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
			s.log.Warn().Err(err).Int("recipient_id", recipientID).Msg("Stream publish failed")
		}
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		s.log.Warn().Err(err).Int("recipient_id", recipientID).Msg("Recipient lookup failed, skipping email")
		return nil
	}
	if err := s.sender.Send(ctx, recipient.Name, recipient.Email, subject, body); err != nil {
		s.log.Error().Err(err).Int("recipient_id", recipientID).Msg("Email send failed")
	}
	return nil
}

// composeNotification maps an event to its recipient and message.
// Returns recipientID 0 for events that notify nobody.
func composeNotification(event model.EnrollmentEvent) (recipientID int, subject, body string) {
	switch event.Kind {
	case model.EventStudentEnrolled:
		return event.InstructorID,
			fmt.Sprintf("New enrollment in %s", event.CourseTitle),
			fmt.Sprintf("%s enrolled in your course %q.", event.StudentName, event.CourseTitle)
	case model.EventStudentLeft:
		return event.StudentID,
			fmt.Sprintf("You left %s", event.CourseTitle),
			fmt.Sprintf("Your enrollment in %q has been removed.", event.CourseTitle)
	case model.EventCourseFull:
		return event.InstructorID,
			fmt.Sprintf("%s is now full", event.CourseTitle),
			fmt.Sprintf("Your course %q has reached its enrollment capacity.", event.CourseTitle)
	}
	return 0, "", ""
}
