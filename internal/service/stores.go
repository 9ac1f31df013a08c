package service

import (
	"context"
	"time"

	"github.com/lumora/learnhub-backend/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests substitute in-memory fakes.

// CourseStore is the persistence surface for courses.
type CourseStore interface {
	GetByID(ctx context.Context, id int) (*model.Course, error)
	List(ctx context.Context, filter model.CourseFilter, limit, offset int) ([]model.Course, int, error)
	Top(ctx context.Context, limit int) ([]model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id int) error
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// EnrollmentStore is the persistence surface for the membership relation.
type EnrollmentStore interface {
	Create(ctx context.Context, enr *model.Enrollment) error
	Delete(ctx context.Context, courseID, studentID int) error
	Exists(ctx context.Context, courseID, studentID int) (bool, error)
	CountByCourse(ctx context.Context, courseID int) (int, error)
	ListStudents(ctx context.Context, courseID, limit, offset int) ([]model.User, int, error)
}

// UserStore is the persistence surface for users.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// NotificationStore is the persistence surface for notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID, limit, offset int) ([]model.Notification, int, error)
	MarkRead(ctx context.Context, id, recipientID int) error
}

// EventPublisher hands enrollment events to the notification pipeline.
// Publishing happens after the mutation has committed; a failure is logged by
// the caller and never rolls the mutation back.
type EventPublisher interface {
	Publish(ctx context.Context, event model.EnrollmentEvent) error
}
