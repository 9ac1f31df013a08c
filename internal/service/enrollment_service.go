package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/repository"
	"github.com/lumora/learnhub-backend/internal/response"
)

// Domain errors surfaced by enroll/leave.
var (
	ErrInactiveCourse   = errors.New("course is not active")
	ErrCourseFull       = errors.New("course is full")
	ErrAlreadyEnrolled  = errors.New("student is already enrolled")
	ErrNotEnrolled      = errors.New("student is not enrolled")
	ErrInvalidStudent   = errors.New("target student does not exist")
	ErrCourseUnassigned = errors.New("course has no instructor assigned")
)

const uniqueViolationCode = "23505"

// EnrollmentService is the sole writer of the course-student membership
// relation. It enforces the enrollment invariants and publishes membership
// events after a committed mutation; it knows nothing about response caching.
type EnrollmentService struct {
	courses     CourseStore
	enrollments EnrollmentStore
	users       UserStore
	publisher   EventPublisher
	log         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(courses CourseStore, enrollments EnrollmentStore, users UserStore, publisher EventPublisher, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		publisher:   publisher,
		log:         log.With().Str("component", "enrollment_service").Logger(),
	}
}

// resolveTarget determines who the enrollment applies to: admins may name any
// existing student via requested, everyone else acts on themselves.
func (s *EnrollmentService) resolveTarget(ctx context.Context, actor *model.User, requested *int) (*model.User, error) {
	target := actor
	if actor.Role == model.RoleAdmin && requested != nil {
		u, err := s.users.GetByID(ctx, *requested)
		if err != nil {
			return nil, ErrInvalidStudent
		}
		target = u
	}
	if target.Role != model.RoleStudent {
		return nil, ErrInvalidStudent
	}
	return target, nil
}

// Enroll adds the target student to the course. Preconditions are checked in
// order: active course, free capacity, not already enrolled. The store insert
// re-validates status and capacity under a row lock, so a race that slips
// past the pre-checks still fails cleanly. The enrolled event (and, when the
// last seat was just taken, the course-full event) is published only after
// the insert has committed; a publish failure is logged and never undoes the
// enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, actor *model.User, course *model.Course, requested *int) error {
	target, err := s.resolveTarget(ctx, actor, requested)
	if err != nil {
		return err
	}

	if course.Status != model.CourseStatusActive {
		return ErrInactiveCourse
	}
	if course.IsSystem() {
		return ErrCourseUnassigned
	}
	if course.IsFull() {
		return ErrCourseFull
	}
	enrolled, err := s.enrollments.Exists(ctx, course.ID, target.ID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}

	enr := &model.Enrollment{CourseID: course.ID, StudentID: target.ID}
	if err := s.enrollments.Create(ctx, enr); err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseNotActive):
			return ErrInactiveCourse
		case errors.Is(err, repository.ErrCapacityExceeded):
			return ErrCourseFull
		case isUniqueViolation(err):
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	s.publish(ctx, model.EnrollmentEvent{
		Kind:         model.EventStudentEnrolled,
		CourseID:     course.ID,
		CourseTitle:  course.Title,
		StudentID:    target.ID,
		StudentName:  target.Name,
		InstructorID: *course.InstructorID,
		OccurredAt:   time.Now().UTC(),
	})

	// Detect the membership add that crossed the capacity limit.
	if course.Capacity != nil {
		count, err := s.enrollments.CountByCourse(ctx, course.ID)
		if err == nil && count >= *course.Capacity {
			s.publish(ctx, model.EnrollmentEvent{
				Kind:         model.EventCourseFull,
				CourseID:     course.ID,
				CourseTitle:  course.Title,
				InstructorID: *course.InstructorID,
				OccurredAt:   time.Now().UTC(),
			})
		}
	}

	s.log.Info().Int("course_id", course.ID).Int("student_id", target.ID).Msg("Student enrolled")
	return nil
}

// Leave removes the target student from the course.
func (s *EnrollmentService) Leave(ctx context.Context, actor *model.User, course *model.Course, requested *int) error {
	target, err := s.resolveTarget(ctx, actor, requested)
	if err != nil {
		return err
	}

	if err := s.enrollments.Delete(ctx, course.ID, target.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("delete enrollment: %w", err)
	}

	event := model.EnrollmentEvent{
		Kind:        model.EventStudentLeft,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		StudentID:   target.ID,
		StudentName: target.Name,
		OccurredAt:  time.Now().UTC(),
	}
	if course.InstructorID != nil {
		event.InstructorID = *course.InstructorID
	}
	s.publish(ctx, event)

	s.log.Info().Int("course_id", course.ID).Int("student_id", target.ID).Msg("Student left course")
	return nil
}

// ListStudents returns the users enrolled in the course, most recently
// modified first, paginated.
func (s *EnrollmentService) ListStudents(ctx context.Context, courseID, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	students, total, err := s.enrollments.ListStudents(ctx, courseID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if students == nil {
		students = []model.User{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return students, pagination, nil
}

func (s *EnrollmentService) publish(ctx context.Context, event model.EnrollmentEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The mutation has already committed; notification delivery is
		// eventually consistent and must not fail the operation.
		s.log.Error().Err(err).
			Str("kind", string(event.Kind)).
			Int("course_id", event.CourseID).
			Msg("Event publish failed")
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
