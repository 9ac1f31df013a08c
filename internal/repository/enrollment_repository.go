package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora/learnhub-backend/internal/model"
)

// Transactional guard failures. The service layer pre-checks the same
// conditions for friendly ordering, but these are the authoritative answers
// given under the course row lock.
var (
	ErrCapacityExceeded = errors.New("course capacity exceeded")
	ErrCourseNotActive  = errors.New("course is not active")
	ErrCourseGone       = errors.New("course does not exist")
)

// EnrollmentRepository handles enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts an enrollment inside a single transaction that locks the
// course row, re-validates status and capacity under the lock, then inserts.
// This closes the check-then-act window between reading is_full and writing
// the membership row: two concurrent enrollments into the last seat serialize
// on the row lock and the loser gets ErrCapacityExceeded. A duplicate
// (course, student) pair surfaces as a 23505 unique violation.
func (r *EnrollmentRepository) Create(ctx context.Context, enr *model.Enrollment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		status   model.CourseStatus
		capacity *int
	)
	err = tx.QueryRow(ctx,
		`SELECT status, capacity FROM courses WHERE id = $1 FOR UPDATE`,
		enr.CourseID,
	).Scan(&status, &capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourseGone
		}
		return fmt.Errorf("lock course: %w", err)
	}

	if status != model.CourseStatusActive {
		return ErrCourseNotActive
	}

	if capacity != nil {
		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, enr.CourseID,
		).Scan(&count); err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		if count >= *capacity {
			return ErrCapacityExceeded
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO enrollments (course_id, student_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		enr.CourseID, enr.StudentID,
	).Scan(&enr.ID, &enr.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes the enrollment for (course, student). Returns pgx.ErrNoRows
// if no such membership exists.
func (r *EnrollmentRepository) Delete(ctx context.Context, courseID, studentID int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM enrollments WHERE course_id = $1 AND student_id = $2`,
		courseID, studentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Exists reports whether the student is enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, courseID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2)`,
		courseID, studentID,
	).Scan(&exists)
	return exists, err
}

// CountByCourse returns the number of enrollments for a course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID,
	).Scan(&count)
	return count, err
}

// ListStudents returns the distinct users enrolled in a course ordered by
// most-recently-modified first, paginated, plus the total count.
func (r *EnrollmentRepository) ListStudents(ctx context.Context, courseID, limit, offset int) ([]model.User, int, error) {
	total, err := r.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT u.id, u.name, u.email, u.password_hash, u.role,
		        u.scholarship, u.degree, u.specializations, u.created_at, u.updated_at
		 FROM users u
		 JOIN enrollments e ON e.student_id = u.id
		 WHERE e.course_id = $1
		 ORDER BY u.updated_at DESC, u.id DESC
		 LIMIT $2 OFFSET $3`,
		courseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *u)
	}
	return students, total, rows.Err()
}
