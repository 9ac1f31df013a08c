package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora/learnhub-backend/internal/model"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// courseSelect always joins the live enrollment count so IsFull decisions are
// never made on a stale stored counter.
const courseSelect = `
	SELECT c.id, c.title, c.description, c.category_id, c.instructor_id,
	       c.status, c.capacity,
	       (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS enrolled_count,
	       c.created_at, c.updated_at
	FROM courses c`

func scanCourse(row interface{ Scan(dest ...any) error }) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.CategoryID, &c.InstructorID,
		&c.Status, &c.Capacity, &c.EnrolledCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a course by its ID including its live enrollment count.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
}

// List retrieves courses matching the filter, newest first, paginated.
// Returns the matching rows and the total match count.
func (r *CourseRepository) List(ctx context.Context, filter model.CourseFilter, limit, offset int) ([]model.Course, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "c.status = "+arg(filter.Status))
	}
	if filter.Category > 0 {
		where = append(where, "c.category_id = "+arg(filter.Category))
	}
	if filter.EnrolledUserID > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM enrollments e WHERE e.course_id = c.id AND e.student_id = "+arg(filter.EnrolledUserID)+")")
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(c.title ILIKE "+p+" OR c.description ILIKE "+p+")")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := courseSelect + cond +
		fmt.Sprintf(" ORDER BY c.created_at DESC, c.id DESC LIMIT %s OFFSET %s", arg(limit), arg(offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}

// Top retrieves the most-enrolled active courses.
func (r *CourseRepository) Top(ctx context.Context, limit int) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		courseSelect+` WHERE c.status = 'active'
		 ORDER BY enrolled_count DESC, c.created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, category_id, instructor_id, status, capacity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.CategoryID, c.InstructorID, c.Status, c.Capacity,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update persists all mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $1, description = $2, category_id = $3, status = $4,
		     capacity = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6`,
		c.Title, c.Description, c.CategoryID, c.Status, c.Capacity, c.ID,
	)
	return err
}

// Delete removes a course. Enrollments cascade.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

// DeleteStale removes inactive courses that have not been modified since the
// cutoff. System courses (no instructor) are exempt. Returns the number of
// courses removed.
func (r *CourseRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM courses
		 WHERE status = 'inactive'
		   AND instructor_id IS NOT NULL
		   AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
