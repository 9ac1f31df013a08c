package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora/learnhub-backend/internal/model"
)

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, scholarship, degree, specializations, created_at, updated_at`

// scanUser maps a users row onto a model.User, attaching role data.
func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var (
		u               model.User
		scholarship     *bool
		degree          *string
		specializations []string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&scholarship, &degree, &specializations, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	switch u.Role {
	case model.RoleStudent:
		info := &model.StudentInfo{}
		if scholarship != nil {
			info.Scholarship = *scholarship
		}
		u.Student = info
	case model.RoleInstructor:
		info := &model.InstructorInfo{Specializations: specializations}
		if degree != nil {
			info.Degree = *degree
		}
		u.Instructor = info
	}
	return &u, nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user with its role data.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	var (
		scholarship     *bool
		degree          *string
		specializations []string
	)
	if u.Student != nil {
		scholarship = &u.Student.Scholarship
	}
	if u.Instructor != nil {
		degree = &u.Instructor.Degree
		specializations = u.Instructor.Specializations
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, scholarship, degree, specializations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, scholarship, degree, specializations,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// Delete removes a user by its ID. Enrollments and notifications cascade.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
