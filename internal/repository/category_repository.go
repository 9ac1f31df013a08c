package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora/learnhub-backend/internal/model"
)

// CategoryRepository handles category data access.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*model.Category, error) {
	cat := &model.Category{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`, id,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// List retrieves all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, cat *model.Category) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		cat.Name,
	).Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
}

// Update renames an existing category.
func (r *CategoryRepository) Update(ctx context.Context, cat *model.Category) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		cat.Name, cat.ID,
	)
	return err
}

// Delete removes a category. Courses in it are nullified, not deleted.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
