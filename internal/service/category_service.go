package service

import (
	"context"

	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/repository"
)

// CategoryService handles category business logic.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// GetByID retrieves a category by its ID.
func (s *CategoryService) GetByID(ctx context.Context, id int) (*model.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// List retrieves all categories.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.List(ctx)
}

// Create creates a new category. Uniqueness is enforced by the store.
func (s *CategoryService) Create(ctx context.Context, category *model.Category) error {
	return s.categoryRepo.Create(ctx, category)
}

// Update renames an existing category.
func (s *CategoryService) Update(ctx context.Context, category *model.Category) error {
	return s.categoryRepo.Update(ctx, category)
}

// Delete removes a category. Courses in it fall back to "no category"
// through the FK's SET NULL, so no guard is needed here.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	return s.categoryRepo.Delete(ctx, id)
}
