package model

import "time"

// Category is a named grouping for courses.
type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// UpdateCategoryRequest is the payload for renaming a category.
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
