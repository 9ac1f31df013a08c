package model

import "time"

// CourseStatus is the course lifecycle state.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
)

// Course is a catalog offering. A course with no instructor is a system
// course (intro content); it can never accept enrollments and is exempt from
// the retention sweep. Capacity nil means unlimited.
type Course struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	CategoryID    *int         `json:"category_id"`
	InstructorID  *int         `json:"instructor_id"`
	Status        CourseStatus `json:"status"`
	Capacity      *int         `json:"capacity"`
	EnrolledCount int          `json:"enrolled_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// IsFull reports whether the course has reached its capacity limit.
// Derived from the live enrollment count, never stored.
func (c *Course) IsFull() bool {
	return c.Capacity != nil && c.EnrolledCount >= *c.Capacity
}

// IsSystem reports whether the course has no assigned instructor.
func (c *Course) IsSystem() bool {
	return c.InstructorID == nil
}

// OwnedBy reports whether the given user is the course's instructor.
func (c *Course) OwnedBy(userID int) bool {
	return c.InstructorID != nil && *c.InstructorID == userID
}

// CreateCourseRequest is the payload for creating a course.
// InstructorID is honored only for admin callers; instructors always own the
// courses they create.
type CreateCourseRequest struct {
	Title        string       `json:"title" binding:"required,min=2,max=200"`
	Description  string       `json:"description" binding:"max=5000"`
	CategoryID   *int         `json:"category_id"`
	InstructorID *int         `json:"instructor_id"`
	Status       CourseStatus `json:"status" binding:"omitempty,oneof=active inactive"`
	Capacity     *int         `json:"capacity" binding:"omitempty,min=1"`
}

// UpdateCourseRequest is the partial-update payload. Nil fields are left
// untouched.
type UpdateCourseRequest struct {
	Title       *string       `json:"title" binding:"omitempty,min=2,max=200"`
	Description *string       `json:"description" binding:"omitempty,max=5000"`
	CategoryID  *int          `json:"category_id"`
	Status      *CourseStatus `json:"status" binding:"omitempty,oneof=active inactive"`
	Capacity    *int          `json:"capacity" binding:"omitempty,min=1"`
}

// CourseFilter narrows course list queries.
type CourseFilter struct {
	Status   CourseStatus
	Category int
	// EnrolledUserID restricts to courses the given user is enrolled in.
	EnrolledUserID int
	Search         string
}
