package model

import (
	"fmt"
	"time"
)

// Role determines what a user may do: students enroll, instructors own
// courses, admins may act on behalf of any student.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// StudentInfo carries student-specific data.
type StudentInfo struct {
	Scholarship bool `json:"scholarship"`
}

// InstructorInfo carries instructor-specific data.
type InstructorInfo struct {
	Degree          string   `json:"degree"`
	Specializations []string `json:"specializations"`
}

// User represents a platform identity. Exactly one of Student/Instructor is
// non-nil depending on Role; admins carry neither. Use the New* constructors
// so the role and its associated data cannot drift apart.
type User struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	Student      *StudentInfo    `json:"student,omitempty"`
	Instructor   *InstructorInfo `json:"instructor,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewStudent builds a student user.
func NewStudent(name, email, passwordHash string, scholarship bool) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleStudent,
		Student:      &StudentInfo{Scholarship: scholarship},
	}
}

// NewInstructor builds an instructor user.
func NewInstructor(name, email, passwordHash, degree string, specializations []string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleInstructor,
		Instructor:   &InstructorInfo{Degree: degree, Specializations: specializations},
	}
}

// NewAdmin builds an admin user.
func NewAdmin(name, email, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
	}
}

// Validate checks the role/associated-data pairing holds.
func (u *User) Validate() error {
	switch u.Role {
	case RoleStudent:
		if u.Student == nil || u.Instructor != nil {
			return fmt.Errorf("student user %q missing student data", u.Email)
		}
	case RoleInstructor:
		if u.Instructor == nil || u.Student != nil {
			return fmt.Errorf("instructor user %q missing instructor data", u.Email)
		}
	case RoleAdmin:
		if u.Student != nil || u.Instructor != nil {
			return fmt.Errorf("admin user %q must not carry role data", u.Email)
		}
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=student instructor"`

	// Student only.
	Scholarship bool `json:"scholarship"`
	// Instructor only.
	Degree          string   `json:"degree" binding:"omitempty,max=100"`
	Specializations []string `json:"specializations" binding:"omitempty,dive,min=1,max=100"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
