package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/model"
)

// UserService handles account registration and lookup.
type UserService struct {
	users UserStore
	auth  *AuthService
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a student or instructor account from the request. The role
// constructors guarantee role data cannot drift from the role flag; admin
// accounts are only created through the CLI.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *model.User
	switch req.Role {
	case model.RoleInstructor:
		user = model.NewInstructor(req.Name, req.Email, hash, req.Degree, req.Specializations)
	default:
		user = model.NewStudent(req.Name, req.Email, hash, req.Scholarship)
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and bad password.
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a user by its ID.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
