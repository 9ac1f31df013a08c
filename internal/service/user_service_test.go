package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora/learnhub-backend/internal/model"
)

func newUserFixture() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	auth := NewAuthService(testAuthConfig())
	return NewUserService(users, auth, zerolog.Nop()), users
}

func TestRegisterStudent(t *testing.T) {
	svc, _ := newUserFixture()

	user, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:        "Alice",
		Email:       "alice@example.com",
		Password:    "s3cret-pass",
		Role:        model.RoleStudent,
		Scholarship: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, user.Role)
	require.NotNil(t, user.Student)
	assert.True(t, user.Student.Scholarship)
	assert.Nil(t, user.Instructor)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestRegisterInstructor(t *testing.T) {
	svc, _ := newUserFixture()

	user, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:            "Ina",
		Email:           "ina@example.com",
		Password:        "s3cret-pass",
		Role:            model.RoleInstructor,
		Degree:          "PhD",
		Specializations: []string{"Databases", "Networks"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleInstructor, user.Role)
	require.NotNil(t, user.Instructor)
	assert.Equal(t, "PhD", user.Instructor.Degree)
	assert.Nil(t, user.Student)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture()

	req := model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Role:     model.RoleStudent,
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.True(t, isUniqueViolation(err))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newUserFixture()

	registered, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Role:     model.RoleStudent,
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Role:     model.RoleStudent,
	})
	require.NoError(t, err)

	_, badPassword := svc.Authenticate(context.Background(), "alice@example.com", "wrong-pass")
	_, unknownEmail := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret-pass")

	assert.ErrorIs(t, badPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
}
