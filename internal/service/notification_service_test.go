package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumora/learnhub-backend/internal/model"
)

func TestComposeNotification(t *testing.T) {
	base := model.EnrollmentEvent{
		CourseID:     3,
		CourseTitle:  "Go Basics",
		StudentID:    7,
		StudentName:  "Alice",
		InstructorID: 2,
	}

	t.Run("student enrolled notifies instructor", func(t *testing.T) {
		event := base
		event.Kind = model.EventStudentEnrolled
		recipient, subject, body := composeNotification(event)
		assert.Equal(t, 2, recipient)
		assert.Contains(t, subject, "Go Basics")
		assert.Contains(t, body, "Alice")
	})

	t.Run("student left notifies student", func(t *testing.T) {
		event := base
		event.Kind = model.EventStudentLeft
		recipient, _, body := composeNotification(event)
		assert.Equal(t, 7, recipient)
		assert.Contains(t, body, "Go Basics")
	})

	t.Run("course full notifies instructor", func(t *testing.T) {
		event := base
		event.Kind = model.EventCourseFull
		recipient, subject, _ := composeNotification(event)
		assert.Equal(t, 2, recipient)
		assert.Contains(t, subject, "full")
	})

	t.Run("unknown kind notifies nobody", func(t *testing.T) {
		event := base
		event.Kind = "mystery"
		recipient, _, _ := composeNotification(event)
		assert.Zero(t, recipient)
	})
}
