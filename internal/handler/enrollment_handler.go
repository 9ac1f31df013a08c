package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/response"
	"github.com/lumora/learnhub-backend/internal/service"
	"github.com/lumora/learnhub-backend/internal/validator"
)

// EnrollmentHandler handles the enroll/leave surface. It delegates every
// decision to the enrollment service and owns only the HTTP mapping plus the
// cache invalidation that follows a successful membership change.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	courseService     *service.CourseService
	userService       *service.UserService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, courseService *service.CourseService, userService *service.UserService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		courseService:     courseService,
		userService:       userService,
	}
}

// Enroll godoc
// POST /api/v1/courses/:id/enroll
// Body optionally {"student": <id>} for admin-on-behalf enrollment.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	h.membershipChange(c, h.enrollmentService.Enroll)
}

// Leave godoc
// POST /api/v1/courses/:id/leave
func (h *EnrollmentHandler) Leave(c *gin.Context) {
	h.membershipChange(c, h.enrollmentService.Leave)
}

type membershipOp func(ctx context.Context, actor *model.User, course *model.Course, requested *int) error

func (h *EnrollmentHandler) membershipChange(c *gin.Context, op membershipOp) {
	actor, ok := currentUser(c, h.userService)
	if !ok {
		return
	}

	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.EnrollRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	course, err := h.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := op(c.Request.Context(), actor, course, req.Student); err != nil {
		failDomain(c, err)
		return
	}

	// Membership changes alter enrolled counts and "enrolled" filters, so the
	// list/top caches must go before the response does.
	h.courseService.InvalidateCaches(c.Request.Context())

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// failDomain maps enrollment domain errors to field-addressed 400 responses.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInactiveCourse):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCourseInactive,
			map[string]string{"course": "course is not active"})
	case errors.Is(err, service.ErrCourseUnassigned):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCourseInactive,
			map[string]string{"course": "course has no instructor assigned"})
	case errors.Is(err, service.ErrCourseFull):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrCourseFull,
			map[string]string{"course": "course has reached its enrollment capacity"})
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrAlreadyEnrolled,
			map[string]string{"student": "student is already enrolled in this course"})
	case errors.Is(err, service.ErrNotEnrolled):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrNotEnrolled,
			map[string]string{"student": "student is not enrolled in this course"})
	case errors.Is(err, service.ErrInvalidStudent):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidStudent,
			map[string]string{"student": "requested student does not exist"})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
