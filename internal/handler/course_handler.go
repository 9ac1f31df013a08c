package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumora/learnhub-backend/internal/middleware"
	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/response"
	"github.com/lumora/learnhub-backend/internal/service"
	"github.com/lumora/learnhub-backend/internal/validator"
)

// CourseHandler handles the course catalog surface.
type CourseHandler struct {
	courseService     *service.CourseService
	enrollmentService *service.EnrollmentService
	userService       *service.UserService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService, enrollmentService *service.EnrollmentService, userService *service.UserService) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		enrollmentService: enrollmentService,
		userService:       userService,
	}
}

// ListCourses godoc
// GET /api/v1/courses?status=&category=&enrolled=&search=&page=&per_page=
// Public; cached per (user-or-anonymous, normalized query string).
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filter := model.CourseFilter{
		Status: model.CourseStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	if cat, err := strconv.Atoi(c.Query("category")); err == nil {
		filter.Category = cat
	}

	userScope := "anonymous"
	if claims := middleware.GetClaims(c); claims != nil {
		userScope = strconv.Itoa(claims.UserID)
		if c.Query("enrolled") == "true" {
			filter.EnrolledUserID = claims.UserID
		}
	}

	page, perPage := paginationParams(c)
	// url.Values.Encode sorts keys, so equivalent queries share a cache entry.
	rawQuery := c.Request.URL.Query().Encode()

	courses, pagination, err := h.courseService.List(c.Request.Context(), userScope, rawQuery, filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// TopCourses godoc
// GET /api/v1/courses/top
// The most-enrolled active courses, cached under a fixed key.
func (h *CourseHandler) TopCourses(c *gin.Context) {
	courses, err := h.courseService.Top(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/courses
// Instructors always own the courses they create; admins may assign any
// instructor or none.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := currentUser(c, h.userService)
	if !ok {
		return
	}

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if actor.Role == model.RoleInstructor {
		req.InstructorID = &actor.ID
	}

	course, err := h.courseService.Create(c.Request.Context(), req)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"category_id": "referenced category or instructor does not exist"})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PATCH /api/v1/courses/:id
// Partial update; only the owning instructor or an admin may touch a course.
// Deactivation is blocked while students are enrolled.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	_, course, ok := h.ownedCourse(c)
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.courseService.Update(c.Request.Context(), course, req)
	if err != nil {
		if errors.Is(err, service.ErrCourseHasStudents) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrCourseHasStudents,
				map[string]string{"status": "cannot deactivate a course with enrolled students"})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": updated})
}

// DeleteCourse godoc
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	_, course, ok := h.ownedCourse(c)
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), course.ID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}

// ListStudents godoc
// GET /api/v1/courses/:id/students
// Owning instructor (or admin) only; most recently modified users first.
func (h *CourseHandler) ListStudents(c *gin.Context) {
	_, course, ok := h.ownedCourse(c)
	if !ok {
		return
	}

	page, perPage := paginationParams(c)
	students, pagination, err := h.enrollmentService.ListStudents(c.Request.Context(), course.ID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// ownedCourse loads the course from :id and enforces that the actor is its
// owning instructor or an admin. Writes the error response on failure.
func (h *CourseHandler) ownedCourse(c *gin.Context) (*model.User, *model.Course, bool) {
	actor, ok := currentUser(c, h.userService)
	if !ok {
		return nil, nil, false
	}

	id, ok := pathID(c, "id")
	if !ok {
		return nil, nil, false
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return nil, nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, nil, false
	}

	if actor.Role != model.RoleAdmin && !course.OwnedBy(actor.ID) {
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
		return nil, nil, false
	}

	return actor, course, true
}
