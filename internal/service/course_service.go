package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/response"
)

// Domain errors.
var (
	ErrCourseHasStudents = errors.New("course has enrolled students and cannot be deactivated")
)

// CourseService owns course lifecycle rules and the list/top response cache.
type CourseService struct {
	courses     CourseStore
	enrollments EnrollmentStore
	cache       CourseCache
	topLimit    int
	log         zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, enrollments EnrollmentStore, cache CourseCache, topLimit int, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		cache:       cache,
		topLimit:    topLimit,
		log:         log.With().Str("component", "course_service").Logger(),
	}
}

// GetByID retrieves a course with its live enrollment count.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// Create persists a new course. Status defaults to active when omitted.
// The caller has already resolved the instructor: instructors always own the
// courses they create, admins may assign any instructor or none (system
// course).
func (s *CourseService) Create(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	status := req.Status
	if status == "" {
		status = model.CourseStatusActive
	}

	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		InstructorID: req.InstructorID,
		Status:       status,
		Capacity:     req.Capacity,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.invalidateCaches(ctx)
	s.log.Info().Int("course_id", course.ID).Str("title", course.Title).Msg("Course created")
	return course, nil
}

// Update applies the provided fields to the course and persists it.
// Setting status to inactive is rejected with ErrCourseHasStudents while the
// course has any enrollments; no field is mutated in that case.
func (s *CourseService) Update(ctx context.Context, course *model.Course, req model.UpdateCourseRequest) (*model.Course, error) {
	if req.Status != nil && *req.Status == model.CourseStatusInactive && course.Status == model.CourseStatusActive {
		count, err := s.enrollments.CountByCourse(ctx, course.ID)
		if err != nil {
			return nil, fmt.Errorf("count enrollments: %w", err)
		}
		if count > 0 {
			return nil, ErrCourseHasStudents
		}
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.CategoryID != nil {
		course.CategoryID = req.CategoryID
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
	if req.Capacity != nil {
		course.Capacity = req.Capacity
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	s.invalidateCaches(ctx)
	return course, nil
}

// Delete removes a course. Its enrollments cascade away with it.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.invalidateCaches(ctx)
	return nil
}

// courseListPayload is the cached body of a list response.
type courseListPayload struct {
	Courses    []model.Course       `json:"courses"`
	Pagination *response.Pagination `json:"pagination"`
}

// List returns courses matching the filter, serving from cache when possible.
// userScope is the requesting user's ID or "anonymous"; rawQuery is the
// normalized query string. Both feed the cache key so users never see each
// other's "enrolled" views.
func (s *CourseService) List(ctx context.Context, userScope, rawQuery string, filter model.CourseFilter, page, perPage int) ([]model.Course, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	key := config.CacheKey.CourseListKey(userScope, rawQuery)
	if payload, ok := s.cacheGet(ctx, key); ok {
		var cached courseListPayload
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached.Courses, cached.Pagination, nil
		}
	}

	courses, total, err := s.courses.List(ctx, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	s.cacheSet(ctx, key, courseListPayload{Courses: courses, Pagination: pagination})
	return courses, pagination, nil
}

// Top returns the most-enrolled active courses, cached under a fixed key.
func (s *CourseService) Top(ctx context.Context) ([]model.Course, error) {
	key := config.CacheKey.TopCoursesKey()
	if payload, ok := s.cacheGet(ctx, key); ok {
		var cached []model.Course
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	courses, err := s.courses.Top(ctx, s.topLimit)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}

	s.cacheSet(ctx, key, courses)
	return courses, nil
}

// InvalidateCaches drops every cached list/top response. Called here after
// course writes and by the enrollment handlers after membership changes.
func (s *CourseService) InvalidateCaches(ctx context.Context) {
	s.invalidateCaches(ctx)
}

// SweepStale deletes instructor-owned inactive courses untouched since the
// cutoff. System courses are never swept.
func (s *CourseService) SweepStale(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.courses.DeleteStale(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateCaches(ctx)
		s.log.Info().Int64("deleted", n).Msg("Stale courses swept")
	}
	return n, nil
}

// Cache failures are logged and treated as misses; the catalog must keep
// serving when Redis is down.

func (s *CourseService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return nil, false
	}
	return payload, ok
}

func (s *CourseService) cacheSet(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *CourseService) invalidateCaches(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Cache invalidation failed")
	}
}
