package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora/learnhub-backend/internal/model"
)

type courseFixture struct {
	svc         *CourseService
	courses     *fakeCourseStore
	enrollments *fakeEnrollmentStore
	users       *fakeUserStore
	cache       *fakeCourseCache
}

func newCourseFixture() *courseFixture {
	courses := newFakeCourseStore()
	users := newFakeUserStore()
	enrollments := newFakeEnrollmentStore(courses, users)
	cache := newFakeCourseCache()
	return &courseFixture{
		svc:         NewCourseService(courses, enrollments, cache, 5, zerolog.Nop()),
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		cache:       cache,
	}
}

func TestCreateCourseDefaultsToActive(t *testing.T) {
	f := newCourseFixture()

	course, err := f.svc.Create(context.Background(), model.CreateCourseRequest{Title: "Go Basics"})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusActive, course.Status)
	assert.Nil(t, course.InstructorID)
	assert.Nil(t, course.Capacity)
	assert.NotZero(t, course.ID)
}

func TestCreateCourseInvalidatesCache(t *testing.T) {
	f := newCourseFixture()
	f.cache.data["courses:top"] = []byte("[]")

	_, err := f.svc.Create(context.Background(), model.CreateCourseRequest{Title: "Go Basics"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.invalidations)
	assert.Empty(t, f.cache.data)
}

func TestDeactivateWithEnrolledStudentsRejected(t *testing.T) {
	f := newCourseFixture()
	instructor := f.users.add(model.NewInstructor("Ina", "ina@example.com", "hash", "PhD", nil))
	course := f.courses.add(model.Course{Title: "Crowded", InstructorID: &instructor.ID, Status: model.CourseStatusActive})
	student := f.users.add(model.NewStudent("alice", "alice@example.com", "hash", false))
	require.NoError(t, f.enrollments.Create(context.Background(), &model.Enrollment{CourseID: course.ID, StudentID: student.ID}))

	inactive := model.CourseStatusInactive
	_, err := f.svc.Update(context.Background(), course, model.UpdateCourseRequest{Status: &inactive})
	assert.ErrorIs(t, err, ErrCourseHasStudents)

	stored, err := f.courses.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusActive, stored.Status)
}

func TestDeactivateEmptyCourse(t *testing.T) {
	f := newCourseFixture()
	instructor := f.users.add(model.NewInstructor("Ina", "ina@example.com", "hash", "PhD", nil))
	course := f.courses.add(model.Course{Title: "Empty", InstructorID: &instructor.ID, Status: model.CourseStatusActive})

	inactive := model.CourseStatusInactive
	updated, err := f.svc.Update(context.Background(), course, model.UpdateCourseRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusInactive, updated.Status)
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	f := newCourseFixture()
	course := f.courses.add(model.Course{Title: "Old Title", Description: "Keep me", Status: model.CourseStatusActive})

	title := "New Title"
	updated, err := f.svc.Update(context.Background(), course, model.UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "Keep me", updated.Description)
}

func TestListServedFromCache(t *testing.T) {
	f := newCourseFixture()
	f.courses.add(model.Course{Title: "Go Basics", Status: model.CourseStatusActive})

	first, _, err := f.svc.List(context.Background(), "anonymous", "status=active", model.CourseFilter{Status: model.CourseStatusActive}, 1, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, f.courses.listCalls)

	second, _, err := f.svc.List(context.Background(), "anonymous", "status=active", model.CourseFilter{Status: model.CourseStatusActive}, 1, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.Equal(t, 1, f.courses.listCalls, "second identical request must hit the cache")
}

func TestListRecomputedAfterWrite(t *testing.T) {
	f := newCourseFixture()
	f.courses.add(model.Course{Title: "Go Basics", Status: model.CourseStatusActive})

	_, _, err := f.svc.List(context.Background(), "anonymous", "", model.CourseFilter{}, 1, 10)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), model.CreateCourseRequest{Title: "Fresh Course"})
	require.NoError(t, err)

	courses, _, err := f.svc.List(context.Background(), "anonymous", "", model.CourseFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 2, f.courses.listCalls)
}

func TestListCacheScopedPerUser(t *testing.T) {
	f := newCourseFixture()
	f.courses.add(model.Course{Title: "Go Basics", Status: model.CourseStatusActive})

	_, _, err := f.svc.List(context.Background(), "7", "enrolled=true", model.CourseFilter{EnrolledUserID: 7}, 1, 10)
	require.NoError(t, err)
	_, _, err = f.svc.List(context.Background(), "8", "enrolled=true", model.CourseFilter{EnrolledUserID: 8}, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, f.courses.listCalls, "different users must not share a cache entry")
	assert.Len(t, f.cache.data, 2)
}

func TestListSurvivesCacheFailure(t *testing.T) {
	f := newCourseFixture()
	f.courses.add(model.Course{Title: "Go Basics", Status: model.CourseStatusActive})
	f.cache.getErr = assert.AnError
	f.cache.setErr = assert.AnError

	courses, _, err := f.svc.List(context.Background(), "anonymous", "", model.CourseFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestTopCached(t *testing.T) {
	f := newCourseFixture()
	f.courses.add(model.Course{Title: "Popular", Status: model.CourseStatusActive, EnrolledCount: 9})
	f.courses.add(model.Course{Title: "Quiet", Status: model.CourseStatusActive, EnrolledCount: 1})
	f.courses.add(model.Course{Title: "Hidden", Status: model.CourseStatusInactive, EnrolledCount: 50})

	top, err := f.svc.Top(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 2, "inactive courses never rank")
	assert.Equal(t, "Popular", top[0].Title)

	_, err = f.svc.Top(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.courses.topCalls)
}

func TestSweepStale(t *testing.T) {
	f := newCourseFixture()
	instructor := f.users.add(model.NewInstructor("Ina", "ina@example.com", "hash", "PhD", nil))
	old := time.Now().Add(-40 * 24 * time.Hour)

	f.courses.add(model.Course{Title: "Stale", InstructorID: &instructor.ID, Status: model.CourseStatusInactive, UpdatedAt: old})
	f.courses.add(model.Course{Title: "Recent", InstructorID: &instructor.ID, Status: model.CourseStatusInactive, UpdatedAt: time.Now()})
	f.courses.add(model.Course{Title: "ActiveOld", InstructorID: &instructor.ID, Status: model.CourseStatusActive, UpdatedAt: old})
	// System courses have no instructor and are exempt from the sweep.
	f.courses.add(model.Course{Title: "SystemOld", Status: model.CourseStatusInactive, UpdatedAt: old})

	n, err := f.svc.SweepStale(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, f.courses.courses, 3)
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestSweepNothingStaleSkipsInvalidation(t *testing.T) {
	f := newCourseFixture()

	n, err := f.svc.SweepStale(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, f.cache.invalidations)
}
