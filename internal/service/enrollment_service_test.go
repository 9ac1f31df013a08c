package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora/learnhub-backend/internal/model"
)

type enrollmentFixture struct {
	svc         *EnrollmentService
	courses     *fakeCourseStore
	enrollments *fakeEnrollmentStore
	users       *fakeUserStore
	publisher   *fakePublisher
}

func newEnrollmentFixture() *enrollmentFixture {
	courses := newFakeCourseStore()
	users := newFakeUserStore()
	enrollments := newFakeEnrollmentStore(courses, users)
	publisher := &fakePublisher{}
	return &enrollmentFixture{
		svc:         NewEnrollmentService(courses, enrollments, users, publisher, zerolog.Nop()),
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		publisher:   publisher,
	}
}

func (f *enrollmentFixture) addStudent(name string) *model.User {
	return f.users.add(model.NewStudent(name, name+"@example.com", "hash", false))
}

func (f *enrollmentFixture) addCourse(capacity *int, status model.CourseStatus) *model.Course {
	instructor := f.users.add(model.NewInstructor("Instructor", "instructor@example.com", "hash", "PhD", nil))
	return f.courses.add(model.Course{
		Title:        "Test Course",
		InstructorID: &instructor.ID,
		Status:       status,
		Capacity:     capacity,
	})
}

func intPtr(n int) *int { return &n }

func TestEnrollHappyPath(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.addCourse(intPtr(10), model.CourseStatusActive)

	err := f.svc.Enroll(context.Background(), student, course, nil)
	require.NoError(t, err)

	enrolled, err := f.enrollments.Exists(context.Background(), course.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, model.EventStudentEnrolled, event.Kind)
	assert.Equal(t, course.ID, event.CourseID)
	assert.Equal(t, student.ID, event.StudentID)
	assert.Equal(t, *course.InstructorID, event.InstructorID)
}

func TestEnrollCapacityLimit(t *testing.T) {
	f := newEnrollmentFixture()
	course := f.addCourse(intPtr(2), model.CourseStatusActive)

	for _, name := range []string{"alice", "bob"} {
		student := f.addStudent(name)
		snapshot, err := f.courses.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		require.NoError(t, f.svc.Enroll(context.Background(), student, snapshot, nil))
	}

	late := f.addStudent("carol")
	full := *course
	full.EnrolledCount = 2
	err := f.svc.Enroll(context.Background(), late, &full, nil)
	assert.ErrorIs(t, err, ErrCourseFull)

	count, _ := f.enrollments.CountByCourse(context.Background(), course.ID)
	assert.Equal(t, 2, count)
}

// A snapshot read before a concurrent enroll fills the last seat must still
// be rejected by the store-level capacity check.
func TestEnrollCapacityRaceStaleSnapshot(t *testing.T) {
	f := newEnrollmentFixture()
	course := f.addCourse(intPtr(1), model.CourseStatusActive)

	stale := *course
	stale.EnrolledCount = 0 // both callers saw a free seat

	first := f.addStudent("alice")
	require.NoError(t, f.svc.Enroll(context.Background(), first, &stale, nil))

	second := f.addStudent("bob")
	err := f.svc.Enroll(context.Background(), second, &stale, nil)
	assert.ErrorIs(t, err, ErrCourseFull)

	count, _ := f.enrollments.CountByCourse(context.Background(), course.ID)
	assert.Equal(t, 1, count)
}

func TestEnrollDuplicate(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.addCourse(nil, model.CourseStatusActive)

	require.NoError(t, f.svc.Enroll(context.Background(), student, course, nil))
	err := f.svc.Enroll(context.Background(), student, course, nil)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	count, _ := f.enrollments.CountByCourse(context.Background(), course.ID)
	assert.Equal(t, 1, count)
}

func TestEnrollInactiveCourse(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.addCourse(nil, model.CourseStatusInactive)

	err := f.svc.Enroll(context.Background(), student, course, nil)
	assert.ErrorIs(t, err, ErrInactiveCourse)
	assert.Empty(t, f.publisher.events)
}

func TestEnrollSystemCourseRejected(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.courses.add(model.Course{Title: "Onboarding", Status: model.CourseStatusActive})

	err := f.svc.Enroll(context.Background(), student, course, nil)
	assert.ErrorIs(t, err, ErrCourseUnassigned)
}

func TestEnrollLastSeatPublishesCourseFull(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.addCourse(intPtr(1), model.CourseStatusActive)

	require.NoError(t, f.svc.Enroll(context.Background(), student, course, nil))

	kinds := f.publisher.kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, model.EventStudentEnrolled, kinds[0])
	assert.Equal(t, model.EventCourseFull, kinds[1])
}

func TestEnrollSurvivesPublisherFailure(t *testing.T) {
	f := newEnrollmentFixture()
	f.publisher.err = errors.New("redis down")
	student := f.addStudent("alice")
	course := f.addCourse(intPtr(5), model.CourseStatusActive)

	err := f.svc.Enroll(context.Background(), student, course, nil)
	require.NoError(t, err)

	enrolled, _ := f.enrollments.Exists(context.Background(), course.ID, student.ID)
	assert.True(t, enrolled)
}

func TestEnrollAdminOnBehalf(t *testing.T) {
	f := newEnrollmentFixture()
	admin := f.users.add(model.NewAdmin("Admin", "admin@example.com", "hash"))
	student := f.addStudent("alice")
	course := f.addCourse(nil, model.CourseStatusActive)

	err := f.svc.Enroll(context.Background(), admin, course, &student.ID)
	require.NoError(t, err)

	enrolled, _ := f.enrollments.Exists(context.Background(), course.ID, student.ID)
	assert.True(t, enrolled)

	// The admin holds no membership of their own.
	adminEnrolled, _ := f.enrollments.Exists(context.Background(), course.ID, admin.ID)
	assert.False(t, adminEnrolled)
}

func TestEnrollAdminOnBehalfUnknownStudent(t *testing.T) {
	f := newEnrollmentFixture()
	admin := f.users.add(model.NewAdmin("Admin", "admin@example.com", "hash"))
	course := f.addCourse(nil, model.CourseStatusActive)

	missing := 9999
	err := f.svc.Enroll(context.Background(), admin, course, &missing)
	assert.ErrorIs(t, err, ErrInvalidStudent)
}

func TestEnrollAdminOnBehalfNonStudent(t *testing.T) {
	f := newEnrollmentFixture()
	admin := f.users.add(model.NewAdmin("Admin", "admin@example.com", "hash"))
	instructor := f.users.add(model.NewInstructor("Ina", "ina@example.com", "hash", "MSc", nil))
	course := f.addCourse(nil, model.CourseStatusActive)

	err := f.svc.Enroll(context.Background(), admin, course, &instructor.ID)
	assert.ErrorIs(t, err, ErrInvalidStudent)
}

func TestEnrollStudentCannotActOnOthers(t *testing.T) {
	f := newEnrollmentFixture()
	actor := f.addStudent("alice")
	other := f.addStudent("bob")
	course := f.addCourse(nil, model.CourseStatusActive)

	// The requested id is ignored for non-admins; the actor enrolls.
	err := f.svc.Enroll(context.Background(), actor, course, &other.ID)
	require.NoError(t, err)

	actorEnrolled, _ := f.enrollments.Exists(context.Background(), course.ID, actor.ID)
	otherEnrolled, _ := f.enrollments.Exists(context.Background(), course.ID, other.ID)
	assert.True(t, actorEnrolled)
	assert.False(t, otherEnrolled)
}

func TestLeave(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.addCourse(nil, model.CourseStatusActive)
	require.NoError(t, f.svc.Enroll(context.Background(), student, course, nil))
	f.publisher.events = nil

	err := f.svc.Leave(context.Background(), student, course, nil)
	require.NoError(t, err)

	enrolled, _ := f.enrollments.Exists(context.Background(), course.ID, student.ID)
	assert.False(t, enrolled)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, model.EventStudentLeft, f.publisher.events[0].Kind)
}

func TestLeaveNotEnrolled(t *testing.T) {
	f := newEnrollmentFixture()
	student := f.addStudent("alice")
	course := f.addCourse(nil, model.CourseStatusActive)

	err := f.svc.Leave(context.Background(), student, course, nil)
	assert.ErrorIs(t, err, ErrNotEnrolled)
	assert.Empty(t, f.publisher.events)
}

func TestListStudentsPagination(t *testing.T) {
	f := newEnrollmentFixture()
	course := f.addCourse(nil, model.CourseStatusActive)
	for _, name := range []string{"alice", "bob", "carol"} {
		student := f.addStudent(name)
		require.NoError(t, f.svc.Enroll(context.Background(), student, course, nil))
	}

	students, pagination, err := f.svc.ListStudents(context.Background(), course.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Equal(t, 3, pagination.TotalItems)
	assert.Equal(t, 2, pagination.TotalPages)

	students, _, err = f.svc.ListStudents(context.Background(), course.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
