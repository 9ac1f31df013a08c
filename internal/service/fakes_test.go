package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/repository"
)

// In-memory store fakes. They mirror the pgx repositories' observable
// behavior, including the sentinel errors the services map on.

type fakeCourseStore struct {
	courses   map[int]*model.Course
	nextID    int
	listCalls int
	topCalls  int
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: map[int]*model.Course{}}
}

func (f *fakeCourseStore) add(c model.Course) *model.Course {
	f.nextID++
	c.ID = f.nextID
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	f.courses[c.ID] = &c
	return &c
}

func (f *fakeCourseStore) GetByID(_ context.Context, id int) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCourseStore) List(_ context.Context, filter model.CourseFilter, limit, offset int) ([]model.Course, int, error) {
	f.listCalls++
	var matched []model.Course
	for _, c := range f.courses {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Category != 0 && (c.CategoryID == nil || *c.CategoryID != filter.Category) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeCourseStore) Top(_ context.Context, limit int) ([]model.Course, error) {
	f.topCalls++
	var active []model.Course
	for _, c := range f.courses {
		if c.Status == model.CourseStatusActive {
			active = append(active, *c)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].EnrolledCount > active[j].EnrolledCount })
	if len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (f *fakeCourseStore) Create(_ context.Context, c *model.Course) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	f.courses[c.ID] = &clone
	return nil
}

func (f *fakeCourseStore) Update(_ context.Context, c *model.Course) error {
	if _, ok := f.courses[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = time.Now()
	clone := *c
	f.courses[c.ID] = &clone
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id int) error {
	if _, ok := f.courses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseStore) DeleteStale(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, c := range f.courses {
		if c.Status == model.CourseStatusInactive && c.InstructorID != nil && c.UpdatedAt.Before(cutoff) {
			delete(f.courses, id)
			n++
		}
	}
	return n, nil
}

type enrollmentKey struct {
	courseID, studentID int
}

type fakeEnrollmentStore struct {
	courses *fakeCourseStore
	users   *fakeUserStore
	rows    map[enrollmentKey]model.Enrollment
	nextID  int
}

func newFakeEnrollmentStore(courses *fakeCourseStore, users *fakeUserStore) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		courses: courses,
		users:   users,
		rows:    map[enrollmentKey]model.Enrollment{},
	}
}

// Create re-validates status and capacity against the stored course, like the
// repository does inside its row-locked transaction.
func (f *fakeEnrollmentStore) Create(_ context.Context, enr *model.Enrollment) error {
	course, ok := f.courses.courses[enr.CourseID]
	if !ok {
		return repository.ErrCourseGone
	}
	if course.Status != model.CourseStatusActive {
		return repository.ErrCourseNotActive
	}
	if course.Capacity != nil {
		count := 0
		for key := range f.rows {
			if key.courseID == enr.CourseID {
				count++
			}
		}
		if count >= *course.Capacity {
			return repository.ErrCapacityExceeded
		}
	}
	key := enrollmentKey{enr.CourseID, enr.StudentID}
	if _, dup := f.rows[key]; dup {
		return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "enrollments_course_id_student_id_key"}
	}
	f.nextID++
	enr.ID = f.nextID
	enr.CreatedAt = time.Now()
	f.rows[key] = *enr
	return nil
}

func (f *fakeEnrollmentStore) Delete(_ context.Context, courseID, studentID int) error {
	key := enrollmentKey{courseID, studentID}
	if _, ok := f.rows[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, key)
	return nil
}

func (f *fakeEnrollmentStore) Exists(_ context.Context, courseID, studentID int) (bool, error) {
	_, ok := f.rows[enrollmentKey{courseID, studentID}]
	return ok, nil
}

func (f *fakeEnrollmentStore) CountByCourse(_ context.Context, courseID int) (int, error) {
	count := 0
	for key := range f.rows {
		if key.courseID == courseID {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollmentStore) ListStudents(_ context.Context, courseID, limit, offset int) ([]model.User, int, error) {
	var enrolled []model.Enrollment
	for key, row := range f.rows {
		if key.courseID == courseID {
			enrolled = append(enrolled, row)
		}
	}
	sort.Slice(enrolled, func(i, j int) bool { return enrolled[i].ID > enrolled[j].ID })

	total := len(enrolled)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	var students []model.User
	for _, row := range enrolled[offset:end] {
		if u, ok := f.users.byID[row.StudentID]; ok {
			students = append(students, *u)
		}
	}
	return students, total, nil
}

type fakeUserStore struct {
	byID   map[int]*model.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[int]*model.User{}}
}

func (f *fakeUserStore) add(u *model.User) *model.User {
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
		}
	}
	f.nextID++
	u.ID = f.nextID
	clone := *u
	f.byID[u.ID] = &clone
	return nil
}

type fakePublisher struct {
	events []model.EnrollmentEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event model.EnrollmentEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) kinds() []model.EnrollmentEventKind {
	kinds := make([]model.EnrollmentEventKind, 0, len(f.events))
	for _, e := range f.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type fakeCourseCache struct {
	data          map[string][]byte
	invalidations int
	getErr        error
	setErr        error
}

func newFakeCourseCache() *fakeCourseCache {
	return &fakeCourseCache{data: map[string][]byte{}}
}

func (f *fakeCourseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	payload, ok := f.data[key]
	return payload, ok, nil
}

func (f *fakeCourseCache) Set(_ context.Context, key string, payload []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = payload
	return nil
}

func (f *fakeCourseCache) Invalidate(_ context.Context) error {
	f.invalidations++
	f.data = map[string][]byte{}
	return nil
}
