package model

import "time"

// EnrollmentEventKind discriminates membership-change events.
type EnrollmentEventKind string

const (
	EventStudentEnrolled EnrollmentEventKind = "student_enrolled"
	EventStudentLeft     EnrollmentEventKind = "student_left"
	EventCourseFull      EnrollmentEventKind = "course_full"
)

// EnrollmentEvent is published to the enrollment events queue after a
// successful membership mutation has committed. The notification worker
// consumes it; a publish failure never rolls back the mutation.
type EnrollmentEvent struct {
	Kind         EnrollmentEventKind `json:"kind"`
	CourseID     int                 `json:"course_id"`
	CourseTitle  string              `json:"course_title"`
	StudentID    int                 `json:"student_id"`
	StudentName  string              `json:"student_name"`
	InstructorID int                 `json:"instructor_id,omitempty"`
	OccurredAt   time.Time           `json:"occurred_at"`
}
