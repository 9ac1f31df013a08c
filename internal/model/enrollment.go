package model

import "time"

// Enrollment is the membership relation between a student and a course.
// Unique on (course, student); rows cascade when either side is deleted.
type Enrollment struct {
	ID        int       `json:"id"`
	CourseID  int       `json:"course_id"`
	StudentID int       `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrollRequest is the optional payload for enroll/leave. Student is only
// honored for admin callers acting on a student's behalf.
type EnrollRequest struct {
	Student *int `json:"student"`
}
