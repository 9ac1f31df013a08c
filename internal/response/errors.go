package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrNotOwner  ErrCode = "NOT_COURSE_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Enrollment domain ─────────────────────────────────────────────
	ErrCourseInactive    ErrCode = "COURSE_INACTIVE"
	ErrCourseFull        ErrCode = "COURSE_FULL"
	ErrAlreadyEnrolled   ErrCode = "ALREADY_ENROLLED"
	ErrNotEnrolled       ErrCode = "NOT_ENROLLED"
	ErrCourseHasStudents ErrCode = "COURSE_HAS_STUDENTS"
	ErrInvalidStudent    ErrCode = "INVALID_STUDENT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to perform this action."
	case ErrNotOwner:
		return "Only the owning instructor may manage this course."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Enrollment domain ─────────────────────────────────────────────
	case ErrCourseInactive:
		return "This course is not active and cannot accept enrollments."
	case ErrCourseFull:
		return "This course has reached its enrollment capacity."
	case ErrAlreadyEnrolled:
		return "The student is already enrolled in this course."
	case ErrNotEnrolled:
		return "The student is not enrolled in this course."
	case ErrCourseHasStudents:
		return "A course with enrolled students cannot be deactivated."
	case ErrInvalidStudent:
		return "The requested student does not exist."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
