package apperrors

import "errors"

// Error kinds. Every error returned by the service layer wraps one of these,
// so callers can classify failures with errors.Is.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrResourceNotFound = errors.New("resource not found")
	ErrInactiveEntity   = errors.New("inactive entity")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// Department errors
var (
	ErrDepartmentNotFound      = NewCustomError(ErrResourceNotFound, "department not found").WithCode("DEPARTMENT_NOT_FOUND")
	ErrDepartmentAlreadyExists = NewCustomError(ErrDuplicateKey, "department with this name or code already exists").WithCode("DEPARTMENT_EXISTS")
)

// Course errors
var (
	ErrCourseNotFound      = NewCustomError(ErrResourceNotFound, "course not found").WithCode("COURSE_NOT_FOUND")
	ErrCourseAlreadyExists = NewCustomError(ErrDuplicateKey, "course with this code already exists").WithCode("COURSE_EXISTS")
	ErrCourseInactive      = NewCustomError(ErrInactiveEntity, "course is not active").WithCode("COURSE_INACTIVE")
)

// Student errors
var (
	ErrStudentNotFound        = NewCustomError(ErrResourceNotFound, "student not found").WithCode("STUDENT_NOT_FOUND")
	ErrStudentIDAlreadyExists = NewCustomError(ErrDuplicateKey, "student ID already exists").WithCode("STUDENT_ID_EXISTS")
	ErrEmailAlreadyExists     = NewCustomError(ErrDuplicateKey, "email already exists").WithCode("EMAIL_EXISTS")
	ErrStudentInactive        = NewCustomError(ErrInactiveEntity, "student is not active").WithCode("STUDENT_INACTIVE")
)

// Enrollment errors
var (
	ErrEnrollmentNotFound  = NewCustomError(ErrResourceNotFound, "enrollment not found").WithCode("ENROLLMENT_NOT_FOUND")
	ErrDuplicateEnrollment = NewCustomError(ErrDuplicateKey, "student is already enrolled in this course").WithCode("DUPLICATE_ENROLLMENT")
	ErrNotEnrolled         = NewCustomError(ErrValidationFailed, "student is not actively enrolled in this course").WithCode("NOT_ENROLLED")
)

// Fee errors
var (
	ErrFeeNotFound = NewCustomError(ErrResourceNotFound, "fee not found").WithCode("FEE_NOT_FOUND")
	ErrFeeWaived   = NewCustomError(ErrValidationFailed, "fee has been waived").WithCode("FEE_WAIVED")
)

// Announcement errors
var (
	ErrAnnouncementNotFound = NewCustomError(ErrResourceNotFound, "announcement not found").WithCode("ANNOUNCEMENT_NOT_FOUND")
)

// Operator errors
var (
	ErrOperatorNotFound      = NewCustomError(ErrResourceNotFound, "operator not found").WithCode("OPERATOR_NOT_FOUND")
	ErrOperatorAlreadyExists = NewCustomError(ErrDuplicateKey, "username or email already registered").WithCode("OPERATOR_EXISTS")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewDuplicateKeyError creates a new custom error for uniqueness violations with a message
func NewDuplicateKeyError(message string) error {
	return &CustomError{
		Err:     ErrDuplicateKey,
		Message: message,
	}
}

// NewValidationError reports a field that is out of its declared bounds or malformed.
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Details: map[string]interface{}{"field": field},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Field returns the offending field recorded on a validation error, if any.
func Field(err error) string {
	var ce *CustomError
	if !errors.As(err, &ce) || ce.Details == nil {
		return ""
	}
	field, _ := ce.Details["field"].(string)
	return field
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
