package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrNoActiveOTP        = errors.New("no active OTP found")
	ErrEmailNotVerified   = errors.New("email not verified")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Student errors
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrStudentExists       = errors.New("student with this roll number already exists")
	ErrPerformanceNotFound = errors.New("semester record not found")
	ErrNoStudentProfile    = errors.New("no student profile linked to this account")
	ErrResumeRequired      = errors.New("no resume link found for this student")
)

// Company errors
var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrCompanyExists   = errors.New("company with this name already exists")
	ErrInvalidTemplate = errors.New("invalid export template JSON")
)

// Application errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("student already applied to this company")
	ErrNotEligible         = errors.New("student is not eligible for this company")
)

// Import errors
var (
	ErrNoValidRows = errors.New("no valid rows found; ensure columns include Roll and SGPA")
)

// NewNotEligibleError wraps ErrNotEligible with the evaluator's reason
func NewNotEligibleError(reason string) error {
	return &CustomError{
		Err:     ErrNotEligible,
		Message: "Application blocked: " + reason,
	}
}

// NewValidationError creates a validation error carrying a user-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
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

// IsNotFound reports whether err is any of the not-found errors
func IsNotFound(err error) bool {
	return Is(err, ErrResourceNotFound, ErrStudentNotFound, ErrCompanyNotFound,
		ErrApplicationNotFound, ErrPerformanceNotFound, ErrUserNotFound)
}

// IsConflict reports whether err is any of the uniqueness conflicts
func IsConflict(err error) bool {
	return Is(err, ErrConflict, ErrResourceAlreadyExists, ErrStudentExists, ErrCompanyExists,
		ErrApplicationExists, ErrEmailAlreadyExists)
}

// IsValidation reports whether err is a request validation rejection
func IsValidation(err error) bool {
	return Is(err, ErrValidationFailed, ErrBadRequest, ErrInvalidTemplate, ErrNoValidRows)
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

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
