// Package errors provides standardized error codes for consistent error handling.
package errors

// ErrorCode represents a unique error code for specific error scenarios
type ErrorCode string

const (
	CodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	CodeEntityAlreadyExists ErrorCode = "ENTITY_ALREADY_EXISTS"
	CodeEntityNotFound      ErrorCode = "ENTITY_NOT_FOUND"

	CodeStorageFailure     ErrorCode = "STORAGE_FAILURE"
	CodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	CodeDataCorruption     ErrorCode = "DATA_CORRUPTION"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// HTTPStatusCode returns the HTTP status class a transport should present for the code.
func (c ErrorCode) HTTPStatusCode() int {
	switch c {
	case CodeValidationFailed:
		return 400
	case CodeEntityNotFound:
		return 404
	case CodeEntityAlreadyExists:
		return 409
	case CodeStorageUnavailable:
		return 503
	default:
		return 500
	}
}

// String returns the string representation of the error code
func (c ErrorCode) String() string {
	return string(c)
}
