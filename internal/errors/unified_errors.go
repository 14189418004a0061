// Package errors defines the error taxonomy shared by the data-access and service layers.
//
// Every error leaving a repository is one of four concrete types:
//
//	ValidationError      caller input or references are invalid
//	DuplicateEntityError a uniqueness invariant rejected a conditional write
//	EntityNotFoundError  a point read or pre-check found no item
//	StorageError         the underlying store failed
//
// Raw store errors never cross the repository boundary.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of error for proper handling and response.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeDuplicate  ErrorType = "DUPLICATE"
	ErrorTypeStorage    ErrorType = "STORAGE"
)

// Classified is implemented by every taxonomy error.
type Classified interface {
	error
	Type() ErrorType
	Code() ErrorCode
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidationError reports invalid caller-supplied data or a missing reference.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidation creates a validation error for the given field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationf creates a validation error with a formatted message.
func NewValidationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Type() ErrorType { return ErrorTypeValidation }
func (e *ValidationError) Code() ErrorCode { return CodeValidationFailed }

// ============================================================================
// DUPLICATE
// ============================================================================

// DuplicateEntityError reports that an item with the derived key already exists.
type DuplicateEntityError struct {
	EntityType string
	Key        string
}

// NewDuplicate creates a duplicate entity error.
func NewDuplicate(entityType, key string) *DuplicateEntityError {
	return &DuplicateEntityError{EntityType: entityType, Key: key}
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with key '%s' already exists", e.EntityType, e.Key)
}

func (e *DuplicateEntityError) Type() ErrorType { return ErrorTypeDuplicate }
func (e *DuplicateEntityError) Code() ErrorCode { return CodeEntityAlreadyExists }

// ============================================================================
// NOT FOUND
// ============================================================================

// EntityNotFoundError reports that no item matched the given key.
type EntityNotFoundError struct {
	EntityType string
	Key        string
}

// NewNotFound creates an entity not found error.
func NewNotFound(entityType, key string) *EntityNotFoundError {
	return &EntityNotFoundError{EntityType: entityType, Key: key}
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with key '%s' not found", e.EntityType, e.Key)
}

func (e *EntityNotFoundError) Type() ErrorType { return ErrorTypeNotFound }
func (e *EntityNotFoundError) Code() ErrorCode { return CodeEntityNotFound }

// ============================================================================
// STORAGE
// ============================================================================

// StorageError wraps a failure of the underlying store. Retryable is set for
// transient conditions (throttling, timeouts, unavailability); the data-access
// layer itself never retries.
type StorageError struct {
	Operation string
	Cause     error
	Retryable bool
	code      ErrorCode
}

// NewStorage creates a non-retryable storage error.
func NewStorage(operation string, cause error) *StorageError {
	return &StorageError{Operation: operation, Cause: cause, code: CodeStorageFailure}
}

// NewTransientStorage creates a retryable storage error.
func NewTransientStorage(operation string, cause error) *StorageError {
	return &StorageError{Operation: operation, Cause: cause, Retryable: true, code: CodeStorageUnavailable}
}

// NewCorruptItem reports an item that could not be decoded.
func NewCorruptItem(entityType string, cause error) *StorageError {
	return &StorageError{Operation: "decode " + entityType, Cause: cause, code: CodeDataCorruption}
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage operation '%s' failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("storage operation '%s' failed", e.Operation)
}

// Unwrap allows errors.Is and errors.As to reach the store error.
func (e *StorageError) Unwrap() error { return e.Cause }

func (e *StorageError) Type() ErrorType { return ErrorTypeStorage }

func (e *StorageError) Code() ErrorCode {
	if e.code == "" {
		return CodeStorageFailure
	}
	return e.code
}

// ============================================================================
// ERROR CLASSIFICATION AND CHECKING
// ============================================================================

// TypeOf returns the taxonomy type of err, or "" if err is not classified.
func TypeOf(err error) ErrorType {
	var c Classified
	if errors.As(err, &c) {
		return c.Type()
	}
	return ""
}

// CodeOf returns the error code of err, defaulting to CodeInternalError.
func CodeOf(err error) ErrorCode {
	var c Classified
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternalError
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsDuplicate checks if an error is a duplicate entity error.
func IsDuplicate(err error) bool {
	var target *DuplicateEntityError
	return errors.As(err, &target)
}

// IsNotFound checks if an error is an entity not found error.
func IsNotFound(err error) bool {
	var target *EntityNotFoundError
	return errors.As(err, &target)
}

// IsStorage checks if an error is a storage error.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

// IsRetryable reports whether the caller may retry the operation with backoff.
func IsRetryable(err error) bool {
	var target *StorageError
	if errors.As(err, &target) {
		return target.Retryable
	}
	return false
}
