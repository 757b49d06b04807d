// Package apperr defines the error taxonomy shared by the console services.
// Each kind is its own type so callers can branch with errors.As; the api
// package maps them onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
)

// PermissionDeniedError is returned when the actor's role fails a policy rule.
type PermissionDeniedError struct {
	Role   string
	Action string
	Rule   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: role %s cannot %s: %s", e.Role, e.Action, e.Rule)
}

// NotFoundError is returned when an update or delete matched nothing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidDateError is returned when a date string cannot be parsed.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid date %q", e.Value)
	}
	return fmt.Sprintf("invalid date %q for %s", e.Value, e.Field)
}

// ValidationError is returned when input violates a type or enum constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps any failure coming from the record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Denied builds a PermissionDeniedError.
func Denied(role, action, rule string) error {
	return &PermissionDeniedError{Role: role, Action: action, Rule: rule}
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps err as a StorageError unless it already is one.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsPermissionDenied reports whether err is or wraps a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var target *PermissionDeniedError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidDate reports whether err is or wraps an InvalidDateError.
func IsInvalidDate(err error) bool {
	var target *InvalidDateError
	return errors.As(err, &target)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsStorage reports whether err is or wraps a StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
