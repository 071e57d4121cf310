package kanban

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports an operation aimed at a missing ticket or column
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("no %s found", e.Kind)
	}
	return fmt.Sprintf("%s #%d not found", e.Kind, e.ID)
}

// PersistenceError wraps a failure of the underlying store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// wrap classifies store errors. Domain errors pass through untouched.
func wrap(op string, err error) error {
	if err == nil || IsValidation(err) || IsNotFound(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
