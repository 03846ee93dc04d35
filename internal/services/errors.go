package services

import (
	"errors"
	"fmt"
)

// ErrDatabase wraps unexpected store failures. Handlers answer 500 for it.
var ErrDatabase = errors.New("database error")

// ValidationError is a caller-correctable business-rule violation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// UnauthorizedError reports signature or ownership failures.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

func unauthorized(msg string) error {
	return &UnauthorizedError{Message: msg}
}

func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrDatabase, err)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsUnauthorized(err error) bool {
	var u *UnauthorizedError
	return errors.As(err, &u)
}
