package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every error a service returns matches exactly one of them
// with errors.Is, except ErrInvalidCredentials.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrNotFound      = errors.New("not found")
	ErrStorage       = errors.New("storage error")
	ErrPersistence   = errors.New("persistence error")

	// ErrDuplicate is the validation error raised for unique-key collisions.
	ErrDuplicate = newError(ErrValidation, "already exists")
)

// ErrInvalidCredentials is returned by the login operations.
var ErrInvalidCredentials = errors.New("invalid username or password")

// kindError carries a user-facing message, its kind and an optional cause.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func validationf(format string, args ...interface{}) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...interface{}) error {
	return &kindError{kind: ErrAuthorization, msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// persistence classifies a store error. Duplicate keys become ErrDuplicate,
// missing rows become notFound when given, everything else ErrPersistence.
func persistence(op string, err error, notFound error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &kindError{kind: ErrDuplicate, msg: fmt.Sprintf("failed to %s: already exists", op), cause: err}
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	default:
		return &kindError{kind: ErrPersistence, msg: fmt.Sprintf("failed to %s", op), cause: err}
	}
}

func storageError(op string, err error) error {
	return &kindError{kind: ErrStorage, msg: fmt.Sprintf("failed to %s", op), cause: err}
}
