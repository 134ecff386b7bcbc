package services

import (
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"gorm.io/gorm"
)

// Error kinds returned by every service; controllers map them to HTTP statuses
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain failure carrying a stable API code
type Error struct {
	Kind    error
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func validationError(code, message string) *Error {
	return newError(ErrValidation, code, message)
}

func notFoundError(code, message string) *Error {
	return newError(ErrNotFound, code, message)
}

func conflictError(code, message string) *Error {
	return newError(ErrConflict, code, message)
}

// notFoundOr converts gorm's missing-row error into a NotFound domain error
func notFoundOr(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(code, message)
	}
	return err
}

// errInvalidCredentials is shared by every login failure so callers cannot tell them apart
var errInvalidCredentials = newError(ErrUnauthorized, models.ErrInvalidCredentials, "invalid username or password")
