package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error carries a code for the client and, optionally, the underlying cause for the logs.
type Error struct {
	Code Code
	Err  error
}

func New(code Code) *Error {
	return &Error{Code: code}
}

func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Code.Message())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so callers can write errors.Is(err, apperr.New(code)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// From converts any error into an *Error. Missing gorm records become ErrNotFound,
// everything unknown becomes ErrUnknown.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(ErrNotFound, err)
	}

	return Wrap(ErrUnknown, err)
}

// NotFoundAs replaces a gorm not-found error with the given code and passes other errors through.
func NotFoundAs(err error, code Code) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(code, err)
	}
	return err
}
