package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation")      // 400
	ErrUnauthenticated = errors.New("unauthenticated") // 401
	ErrForbidden       = errors.New("forbidden")       // 403
	ErrNotFound        = errors.New("not found")       // 404
)

// Error carries a client-facing message and unwraps to one of the sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}
