package models

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation error")
	ErrRemoteFailure = errors.New("remote failure")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Error carries a human readable message for one of the sentinel kinds above.
// errors.Is(err, Kind) holds for it.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an *Error of the given kind.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}
