package services

import "errors"

// Expected, user-visible failure categories. Services wrap these with
// fmt.Errorf("%w: ...") and controllers map them to HTTP statuses with
// errors.Is. Anything else is treated as an internal failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
)
