package service

import "errors"

// Sentinel errors the handlers translate into HTTP status codes.
// Anything else coming out of a service maps to a 500.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
)
