package errors

import "errors"

var (
	ErrNotFound  = errors.New("time slot not found")
	ErrInvalidID = errors.New("invalid time slot id")
)
