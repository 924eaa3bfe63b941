package errors

import "errors"

var (
	ErrNotFound  = errors.New("visit request not found")
	ErrInvalidID = errors.New("invalid visit request id")
)
