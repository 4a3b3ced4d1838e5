package domain

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyEnabled = errors.New("slow mode already enabled")
	ErrNotEnabled     = errors.New("slow mode not enabled")
	ErrWriteFailed    = errors.New("write failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrDirectRoom     = errors.New("direct room not supported")
)
