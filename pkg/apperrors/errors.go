package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrMissingColumn = errors.New("missing required column")
	ErrInputShape    = errors.New("unexpected input shape")
	ErrNotConfigured = errors.New("not configured")
)
