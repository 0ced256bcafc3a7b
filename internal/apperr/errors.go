package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrSourceUnavailable = errors.New("snapshot source unavailable")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
