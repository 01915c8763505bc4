package triage

import "errors"

var (
	// ErrValidation marks malformed input to a pure function. Never retried.
	ErrValidation = errors.New("validation failed")
)
