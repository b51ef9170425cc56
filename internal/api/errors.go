package api

import "errors"

// Outcome errors shared by the city store, service and handlers.
// Callers match them with errors.Is; they are expected, recoverable results.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateName = errors.New("record already exists")
	ErrValidation    = errors.New("validation failed")
)
