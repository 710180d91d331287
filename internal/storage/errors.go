package storage

import "errors"

// Errors shared by the memory, postgres and clickhouse implementations.
var (
	// ErrNotFound is returned when a requested record does not exist,
	// including an active-selection lookup before anything was saved.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
