package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a document is not stored.
	ErrNotFound = errors.New("document not found")
)
