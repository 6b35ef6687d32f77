package domain

import "errors"

var (
	// ErrInvalidInput signals a caller contract violation (selectivity out of
	// range, non-positive server count, a limit below zero).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownField signals a field name that does not exist in the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrNotFound signals a missing catalog entry.
	ErrNotFound = errors.New("not found")
)
