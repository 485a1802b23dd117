package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for decoding failures.
var (
	ErrInvalidDocument = errors.New("invalid JSON document")
	ErrMissingField    = errors.New("missing required field")
)

// MissingFieldError reports the first required key absent from a record.
type MissingFieldError struct {
	Record string // record kind, e.g. "product"
	ID     string // record key when known
	Field  string // dotted path of the missing key
}

func (e *MissingFieldError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("domain: %s: %s: %s", e.Record, ErrMissingField, e.Field)
	}
	return fmt.Sprintf("domain: %s %q: %s: %s", e.Record, e.ID, ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// NewMissingFieldError creates a MissingFieldError.
func NewMissingFieldError(record, id, field string) *MissingFieldError {
	return &MissingFieldError{Record: record, ID: id, Field: field}
}
