package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a call id does not resolve to a stored call.
	ErrNotFound = errors.New("service: not found")
	// ErrInvalidSender is returned when a message sender is neither employer nor candidate.
	ErrInvalidSender = errors.New("service: sender must be 'employer' or 'candidate'")
)

// ValidationError captures field level problems with caller input. No write
// happens before validation passes.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.FieldErrors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// StorageError wraps a failure of the underlying document store. Callers
// are expected to retry on their own schedule.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrorKind maps service errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidSender):
		return "invalid_sender"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var sErr *StorageError
	if errors.As(err, &sErr) {
		return "storage"
	}
	return "unexpected"
}

// errNoChange aborts an update whose outcome equals the stored state
var errNoChange = errors.New("no change")

// mapRepoError keeps service errors raised inside an update and wraps
// everything else as a storage failure
func mapRepoError(op string, err error) error {
	if err == nil || errors.Is(err, errNoChange) {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
