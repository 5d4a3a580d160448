package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrValidation = errors.New("validation failed")

// ValidationError reports which input fields were rejected and why.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RemoteWriteError is returned when an insert into the data service fails.
type RemoteWriteError struct {
	Table string
	Err   error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Table, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}
