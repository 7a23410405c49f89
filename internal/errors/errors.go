// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrDataNotFound = errors.New("data not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrNoAnnotation = errors.New("no annotation produced")
)

// DataError represents a store-related error.
type DataError struct {
	Operation string
	Key       string
	Err       error
}

func (e *DataError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("data error [%s] %s: %v", e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %v", e.Operation, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(operation, key string, err error) *DataError {
	return &DataError{
		Operation: operation,
		Key:       key,
		Err:       err,
	}
}

// IngestError represents an error from an ingestion source.
type IngestError struct {
	Source string
	Query  string
	Err    error
}

func (e *IngestError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("ingest error [%s] %s: %v", e.Source, e.Query, e.Err)
	}
	return fmt.Sprintf("ingest error [%s]: %v", e.Source, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// NewIngestError creates a new IngestError.
func NewIngestError(source, query string, err error) *IngestError {
	return &IngestError{
		Source: source,
		Query:  query,
		Err:    err,
	}
}

// AnnotationError represents an error from the AI annotation step.
type AnnotationError struct {
	Title    string
	Attempts int
	Err      error
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("annotation error after %d attempts for %q: %v", e.Attempts, e.Title, e.Err)
}

func (e *AnnotationError) Unwrap() error {
	return e.Err
}

// NewAnnotationError creates a new AnnotationError.
func NewAnnotationError(title string, attempts int, err error) *AnnotationError {
	return &AnnotationError{
		Title:    title,
		Attempts: attempts,
		Err:      err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
