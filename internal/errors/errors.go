package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrFacetNotFound is returned when a filtered field has no facet definition
	ErrFacetNotFound = errors.New("facet definition not found")

	// ErrUnsupportedFacetType is returned when a facet type has no DSL shape for the requested operation
	ErrUnsupportedFacetType = errors.New("unsupported facet type")

	// ErrMalformedResponse is returned when a raw engine response cannot be mapped
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport is returned when the search endpoint could not be reached or answered with an error
	ErrTransport = errors.New("transport failure")
)

// FacetNotFoundError represents a filter on a field that has no facet definition
type FacetNotFoundError struct {
	Field string
}

func (e *FacetNotFoundError) Error() string {
	return fmt.Sprintf("no facet definition for filtered field '%s'", e.Field)
}

func (e *FacetNotFoundError) Is(target error) bool {
	return target == ErrFacetNotFound
}

// NewFacetNotFoundError creates a new FacetNotFoundError
func NewFacetNotFoundError(field string) *FacetNotFoundError {
	return &FacetNotFoundError{Field: field}
}

// UnsupportedFacetTypeError represents a facet type that cannot be compiled
type UnsupportedFacetTypeError struct {
	Field string
	Type  string
}

func (e *UnsupportedFacetTypeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unsupported facet type '%s' for field '%s'", e.Type, e.Field)
	}
	return fmt.Sprintf("unsupported facet type '%s'", e.Type)
}

func (e *UnsupportedFacetTypeError) Is(target error) bool {
	return target == ErrUnsupportedFacetType
}

// NewUnsupportedFacetTypeError creates a new UnsupportedFacetTypeError
func NewUnsupportedFacetTypeError(facetType string, field ...string) *UnsupportedFacetTypeError {
	err := &UnsupportedFacetTypeError{Type: facetType}
	if len(field) > 0 {
		err.Field = field[0]
	}
	return err
}

// MalformedResponseError represents a raw engine response missing required structure
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NewMalformedResponseError creates a new MalformedResponseError
func NewMalformedResponseError(reason string, cause ...error) *MalformedResponseError {
	err := &MalformedResponseError{Reason: reason}
	if len(cause) > 0 {
		err.Err = cause[0]
	}
	return err
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransportError represents a failed round trip to the search endpoint
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to '%s' failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to '%s' returned status %d", e.URL, e.Status)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(url string, status int, cause error) *TransportError {
	return &TransportError{URL: url, Status: status, Err: cause}
}
