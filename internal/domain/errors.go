package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by stores, services and handlers
var (
	ErrNotFound            = errors.New("not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Entity names used in not-found messages
const (
	EntityGene    = "Gene"
	EntityVariant = "Variant"
	EntityReport  = "Report"
)

// NotFoundError reports that a referenced or requested entity does not exist
type NotFoundError struct {
	Entity string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the named entity
func NewNotFoundError(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// UpstreamError reports that the clinic service could not be reached
type UpstreamError struct {
	Service string
	Err     error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Error contacting %s service: %v", e.Service, e.Err)
}

// Unwrap returns the underlying transport error
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUpstreamUnavailable) match any UpstreamError
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// ValidationError represents a single invalid input field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ValidationErrors collects every invalid field of a payload, keyed by field name
type ValidationErrors struct {
	Fields map[string][]string
}

// NewValidationErrors creates an empty collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Fields: make(map[string][]string)}
}

// Add records a message for a field
func (e *ValidationErrors) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// AddError records a ValidationError
func (e *ValidationErrors) AddError(err *ValidationError) {
	e.Add(err.Field, err.Message)
}

// Has reports whether a field already has an error
func (e *ValidationErrors) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Empty reports whether no field failed
func (e *ValidationErrors) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when empty so callers can return it directly
func (e *ValidationErrors) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], "; ")))
	}
	return "invalid payload: " + strings.Join(parts, ", ")
}

// ConstraintError reports that the store rejected a write
type ConstraintError struct {
	Field      string
	Constraint string
	Err        error
}

// Error implements the error interface
func (e *ConstraintError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("constraint %s violated on %s: %v", e.Constraint, e.Field, e.Err)
}

// Unwrap returns the driver error
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// FieldErrors renders the rejection in the same shape as ValidationErrors
func (e *ConstraintError) FieldErrors() map[string][]string {
	field := e.Field
	if field == "" {
		field = "non_field_errors"
	}
	return map[string][]string{field: {"value rejected by the store (" + e.Constraint + ")"}}
}
