// Package errors provides the typed errors returned across GlobalPhone.
//
// Every struct error unwraps to one of the package sentinels, so callers can
// either type-assert for context or use errors.Is against the sentinel.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrUnknownTerritory indicates a territory name that no region declares
	ErrUnknownTerritory = errors.New("unknown territory")
	// ErrUnknownRegion indicates a calling code with no region
	ErrUnknownRegion = errors.New("unknown region")
	// ErrFailedToParse indicates text that could not be parsed as a phone number
	ErrFailedToParse = errors.New("failed to parse number")
	// ErrDecode indicates a database record with an unexpected shape
	ErrDecode = errors.New("decode error")
)

// UnknownTerritoryError is returned when a territory name cannot be resolved.
type UnknownTerritoryError struct {
	Name string
}

func (e *UnknownTerritoryError) Error() string {
	return fmt.Sprintf("unknown territory %q", e.Name)
}

func (e *UnknownTerritoryError) Unwrap() error {
	return ErrUnknownTerritory
}

// UnknownRegionError is returned when a known territory points at a calling
// code that has no region in the database.
type UnknownRegionError struct {
	CountryCode string
	Territory   string
}

func (e *UnknownRegionError) Error() string {
	if e.Territory != "" {
		return fmt.Sprintf("unknown region %q for territory %q", e.CountryCode, e.Territory)
	}
	return fmt.Sprintf("unknown region %q", e.CountryCode)
}

func (e *UnknownRegionError) Unwrap() error {
	return ErrUnknownRegion
}

// ParseNumberError is returned when no national number can be extracted.
type ParseNumberError struct {
	Input  string
	Reason string
}

func (e *ParseNumberError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("failed to parse number %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("failed to parse number %q", e.Input)
}

func (e *ParseNumberError) Unwrap() error {
	return ErrFailedToParse
}

// DecodeError reports a record field whose value has the wrong shape.
// Index is set for positional records, Column for name-keyed ones.
type DecodeError struct {
	Index   int    // Position in a positional record, -1 when not applicable
	Column  string // Field name in a name-keyed record
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	switch {
	case e.Column != "":
		return fmt.Sprintf("decode column %s: %s", e.Column, msg)
	case e.Index >= 0:
		return fmt.Sprintf("decode index %d: %s", e.Index, msg)
	default:
		return fmt.Sprintf("decode: %s", msg)
	}
}

func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDecode
}

// Is lets nested decode errors still match ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "manifest", "region")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "JSON", "XML", "template")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewUnknownTerritory creates an UnknownTerritoryError
func NewUnknownTerritory(name string) *UnknownTerritoryError {
	return &UnknownTerritoryError{Name: name}
}

// NewUnknownRegion creates an UnknownRegionError
func NewUnknownRegion(countryCode, territory string) *UnknownRegionError {
	return &UnknownRegionError{CountryCode: countryCode, Territory: territory}
}

// NewParseNumber creates a ParseNumberError
func NewParseNumber(input, reason string) *ParseNumberError {
	return &ParseNumberError{Input: input, Reason: reason}
}

// NewDecodeIndex creates a DecodeError for a positional record.
func NewDecodeIndex(index int, message string, err error) *DecodeError {
	return &DecodeError{Index: index, Message: message, Err: err}
}

// NewDecodeColumn creates a DecodeError for a name-keyed record.
func NewDecodeColumn(column, message string, err error) *DecodeError {
	return &DecodeError{Index: -1, Column: column, Message: message, Err: err}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// WrapParse creates a ParseError carrying err as its cause.
func WrapParse(format, path string, err error) *ParseError {
	pe := NewParse(format, path, err.Error())
	pe.Err = err
	return pe
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// IsRecoverable reports whether err is one of the three parse-boundary
// failures: unknown territory, unknown region or unparseable text.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownTerritory) ||
		errors.Is(err, ErrUnknownRegion) ||
		errors.Is(err, ErrFailedToParse)
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
