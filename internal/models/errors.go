package models

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable classification of an engine error.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindInvalidVIN    ErrorKind = "invalid_vin"
)

// Error is a structured engine error carrying a machine-readable kind and a
// human message. Validation errors abort processing of the offending record
// only; InvalidVIN is advisory and callers decide whether to reject or flag.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError creates a validation error for a malformed input value.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewConfigurationError creates an error for a structurally invalid geofence
// or notification configuration.
func NewConfigurationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidVINError creates an advisory VIN checksum/format error.
func NewInvalidVINError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidVIN, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an engine Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
