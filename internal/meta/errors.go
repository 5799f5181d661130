package meta

import (
	"errors"
	"fmt"
)

// MetaError represents a failure detected while building or using property
// metadata.
//
// Metadata errors include:
//   - Conflict: ambiguous accessor resolution for a property
//   - Construction unsupported: no way to default-construct a type
//   - Property not found: no resolved getter/setter for a requested name
//   - Unsupported type: metadata requested for a non-struct type
//   - Assignment failed: a value could not be written to a property
//
// Conflict and construction errors indicate a defect in the shape of the
// caller's types; they are raised at build time and never retried.
type MetaError struct {
	// Code identifies the error category.
	Code MetaErrorCode

	// Message is a human-readable description.
	Message string

	// Type names the affected Go type.
	Type string

	// Property names the affected property (for conflict/not-found errors).
	Property string
}

// MetaErrorCode categorizes metadata errors.
type MetaErrorCode string

const (
	// ErrCodeMetadataConflict indicates ambiguous accessor resolution.
	ErrCodeMetadataConflict MetaErrorCode = "METADATA_CONFLICT"

	// ErrCodeConstructionUnsupported indicates a type that cannot be
	// default-constructed.
	ErrCodeConstructionUnsupported MetaErrorCode = "CONSTRUCTION_UNSUPPORTED"

	// ErrCodePropertyNotFound indicates no resolved accessor for a name.
	ErrCodePropertyNotFound MetaErrorCode = "PROPERTY_NOT_FOUND"

	// ErrCodeUnsupportedType indicates metadata was requested for a type
	// that has no property structure (non-struct, nil).
	ErrCodeUnsupportedType MetaErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeAssignmentFailed indicates a value could not be written to a
	// property: the field is not settable or the value's type does not fit.
	ErrCodeAssignmentFailed MetaErrorCode = "ASSIGNMENT_FAILED"
)

// Error implements the error interface.
func (e *MetaError) Error() string {
	switch {
	case e.Type != "" && e.Property != "":
		return fmt.Sprintf("%s: %s (type=%s, property=%s)", e.Code, e.Message, e.Type, e.Property)
	case e.Type != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsConflictError returns true if the error is a metadata-conflict error.
// Uses errors.As to handle wrapped errors.
func IsConflictError(err error) bool {
	var me *MetaError
	if errors.As(err, &me) {
		return me.Code == ErrCodeMetadataConflict
	}
	return false
}

// IsConstructionError returns true if the error is a construction-unsupported
// error. Uses errors.As to handle wrapped errors.
func IsConstructionError(err error) bool {
	var me *MetaError
	if errors.As(err, &me) {
		return me.Code == ErrCodeConstructionUnsupported
	}
	return false
}

// IsPropertyNotFound returns true if the error is a property-not-found error.
// Uses errors.As to handle wrapped errors.
func IsPropertyNotFound(err error) bool {
	var me *MetaError
	if errors.As(err, &me) {
		return me.Code == ErrCodePropertyNotFound
	}
	return false
}

// newConflictError creates a MetaError for ambiguous accessor resolution.
func newConflictError(typeName, property, message string) *MetaError {
	return &MetaError{
		Code:     ErrCodeMetadataConflict,
		Message:  message,
		Type:     typeName,
		Property: property,
	}
}

// IsAssignmentError returns true if the error is an assignment-failed error.
// Uses errors.As to handle wrapped errors.
func IsAssignmentError(err error) bool {
	var me *MetaError
	if errors.As(err, &me) {
		return me.Code == ErrCodeAssignmentFailed
	}
	return false
}

// newAssignmentError creates a MetaError for a failed property write.
func newAssignmentError(message string) *MetaError {
	return &MetaError{
		Code:    ErrCodeAssignmentFailed,
		Message: message,
	}
}

// newPropertyNotFoundError creates a MetaError for an unresolved name.
func newPropertyNotFoundError(typeName, property string) *MetaError {
	return &MetaError{
		Code:     ErrCodePropertyNotFound,
		Message:  "no resolved accessor for property",
		Type:     typeName,
		Property: property,
	}
}
