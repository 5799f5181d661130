package config

import (
	"errors"
	"fmt"
)

// Configuration error codes.
const (
	ErrCodeInvalidYAML        = "INVALID_YAML"
	ErrCodeSchemaViolation    = "SCHEMA_VIOLATION"
	ErrCodeDuplicateStatement = "DUPLICATE_STATEMENT"
	ErrCodeUnknownResultType  = "UNKNOWN_RESULT_TYPE"
	ErrCodeTemplate           = "TEMPLATE_ERROR"
	ErrCodeUnknownStatement   = "UNKNOWN_STATEMENT"
)

// ConfigError describes a statement-set configuration problem.
type ConfigError struct {
	Code    string
	Message string
	// Path locates the offending element (e.g. "statements[2].sql").
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ConfigError) Unwrap() error { return e.Err }

// IsSchemaViolation reports whether err is a schema validation failure.
func IsSchemaViolation(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeSchemaViolation
}

// IsDuplicateStatement reports whether err is a duplicate statement ID.
func IsDuplicateStatement(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeDuplicateStatement
}

// IsUnknownStatement reports whether err is a lookup of an unknown
// statement ID.
func IsUnknownStatement(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnknownStatement
}
