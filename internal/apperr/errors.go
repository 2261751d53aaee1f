// Package apperr defines the error taxonomy shared by the migration pipeline.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrParse             = errors.New("library parse failed")
	ErrValidation        = errors.New("library validation failed")
	ErrMigration         = errors.New("library migration failed")
	ErrMalformedRule     = errors.New("malformed replacement rule")
	ErrUnsupportedOutput = errors.New("unsupported output type")
	ErrLocked            = errors.New("output is locked by another migration")
)

// InputError reports a boundary precondition that failed before the pipeline ran.
type InputError struct {
	Property string
	Reason   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("Error in %q input property. %s", e.Property, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// ParseError wraps a codec failure.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse library: %v", e.Cause)
}

// Is matches ErrParse so callers can test the category without unwrapping twice.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Cause }

// PathError is a single schema violation tagged with the field path that led to it.
type PathError struct {
	Message string
	Path    []string
}

func (e PathError) Error() string {
	return e.Message + "\nParse tree: " + strings.Join(e.Path, " > ")
}

// ValidationErrors aggregates every violation found in one traversal.
type ValidationErrors struct {
	Errors []PathError
}

func (e *ValidationErrors) Error() string {
	lines := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		lines[i] = pe.Error()
	}
	return "\n" + strings.Join(lines, "\n")
}

func (e *ValidationErrors) Unwrap() error { return ErrValidation }

// MigrationError lists every problem found while rewriting locations.
type MigrationError struct {
	Lines []string
}

func (e *MigrationError) Error() string {
	return "\n" + strings.Join(e.Lines, "\n")
}

func (e *MigrationError) Unwrap() error { return ErrMigration }
