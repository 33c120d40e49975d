// Package apperr defines the error taxonomy shared by the catalog, loader and pipeline.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidPath = errors.New("invalid path")
	ErrDiscovery   = errors.New("no data available")
	ErrSchema      = errors.New("schema error")
	ErrParse       = errors.New("parse error")
	ErrNoSelection = errors.New("no selection")
)

// DiscoveryError reports a data root or project directory that is missing or unreadable.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("discovery: %s", e.Path)
	}
	return fmt.Sprintf("discovery: %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Is matches ErrDiscovery.
func (e *DiscoveryError) Is(target error) bool { return target == ErrDiscovery }

// SchemaError reports a result file missing a required column.
type SchemaError struct {
	Column string
	Path   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s: missing column %q", e.Path, e.Column)
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ParseError reports a result file that is not valid tabular data.
// Line is 1-based and zero when the failure is not tied to a row.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsLoadFailure reports whether err means a single result file could not be loaded.
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrSchema) || errors.Is(err, ErrParse)
}
