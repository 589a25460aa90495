package eranos

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRegions indicates a region list without any fuel region.
	ErrNoRegions = errors.New("no fuel regions declared")
	// ErrNoCycles indicates a report without a complete cycle declaration.
	ErrNoCycles = errors.New("no cycles declared")
	// ErrMissingRegion indicates a time node that lacks a declared region.
	ErrMissingRegion = errors.New("region missing from time node")
	// ErrNoYieldTable indicates lumped fission products with no table to
	// expand them.
	ErrNoYieldTable = errors.New("no yield table loaded")
)

// ParseError reports a line whose fields could not be interpreted.
type ParseError struct {
	Line  int
	Text  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %v: %q", e.Line, e.Field, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
