package run

import "errors"

var (
	// ErrRunNotFound indicates the run doesn't exist.
	ErrRunNotFound = errors.New("run not found")
	// ErrCycleNotFound indicates the run has no cycle with the given index.
	ErrCycleNotFound = errors.New("cycle not found")
	// ErrMaterialNotFound indicates the cycle has no material at the reference.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrInvalidInput indicates invalid run input.
	ErrInvalidInput = errors.New("invalid run input")
)
