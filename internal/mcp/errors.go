package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/burnup/internal/domain/nuclide"
	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/domain/yield"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/rpggio/burnup/internal/repository"
	"github.com/rpggio/burnup/internal/scan"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// with no code.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var (
		anchorErr *scan.AnchorError
		parseErr  *eranos.ParseError
	)
	switch {
	case errors.Is(err, run.ErrRunNotFound):
		return &APIError{Code: "RUN_NOT_FOUND", Message: "run not found", RecoveryHint: "Call list_runs for valid IDs"}
	case errors.Is(err, run.ErrCycleNotFound):
		return &APIError{Code: "CYCLE_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_cycles for valid indices"}
	case errors.Is(err, run.ErrMaterialNotFound):
		return &APIError{Code: "MATERIAL_NOT_FOUND", Message: err.Error(), RecoveryHint: "Use a region of the run, or charge/discharge"}
	case errors.Is(err, run.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.As(err, &anchorErr):
		return &APIError{Code: "MALFORMED_REPORT", Message: err.Error(), Details: anchorErr.From}
	case errors.As(err, &parseErr):
		return &APIError{Code: "MALFORMED_REPORT", Message: err.Error(), Details: map[string]any{"line": parseErr.Line, "field": parseErr.Field}}
	case errors.Is(err, eranos.ErrNoRegions), errors.Is(err, eranos.ErrNoCycles), errors.Is(err, eranos.ErrMissingRegion):
		return &APIError{Code: "MALFORMED_REPORT", Message: err.Error()}
	case errors.Is(err, eranos.ErrNoYieldTable):
		return &APIError{Code: "NO_YIELD_TABLE", Message: err.Error(), RecoveryHint: "Configure ingest.yield_table"}
	case errors.Is(err, yield.ErrUnknownIsotope):
		return &APIError{Code: "UNKNOWN_FISSIONING_ISOTOPE", Message: err.Error(), RecoveryHint: "Use a yield table with a column for this isotope"}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "MALFORMED_REPORT", Message: err.Error(), RecoveryHint: "Each cycle index may be declared once"}
	case errors.Is(err, nuclide.ErrInvalidName), errors.Is(err, nuclide.ErrUnknownElement):
		return &APIError{Code: "INVALID_NUCLIDE", Message: err.Error()}
	default:
		return nil
	}
}

// toolError returns the coded form of err when one exists.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
