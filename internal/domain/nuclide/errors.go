package nuclide

import "errors"

var (
	// ErrInvalidName indicates a nuclide name that does not follow <Element><A>[m].
	ErrInvalidName = errors.New("invalid nuclide name")
	// ErrUnknownElement indicates an element symbol outside the periodic table.
	ErrUnknownElement = errors.New("unknown element")
)
