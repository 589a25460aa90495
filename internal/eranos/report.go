package eranos

import (
	"fmt"

	"github.com/rpggio/burnup/internal/domain/cycle"
)

// CoolingMode selects how the cooling node of each cycle is sized.
type CoolingMode uint8

const (
	// CoolingNone means cycles have no cooling node.
	CoolingNone CoolingMode = iota
	// CoolingFixed uses the same duration for every cycle.
	CoolingFixed
	// CoolingAuto scales with each cycle's irradiation time.
	CoolingAuto
)

func (m CoolingMode) String() string {
	switch m {
	case CoolingNone:
		return "none"
	case CoolingFixed:
		return "fixed"
	case CoolingAuto:
		return "auto"
	default:
		return fmt.Sprintf("cooling(%d)", uint8(m))
	}
}

// MarshalText encodes the mode by name.
func (m CoolingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *CoolingMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*m = CoolingNone
	case "fixed":
		*m = CoolingFixed
	case "auto":
		*m = CoolingAuto
	default:
		return fmt.Errorf("unknown cooling mode %q", text)
	}
	return nil
}

// CoolingPolicy is the cooling declaration of a report.
type CoolingPolicy struct {
	Mode     CoolingMode `json:"mode"`
	Duration float64     `json:"duration,omitempty"`
	Fraction float64     `json:"fraction,omitempty"`
}

// For returns the cooling duration of a cycle.
func (p CoolingPolicy) For(timestep float64, iterations int) float64 {
	switch p.Mode {
	case CoolingFixed:
		return p.Duration
	case CoolingAuto:
		return p.Fraction * timestep * float64(iterations)
	default:
		return 0
	}
}

// Report is the result of ingesting one ERANOS output file.
type Report struct {
	// Regions lists the fuel regions in declaration order, followed by the
	// blanket when one is declared.
	Regions []string
	Blanket bool
	Cooling CoolingPolicy
	Cycles  []*cycle.Cycle
	// Trailing holds end-of-run cross sections, when the report has them.
	Trailing *cycle.Cycle
	Warnings []string
}

// FuelRegions returns the regions other than the blanket.
func (r *Report) FuelRegions() []string {
	out := make([]string, 0, len(r.Regions))
	for _, name := range r.Regions {
		if name != cycle.BlanketRegion {
			out = append(out, name)
		}
	}
	return out
}

// Cycle returns the cycle with index n.
func (r *Report) Cycle(n int) (*cycle.Cycle, bool) {
	for _, c := range r.Cycles {
		if c.N == n {
			return c, true
		}
	}
	return nil, false
}
