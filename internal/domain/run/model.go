package run

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/eranos"
)

// Run is one persisted report ingestion.
type Run struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	SourcePath string               `json:"source_path"`
	Regions    []string             `json:"regions"`
	Blanket    bool                 `json:"blanket"`
	Cooling    eranos.CoolingPolicy `json:"cooling"`
	Cycles     int                  `json:"cycles"`
	// Trailing is the index of the end-of-run cross-section cycle, zero when
	// the report has none.
	Trailing  int       `json:"trailing,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RunSummary is a lightweight representation for listing.
type RunSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path"`
	Cycles     int       `json:"cycles"`
	Warnings   int       `json:"warnings"`
	CreatedAt  time.Time `json:"created_at"`
}

// Slots addressing the mass-balance materials of a cycle.
const (
	SlotCharge    = "charge"
	SlotDischarge = "discharge"
)

// MaterialRef addresses a material of a run. Region may name a balance slot,
// in which case Node is ignored.
type MaterialRef struct {
	Cycle  int    `json:"cycle"`
	Node   int    `json:"node"`
	Region string `json:"region"`
}

func (r MaterialRef) String() string {
	if slot, ok := r.slot(); ok {
		return fmt.Sprintf("cycle %d %s", r.Cycle, slot)
	}
	return fmt.Sprintf("cycle %d node %d region %s", r.Cycle, r.Node, r.Region)
}

func (r MaterialRef) slot() (string, bool) {
	switch strings.ToLower(r.Region) {
	case SlotCharge:
		return SlotCharge, true
	case SlotDischarge:
		return SlotDischarge, true
	}
	return "", false
}

// Resolve returns the referenced material of c.
func (r MaterialRef) Resolve(c *cycle.Cycle) (*material.Material, error) {
	var m *material.Material
	if slot, ok := r.slot(); ok {
		if slot == SlotCharge {
			m = c.Charge
		} else {
			m = c.Discharge
		}
	} else {
		m, _ = c.Material(r.Node, r.Region)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMaterialNotFound, r)
	}
	return m, nil
}

// CycleSummary describes the timeline and feed accounting of a cycle.
type CycleSummary struct {
	N              int                         `json:"n"`
	Timestep       float64                     `json:"timestep"`
	Iterations     int                         `json:"iterations"`
	Cooling        float64                     `json:"cooling"`
	Times          []float64                   `json:"times"`
	Regions        []string                    `json:"regions"`
	RequiredFeed   float64                     `json:"required_feed"`
	UraniumAdded   float64                     `json:"uranium_added"`
	ExcessActinide float64                     `json:"excess_actinide"`
	Regime         cycle.FeedRegime            `json:"regime"`
	Consistent     bool                        `json:"regime_consistent"`
	Regimes        map[string]cycle.FeedRegime `json:"regimes,omitempty"`
}

// SummarizeCycle builds the summary of c.
func SummarizeCycle(c *cycle.Cycle) CycleSummary {
	regime, consistent := c.Regime()
	return CycleSummary{
		N:              c.N,
		Timestep:       c.Timestep,
		Iterations:     c.Iterations,
		Cooling:        c.Cooling,
		Times:          c.Times(),
		Regions:        c.MaterialNames(),
		RequiredFeed:   c.RequiredFeed,
		UraniumAdded:   c.TotalUraniumAdded(),
		ExcessActinide: c.TotalExcess(),
		Regime:         regime,
		Consistent:     consistent,
		Regimes:        c.Regimes,
	}
}

// NuclideMass is one entry of a composition.
type NuclideMass struct {
	Name string  `json:"name"`
	Z    int     `json:"z"`
	A    int     `json:"a"`
	Mass float64 `json:"mass"`
}

// Composition is the serializable view of a material.
type Composition struct {
	Mass         float64         `json:"mass"`
	ActinideMass float64         `json:"actinide_mass"`
	FissileMass  float64         `json:"fissile_mass"`
	Volume       *float64        `json:"volume,omitempty"`
	Rates        *material.Rates `json:"rates,omitempty"`
	Nuclides     []NuclideMass   `json:"nuclides"`
}

// NewComposition builds the view of m.
func NewComposition(m *material.Material) Composition {
	c := Composition{
		Mass:         m.Mass(),
		ActinideMass: m.ActinideMass(),
		FissileMass:  m.FissileMass(),
		Volume:       m.Volume,
		Rates:        m.Rates,
		Nuclides:     make([]NuclideMass, 0, m.Len()),
	}
	for _, n := range m.Nuclides() {
		c.Nuclides = append(c.Nuclides, NuclideMass{Name: n.Name, Z: n.Z, A: n.A, Mass: n.Mass})
	}
	return c
}

// Balance is the charge/discharge accounting of a cycle.
type Balance struct {
	Cycle          int                `json:"cycle"`
	RequiredFeed   float64            `json:"required_feed"`
	UraniumAdded   map[string]float64 `json:"uranium_added,omitempty"`
	ExcessActinide map[string]float64 `json:"excess_actinide,omitempty"`
	Regime         cycle.FeedRegime   `json:"regime"`
	Consistent     bool               `json:"regime_consistent"`
	Charge         *Composition       `json:"charge,omitempty"`
	Discharge      *Composition       `json:"discharge,omitempty"`
}
