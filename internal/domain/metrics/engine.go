package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/nuclide"
)

// DensityModel selects the density term of the critical-mass formula.
type DensityModel string

const (
	// DensityFixed uses FixedDensity for every material.
	DensityFixed DensityModel = "fixed"
	// DensityFromComposition uses the material's mass over its volume.
	DensityFromComposition DensityModel = "composition"
)

// DefaultFixedDensity is the metal density used by DensityFixed, g/cm3.
const DefaultFixedDensity = 19.8

// ParseDensityModel validates a density model name. Empty selects DensityFixed.
func ParseDensityModel(s string) (DensityModel, error) {
	switch DensityModel(strings.ToLower(strings.TrimSpace(s))) {
	case "", DensityFixed:
		return DensityFixed, nil
	case DensityFromComposition:
		return DensityFromComposition, nil
	default:
		return "", fmt.Errorf("unknown density model %q", s)
	}
}

// Options tunes the engine.
type Options struct {
	// IgnoreDose zeroes the dose term of the Bathke figures of merit.
	IgnoreDose bool
	Density    DensityModel
	// FixedDensity overrides DefaultFixedDensity, g/cm3.
	FixedDensity float64
}

// Engine evaluates derived metrics of materials. It is safe for concurrent
// use; it never modifies the materials it reads.
type Engine struct {
	coeffs *Coefficients
	opts   Options
}

// NewEngine creates an engine over coefficient tables.
func NewEngine(coeffs *Coefficients, opts Options) *Engine {
	if opts.Density == "" {
		opts.Density = DensityFixed
	}
	if opts.FixedDensity <= 0 {
		opts.FixedDensity = DefaultFixedDensity
	}
	return &Engine{coeffs: coeffs, opts: opts}
}

// Options returns the engine options with defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

// Heat returns the decay heat in W.
func (e *Engine) Heat(m *material.Material, maOnly bool) float64 {
	return weighted(m, e.coeffs.Heat, filter(maOnly))
}

// GammaHeat returns the gamma decay heat in W.
func (e *Engine) GammaHeat(m *material.Material, maOnly bool) float64 {
	return weighted(m, e.coeffs.GammaHeat, filter(maOnly))
}

// NeutronRate returns the neutron production rate in n/s.
func (e *Engine) NeutronRate(m *material.Material, maOnly bool) float64 {
	return weighted(m, e.coeffs.Neutron, filter(maOnly))
}

// ExternalDose returns the unshielded dose rate at 1 m in Sv/h.
func (e *Engine) ExternalDose(m *material.Material, maOnly bool) float64 {
	return weighted(m, e.coeffs.Dose, filter(maOnly))
}

// SignificantQuantities returns the IAEA significant-quantity count:
// 8 kg Pu, 25 kg Np-237 or 75 kg U each count as one.
func SignificantQuantities(m *material.Material) float64 {
	var pu, np, u float64
	for _, n := range m.Nuclides() {
		if n.IsFissionProduct() {
			continue
		}
		switch {
		case n.Z == 94:
			pu += n.Mass
		case n.Z == 93 && n.A == 237 && !n.Meta:
			np += n.Mass
		case n.Z == 92:
			u += n.Mass
		}
	}
	return pu/8 + np/25 + u/75
}

// CriticalMass returns the one-group bare-sphere critical mass in kg. It is
// undefined unless the region has reaction rates with nu-sigma-f strictly
// above sigma-a and a positive diffusion coefficient.
func (e *Engine) CriticalMass(m *material.Material) (float64, bool) {
	r := m.Rates
	if r == nil || r.Diffusion <= 0 || !(r.NuSigmaF > r.SigmaA) {
		return 0, false
	}
	// The flux cancels between numerator and denominator.
	radius := math.Pi * math.Sqrt(r.Diffusion/(r.NuSigmaF-r.SigmaA))
	volume := 4.0 / 3.0 * math.Pi * radius * radius * radius

	switch e.opts.Density {
	case DensityFromComposition:
		if m.Volume == nil || *m.Volume <= 0 {
			return 0, false
		}
		return volume * m.Mass() / *m.Volume, true
	default:
		return volume * e.opts.FixedDensity * 1e-3, true
	}
}

func filter(maOnly bool) func(nuclide.Nuclide) bool {
	if maOnly {
		return nuclide.Nuclide.IsMinorActinide
	}
	return nil
}

func weighted(m *material.Material, table map[string]float64, keep func(nuclide.Nuclide) bool) float64 {
	var total float64
	for _, n := range m.Nuclides() {
		if n.IsFissionProduct() || (keep != nil && !keep(n)) {
			continue
		}
		if c, ok := table[strings.ToUpper(n.String())]; ok {
			total += n.Mass * c
		}
	}
	return total
}

func perKg(v, mass float64) (float64, bool) {
	if mass <= 0 {
		return 0, false
	}
	return v / mass, true
}
