package metrics

import "github.com/rpggio/burnup/internal/domain/material"

// Summary is the full metrics surface of one material. Undefined values are
// nil and encode as JSON null.
type Summary struct {
	Mass         float64  `json:"mass"`
	ActinideMass float64  `json:"actinide_mass"`
	FissileMass  float64  `json:"fissile_mass"`
	FissileRatio *float64 `json:"fissile_ratio"`
	Volume       *float64 `json:"volume"`

	Heat           float64  `json:"heat"`
	HeatMA         float64  `json:"heat_ma"`
	HeatPerKg      *float64 `json:"heat_per_kg"`
	GammaHeat      float64  `json:"gamma_heat"`
	GammaHeatMA    float64  `json:"gamma_heat_ma"`
	GammaHeatPerKg *float64 `json:"gamma_heat_per_kg"`
	Neutron        float64  `json:"neutron"`
	NeutronMA      float64  `json:"neutron_ma"`
	NeutronPerKg   *float64 `json:"neutron_per_kg"`
	Dose           float64  `json:"dose"`
	DoseMA         float64  `json:"dose_ma"`
	DosePerKg      *float64 `json:"dose_per_kg"`

	SignificantQuantities float64  `json:"significant_quantities"`
	CriticalMass          *float64 `json:"critical_mass"`

	U1 float64  `json:"u1"`
	U2 *float64 `json:"u2"`
	U3 float64  `json:"u3"`
	U4 *float64 `json:"u4"`
	U5 *float64 `json:"u5"`

	FOM1 *float64 `json:"fom1"`
	FOM2 *float64 `json:"fom2"`
}

// Summarize evaluates every metric of m.
func (e *Engine) Summarize(m *material.Material) Summary {
	mass := m.Mass()
	s := Summary{
		Mass:         mass,
		ActinideMass: m.ActinideMass(),
		FissileMass:  m.FissileMass(),
		Volume:       m.Volume,

		Heat:        e.Heat(m, false),
		HeatMA:      e.Heat(m, true),
		GammaHeat:   e.GammaHeat(m, false),
		GammaHeatMA: e.GammaHeat(m, true),
		Neutron:     e.NeutronRate(m, false),
		NeutronMA:   e.NeutronRate(m, true),
		Dose:        e.ExternalDose(m, false),
		DoseMA:      e.ExternalDose(m, true),

		SignificantQuantities: SignificantQuantities(m),
		U1:                    U1(m),
		U3:                    U3(m),
	}
	s.FissileRatio = optional(perKg(s.FissileMass, s.ActinideMass))
	s.HeatPerKg = optional(perKg(s.Heat, mass))
	s.GammaHeatPerKg = optional(perKg(s.GammaHeat, mass))
	s.NeutronPerKg = optional(perKg(s.Neutron, mass))
	s.DosePerKg = optional(perKg(s.Dose, mass))
	s.CriticalMass = optional(e.CriticalMass(m))
	s.U2 = optional(e.U2(m))
	s.U4 = optional(U4(m))
	s.U5 = optional(e.U5(m))
	s.FOM1 = optional(e.FOM1(m))
	s.FOM2 = optional(e.FOM2(m))
	return s
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
