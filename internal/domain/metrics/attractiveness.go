package metrics

import (
	"math"

	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/nuclide"
)

// Charlton utility functions, one per proliferation-resistance attribute.

// U1 rates the quantity of weapons-usable material. The Pu+U233 and U235
// inventories are bracketed separately and the lower utility wins.
func U1(m *material.Material) float64 {
	var puU233, u235 float64
	for _, n := range m.Nuclides() {
		if n.IsFissionProduct() {
			continue
		}
		switch {
		case n.Z == 94, n.Z == 92 && n.A == 233:
			puU233 += n.Mass
		case n.Z == 92 && n.A == 235:
			u235 += n.Mass
		}
	}
	return math.Min(
		bracket(puU233, 0.4, 2, 6),
		bracket(u235, 2, 6, 20),
	)
}

func bracket(kg, t1, t2, t3 float64) float64 {
	switch {
	case kg < t1:
		return 0.45
	case kg < t2:
		return 0.35
	case kg < t3:
		return 0.25
	default:
		return 0.15
	}
}

// U2 rates the plutonium decay heat, W/kg of Pu. Undefined without Pu.
func (e *Engine) U2(m *material.Material) (float64, bool) {
	isPu := func(n nuclide.Nuclide) bool { return n.Z == 94 }
	x, ok := perKg(weighted(m, e.coeffs.Heat, isPu), m.MassWhere(plutonium))
	if !ok {
		return 0, false
	}
	return 1 - math.Exp(-3*math.Pow(x/570, 0.8)), true
}

// U3 rates the even-mass plutonium fraction. A material without Pu scores 0.
func U3(m *material.Material) float64 {
	var x float64
	if pu := m.MassWhere(plutonium); pu > 0 {
		x = m.MassWhere(func(n nuclide.Nuclide) bool {
			return plutonium(n) && n.A%2 == 0
		}) / pu
	}
	return 1 - math.Exp(-3.5*math.Pow(x, 1.8))
}

// U4 rates the dilution of significant quantities in the bulk material.
// Undefined for a massless material.
func U4(m *material.Material) (float64, bool) {
	mass := m.Mass()
	if mass <= 0 {
		return 0, false
	}
	x := 1000 * SignificantQuantities(m) / mass
	if x < 0.01 {
		return 1, true
	}
	return math.Exp(-2.5 * x / 125), true
}

// U5 rates the radiation barrier, the dose rate per significant quantity.
// Undefined when the material holds no significant quantity.
func (e *Engine) U5(m *material.Material) (float64, bool) {
	sq := SignificantQuantities(m)
	if sq <= 0 {
		return 0, false
	}
	return RadiationUtility(100 * e.ExternalDose(m, false) / sq), true
}

// radiationPoints are the breakpoints of the radiation-barrier utility.
var radiationPoints = [...]struct{ x, u float64 }{
	{0.2, 0},
	{5, 0.1},
	{75, 0.5},
	{600, 1},
}

// RadiationUtility maps a dose per significant quantity onto [0, 1],
// linear between breakpoints and flat outside them.
func RadiationUtility(x float64) float64 {
	first, last := radiationPoints[0], radiationPoints[len(radiationPoints)-1]
	if x <= first.x {
		return first.u
	}
	if x >= last.x {
		return last.u
	}
	for i := 1; i < len(radiationPoints); i++ {
		lo, hi := radiationPoints[i-1], radiationPoints[i]
		if x <= hi.x {
			return lo.u + (x-lo.x)*(hi.u-lo.u)/(hi.x-lo.x)
		}
	}
	return last.u
}

// Bathke figures of merit.

var bathkeExponent = 1 / math.Log10(2)

// FOM1 is the Bathke attractiveness figure of merit using minor-actinide
// heat. Undefined when the critical mass or the material mass is undefined.
func (e *Engine) FOM1(m *material.Material) (float64, bool) {
	return e.fom(m, false)
}

// FOM2 extends FOM1 with a spontaneous-neutron term and uses total heat.
func (e *Engine) FOM2(m *material.Material) (float64, bool) {
	return e.fom(m, true)
}

func (e *Engine) fom(m *material.Material, withNeutrons bool) (float64, bool) {
	crit, ok := e.CriticalMass(m)
	if !ok {
		return 0, false
	}
	mass := m.Mass()
	if mass <= 0 {
		return 0, false
	}

	h := e.Heat(m, !withNeutrons) / mass
	// Dose of a fifth of a critical mass at 1 m, converted from Sv to rad.
	var d float64
	if !e.opts.IgnoreDose {
		d = 20 * crit * e.ExternalDose(m, false) / mass
	}

	sum := crit/800 + crit*h/4500 + crit/50*math.Pow(d/500, bathkeExponent)
	if withNeutrons {
		s := e.NeutronRate(m, false) / mass
		sum += crit * s / 6.8e6
	}
	if sum <= 0 {
		return 0, false
	}
	return 1 - math.Log10(sum), true
}

func plutonium(n nuclide.Nuclide) bool {
	return !n.IsFissionProduct() && n.Z == 94
}
