package metrics_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/stretchr/testify/require"
)

const testCoefficients = `
[heat]
PU238 = 570.0
PU239 = 2.0
AM241 = 110.0
CS137 = 400.0

[gamma_heat]
CS137 = 290.0

[neutron]
PU240 = 1.0e6
CM244 = 1.0e10

[dose]
CS137 = 330.0
AM241 = 0.006
`

func newEngine(t *testing.T, opts metrics.Options) *metrics.Engine {
	t.Helper()
	coeffs, err := metrics.LoadCoefficients(strings.NewReader(testCoefficients))
	require.NoError(t, err)
	return metrics.NewEngine(coeffs, opts)
}

func newMaterial(t *testing.T, masses map[string]float64) *material.Material {
	t.Helper()
	m := material.New()
	for name, kg := range masses {
		require.NoError(t, m.AddMass(name, kg))
	}
	return m
}

func TestDefaultCoefficients_Embedded(t *testing.T) {
	coeffs, err := metrics.DefaultCoefficients()
	require.NoError(t, err)
	require.InDelta(t, 570.0, coeffs.Heat["PU238"], 1e-9)
	require.NotContains(t, coeffs.Heat, "PU239")
	require.NotEmpty(t, coeffs.GammaHeat)
	require.Contains(t, coeffs.Neutron, "CM244")
	require.Contains(t, coeffs.Dose, "CS137")
}

func TestLoadCoefficients_PartialOverrideKeepsDefaults(t *testing.T) {
	coeffs, err := metrics.LoadCoefficients(strings.NewReader("[dose]\ncs137 = 1\n"))
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"CS137": 1}, coeffs.Dose)
	require.Contains(t, coeffs.Heat, "PU238")

	_, err = metrics.LoadCoefficients(strings.NewReader("[unknown]\nX = 1\n"))
	require.Error(t, err)
}

func TestEngine_WeightedSumsIgnoreUnknownNuclides(t *testing.T) {
	e := newEngine(t, metrics.Options{})
	m := newMaterial(t, map[string]float64{
		"Pu238": 0.1, "Pu239": 10, "Am241": 2, "Cs137": 1, "U238": 100, "sfpU235": 5,
	})

	require.InDelta(t, 0.1*570+10*2+2*110+400, e.Heat(m, false), 1e-9)
	require.InDelta(t, 220.0, e.Heat(m, true), 1e-9)
	require.InDelta(t, 290.0, e.GammaHeat(m, false), 1e-9)
	require.Zero(t, e.GammaHeat(m, true))
	require.InDelta(t, 330+0.012, e.ExternalDose(m, false), 1e-9)
	require.InDelta(t, 0.012, e.ExternalDose(m, true), 1e-12)
	require.Zero(t, e.NeutronRate(m, false))
}

func TestSignificantQuantities(t *testing.T) {
	m := newMaterial(t, map[string]float64{"Pu239": 8, "Pu240": 8, "Np237": 25, "U235": 75, "Am241": 100})
	require.InDelta(t, 4.0, metrics.SignificantQuantities(m), 1e-12)
}

func TestCriticalMass(t *testing.T) {
	e := newEngine(t, metrics.Options{})
	m := newMaterial(t, map[string]float64{"Pu239": 10})

	_, ok := e.CriticalMass(m)
	require.False(t, ok, "no rates")

	m.Rates = &material.Rates{NuSigmaF: 0.02, SigmaA: 0.01, Diffusion: 1.0}
	got, ok := e.CriticalMass(m)
	require.True(t, ok)
	radius := math.Pi * math.Sqrt(1.0/0.01)
	require.InDelta(t, 4.0/3.0*math.Pi*math.Pow(radius, 3)*19.8e-3, got, 1e-9)
}

func TestCriticalMass_UndefinedAtAndBelowBalance(t *testing.T) {
	e := newEngine(t, metrics.Options{})
	for _, rates := range []material.Rates{
		{NuSigmaF: 0.01, SigmaA: 0.01, Diffusion: 1},
		{NuSigmaF: 0.009, SigmaA: 0.01, Diffusion: 1},
		{NuSigmaF: 0, SigmaA: 0, Diffusion: 1},
		{NuSigmaF: 0.02, SigmaA: 0.01, Diffusion: 0},
	} {
		m := newMaterial(t, map[string]float64{"Pu239": 10})
		r := rates
		m.Rates = &r
		_, ok := e.CriticalMass(m)
		require.False(t, ok, "%+v", rates)
		_, ok = e.FOM1(m)
		require.False(t, ok)
		_, ok = e.FOM2(m)
		require.False(t, ok)
	}
}

func TestCriticalMass_CompositionDensity(t *testing.T) {
	e := newEngine(t, metrics.Options{Density: metrics.DensityFromComposition})
	m := newMaterial(t, map[string]float64{"Pu239": 10})
	m.Rates = &material.Rates{NuSigmaF: 0.02, SigmaA: 0.01, Diffusion: 1.0}

	_, ok := e.CriticalMass(m)
	require.False(t, ok, "no volume")

	m.Volume = material.Float(1000)
	got, ok := e.CriticalMass(m)
	require.True(t, ok)
	radius := math.Pi * math.Sqrt(100)
	require.InDelta(t, 4.0/3.0*math.Pi*math.Pow(radius, 3)*10/1000, got, 1e-9)
}

func TestParseDensityModel(t *testing.T) {
	d, err := metrics.ParseDensityModel("")
	require.NoError(t, err)
	require.Equal(t, metrics.DensityFixed, d)
	d, err = metrics.ParseDensityModel("Composition")
	require.NoError(t, err)
	require.Equal(t, metrics.DensityFromComposition, d)
	_, err = metrics.ParseDensityModel("liquid")
	require.Error(t, err)
}

func TestU1_Brackets(t *testing.T) {
	cases := []struct {
		masses map[string]float64
		want   float64
	}{
		{map[string]float64{"U238": 100}, 0.45},
		{map[string]float64{"Pu239": 1}, 0.35},
		{map[string]float64{"Pu239": 3, "U233": 2}, 0.25},
		{map[string]float64{"U235": 3}, 0.35},
		{map[string]float64{"U235": 30, "Pu239": 0.1}, 0.15},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, metrics.U1(newMaterial(t, tc.masses)), "%v", tc.masses)
	}
}

func TestU2_U3_U4(t *testing.T) {
	e := newEngine(t, metrics.Options{})

	_, ok := e.U2(newMaterial(t, map[string]float64{"U238": 1}))
	require.False(t, ok)

	m := newMaterial(t, map[string]float64{"Pu238": 1, "Pu239": 1})
	u2, ok := e.U2(m)
	require.True(t, ok)
	x := (570.0 + 2.0) / 2
	require.InDelta(t, 1-math.Exp(-3*math.Pow(x/570, 0.8)), u2, 1e-12)

	require.InDelta(t, 1-math.Exp(-3.5*math.Pow(0.5, 1.8)), metrics.U3(m), 1e-12)
	require.Zero(t, metrics.U3(newMaterial(t, map[string]float64{"U238": 1})))

	_, ok = metrics.U4(material.New())
	require.False(t, ok)
	u4, ok := metrics.U4(newMaterial(t, map[string]float64{"Cs137": 1e6, "U238": 0.001}))
	require.True(t, ok)
	require.Equal(t, 1.0, u4)
	u4, ok = metrics.U4(m)
	require.True(t, ok)
	require.InDelta(t, math.Exp(-2.5*(1000*0.25/2)/125), u4, 1e-12)
}

func TestU5_UndefinedWithoutSignificantQuantity(t *testing.T) {
	e := newEngine(t, metrics.Options{})
	_, ok := e.U5(newMaterial(t, map[string]float64{"Cs137": 1}))
	require.False(t, ok)

	u5, ok := e.U5(newMaterial(t, map[string]float64{"Cs137": 1, "Pu239": 8}))
	require.True(t, ok)
	require.Equal(t, 1.0, u5)
}

func TestRadiationUtility_ContinuousAtBreakpoints(t *testing.T) {
	const eps = 1e-9
	for _, x := range []float64{0.2, 5, 75, 600} {
		at := metrics.RadiationUtility(x)
		require.InDelta(t, at, metrics.RadiationUtility(x-eps), 1e-9, "left of %v", x)
		require.InDelta(t, at, metrics.RadiationUtility(x+eps), 1e-9, "right of %v", x)
	}
	require.Zero(t, metrics.RadiationUtility(0))
	require.Equal(t, 1.0, metrics.RadiationUtility(1e6))
	require.InDelta(t, 0.3, metrics.RadiationUtility(40), 1e-12)
}

func TestFOM(t *testing.T) {
	m := newMaterial(t, map[string]float64{"Pu239": 9, "Am241": 1, "Pu240": 0.5})
	m.Rates = &material.Rates{NuSigmaF: 0.02, SigmaA: 0.01, Diffusion: 1.0}

	e := newEngine(t, metrics.Options{IgnoreDose: true})
	crit, ok := e.CriticalMass(m)
	require.True(t, ok)
	mass := m.Mass()

	fom1, ok := e.FOM1(m)
	require.True(t, ok)
	h := 110.0 / mass
	require.InDelta(t, 1-math.Log10(crit/800+crit*h/4500), fom1, 1e-12)

	fom2, ok := e.FOM2(m)
	require.True(t, ok)
	hAll := (9*2 + 110.0) / mass
	s := 0.5e6 / mass
	require.InDelta(t, 1-math.Log10(crit/800+crit*hAll/4500+crit*s/6.8e6), fom2, 1e-12)

	withDose := newEngine(t, metrics.Options{})
	fom1Dose, ok := withDose.FOM1(m)
	require.True(t, ok)
	require.Less(t, fom1Dose, fom1)
}

func TestSummarize_UndefinedAsNull(t *testing.T) {
	e := newEngine(t, metrics.Options{})
	s := e.Summarize(material.New())
	require.Nil(t, s.CriticalMass)
	require.Nil(t, s.U4)
	require.Nil(t, s.U5)
	require.Nil(t, s.HeatPerKg)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(data), `"critical_mass":null`)
	require.Contains(t, string(data), `"fom1":null`)

	m := newMaterial(t, map[string]float64{"U235": 5, "U238": 95})
	s = e.Summarize(m)
	require.InDelta(t, 100.0, s.Mass, 1e-12)
	require.NotNil(t, s.FissileRatio)
	require.InDelta(t, 0.05, *s.FissileRatio, 1e-12)
	require.NotNil(t, s.U4)
}
