package material_test

import (
	"testing"

	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/nuclide"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, name string, mass float64) nuclide.Nuclide {
	t.Helper()
	n, err := nuclide.Parse(name, mass)
	require.NoError(t, err)
	return n
}

func TestMaterial_AddMergesByName(t *testing.T) {
	m := material.New()
	m.Add(mustParse(t, "U235", 1.0))
	m.Add(mustParse(t, "U235", 1.0))

	require.Equal(t, 1, m.Len())
	n, ok := m.Find("U235")
	require.True(t, ok)
	require.Equal(t, "U235", n.Name)
	require.Equal(t, 2.0, n.Mass)
	require.Equal(t, 2.0, m.Mass())
}

func TestMaterial_CaseInsensitiveLookupPreservesCase(t *testing.T) {
	m := material.New()
	m.Add(mustParse(t, "Pu239", 3.0))
	require.NoError(t, m.AddMass("PU239", 1.0))

	n, ok := m.Find("pu239")
	require.True(t, ok)
	require.Equal(t, "Pu239", n.Name)
	require.Equal(t, 4.0, n.Mass)
	require.Equal(t, 1, m.Len())
}

func TestMaterial_MassIsSumOfEntries(t *testing.T) {
	m := material.New()
	m.Add(mustParse(t, "U235", 5.0))
	m.Add(mustParse(t, "U238", 95.0))
	m.Add(mustParse(t, "Pu239", 2.5))
	m.Add(mustParse(t, "Cs137", 0.5))

	require.InDelta(t, 103.0, m.Mass(), 1e-12)
	require.InDelta(t, 102.5, m.ActinideMass(), 1e-12)
	require.InDelta(t, 7.5, m.FissileMass(), 1e-12)

	_, ok := m.Remove("cs137")
	require.True(t, ok)
	require.InDelta(t, 102.5, m.Mass(), 1e-12)
}

func TestMaterial_AddMassCreatesPlaceholders(t *testing.T) {
	m := material.New()
	require.NoError(t, m.AddMass("sfpU235", 0.7))
	require.NoError(t, m.AddMass("U238", 10))

	fps := m.FissionProducts()
	require.Len(t, fps, 1)
	require.Equal(t, "sfpU235", fps[0].Name)
	require.Equal(t, nuclide.FissionProduct, fps[0].Kind)

	// A placeholder never merges with the parent nuclide.
	require.NoError(t, m.AddMass("U235", 1))
	require.Equal(t, 3, m.Len())

	require.ErrorIs(t, m.AddMass("Qq1", 1), nuclide.ErrUnknownElement)
}

func TestMaterial_NuclidesOrdering(t *testing.T) {
	m := material.New()
	require.NoError(t, m.AddMass("sfpPu239", 1))
	require.NoError(t, m.AddMass("Pu239", 1))
	require.NoError(t, m.AddMass("Am242m", 1))
	require.NoError(t, m.AddMass("Am242", 1))
	require.NoError(t, m.AddMass("U238", 1))

	var names []string
	for _, n := range m.Nuclides() {
		names = append(names, n.Name)
	}
	require.Equal(t, []string{"U238", "Pu239", "Am242", "Am242m", "sfpPu239"}, names)
}

func TestMaterial_CloneIsDeep(t *testing.T) {
	m := material.New()
	m.Add(mustParse(t, "U235", 1))
	m.Volume = material.Float(2.5)
	m.Rates = &material.Rates{NuSigmaF: 0.01, SigmaA: 0.008, Diffusion: 1.2}
	m.RecordLumped("sfpU235", 0.3)

	c := m.Clone()
	c.Add(mustParse(t, "U235", 1))
	*c.Volume = 9
	c.Rates.SigmaA = 1

	require.Equal(t, 1.0, m.Mass())
	require.Equal(t, 2.5, *m.Volume)
	require.Equal(t, 0.008, m.Rates.SigmaA)
	require.Equal(t, map[string]float64{"sfpU235": 0.3}, c.Lumped())
}

func TestMaterial_Merge(t *testing.T) {
	a := material.New()
	a.Add(mustParse(t, "U235", 1))
	b := material.New()
	b.Add(mustParse(t, "U235", 2))
	b.Add(mustParse(t, "Np237", 0.5))

	a.Merge(b)
	a.Merge(nil)
	require.Equal(t, 2, a.Len())
	require.InDelta(t, 3.5, a.Mass(), 1e-12)
	require.Equal(t, 2, b.Len())
}

func TestMaterial_ZeroValueUsable(t *testing.T) {
	var m material.Material
	_, ok := m.Find("U235")
	require.False(t, ok)
	require.Zero(t, m.Mass())
	require.NoError(t, m.AddMass("U235", 1))
	require.Equal(t, 1.0, m.Mass())
}
