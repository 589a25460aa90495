package nuclide_test

import (
	"encoding/json"
	"testing"

	"github.com/rpggio/burnup/internal/domain/nuclide"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Identity(t *testing.T) {
	n, err := nuclide.Parse("Am242m", 1.5)
	require.NoError(t, err)
	assert.Equal(t, "Am", n.Element)
	assert.Equal(t, 95, n.Z)
	assert.Equal(t, 242, n.A)
	assert.True(t, n.Meta)
	assert.Equal(t, nuclide.Ordinary, n.Kind)
	assert.Equal(t, 1.5, n.Mass)
	assert.Equal(t, "Am242m", n.String())
	assert.Equal(t, 952421, n.ZAID())
}

func TestParse_UpperCaseSource(t *testing.T) {
	n, err := nuclide.Parse("PU239", 0)
	require.NoError(t, err)
	assert.Equal(t, "PU239", n.Name)
	assert.Equal(t, "PU239", n.Key())
	assert.Equal(t, "Pu239", n.String())
	assert.Equal(t, 94, n.Z)
}

func TestParse_Errors(t *testing.T) {
	_, err := nuclide.Parse("Xx12", 0)
	require.ErrorIs(t, err, nuclide.ErrUnknownElement)

	_, err = nuclide.Parse("U", 0)
	require.ErrorIs(t, err, nuclide.ErrInvalidName)

	_, err = nuclide.Parse("U235x", 0)
	require.ErrorIs(t, err, nuclide.ErrInvalidName)
}

func TestClassification_Pu239(t *testing.T) {
	n, err := nuclide.Parse("Pu239", 1)
	require.NoError(t, err)
	assert.True(t, n.IsActinide())
	assert.False(t, n.IsMinorActinide())
	assert.True(t, n.IsFissile())
}

func TestClassification_Th232(t *testing.T) {
	n, err := nuclide.Parse("Th232", 1)
	require.NoError(t, err)
	assert.True(t, n.IsActinide())
	assert.True(t, n.IsMinorActinide())
	assert.False(t, n.IsFissile())
}

func TestClassification_Table(t *testing.T) {
	cases := []struct {
		name     string
		actinide bool
		minor    bool
		fissile  bool
	}{
		{"U235", true, false, true},
		{"U238", true, false, false},
		{"Np237", true, true, false},
		{"Am242m", true, true, true},
		{"AM242M", true, true, true},
		{"Cm244", true, true, false},
		{"Ac227", false, false, false},
		{"Pa231", true, false, false},
		{"Cs137", false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := nuclide.Parse(tc.name, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.actinide, n.IsActinide(), "actinide")
			assert.Equal(t, tc.minor, n.IsMinorActinide(), "minor actinide")
			assert.Equal(t, tc.fissile, n.IsFissile(), "fissile")
		})
	}
}

func TestFissionProduct_Placeholder(t *testing.T) {
	n, err := nuclide.NewFissionProduct("sfpPu239", 2.0)
	require.NoError(t, err)
	assert.Equal(t, "sfpPu239", n.Name)
	assert.Equal(t, nuclide.FissionProduct, n.Kind)
	assert.True(t, n.IsFissionProduct())
	assert.Equal(t, 94, n.Z)
	assert.False(t, n.IsActinide())
	assert.False(t, n.IsFissile())

	_, err = nuclide.NewFissionProduct("Pu239", 2.0)
	require.ErrorIs(t, err, nuclide.ErrInvalidName)
}

func TestRenameAndLumpedKey(t *testing.T) {
	assert.Equal(t, "AM242M", nuclide.Rename("AM242"))
	assert.Equal(t, "Am242m", nuclide.Rename("Am242"))
	assert.Equal(t, "U235", nuclide.Rename("U235"))

	assert.Equal(t, "AM242M", nuclide.LumpedKey("sfpAm242"))
	assert.Equal(t, "PU239", nuclide.LumpedKey("sfpPu239"))
	assert.True(t, nuclide.IsLumped("sfpU235"))
	assert.False(t, nuclide.IsLumped("U235"))
	assert.False(t, nuclide.IsLumped("sfp"))
}

func TestKind_JSON(t *testing.T) {
	n, err := nuclide.NewFissionProduct("sfpU235", 1)
	require.NoError(t, err)

	data, err := json.Marshal(n)
	require.NoError(t, err)
	require.Contains(t, string(data), `"kind":"fission_product"`)

	var decoded nuclide.Nuclide
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, nuclide.FissionProduct, decoded.Kind)
}
