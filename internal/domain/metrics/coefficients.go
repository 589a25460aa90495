package metrics

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed coefficients.toml
var defaultCoefficients []byte

// Coefficients holds the per-kg coefficient tables keyed by upper-case
// canonical nuclide name.
type Coefficients struct {
	Heat      map[string]float64 `toml:"heat"`
	GammaHeat map[string]float64 `toml:"gamma_heat"`
	Neutron   map[string]float64 `toml:"neutron"`
	Dose      map[string]float64 `toml:"dose"`
}

var (
	defaultOnce   sync.Once
	defaultTables *Coefficients
	defaultErr    error
)

// DefaultCoefficients returns the embedded tables. They are parsed once and
// must not be modified.
func DefaultCoefficients() (*Coefficients, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = decodeCoefficients(bytes.NewReader(defaultCoefficients))
	})
	return defaultTables, defaultErr
}

// LoadCoefficientsFile reads coefficient tables from a TOML file. Tables
// missing from the file keep their embedded defaults.
func LoadCoefficientsFile(path string) (*Coefficients, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening coefficients: %w", err)
	}
	defer f.Close()
	return LoadCoefficients(f)
}

// LoadCoefficients reads coefficient tables from TOML. Tables missing from
// the input keep their embedded defaults.
func LoadCoefficients(r io.Reader) (*Coefficients, error) {
	override, err := decodeCoefficients(r)
	if err != nil {
		return nil, err
	}
	base, err := DefaultCoefficients()
	if err != nil {
		return nil, err
	}
	out := &Coefficients{
		Heat:      base.Heat,
		GammaHeat: base.GammaHeat,
		Neutron:   base.Neutron,
		Dose:      base.Dose,
	}
	if override.Heat != nil {
		out.Heat = override.Heat
	}
	if override.GammaHeat != nil {
		out.GammaHeat = override.GammaHeat
	}
	if override.Neutron != nil {
		out.Neutron = override.Neutron
	}
	if override.Dose != nil {
		out.Dose = override.Dose
	}
	return out, nil
}

func decodeCoefficients(r io.Reader) (*Coefficients, error) {
	var c Coefficients
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding coefficients: %w", err)
	}
	c.Heat = upperKeys(c.Heat)
	c.GammaHeat = upperKeys(c.GammaHeat)
	c.Neutron = upperKeys(c.Neutron)
	c.Dose = upperKeys(c.Dose)
	return &c, nil
}

func upperKeys(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}
	return out
}
