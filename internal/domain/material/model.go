package material

import (
	"sort"
	"strings"

	"github.com/rpggio/burnup/internal/domain/nuclide"
)

// Rates holds the one-group reaction rates of a region, read from the
// cross-section block of a cycle. Only the critical-mass metric uses them.
type Rates struct {
	NuSigmaF  float64 `json:"nu_sigma_f"`
	SigmaA    float64 `json:"sigma_a"`
	Diffusion float64 `json:"diffusion"`
}

// Material is a composition: nuclide entries unique by case-insensitive name.
// The total mass is never cached.
type Material struct {
	entries map[string]*nuclide.Nuclide
	lumped  map[string]float64

	Volume *float64 `json:"volume,omitempty"`
	Rates  *Rates   `json:"rates,omitempty"`
	Flux   *float64 `json:"flux,omitempty"`
	Power  *float64 `json:"power,omitempty"`
	DPA    *float64 `json:"dpa,omitempty"`
}

// New creates an empty material.
func New() *Material {
	return &Material{
		entries: make(map[string]*nuclide.Nuclide),
		lumped:  make(map[string]float64),
	}
}

// Add merges n into the material: mass accumulates on an existing name,
// otherwise a new entry is inserted with n's identity.
func (m *Material) Add(n nuclide.Nuclide) {
	m.init()
	key := n.Key()
	if existing, ok := m.entries[key]; ok {
		existing.Mass += n.Mass
		return
	}
	entry := n
	m.entries[key] = &entry
}

// AddMass adds kg to the named entry, parsing the name when the entry does not
// exist yet. Names carrying the fission-product prefix become placeholders.
func (m *Material) AddMass(name string, kg float64) error {
	m.init()
	if existing, ok := m.entries[strings.ToUpper(name)]; ok {
		existing.Mass += kg
		return nil
	}
	var (
		n   nuclide.Nuclide
		err error
	)
	if nuclide.IsLumped(name) {
		n, err = nuclide.NewFissionProduct(name, kg)
	} else {
		n, err = nuclide.Parse(name, kg)
	}
	if err != nil {
		return err
	}
	m.Add(n)
	return nil
}

// Find returns the entry with the given name, compared case-insensitively.
func (m *Material) Find(name string) (nuclide.Nuclide, bool) {
	n, ok := m.entries[strings.ToUpper(name)]
	if !ok {
		return nuclide.Nuclide{}, false
	}
	return *n, true
}

// Remove deletes the named entry and returns it.
func (m *Material) Remove(name string) (nuclide.Nuclide, bool) {
	key := strings.ToUpper(name)
	n, ok := m.entries[key]
	if !ok {
		return nuclide.Nuclide{}, false
	}
	delete(m.entries, key)
	return *n, true
}

// Len returns the number of entries.
func (m *Material) Len() int {
	return len(m.entries)
}

// Nuclides returns a snapshot of the entries ordered by Z, A, metastable flag
// and name, with fission-product placeholders last.
func (m *Material) Nuclides() []nuclide.Nuclide {
	out := make([]nuclide.Nuclide, 0, len(m.entries))
	for _, n := range m.entries {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.A != b.A {
			return a.A < b.A
		}
		if a.Meta != b.Meta {
			return !a.Meta
		}
		return a.Key() < b.Key()
	})
	return out
}

// FissionProducts returns the placeholder entries still awaiting expansion.
func (m *Material) FissionProducts() []nuclide.Nuclide {
	var out []nuclide.Nuclide
	for _, n := range m.Nuclides() {
		if n.IsFissionProduct() {
			out = append(out, n)
		}
	}
	return out
}

// Mass returns the total mass in kg.
func (m *Material) Mass() float64 {
	return m.MassWhere(nil)
}

// ActinideMass returns the mass of actinide entries.
func (m *Material) ActinideMass() float64 {
	return m.MassWhere(nuclide.Nuclide.IsActinide)
}

// FissileMass returns the mass of fissile entries.
func (m *Material) FissileMass() float64 {
	return m.MassWhere(nuclide.Nuclide.IsFissile)
}

// MassWhere sums the mass of entries accepted by keep. A nil filter keeps all.
func (m *Material) MassWhere(keep func(nuclide.Nuclide) bool) float64 {
	var total float64
	for _, n := range m.entries {
		if keep == nil || keep(*n) {
			total += n.Mass
		}
	}
	return total
}

// Merge adds every entry of other into m. Scalar attributes are not copied.
func (m *Material) Merge(other *Material) {
	if other == nil {
		return
	}
	for _, n := range other.entries {
		m.Add(*n)
	}
}

// Clone returns a deep copy.
func (m *Material) Clone() *Material {
	c := New()
	for k, n := range m.entries {
		entry := *n
		c.entries[k] = &entry
	}
	for k, v := range m.lumped {
		c.lumped[k] = v
	}
	c.Volume = clonePtr(m.Volume)
	c.Flux = clonePtr(m.Flux)
	c.Power = clonePtr(m.Power)
	c.DPA = clonePtr(m.DPA)
	if m.Rates != nil {
		r := *m.Rates
		c.Rates = &r
	}
	return c
}

// RecordLumped notes that mass kg of the named placeholder was expanded.
func (m *Material) RecordLumped(name string, kg float64) {
	m.init()
	m.lumped[name] += kg
}

// Lumped returns the masses of the placeholders removed by expansion, keyed
// by placeholder name.
func (m *Material) Lumped() map[string]float64 {
	out := make(map[string]float64, len(m.lumped))
	for k, v := range m.lumped {
		out[k] = v
	}
	return out
}

func (m *Material) init() {
	if m.entries == nil {
		m.entries = make(map[string]*nuclide.Nuclide)
	}
	if m.lumped == nil {
		m.lumped = make(map[string]float64)
	}
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float returns a pointer to v, for the optional scalar attributes.
func Float(v float64) *float64 {
	return &v
}
