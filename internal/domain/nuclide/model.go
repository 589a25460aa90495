package nuclide

import (
	"fmt"
	"strings"
)

// Kind discriminates ordinary nuclides from lumped fission-product
// placeholders.
type Kind uint8

const (
	// Ordinary is a real nuclide.
	Ordinary Kind = iota
	// FissionProduct is a lumped pseudo-nuclide that expands into real
	// fission products through the yield table.
	FissionProduct
)

func (k Kind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case FissionProduct:
		return "fission_product"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ordinary", "":
		return Ordinary, nil
	case "fission_product":
		return FissionProduct, nil
	default:
		return Ordinary, fmt.Errorf("%w: unknown kind %q", ErrInvalidName, s)
	}
}

// FissionProductPrefix marks lumped fission-product placeholders in ERANOS
// output, e.g. "sfpU235".
const FissionProductPrefix = "sfp"

// Nuclide is an isotope identity plus its mass in kg. The identity fields are
// fixed at parse time; Mass is the only field that changes afterwards.
type Nuclide struct {
	// Name is the key as it appeared in the source, case preserved.
	Name    string  `json:"name"`
	Element string  `json:"element"`
	Z       int     `json:"z"`
	A       int     `json:"a"`
	Meta    bool    `json:"meta,omitempty"`
	Kind    Kind    `json:"kind"`
	Mass    float64 `json:"mass"`
}

// String returns the canonical spelling, e.g. "Te129m".
func (n Nuclide) String() string {
	if n.Meta {
		return fmt.Sprintf("%s%dm", n.Element, n.A)
	}
	return fmt.Sprintf("%s%d", n.Element, n.A)
}

// Key is the case-insensitive lookup key for the nuclide.
func (n Nuclide) Key() string {
	return strings.ToUpper(n.Name)
}

// ZAID returns the ORIGEN identifier ZZAAAM.
func (n Nuclide) ZAID() int {
	id := 10000*n.Z + 10*n.A
	if n.Meta {
		id++
	}
	return id
}

// IsFissionProduct reports whether n is a lumped placeholder.
func (n Nuclide) IsFissionProduct() bool {
	return n.Kind == FissionProduct
}

// IsActinide reports Z >= 90. Placeholders are never actinides.
func (n Nuclide) IsActinide() bool {
	return n.Kind == Ordinary && n.Z >= 90
}

// IsMinorActinide reports an actinide other than U or Pu with A >= 232.
func (n Nuclide) IsMinorActinide() bool {
	return n.IsActinide() && n.Z != 92 && n.Z != 94 && n.A >= 232
}

// IsFissile reports membership in the long-lived fissile set.
func (n Nuclide) IsFissile() bool {
	if n.Kind != Ordinary {
		return false
	}
	_, ok := fissile[strings.ToUpper(n.String())]
	return ok
}

var fissile = map[string]struct{}{
	"U233": {}, "U235": {}, "PU239": {}, "PU241": {}, "AM242M": {},
	"CM243": {}, "CM245": {}, "CM247": {}, "CF249": {}, "CF251": {},
}
