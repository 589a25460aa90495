package nuclide

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var namePattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)([mM]?)$`)

// Parse builds an ordinary nuclide from a name such as "U235", "PU239" or
// "Am242m".
func Parse(name string, mass float64) (Nuclide, error) {
	n, err := parseIdentity(name)
	if err != nil {
		return Nuclide{}, err
	}
	n.Name = name
	n.Kind = Ordinary
	n.Mass = mass
	return n, nil
}

// NewFissionProduct builds a lumped placeholder from a prefixed name such as
// "sfpPu239". The identity is that of the parent nuclide; the name keeps the
// prefix so the placeholder never collides with a real entry.
func NewFissionProduct(name string, mass float64) (Nuclide, error) {
	parent, ok := StripPrefix(name)
	if !ok {
		return Nuclide{}, fmt.Errorf("%w: %q lacks the %q prefix", ErrInvalidName, name, FissionProductPrefix)
	}
	n, err := parseIdentity(Rename(parent))
	if err != nil {
		return Nuclide{}, err
	}
	n.Name = name
	n.Kind = FissionProduct
	n.Mass = mass
	return n, nil
}

// IsLumped reports whether name carries the fission-product prefix.
func IsLumped(name string) bool {
	_, ok := StripPrefix(name)
	return ok
}

// StripPrefix removes the fission-product prefix.
func StripPrefix(name string) (string, bool) {
	if len(name) <= len(FissionProductPrefix) || !strings.EqualFold(name[:len(FissionProductPrefix)], FissionProductPrefix) {
		return name, false
	}
	return name[len(FissionProductPrefix):], true
}

// Rename applies the Am-242 spelling rule: ERANOS labels the long-lived
// metastable state "AM242".
func Rename(name string) string {
	if !strings.EqualFold(name, "AM242") {
		return name
	}
	if name == strings.ToUpper(name) {
		return name + "M"
	}
	return name + "m"
}

// LumpedKey derives the yield-table column key for a placeholder name.
func LumpedKey(name string) string {
	parent, _ := StripPrefix(name)
	return Rename(strings.ToUpper(parent))
}

func parseIdentity(name string) (Nuclide, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Nuclide{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	symbol := strings.ToUpper(m[1])
	z, ok := elementZ[symbol]
	if !ok {
		return Nuclide{}, fmt.Errorf("%w: %q in %q", ErrUnknownElement, m[1], name)
	}
	a, err := strconv.Atoi(m[2])
	if err != nil {
		return Nuclide{}, fmt.Errorf("%w: mass number in %q: %v", ErrInvalidName, name, err)
	}
	return Nuclide{
		Element: symbol[:1] + strings.ToLower(symbol[1:]),
		Z:       z,
		A:       a,
		Meta:    m[3] != "",
	}, nil
}

// ElementZ returns the atomic number for an element symbol.
func ElementZ(symbol string) (int, bool) {
	z, ok := elementZ[strings.ToUpper(symbol)]
	return z, ok
}

var elementZ = map[string]int{
	"H": 1, "HE": 2, "LI": 3, "BE": 4, "B": 5,
	"C": 6, "N": 7, "O": 8, "F": 9, "NE": 10,
	"NA": 11, "MG": 12, "AL": 13, "SI": 14, "P": 15,
	"S": 16, "CL": 17, "AR": 18, "K": 19, "CA": 20,
	"SC": 21, "TI": 22, "V": 23, "CR": 24, "MN": 25,
	"FE": 26, "CO": 27, "NI": 28, "CU": 29, "ZN": 30,
	"GA": 31, "GE": 32, "AS": 33, "SE": 34, "BR": 35,
	"KR": 36, "RB": 37, "SR": 38, "Y": 39, "ZR": 40,
	"NB": 41, "MO": 42, "TC": 43, "RU": 44, "RH": 45,
	"PD": 46, "AG": 47, "CD": 48, "IN": 49, "SN": 50,
	"SB": 51, "TE": 52, "I": 53, "XE": 54, "CS": 55,
	"BA": 56, "LA": 57, "CE": 58, "PR": 59, "ND": 60,
	"PM": 61, "SM": 62, "EU": 63, "GD": 64, "TB": 65,
	"DY": 66, "HO": 67, "ER": 68, "TM": 69, "YB": 70,
	"LU": 71, "HF": 72, "TA": 73, "W": 74, "RE": 75,
	"OS": 76, "IR": 77, "PT": 78, "AU": 79, "HG": 80,
	"TL": 81, "PB": 82, "BI": 83, "PO": 84, "AT": 85,
	"RN": 86, "FR": 87, "RA": 88, "AC": 89, "TH": 90,
	"PA": 91, "U": 92, "NP": 93, "PU": 94, "AM": 95,
	"CM": 96, "BK": 97, "CF": 98, "ES": 99, "FM": 100,
	"MD": 101, "NO": 102, "LR": 103, "RF": 104, "DB": 105,
	"SG": 106, "BH": 107, "HS": 108, "MT": 109,
}
