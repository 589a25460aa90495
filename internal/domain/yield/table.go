package yield

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/nuclide"
)

var (
	// ErrUnknownIsotope indicates a lumped placeholder whose parent has no
	// column in the yield table.
	ErrUnknownIsotope = errors.New("isotope not in yield table")
	// ErrMalformedTable indicates a yield table that cannot be read.
	ErrMalformedTable = errors.New("malformed yield table")
)

// Fraction is one product row of a yield column.
type Fraction struct {
	Product  string
	Fraction float64
}

// Table maps a parent nuclide key to the mass fractions of the real fission
// products it stands for. A Table is immutable after Load.
type Table struct {
	keys     []string
	columns  map[string]int
	products []string
	rows     [][]float64
}

// LoadFile reads a yield table from a CSV file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening yield table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a yield table. Row 0 holds the parent keys, one per column after
// the first; every following row is a product name and its fraction per
// column.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedTable, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header has no parent columns", ErrMalformedTable)
	}

	t := &Table{columns: make(map[string]int, len(header)-1)}
	for i, cell := range header[1:] {
		key := strings.ToUpper(strings.TrimSpace(cell))
		if key == "" {
			return nil, fmt.Errorf("%w: empty header cell in column %d", ErrMalformedTable, i+2)
		}
		if _, dup := t.columns[key]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedTable, key)
		}
		t.columns[key] = i
		t.keys = append(t.keys, key)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		line, _ := reader.FieldPos(0)
		product := strings.TrimSpace(record[0])
		if product == "" {
			continue
		}
		if _, err := nuclide.Parse(product, 0); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
		if len(record)-1 != len(t.keys) {
			return nil, fmt.Errorf("%w: line %d has %d fractions, want %d", ErrMalformedTable, line, len(record)-1, len(t.keys))
		}
		row := make([]float64, len(t.keys))
		for i, cell := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedTable, line, t.keys[i], err)
			}
			row[i] = v
		}
		t.products = append(t.products, product)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Keys returns the parent keys in column order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Products returns the product names in row order.
func (t *Table) Products() []string {
	return append([]string(nil), t.products...)
}

// IsProduct reports whether name is a row of the table.
func (t *Table) IsProduct(name string) bool {
	for _, p := range t.products {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// Column returns the product fractions for a parent key. Zero fractions are
// omitted.
func (t *Table) Column(key string) ([]Fraction, error) {
	idx, ok := t.columns[strings.ToUpper(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIsotope, key)
	}
	out := make([]Fraction, 0, len(t.products))
	for r, product := range t.products {
		if f := t.rows[r][idx]; f != 0 {
			out = append(out, Fraction{Product: product, Fraction: f})
		}
	}
	return out, nil
}

// Expand replaces every fission-product placeholder in m with its real
// products. A second call on the same material finds nothing to do. The
// material is left untouched when a placeholder has no yield column.
func (t *Table) Expand(m *material.Material) error {
	placeholders := m.FissionProducts()
	if len(placeholders) == 0 {
		return nil
	}

	columns := make(map[string][]Fraction, len(placeholders))
	for _, p := range placeholders {
		key := nuclide.LumpedKey(p.Name)
		if _, done := columns[key]; done {
			continue
		}
		col, err := t.Column(key)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", p.Name, err)
		}
		columns[key] = col
	}

	for _, p := range placeholders {
		m.Remove(p.Name)
		m.RecordLumped(p.Name, p.Mass)
		for _, f := range columns[nuclide.LumpedKey(p.Name)] {
			if err := m.AddMass(f.Product, p.Mass*f.Fraction); err != nil {
				return fmt.Errorf("expanding %s into %s: %w", p.Name, f.Product, err)
			}
		}
	}
	return nil
}
