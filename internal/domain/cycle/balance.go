package cycle

import (
	"fmt"
	"sort"

	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/nuclide"
)

// BlanketRegion is the region name ingestion assigns to the blanket.
const BlanketRegion = "BLANK"

// Makeup uranium is split at depleted-tails enrichment.
const (
	makeupU235 = 0.002
	makeupU238 = 0.998
)

// requiredFeedVector is the transuranic composition assumed for required
// feed, as mass fractions.
var requiredFeedVector = []struct {
	name     string
	fraction float64
}{
	{"Np237", 0.0588},
	{"Pu238", 0.0271},
	{"Pu239", 0.4905},
	{"Pu240", 0.2400},
	{"Pu241", 0.1092},
	{"Pu242", 0.0744},
}

// Expander replaces fission-product placeholders with real nuclides.
type Expander interface {
	Expand(m *material.Material) error
}

// BalanceOptions tunes charge/discharge construction.
type BalanceOptions struct {
	// Tracer is the nuclide whose node-0 blanket mass decides whether the
	// blanket was reprocessed between cycles.
	Tracer string
	// Threshold is the tracer mass in kg below which the blanket counts as
	// reprocessed.
	Threshold float64
}

// DefaultBalanceOptions returns the Pu-239 tracer with a 1 g threshold.
func DefaultBalanceOptions() BalanceOptions {
	return BalanceOptions{Tracer: "Pu239", Threshold: 1e-3}
}

func (o BalanceOptions) withDefaults() BalanceOptions {
	d := DefaultBalanceOptions()
	if o.Tracer == "" {
		o.Tracer = d.Tracer
	}
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	return o
}

// BuildBalances synthesizes the charge and discharge vectors of every cycle.
// Cycles are processed in the given order; each one may add to the
// discharge of its predecessor when the blanket was reprocessed.
func BuildBalances(cycles []*Cycle, expander Expander, opts BalanceOptions) error {
	opts = opts.withDefaults()
	for _, c := range cycles {
		c.Charge = material.New()
		c.Discharge = material.New()
	}

	for i, c := range cycles {
		if i > 0 {
			if err := migrateBlanket(cycles[i-1], c, expander, opts); err != nil {
				return fmt.Errorf("cycle %d blanket: %w", c.N, err)
			}
		}

		for _, region := range sortedKeys(c.UraniumAdded) {
			added := c.UraniumAdded[region]
			if added <= 0 {
				continue
			}
			if err := addMakeup(c, region, added); err != nil {
				return fmt.Errorf("cycle %d region %s makeup: %w", c.N, region, err)
			}
		}
		if err := expander.Expand(c.Discharge); err != nil {
			return fmt.Errorf("cycle %d discharge: %w", c.N, err)
		}

		for _, region := range sortedKeys(c.ExcessActinide) {
			if c.Regimes[region] != RegimeExcess {
				continue
			}
			distributeExcess(c, region, c.ExcessActinide[region])
		}
		if c.RequiredFeed > 0 {
			for _, f := range requiredFeedVector {
				if err := c.Charge.AddMass(f.name, c.RequiredFeed*f.fraction); err != nil {
					return fmt.Errorf("cycle %d required feed: %w", c.N, err)
				}
			}
		}
	}
	return nil
}

// migrateBlanket moves the blanket inventory across a reprocessing boundary:
// the previous cycle's final blanket is discharged and the current cycle's
// fresh blanket is charged.
func migrateBlanket(prev, cur *Cycle, expander Expander, opts BalanceOptions) error {
	fresh, ok := cur.Material(0, BlanketRegion)
	if !ok {
		return nil
	}
	tracer, _ := fresh.Find(opts.Tracer)
	if tracer.Mass >= opts.Threshold {
		return nil
	}

	if spent, ok := prev.Material(prev.LastNode(), BlanketRegion); ok {
		for _, n := range spent.Nuclides() {
			prev.Discharge.Add(n)
		}
		if err := expander.Expand(prev.Discharge); err != nil {
			return err
		}
	}
	for _, n := range fresh.Nuclides() {
		cur.Charge.Add(n)
	}
	return expander.Expand(cur.Charge)
}

// addMakeup charges the makeup uranium of a region and discharges the same
// mass as fission products, split like the region's lumped products at the
// final node.
func addMakeup(c *Cycle, region string, added float64) error {
	if err := c.Charge.AddMass("U235", added*makeupU235); err != nil {
		return err
	}
	if err := c.Charge.AddMass("U238", added*makeupU238); err != nil {
		return err
	}

	final, ok := c.Material(c.LastNode(), region)
	if !ok {
		return nil
	}
	lumped := final.Lumped()
	for _, fp := range final.FissionProducts() {
		lumped[fp.Name] += fp.Mass
	}
	var total float64
	for _, kg := range lumped {
		total += kg
	}
	if total <= 0 {
		return nil
	}
	for _, name := range sortedKeys(lumped) {
		fp, err := nuclide.NewFissionProduct(name, added*lumped[name]/total)
		if err != nil {
			return err
		}
		c.Discharge.Add(fp)
	}
	return nil
}

// distributeExcess discharges excess actinide mass in proportion to the
// region's actinide vector at the final node.
func distributeExcess(c *Cycle, region string, excess float64) {
	if excess <= 0 {
		return
	}
	final, ok := c.Material(c.LastNode(), region)
	if !ok {
		return
	}
	actinides := final.ActinideMass()
	if actinides <= 0 {
		return
	}
	for _, n := range final.Nuclides() {
		if !n.IsActinide() {
			continue
		}
		n.Mass = excess * n.Mass / actinides
		c.Discharge.Add(n)
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
