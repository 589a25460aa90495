package cycle

import (
	"fmt"
	"sort"

	"github.com/rpggio/burnup/internal/domain/material"
)

// FeedRegime tells which branch of the material-balance block a region hit.
type FeedRegime uint8

const (
	// RegimeNone means no feed entry was read.
	RegimeNone FeedRegime = iota
	// RegimeRequired means the region lacked fissile material and needed feed.
	RegimeRequired
	// RegimeExcess means the region produced excess actinides.
	RegimeExcess
)

func (r FeedRegime) String() string {
	switch r {
	case RegimeNone:
		return "none"
	case RegimeRequired:
		return "required"
	case RegimeExcess:
		return "excess"
	default:
		return fmt.Sprintf("regime(%d)", uint8(r))
	}
}

// MarshalText encodes the regime by name.
func (r FeedRegime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a regime name.
func (r *FeedRegime) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*r = RegimeNone
	case "required":
		*r = RegimeRequired
	case "excess":
		*r = RegimeExcess
	default:
		return fmt.Errorf("unknown feed regime %q", text)
	}
	return nil
}

// Key addresses a material within a cycle.
type Key struct {
	Node   int
	Region string
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.Node, k.Region)
}

// Cycle is one reactor operating interval: evenly spaced burnup nodes plus
// an optional cooling node, with one material per node and region.
type Cycle struct {
	N          int
	Timestep   float64
	Iterations int
	// Cooling is the duration of the extra cooling node; zero means none.
	Cooling float64
	Regions []string

	Materials map[Key]*material.Material

	RequiredFeed   float64
	UraniumAdded   map[string]float64
	ExcessActinide map[string]float64
	Regimes        map[string]FeedRegime

	Charge    *material.Material
	Discharge *material.Material
}

// New creates an empty cycle timeline.
func New(n int, timestep float64, iterations int, cooling float64) *Cycle {
	return &Cycle{
		N:              n,
		Timestep:       timestep,
		Iterations:     iterations,
		Cooling:        cooling,
		Materials:      make(map[Key]*material.Material),
		UraniumAdded:   make(map[string]float64),
		ExcessActinide: make(map[string]float64),
		Regimes:        make(map[string]FeedRegime),
	}
}

// Times returns the node times: iterations+1 values spaced by the timestep,
// followed by last+cooling when cooling is configured.
func (c *Cycle) Times() []float64 {
	times := make([]float64, 0, c.Iterations+2)
	for i := 0; i <= c.Iterations; i++ {
		times = append(times, float64(i)*c.Timestep)
	}
	if c.Cooling > 0 {
		times = append(times, times[len(times)-1]+c.Cooling)
	}
	return times
}

// Nodes returns the number of time nodes.
func (c *Cycle) Nodes() int {
	n := c.Iterations + 1
	if c.Cooling > 0 {
		n++
	}
	return n
}

// LastNode returns the index of the final time node.
func (c *Cycle) LastNode() int {
	return c.Nodes() - 1
}

// Duration returns the irradiation time of the cycle.
func (c *Cycle) Duration() float64 {
	return c.Timestep * float64(c.Iterations)
}

// Material returns the material at a node and region.
func (c *Cycle) Material(node int, region string) (*material.Material, bool) {
	m, ok := c.Materials[Key{Node: node, Region: region}]
	return m, ok
}

// Set stores the material at a node and region.
func (c *Cycle) Set(node int, region string, m *material.Material) {
	if c.Materials == nil {
		c.Materials = make(map[Key]*material.Material)
	}
	c.Materials[Key{Node: node, Region: region}] = m
}

// MaterialNames returns the sorted region names present in the cycle.
func (c *Cycle) MaterialNames() []string {
	seen := make(map[string]struct{})
	for k := range c.Materials {
		seen[k.Region] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys returns every material key ordered by node then region.
func (c *Cycle) Keys() []Key {
	keys := make([]Key, 0, len(c.Materials))
	for k := range c.Materials {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Node != keys[j].Node {
			return keys[i].Node < keys[j].Node
		}
		return keys[i].Region < keys[j].Region
	})
	return keys
}

// SetRegime records the feed regime of a region.
func (c *Cycle) SetRegime(region string, r FeedRegime) {
	if c.Regimes == nil {
		c.Regimes = make(map[string]FeedRegime)
	}
	c.Regimes[region] = r
}

// Regime returns the feed regime shared by every region that read a feed
// entry. consistent is false when regions disagree, in which case the
// returned regime is RegimeNone and callers must use Regimes directly.
func (c *Cycle) Regime() (regime FeedRegime, consistent bool) {
	regime = RegimeNone
	for _, r := range c.Regimes {
		if r == RegimeNone {
			continue
		}
		if regime == RegimeNone {
			regime = r
			continue
		}
		if r != regime {
			return RegimeNone, false
		}
	}
	return regime, true
}

// ExcessProduced reports whether any region produced excess actinides.
func (c *Cycle) ExcessProduced() bool {
	for _, r := range c.Regimes {
		if r == RegimeExcess {
			return true
		}
	}
	return false
}

// TotalUraniumAdded sums the makeup uranium of every region.
func (c *Cycle) TotalUraniumAdded() float64 {
	var total float64
	for _, v := range c.UraniumAdded {
		total += v
	}
	return total
}

// TotalExcess sums the excess actinide mass of every region.
func (c *Cycle) TotalExcess() float64 {
	var total float64
	for _, v := range c.ExcessActinide {
		total += v
	}
	return total
}
