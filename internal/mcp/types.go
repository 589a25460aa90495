package mcp

import (
	"time"

	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/domain/run"
)

type runIDInput struct {
	RunID string `json:"run_id" jsonschema:"ID of the run, from ingest_report or list_runs"`
}

type ingestReportInput struct {
	Path string `json:"path" jsonschema:"Path of the ERANOS output file on the server host"`
	Name string `json:"name,omitempty" jsonschema:"Display name of the run; defaults to the file name"`
}

type listRunsInput struct{}

type materialInput struct {
	RunID  string `json:"run_id" jsonschema:"ID of the run"`
	Cycle  int    `json:"cycle" jsonschema:"Cycle index as declared in the report"`
	Node   int    `json:"node,omitempty" jsonschema:"Time node within the cycle, 0 is the start"`
	Region string `json:"region" jsonschema:"Region name such as FUEL1 or BLANK, or charge or discharge for the cycle mass balance"`
}

func (in materialInput) ref() run.MaterialRef {
	return run.MaterialRef{Cycle: in.Cycle, Node: in.Node, Region: in.Region}
}

type balanceInput struct {
	RunID string `json:"run_id" jsonschema:"ID of the run"`
	Cycle int    `json:"cycle" jsonschema:"Cycle index as declared in the report"`
}

// runOutput flattens run.Run; timestamps are RFC 3339 strings.
type runOutput struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	SourcePath      string   `json:"source_path"`
	Regions         []string `json:"regions"`
	Blanket         bool     `json:"blanket"`
	CoolingMode     string   `json:"cooling_mode"`
	CoolingDuration float64  `json:"cooling_duration,omitempty"`
	CoolingFraction float64  `json:"cooling_fraction,omitempty"`
	Cycles          int      `json:"cycles"`
	Trailing        int      `json:"trailing_cycle,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func newRunOutput(r *run.Run) runOutput {
	return runOutput{
		ID:              r.ID,
		Name:            r.Name,
		SourcePath:      r.SourcePath,
		Regions:         nonNil(r.Regions),
		Blanket:         r.Blanket,
		CoolingMode:     r.Cooling.Mode.String(),
		CoolingDuration: r.Cooling.Duration,
		CoolingFraction: r.Cooling.Fraction,
		Cycles:          r.Cycles,
		Trailing:        r.Trailing,
		Warnings:        r.Warnings,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

type runSummaryOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SourcePath string `json:"source_path"`
	Cycles     int    `json:"cycles"`
	Warnings   int    `json:"warnings"`
	CreatedAt  string `json:"created_at"`
}

type listRunsOutput struct {
	Runs []runSummaryOutput `json:"runs"`
}

type cycleOutput struct {
	N                int               `json:"n"`
	Timestep         float64           `json:"timestep"`
	Iterations       int               `json:"iterations"`
	Cooling          float64           `json:"cooling"`
	Times            []float64         `json:"times"`
	Regions          []string          `json:"regions"`
	RequiredFeed     float64           `json:"required_feed"`
	UraniumAdded     float64           `json:"uranium_added"`
	ExcessActinide   float64           `json:"excess_actinide"`
	Regime           string            `json:"regime"`
	RegimeConsistent bool              `json:"regime_consistent"`
	Regimes          map[string]string `json:"regimes,omitempty"`
}

func newCycleOutput(c run.CycleSummary) cycleOutput {
	out := cycleOutput{
		N:                c.N,
		Timestep:         c.Timestep,
		Iterations:       c.Iterations,
		Cooling:          c.Cooling,
		Times:            c.Times,
		Regions:          nonNil(c.Regions),
		RequiredFeed:     c.RequiredFeed,
		UraniumAdded:     c.UraniumAdded,
		ExcessActinide:   c.ExcessActinide,
		Regime:           c.Regime.String(),
		RegimeConsistent: c.Consistent,
	}
	if len(c.Regimes) > 0 {
		out.Regimes = make(map[string]string, len(c.Regimes))
		for region, regime := range c.Regimes {
			out.Regimes[region] = regime.String()
		}
	}
	return out
}

type listCyclesOutput struct {
	Cycles []cycleOutput `json:"cycles"`
}

type materialOutput struct {
	Ref         run.MaterialRef `json:"ref"`
	Composition run.Composition `json:"composition"`
}

type metricsOutput struct {
	Ref     run.MaterialRef `json:"ref"`
	Metrics metrics.Summary `json:"metrics"`
}

type balanceOutput struct {
	Cycle            int                `json:"cycle"`
	RequiredFeed     float64            `json:"required_feed"`
	UraniumAdded     map[string]float64 `json:"uranium_added,omitempty"`
	ExcessActinide   map[string]float64 `json:"excess_actinide,omitempty"`
	Regime           string             `json:"regime"`
	RegimeConsistent bool               `json:"regime_consistent"`
	Charge           *run.Composition   `json:"charge,omitempty"`
	Discharge        *run.Composition   `json:"discharge,omitempty"`
}

func newBalanceOutput(b *run.Balance) balanceOutput {
	return balanceOutput{
		Cycle:            b.Cycle,
		RequiredFeed:     b.RequiredFeed,
		UraniumAdded:     nonEmpty(b.UraniumAdded),
		ExcessActinide:   nonEmpty(b.ExcessActinide),
		Regime:           b.Regime.String(),
		RegimeConsistent: b.Consistent,
		Charge:           b.Charge,
		Discharge:        b.Discharge,
	}
}

type deleteRunOutput struct {
	Deleted string `json:"deleted"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonEmpty(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	return m
}
