package eranos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/scan"
)

// Options tunes ingestion.
type Options struct {
	// CoolingFraction is the fraction of irradiation time used for an
	// automatic cooling declaration that carries no explicit fraction.
	CoolingFraction float64
	// Progress is called after each region block with the number of blocks
	// read so far and the total expected.
	Progress func(done, total int)
	// SkipBalances leaves Charge and Discharge unset.
	SkipBalances bool
	Balance      cycle.BalanceOptions
}

// Loader ingests ERANOS burnup reports. A Loader holds no per-report state
// and may be reused; each Load call owns its stream exclusively.
type Loader struct {
	expander cycle.Expander
	logger   *slog.Logger
	opts     Options
}

// NewLoader creates a loader. The expander is usually a *yield.Table loaded
// once by the caller; nil rejects reports that contain lumped fission
// products.
func NewLoader(expander cycle.Expander, logger *slog.Logger, opts Options) *Loader {
	if expander == nil {
		expander = missingTable{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.CoolingFraction <= 0 {
		opts.CoolingFraction = 1.0
	}
	return &Loader{expander: expander, logger: logger, opts: opts}
}

// LoadFile ingests the report at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, f)
}

// Load ingests a report. It returns ctx.Err() when cancelled between time
// nodes.
func (l *Loader) Load(ctx context.Context, src io.ReadSeeker) (*Report, error) {
	run := &ingestion{
		Loader: l,
		cur:    scan.NewCursor(src),
		report: &Report{},
	}

	if err := run.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := run.readBody(ctx); err != nil {
		return nil, err
	}
	run.readTrailing()

	if err := run.expand(); err != nil {
		return nil, err
	}
	if !l.opts.SkipBalances {
		if err := cycle.BuildBalances(run.report.Cycles, l.expander, l.opts.Balance); err != nil {
			return nil, fmt.Errorf("building mass balances: %w", err)
		}
	}

	l.logger.Info("report ingested",
		"regions", len(run.report.Regions),
		"cycles", len(run.report.Cycles),
		"warnings", len(run.report.Warnings))
	return run.report, nil
}

// ingestion is the state of one Load call.
type ingestion struct {
	*Loader
	cur    *scan.Cursor
	report *Report

	done, total int
}

func (in *ingestion) warn(msg string, args ...any) {
	in.logger.Warn(msg, args...)
	text := msg
	for i := 0; i+1 < len(args); i += 2 {
		text += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	in.report.Warnings = append(in.report.Warnings, text)
}

func (in *ingestion) progress() {
	in.done++
	if in.opts.Progress != nil {
		in.opts.Progress(in.done, in.total)
	}
}

// expand replaces lumped fission products in every material of every cycle.
func (in *ingestion) expand() error {
	cycles := in.report.Cycles
	if in.report.Trailing != nil {
		cycles = append(cycles[:len(cycles):len(cycles)], in.report.Trailing)
	}
	for _, c := range cycles {
		for _, key := range c.Keys() {
			if err := in.expander.Expand(c.Materials[key]); err != nil {
				return fmt.Errorf("cycle %d node %d region %s: %w", c.N, key.Node, key.Region, err)
			}
		}
	}
	return nil
}

type missingTable struct{}

func (missingTable) Expand(m *material.Material) error {
	if fps := m.FissionProducts(); len(fps) > 0 {
		return fmt.Errorf("%w: cannot expand %s", ErrNoYieldTable, fps[0].Name)
	}
	return nil
}
