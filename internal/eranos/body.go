package eranos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/nuclide"
	"github.com/rpggio/burnup/internal/scan"
)

// boilerplateLines separates the volume line of a material block from its
// first nuclide line.
const boilerplateLines = 5

// maxFeedEntries bounds the entries of one material-balance block.
const maxFeedEntries = 3

// maxTrailingRegions bounds the end-of-run cross-section read.
const maxTrailingRegions = 4

var (
	totalAnchor       = regexp.MustCompile(`^\s*TOTAL\s+(` + number + `)\s+(` + number + `)\s+(` + number + `)`)
	massBalanceAnchor = regexp.MustCompile(`^\s*'MASS BALANCE OF CYCLE\s+(\d+)'`)
	feedBlockAnchor   = regexp.MustCompile(`^\s*M A T E R I A L   B A L A N C E`)
	requiredAnchor    = regexp.MustCompile(`^\s*REQUIRED FEED FOR FUEL\s*(\d+)`)
	additionalAnchor  = regexp.MustCompile(`^\s*ADDITIONAL FEED FOR FUEL\s*(\d+)`)
	anyRegionAnchor   = regexp.MustCompile(`^\s*REGION\s*:`)
	replMass1Anchor   = regexp.MustCompile(`^\s*->REPLMASS1\s+(` + number + `)`)
	replMass2Anchor   = regexp.MustCompile(`^\s*->REPLMASS2\s+(` + number + `)`)
	replMassAnchor    = regexp.MustCompile(`^\s*->REPLMASS\s+(` + number + `)`)
	extraAnchor       = regexp.MustCompile(`^\s*->EXTRA\s+(` + number + `)`)
)

func regionAnchor(region string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*REGION\s*:\s*'?` + regexp.QuoteMeta(region) + `(?:'|\s|$)`)
}

func materialAnchor(regions []string) *regexp.Regexp {
	quoted := make([]string, len(regions))
	for i, r := range regions {
		quoted[i] = regexp.QuoteMeta(r)
	}
	return regexp.MustCompile(`^\s+MATERIAL\s+(` + strings.Join(quoted, "|") + `)\s`)
}

// readBody reads every declared cycle in order.
func (in *ingestion) readBody(ctx context.Context) error {
	materialRe := materialAnchor(in.report.Regions)
	for _, c := range in.report.Cycles {
		if err := in.readCycle(ctx, c, materialRe); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return ctxErr
			}
			return fmt.Errorf("cycle %d: %w", c.N, err)
		}
	}
	return nil
}

func (in *ingestion) readCycle(ctx context.Context, c *cycle.Cycle, materialRe *regexp.Regexp) error {
	rates := make(map[string]material.Rates, len(in.report.Regions))
	for _, region := range in.report.Regions {
		r, err := in.readRates(region, in.cur.Require)
		if err != nil {
			return fmt.Errorf("cross sections of %s: %w", region, err)
		}
		rates[region] = *r
	}

	m, err := in.cur.Require(massBalanceAnchor)
	if err != nil {
		return err
	}
	if n, _ := strconv.Atoi(m.Group(1)); n != c.N {
		in.warn("mass balance cycle number differs from declaration", "declared", c.N, "found", n, "line", m.Line)
	}

	for node := 0; node < c.Nodes(); node++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.readNode(c, node, materialRe, rates); err != nil {
			return fmt.Errorf("node %d: %w", node, err)
		}
	}

	if _, err := in.cur.Require(feedBlockAnchor); err != nil {
		return err
	}
	return in.readFeeds(c)
}

type finder func(*regexp.Regexp) (scan.Match, error)

// readRates reads the one-group summary of a region. find decides whether a
// missing region is fatal.
func (in *ingestion) readRates(region string, find finder) (*material.Rates, error) {
	if _, err := find(regionAnchor(region)); err != nil {
		return nil, err
	}
	m, err := find(totalAnchor)
	if err != nil {
		return nil, err
	}
	var vals [3]float64
	for i, field := range []string{"nu-sigma-f", "sigma-a", "diffusion"} {
		v, err := parseNumber(m.Group(i + 1))
		if err != nil {
			return nil, &ParseError{Line: m.Line, Text: m.Text, Field: field, Err: err}
		}
		vals[i] = v
	}
	return &material.Rates{NuSigmaF: vals[0], SigmaA: vals[1], Diffusion: vals[2]}, nil
}

func (in *ingestion) readNode(c *cycle.Cycle, node int, materialRe *regexp.Regexp, rates map[string]material.Rates) error {
	for range in.report.Regions {
		m, err := in.cur.Require(materialRe)
		if err != nil {
			return err
		}
		region := m.Group(1)
		if _, dup := c.Material(node, region); dup {
			return &ParseError{Line: m.Line, Text: m.Text, Field: "region", Err: fmt.Errorf("region %s repeated", region)}
		}

		mat, err := in.readMaterial()
		if err != nil {
			return fmt.Errorf("region %s: %w", region, err)
		}
		if node == 0 {
			r := rates[region]
			mat.Rates = &r
		}
		c.Set(node, region, mat)
		in.progress()
	}
	for _, region := range in.report.Regions {
		if _, ok := c.Material(node, region); !ok {
			return fmt.Errorf("%w: %s", ErrMissingRegion, region)
		}
	}
	return nil
}

// readMaterial reads the block following a MATERIAL anchor: the volume line,
// the boilerplate, then nuclide lines up to a line with at most one field.
func (in *ingestion) readMaterial() (*material.Material, error) {
	line, err := in.readLine()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line.Text)
	if len(fields) == 0 {
		return nil, &ParseError{Line: line.Line, Text: line.Text, Field: "volume", Err: errOutOfRange}
	}
	volume, err := parseNumber(fields[len(fields)-1])
	if err != nil {
		return nil, &ParseError{Line: line.Line, Text: line.Text, Field: "volume", Err: err}
	}
	if err := in.cur.Skip(boilerplateLines); err != nil {
		return nil, err
	}

	mat := material.New()
	mat.Volume = &volume
	for {
		line, err := in.readLine()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line.Text)
		if len(fields) <= 1 {
			return mat, nil
		}
		if len(fields) < 4 {
			return nil, &ParseError{Line: line.Line, Text: line.Text, Field: "nuclide", Err: fmt.Errorf("want at least 4 fields, got %d", len(fields))}
		}
		if err := ingestNuclide(mat, fields[1], fields[3]); err != nil {
			return nil, &ParseError{Line: line.Line, Text: line.Text, Field: "nuclide", Err: err}
		}
	}
}

// ingestNuclide merges one nuclide line into mat.
func ingestNuclide(mat *material.Material, name, rawMass string) error {
	mass, err := parseNumber(rawMass)
	if err != nil {
		return err
	}
	var n nuclide.Nuclide
	if parent, ok := nuclide.StripPrefix(name); ok {
		n, err = nuclide.NewFissionProduct(nuclide.FissionProductPrefix+nuclide.Rename(parent), mass)
	} else {
		n, err = nuclide.Parse(nuclide.Rename(name), mass)
	}
	if err != nil {
		return err
	}
	mat.Add(n)
	return nil
}

// readFeeds reads the entries of a material-balance block. An entry that
// belongs to the next cycle ends the block without consuming it.
func (in *ingestion) readFeeds(c *cycle.Cycle) error {
	limit := min(maxFeedEntries, len(in.report.FuelRegions()))
	for i := 0; i < limit; i++ {
		from := in.cur.Position()
		idx, m, ok, err := in.cur.FindAny(requiredAnchor, additionalAnchor, massBalanceAnchor, feedBlockAnchor, anyRegionAnchor)
		if err != nil {
			return err
		}
		if !ok || idx > 1 {
			return in.cur.Restore(from)
		}
		region := "FUEL" + m.Group(1)

		regime := cycle.RegimeRequired
		if idx == 1 {
			regime = cycle.RegimeExcess
		}
		if prev := c.Regimes[region]; prev != cycle.RegimeNone && prev != regime {
			in.warn("feed regime changed within cycle", "cycle", c.N, "region", region, "from", prev, "to", regime)
		}
		c.SetRegime(region, regime)

		if regime == cycle.RegimeRequired {
			uranium, err := in.requireNumber(replMass1Anchor, "replacement mass 1")
			if err != nil {
				return err
			}
			feed, err := in.requireNumber(replMass2Anchor, "replacement mass 2")
			if err != nil {
				return err
			}
			c.UraniumAdded[region] += uranium
			c.RequiredFeed += feed
			continue
		}

		excess, err := in.requireNumber(extraAnchor, "extra")
		if err != nil {
			return err
		}
		uranium, err := in.requireNumber(replMassAnchor, "replacement mass")
		if err != nil {
			return err
		}
		c.ExcessActinide[region] += excess
		c.UraniumAdded[region] += uranium
	}
	return nil
}

func (in *ingestion) requireNumber(re *regexp.Regexp, field string) (float64, error) {
	m, err := in.cur.Require(re)
	if err != nil {
		return 0, err
	}
	v, err := parseNumber(m.Group(1))
	if err != nil {
		return 0, &ParseError{Line: m.Line, Text: m.Text, Field: field, Err: err}
	}
	return v, nil
}

// readTrailing reads the optional end-of-run cross sections into a trailing
// zero-duration cycle.
func (in *ingestion) readTrailing() {
	last := in.report.Cycles[len(in.report.Cycles)-1]
	trailing := cycle.New(last.N+1, 0, 0, 0)
	trailing.Regions = append([]string(nil), in.report.Regions...)

	probe := func(re *regexp.Regexp) (scan.Match, error) {
		m, ok, err := in.cur.Probe(re)
		if err != nil {
			return scan.Match{}, err
		}
		if !ok {
			return scan.Match{}, &scan.AnchorError{Pattern: re.String(), From: in.cur.Position()}
		}
		return m, nil
	}

	regions := in.report.Regions
	if len(regions) > maxTrailingRegions {
		regions = regions[:maxTrailingRegions]
	}
	for _, region := range regions {
		r, err := in.readRates(region, probe)
		if err != nil {
			if len(trailing.Materials) == 0 {
				in.warn("report has no end-of-run cross sections", "error", err)
			} else {
				in.warn("end-of-run cross sections incomplete", "region", region, "error", err)
			}
			break
		}
		mat := material.New()
		mat.Rates = r
		trailing.Set(0, region, mat)
	}
	if len(trailing.Materials) > 0 {
		in.report.Trailing = trailing
	}
}

func (in *ingestion) readLine() (scan.Match, error) {
	text, err := in.cur.ReadLine()
	if err != nil {
		return scan.Match{}, fmt.Errorf("reading line %d: %w", in.cur.Position().Line+1, unexpected(err))
	}
	return scan.Match{Text: text, Line: in.cur.Position().Line}, nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
