package eranos

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpggio/burnup/internal/domain/cycle"
)

// number matches a decimal with an optional exponent, Fortran D included.
const number = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[EeDd][-+]?\d+)?`

var (
	regionListAnchor = regexp.MustCompile(`^->LISTE_MILIEUX.*`)
	fuelName         = regexp.MustCompile(`'(FUEL\d+)'`)
	blanketAnchor    = regexp.MustCompile(`^->BLANKET`)
	coolingAnchor    = regexp.MustCompile(`^->COOLING(?:TIME)?\s+([^\s;]+)(?:\s+([^\s;]+))?`)
	cycleAnchor      = regexp.MustCompile(`.*->CYCLE\s+(\d+)`)
	passeAnchor      = regexp.MustCompile(`^->PASSE\s*\(\s*([^)\s]+)\s*\)`)
	iterAnchor       = regexp.MustCompile(`^->ITER\s+(\d+)`)
)

// readHeader reads the region list, the blanket and cooling declarations and
// the cycle declarations, then rewinds the stream.
func (in *ingestion) readHeader() error {
	if err := in.readRegions(); err != nil {
		return err
	}
	afterRegions := in.cur.Position()

	_, blanket, err := in.cur.Probe(blanketAnchor)
	if err != nil {
		return err
	}
	if blanket {
		in.report.Blanket = true
		in.report.Regions = append(in.report.Regions, cycle.BlanketRegion)
	}
	if err := in.cur.Restore(afterRegions); err != nil {
		return err
	}

	if err := in.readCooling(); err != nil {
		return err
	}
	if err := in.cur.Restore(afterRegions); err != nil {
		return err
	}

	if err := in.readCycles(); err != nil {
		return err
	}
	return in.cur.Rewind()
}

func (in *ingestion) readRegions() error {
	m, err := in.cur.Require(regionListAnchor)
	if err != nil {
		return err
	}
	line := m.Text
	for {
		for _, g := range fuelName.FindAllStringSubmatch(line, -1) {
			in.report.Regions = append(in.report.Regions, g[1])
		}
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			break
		}
		line, err = in.cur.ReadLine()
		if err != nil {
			return fmt.Errorf("region list not terminated: %w", err)
		}
	}
	if len(in.report.Regions) == 0 {
		return fmt.Errorf("%w on line %d", ErrNoRegions, m.Line)
	}
	return nil
}

func (in *ingestion) readCooling() error {
	m, ok, err := in.cur.Probe(coolingAnchor)
	if err != nil {
		return err
	}
	if !ok {
		in.report.Cooling = CoolingPolicy{Mode: CoolingNone}
		return nil
	}

	value := m.Group(1)
	switch strings.ToUpper(value) {
	case "AUTO", "AUTOMATIC":
		fraction := in.opts.CoolingFraction
		if raw := m.Group(2); raw != "" {
			fraction, err = parseNumber(raw)
			if err != nil || fraction <= 0 {
				return &ParseError{Line: m.Line, Text: m.Text, Field: "cooling fraction", Err: numberErr(err)}
			}
		}
		in.report.Cooling = CoolingPolicy{Mode: CoolingAuto, Fraction: fraction}
	default:
		duration, err := parseNumber(value)
		if err != nil || duration < 0 {
			return &ParseError{Line: m.Line, Text: m.Text, Field: "cooling time", Err: numberErr(err)}
		}
		mode := CoolingFixed
		if duration == 0 {
			mode = CoolingNone
		}
		in.report.Cooling = CoolingPolicy{Mode: mode, Duration: duration}
	}
	return nil
}

func (in *ingestion) readCycles() error {
	for {
		m, ok, err := in.cur.Find(cycleAnchor)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		n, err := strconv.Atoi(m.Group(1))
		if err != nil {
			return &ParseError{Line: m.Line, Text: m.Text, Field: "cycle number", Err: err}
		}

		m, ok, err = in.cur.Find(passeAnchor)
		if err != nil {
			return err
		}
		if !ok {
			in.warn("cycle declaration without timestep ignored", "cycle", n)
			break
		}
		timestep, err := parseNumber(m.Group(1))
		if err != nil || timestep <= 0 {
			return &ParseError{Line: m.Line, Text: m.Text, Field: "timestep", Err: numberErr(err)}
		}

		m, err = in.cur.Require(iterAnchor)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", n, err)
		}
		iterations, err := strconv.Atoi(m.Group(1))
		if err != nil {
			return &ParseError{Line: m.Line, Text: m.Text, Field: "iterations", Err: err}
		}

		cooling := in.report.Cooling.For(timestep, iterations)
		c := cycle.New(n, timestep, iterations, cooling)
		c.Regions = append([]string(nil), in.report.Regions...)
		in.report.Cycles = append(in.report.Cycles, c)
		in.total += c.Nodes() * len(in.report.Regions)
	}
	if len(in.report.Cycles) == 0 {
		return ErrNoCycles
	}
	return nil
}

// parseNumber parses a decimal, accepting Fortran D exponents.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	s = strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'E'
		}
		return r
	}, s)
	return strconv.ParseFloat(s, 64)
}

// errOutOfRange is reported for numbers that parse but are not allowed.
var errOutOfRange = errors.New("value out of range")

func numberErr(err error) error {
	if err != nil {
		return err
	}
	return errOutOfRange
}
