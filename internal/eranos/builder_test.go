package eranos_test

import (
	"fmt"
	"strings"
)

// reportBuilder writes synthetic ERANOS output with the layout the loader
// expects.
type reportBuilder struct {
	strings.Builder
}

type entry struct {
	name string
	mass string
}

func (b *reportBuilder) line(format string, args ...any) *reportBuilder {
	fmt.Fprintf(&b.Builder, format+"\n", args...)
	return b
}

// regions writes the region list, one region per line after the first.
func (b *reportBuilder) regions(names ...string) *reportBuilder {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	if len(quoted) == 1 {
		return b.line("->LISTE_MILIEUX %s ;", quoted[0])
	}
	b.line("->LISTE_MILIEUX %s", quoted[0])
	for _, q := range quoted[1 : len(quoted)-1] {
		b.line("     %s", q)
	}
	return b.line("     %s ;", quoted[len(quoted)-1])
}

func (b *reportBuilder) declare(n int, timestep string, iterations int) *reportBuilder {
	b.line("->CYCLE %d ;", n)
	b.line("->PASSE (%s) ;", timestep)
	return b.line("->ITER %d ;", iterations)
}

func (b *reportBuilder) rates(region, nuSigmaF, sigmaA, diffusion string) *reportBuilder {
	b.line(" ONE GROUP CROSS SECTIONS")
	b.line(" REGION : '%s'", region)
	b.line("   REACTION     NU*SIGF      SIGA        DIFF")
	return b.line("   TOTAL     %s  %s  %s", nuSigmaF, sigmaA, diffusion)
}

func (b *reportBuilder) massBalance(n int) *reportBuilder {
	return b.line("  'MASS BALANCE OF CYCLE %d'", n)
}

func (b *reportBuilder) material(region, volume string, entries ...entry) *reportBuilder {
	b.line("     MATERIAL %s     ", region)
	b.line("       VOLUME (CM3)  =   %s", volume)
	b.line("  ------------------------------------------------")
	b.line("       ISOTOPE    DENSITY      MASS (KG)   ")
	b.line("  ------------------------------------------------")
	b.line("")
	b.line("  ")
	for i, e := range entries {
		b.line("   %3d  %-10s  1.000E-05  %s", i+1, e.name, e.mass)
	}
	return b.line("  TOTAL")
}

func (b *reportBuilder) feedBlock() *reportBuilder {
	return b.line(" M A T E R I A L   B A L A N C E")
}

func (b *reportBuilder) required(fuel int, uranium, feed string) *reportBuilder {
	b.line("  REQUIRED FEED FOR FUEL %d", fuel)
	b.line("  ->REPLMASS1 %s ;", uranium)
	return b.line("  ->REPLMASS2 %s ;", feed)
}

func (b *reportBuilder) additional(fuel int, extra, uranium string) *reportBuilder {
	b.line("  ADDITIONAL FEED FOR FUEL %d", fuel)
	b.line("  ->EXTRA %s ;", extra)
	return b.line("  ->REPLMASS %s ;", uranium)
}

func (b *reportBuilder) reader() *strings.Reader {
	return strings.NewReader(b.String())
}
