package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/eranos"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <report>",
	Short: "Print the charge and discharge accounting of a cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().Int("cycle", 1, "cycle index")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	report, _, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("cycle")

	b, err := reportBalance(report, n)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), b)
	}
	writeBalance(cmd.OutOrStdout(), b)
	return nil
}

func reportBalance(report *eranos.Report, n int) (*run.Balance, error) {
	c, ok := report.Cycle(n)
	if !ok {
		return nil, fmt.Errorf("%w: %d", run.ErrCycleNotFound, n)
	}
	return run.NewBalance(c), nil
}

func writeBalance(w io.Writer, b *run.Balance) {
	fmt.Fprintf(w, "cycle %d (%s", b.Cycle, b.Regime)
	if !b.Consistent {
		fmt.Fprint(w, ", mixed regimes")
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "  required feed:   %.6g kg\n", b.RequiredFeed)
	writeByRegion(w, "uranium added", b.UraniumAdded)
	writeByRegion(w, "excess actinide", b.ExcessActinide)
	writeComposition(w, run.SlotCharge, b.Charge)
	writeComposition(w, run.SlotDischarge, b.Discharge)
}

func writeByRegion(w io.Writer, label string, byRegion map[string]float64) {
	regions := make([]string, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	for _, r := range regions {
		fmt.Fprintf(w, "  %s %s: %.6g kg\n", label, r, byRegion[r])
	}
}

func writeComposition(w io.Writer, slot string, c *run.Composition) {
	if c == nil {
		fmt.Fprintf(w, "  %s: none\n", slot)
		return
	}
	fmt.Fprintf(w, "  %s: %.6g kg (actinide %.6g kg, fissile %.6g kg)\n", slot, c.Mass, c.ActinideMass, c.FissileMass)
	for _, n := range c.Nuclides {
		fmt.Fprintf(w, "    %-10s %.6g\n", n.Name, n.Mass)
	}
}
