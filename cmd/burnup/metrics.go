package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/eranos"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <report>",
	Short: "Print the derived metrics of one material",
	Long: `Ingests the report and prints the metrics of the material addressed by
--cycle, --node and --region. The region may also be "charge" or "discharge"
for the mass-balance vectors of the cycle.`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().Int("cycle", 1, "cycle index")
	metricsCmd.Flags().Int("node", 0, "time node within the cycle")
	metricsCmd.Flags().String("region", run.SlotDischarge, "region name, charge or discharge")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	report, engine, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}

	var ref run.MaterialRef
	ref.Cycle, _ = cmd.Flags().GetInt("cycle")
	ref.Node, _ = cmd.Flags().GetInt("node")
	ref.Region, _ = cmd.Flags().GetString("region")

	summary, err := reportMetrics(report, engine, ref)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	writeSummary(cmd.OutOrStdout(), ref, summary)
	return nil
}

func reportMetrics(report *eranos.Report, engine *metrics.Engine, ref run.MaterialRef) (metrics.Summary, error) {
	c, ok := report.Cycle(ref.Cycle)
	if !ok {
		return metrics.Summary{}, fmt.Errorf("%w: %d", run.ErrCycleNotFound, ref.Cycle)
	}
	m, err := ref.Resolve(c)
	if err != nil {
		return metrics.Summary{}, err
	}
	return engine.Summarize(m), nil
}

func writeSummary(w io.Writer, ref run.MaterialRef, s metrics.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", ref)
	row := func(label string, v float64, unit string) {
		fmt.Fprintf(tw, "  %s\t%.6g\t%s\n", label, v, unit)
	}
	optional := func(label string, v *float64, unit string) {
		if v == nil {
			fmt.Fprintf(tw, "  %s\t-\t%s\n", label, unit)
			return
		}
		row(label, *v, unit)
	}

	row("mass", s.Mass, "kg")
	row("actinide mass", s.ActinideMass, "kg")
	row("fissile mass", s.FissileMass, "kg")
	optional("fissile ratio", s.FissileRatio, "")
	optional("volume", s.Volume, "cm3")
	row("decay heat", s.Heat, "W")
	row("decay heat (MA)", s.HeatMA, "W")
	optional("decay heat per kg", s.HeatPerKg, "W/kg")
	row("gamma heat", s.GammaHeat, "W")
	row("neutron source", s.Neutron, "n/s")
	optional("neutron source per kg", s.NeutronPerKg, "n/s/kg")
	row("dose at 1 m", s.Dose, "Sv/h")
	row("significant quantities", s.SignificantQuantities, "SQ")
	optional("critical mass", s.CriticalMass, "kg")
	optional("FOM1", s.FOM1, "")
	optional("FOM2", s.FOM2, "")
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
