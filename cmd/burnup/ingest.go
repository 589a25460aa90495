package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/sqlite"
	"github.com/rpggio/burnup/internal/stack"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <report>",
	Short: "Ingest a report into the run database",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().String("name", "", "run name (default the report file name)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openRuns(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	name, _ := cmd.Flags().GetString("name")
	r, err := svc.Ingest(cmd.Context(), run.IngestRequest{Path: args[0], Name: name})
	if err != nil {
		return err
	}
	return printRun(cmd, r)
}

// openRuns opens the run database and builds the run service over it.
func openRuns(cmd *cobra.Command) (*run.Service, func(), error) {
	logger := newLogger(cmd)

	if dir := filepath.Dir(cfg.DB.Path); cfg.DB.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("preparing database path: %w", err)
		}
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, nil, err
	}

	svc, err := newRunService(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return svc, func() { db.Close() }, nil
}

func newRunService(db *sqlite.DB, logger *slog.Logger) (*run.Service, error) {
	loader, err := stack.NewLoader(cfg.Ingest, logger)
	if err != nil {
		return nil, err
	}
	engine, err := stack.NewEngine(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	return run.NewService(sqlite.NewRunRepository(db), loader, engine, logger), nil
}

func printRun(cmd *cobra.Command, r *run.Run) error {
	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		return writeJSON(out, r)
	}
	writeRun(out, r)
	return nil
}

func writeRun(w io.Writer, r *run.Run) {
	fmt.Fprintf(w, "run %s (%s)\n", r.ID, r.Name)
	fmt.Fprintf(w, "  regions:  %v\n", r.Regions)
	fmt.Fprintf(w, "  cycles:   %d\n", r.Cycles)
	if r.Trailing > 0 {
		fmt.Fprintf(w, "  trailing: cycle %d\n", r.Trailing)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning:  %s\n", warning)
	}
}
