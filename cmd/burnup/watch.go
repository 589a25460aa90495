package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <report>",
	Short: "Re-ingest a report every time it changes",
	Long: `Ingests the report once, then watches it and stores a new run after each
settled change. Useful while a calculation is still writing its output.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a change is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, closeDB, err := openRuns(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	logger := newLogger(cmd)
	debounce, _ := cmd.Flags().GetDuration("debounce")
	w, err := watch.New(args[0], debounce, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ingest := func() {
		r, err := svc.Ingest(ctx, run.IngestRequest{Path: w.Path})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "ingest failed: %v\n", err)
			return
		}
		if err := printRun(cmd, r); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		}
	}

	ingest()
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", w.Path)
	err = w.Run(ctx, func(ev watch.Event) {
		if ev.Removed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s removed, waiting\n", ev.Path)
			return
		}
		ingest()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
