package mcp

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/burnup/internal/domain/run"
)

// registerTools registers every run tool on server.
func registerTools(server *sdkmcp.Server, runs RunService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ingest_report",
		Description: "Ingest an ERANOS burnup output file, expand lumped fission products and store the result as a new run",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ingestReportInput) (*sdkmcp.CallToolResult, runOutput, error) {
		r, err := runs.Ingest(ctx, run.IngestRequest{Path: in.Path, Name: in.Name})
		if err != nil {
			return nil, runOutput{}, toolError(err)
		}
		return nil, newRunOutput(r), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List stored runs, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
		summaries, err := runs.List(ctx)
		if err != nil {
			return nil, listRunsOutput{}, toolError(err)
		}
		out := listRunsOutput{Runs: make([]runSummaryOutput, 0, len(summaries))}
		for _, s := range summaries {
			out.Runs = append(out.Runs, runSummaryOutput{
				ID:         s.ID,
				Name:       s.Name,
				SourcePath: s.SourcePath,
				Cycles:     s.Cycles,
				Warnings:   s.Warnings,
				CreatedAt:  s.CreatedAt.Format(time.RFC3339),
			})
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Get a run: regions, cooling policy, cycle count and ingestion warnings",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in runIDInput) (*sdkmcp.CallToolResult, runOutput, error) {
		r, err := runs.Get(ctx, in.RunID)
		if err != nil {
			return nil, runOutput{}, toolError(err)
		}
		return nil, newRunOutput(r), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_cycles",
		Description: "List the cycles of a run with their node times and feed accounting",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in runIDInput) (*sdkmcp.CallToolResult, listCyclesOutput, error) {
		cycles, err := runs.Cycles(ctx, in.RunID)
		if err != nil {
			return nil, listCyclesOutput{}, toolError(err)
		}
		out := listCyclesOutput{Cycles: make([]cycleOutput, 0, len(cycles))}
		for _, c := range cycles {
			out.Cycles = append(out.Cycles, newCycleOutput(c))
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_material",
		Description: "Get the nuclide composition of a region at a time node, or of a cycle's charge or discharge",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in materialInput) (*sdkmcp.CallToolResult, materialOutput, error) {
		comp, err := runs.Material(ctx, in.RunID, in.ref())
		if err != nil {
			return nil, materialOutput{}, toolError(err)
		}
		return nil, materialOutput{Ref: in.ref(), Composition: *comp}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "material_metrics",
		Description: "Evaluate heat, neutron, dose, critical mass and attractiveness metrics of a material; undefined values are null",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in materialInput) (*sdkmcp.CallToolResult, metricsOutput, error) {
		summary, err := runs.Metrics(ctx, in.RunID, in.ref())
		if err != nil {
			return nil, metricsOutput{}, toolError(err)
		}
		return nil, metricsOutput{Ref: in.ref(), Metrics: *summary}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_balance",
		Description: "Get the charge and discharge of a cycle with its feed regime and feed masses",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in balanceInput) (*sdkmcp.CallToolResult, balanceOutput, error) {
		b, err := runs.Balance(ctx, in.RunID, in.Cycle)
		if err != nil {
			return nil, balanceOutput{}, toolError(err)
		}
		return nil, newBalanceOutput(b), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_run",
		Description: "Delete a run and all stored compositions",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in runIDInput) (*sdkmcp.CallToolResult, deleteRunOutput, error) {
		if err := runs.Delete(ctx, in.RunID); err != nil {
			return nil, deleteRunOutput{}, toolError(err)
		}
		return nil, deleteRunOutput{Deleted: in.RunID}, nil
	})
}
