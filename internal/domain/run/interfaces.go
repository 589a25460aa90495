package run

import (
	"context"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/eranos"
)

// Repository provides persistence for ingestion runs.
type Repository interface {
	Create(ctx context.Context, r *Run, report *eranos.Report) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context) ([]RunSummary, error)
	LoadCycles(ctx context.Context, id string) ([]*cycle.Cycle, error)
	LoadCycle(ctx context.Context, id string, n int) (*cycle.Cycle, error)
	Delete(ctx context.Context, id string) error
}

// Loader ingests a report file.
type Loader interface {
	LoadFile(ctx context.Context, path string) (*eranos.Report, error)
}
