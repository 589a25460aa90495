package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/rpggio/burnup/internal/repository"
)

// Service handles ingestion runs and queries over their results.
type Service struct {
	repo   Repository
	loader Loader
	engine *metrics.Engine
	logger *slog.Logger
}

// NewService creates a new run service.
func NewService(repo Repository, loader Loader, engine *metrics.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, loader: loader, engine: engine, logger: logger}
}

// IngestRequest defines ingestion inputs.
type IngestRequest struct {
	Path string
	// Name defaults to the file name of Path.
	Name string
}

// Ingest loads a report and persists its results as a new run.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*Run, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	report, err := s.loader.LoadFile(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", req.Path, err)
	}

	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(req.Path)
	}
	r := NewRun(name, req.Path, report)
	if err := s.repo.Create(ctx, r, report); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	s.logger.Info("run created", "run_id", r.ID, "cycles", r.Cycles, "warnings", len(r.Warnings))
	return r, nil
}

// NewRun describes report as a new run with a fresh ID.
func NewRun(name, path string, report *eranos.Report) *Run {
	r := &Run{
		ID:         uuid.NewString(),
		Name:       name,
		SourcePath: path,
		Regions:    append([]string(nil), report.Regions...),
		Blanket:    report.Blanket,
		Cooling:    report.Cooling,
		Cycles:     len(report.Cycles),
		Warnings:   append([]string(nil), report.Warnings...),
		CreatedAt:  time.Now().UTC(),
	}
	if report.Trailing != nil {
		r.Trailing = report.Trailing.N
	}
	return r
}

// List returns run summaries, newest first.
func (s *Service) List(ctx context.Context) ([]RunSummary, error) {
	return s.repo.List(ctx)
}

// Get fetches a run by ID.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrRunNotFound, "getting run")
	}
	return r, nil
}

// Cycles summarizes every cycle of a run.
func (s *Service) Cycles(ctx context.Context, id string) ([]CycleSummary, error) {
	cycles, err := s.repo.LoadCycles(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrRunNotFound, "loading cycles")
	}
	out := make([]CycleSummary, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, SummarizeCycle(c))
	}
	return out, nil
}

// Material returns the composition at ref.
func (s *Service) Material(ctx context.Context, id string, ref MaterialRef) (*Composition, error) {
	c, err := s.cycle(ctx, id, ref.Cycle)
	if err != nil {
		return nil, err
	}
	m, err := ref.Resolve(c)
	if err != nil {
		return nil, err
	}
	comp := NewComposition(m)
	return &comp, nil
}

// Metrics evaluates the derived metrics of the material at ref.
func (s *Service) Metrics(ctx context.Context, id string, ref MaterialRef) (*metrics.Summary, error) {
	c, err := s.cycle(ctx, id, ref.Cycle)
	if err != nil {
		return nil, err
	}
	m, err := ref.Resolve(c)
	if err != nil {
		return nil, err
	}
	summary := s.engine.Summarize(m)
	return &summary, nil
}

// Balance returns the charge/discharge accounting of cycle n.
func (s *Service) Balance(ctx context.Context, id string, n int) (*Balance, error) {
	c, err := s.cycle(ctx, id, n)
	if err != nil {
		return nil, err
	}
	return NewBalance(c), nil
}

// NewBalance builds the balance view of c.
func NewBalance(c *cycle.Cycle) *Balance {
	regime, consistent := c.Regime()
	b := &Balance{
		Cycle:          c.N,
		RequiredFeed:   c.RequiredFeed,
		UraniumAdded:   c.UraniumAdded,
		ExcessActinide: c.ExcessActinide,
		Regime:         regime,
		Consistent:     consistent,
	}
	if c.Charge != nil {
		comp := NewComposition(c.Charge)
		b.Charge = &comp
	}
	if c.Discharge != nil {
		comp := NewComposition(c.Discharge)
		b.Discharge = &comp
	}
	return b
}

// Delete removes a run and everything stored under it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, ErrRunNotFound, "deleting run")
	}
	s.logger.Info("run deleted", "run_id", id)
	return nil
}

func (s *Service) cycle(ctx context.Context, id string, n int) (*cycle.Cycle, error) {
	c, err := s.repo.LoadCycle(ctx, id, n)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading cycle: %w", err)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, notFound(err, ErrRunNotFound, "getting run")
	}
	return nil, fmt.Errorf("%w: %d", ErrCycleNotFound, n)
}

func notFound(err, sentinel error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", action, err)
}
