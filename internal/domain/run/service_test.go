package run_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/rpggio/burnup/internal/repository"
	"github.com/rpggio/burnup/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, repo *mocks.RunRepository, loader *mocks.Loader) *run.Service {
	t.Helper()
	coeffs, err := metrics.DefaultCoefficients()
	require.NoError(t, err)
	return run.NewService(repo, loader, metrics.NewEngine(coeffs, metrics.Options{}), nil)
}

func sampleCycle(t *testing.T) *cycle.Cycle {
	t.Helper()
	c := cycle.New(1, 100, 1, 0)
	c.Regions = []string{"FUEL1"}
	for node := 0; node < c.Nodes(); node++ {
		m := material.New()
		require.NoError(t, m.AddMass("Pu239", 4))
		require.NoError(t, m.AddMass("U238", 16))
		m.Volume = material.Float(1000)
		c.Set(node, "FUEL1", m)
	}
	c.Charge = material.New()
	require.NoError(t, c.Charge.AddMass("U238", 2))
	c.Discharge = material.New()
	c.SetRegime("FUEL1", cycle.RegimeRequired)
	c.UraniumAdded["FUEL1"] = 2
	c.RequiredFeed = 1.5
	return c
}

func TestRunService_Ingest(t *testing.T) {
	ctx := context.Background()
	report := &eranos.Report{
		Regions:  []string{"FUEL1", "FUEL2"},
		Cycles:   []*cycle.Cycle{cycle.New(1, 100, 2, 0)},
		Trailing: cycle.New(2, 0, 0, 0),
		Warnings: []string{"mass balance cycle number differs from declaration"},
	}

	loader := &mocks.Loader{}
	loader.On("LoadFile", ctx, "/data/core.out").Return(report, nil)
	repo := &mocks.RunRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*run.Run"), report).Return(nil)

	svc := newService(t, repo, loader)
	r, err := svc.Ingest(ctx, run.IngestRequest{Path: "/data/core.out"})
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	require.Equal(t, "core.out", r.Name)
	require.Equal(t, 1, r.Cycles)
	require.Equal(t, 2, r.Trailing)
	require.Equal(t, report.Warnings, r.Warnings)
	repo.AssertExpectations(t)
}

func TestRunService_IngestValidation(t *testing.T) {
	svc := newService(t, &mocks.RunRepository{}, &mocks.Loader{})
	_, err := svc.Ingest(context.Background(), run.IngestRequest{Path: "  "})
	require.ErrorIs(t, err, run.ErrInvalidInput)
}

func TestRunService_IngestLoadFailureIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	loader := &mocks.Loader{}
	loader.On("LoadFile", ctx, "bad.out").Return((*eranos.Report)(nil), eranos.ErrNoCycles)
	repo := &mocks.RunRepository{}

	svc := newService(t, repo, loader)
	_, err := svc.Ingest(ctx, run.IngestRequest{Path: "bad.out"})
	require.ErrorIs(t, err, eranos.ErrNoCycles)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("Get", ctx, "missing").Return((*run.Run)(nil), repository.ErrNotFound)

	svc := newService(t, repo, &mocks.Loader{})
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, run.ErrRunNotFound)
}

func TestRunService_GetWrapsStorageErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("Get", ctx, "r1").Return((*run.Run)(nil), errors.New("disk I/O error"))

	svc := newService(t, repo, &mocks.Loader{})
	_, err := svc.Get(ctx, "r1")
	require.ErrorContains(t, err, "getting run: disk I/O error")
}

func TestRunService_Cycles(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("LoadCycles", ctx, "r1").Return([]*cycle.Cycle{sampleCycle(t)}, nil)

	svc := newService(t, repo, &mocks.Loader{})
	cycles, err := svc.Cycles(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	require.Equal(t, []float64{0, 100}, cycles[0].Times)
	require.Equal(t, []string{"FUEL1"}, cycles[0].Regions)
	require.Equal(t, cycle.RegimeRequired, cycles[0].Regime)
	require.True(t, cycles[0].Consistent)
	require.InDelta(t, 2.0, cycles[0].UraniumAdded, 1e-12)
}

func TestRunService_Material(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("LoadCycle", ctx, "r1", 1).Return(sampleCycle(t), nil)

	svc := newService(t, repo, &mocks.Loader{})
	comp, err := svc.Material(ctx, "r1", run.MaterialRef{Cycle: 1, Node: 1, Region: "FUEL1"})
	require.NoError(t, err)
	require.InDelta(t, 20.0, comp.Mass, 1e-12)
	require.InDelta(t, 4.0, comp.FissileMass, 1e-12)
	require.Len(t, comp.Nuclides, 2)
	require.Equal(t, "U238", comp.Nuclides[0].Name)

	comp, err = svc.Material(ctx, "r1", run.MaterialRef{Cycle: 1, Region: "Charge"})
	require.NoError(t, err)
	require.InDelta(t, 2.0, comp.Mass, 1e-12)
}

func TestRunService_MaterialMissing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("LoadCycle", ctx, "r1", 1).Return(sampleCycle(t), nil)

	svc := newService(t, repo, &mocks.Loader{})
	_, err := svc.Material(ctx, "r1", run.MaterialRef{Cycle: 1, Node: 5, Region: "FUEL1"})
	require.ErrorIs(t, err, run.ErrMaterialNotFound)
}

func TestRunService_CycleMissing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("LoadCycle", ctx, "r1", 9).Return((*cycle.Cycle)(nil), repository.ErrNotFound)
	repo.On("Get", ctx, "r1").Return(&run.Run{ID: "r1"}, nil)
	repo.On("LoadCycle", ctx, "gone", 1).Return((*cycle.Cycle)(nil), repository.ErrNotFound)
	repo.On("Get", ctx, "gone").Return((*run.Run)(nil), repository.ErrNotFound)

	svc := newService(t, repo, &mocks.Loader{})
	_, err := svc.Balance(ctx, "r1", 9)
	require.ErrorIs(t, err, run.ErrCycleNotFound)

	_, err = svc.Balance(ctx, "gone", 1)
	require.ErrorIs(t, err, run.ErrRunNotFound)
}

func TestRunService_Metrics(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("LoadCycle", ctx, "r1", 1).Return(sampleCycle(t), nil)

	svc := newService(t, repo, &mocks.Loader{})
	summary, err := svc.Metrics(ctx, "r1", run.MaterialRef{Cycle: 1, Node: 0, Region: "FUEL1"})
	require.NoError(t, err)
	require.InDelta(t, 20.0, summary.Mass, 1e-12)
	require.InDelta(t, 4.0/8+16.0/75, summary.SignificantQuantities, 1e-12)
	require.Nil(t, summary.CriticalMass)
}

func TestRunService_Balance(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("LoadCycle", ctx, "r1", 1).Return(sampleCycle(t), nil)

	svc := newService(t, repo, &mocks.Loader{})
	b, err := svc.Balance(ctx, "r1", 1)
	require.NoError(t, err)
	require.Equal(t, 1, b.Cycle)
	require.Equal(t, cycle.RegimeRequired, b.Regime)
	require.InDelta(t, 1.5, b.RequiredFeed, 1e-12)
	require.NotNil(t, b.Charge)
	require.NotNil(t, b.Discharge)
	require.Zero(t, b.Discharge.Mass)
}

func TestRunService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RunRepository{}
	repo.On("Delete", ctx, "r1").Return(nil)
	repo.On("Delete", ctx, "missing").Return(repository.ErrNotFound)

	svc := newService(t, repo, &mocks.Loader{})
	require.NoError(t, svc.Delete(ctx, "r1"))
	require.ErrorIs(t, svc.Delete(ctx, "missing"), run.ErrRunNotFound)
}
