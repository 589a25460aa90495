package mocks

import (
	"context"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/stretchr/testify/mock"
)

// RunRepository is a mock for run.Repository.
type RunRepository struct {
	mock.Mock
}

func (m *RunRepository) Create(ctx context.Context, r *run.Run, report *eranos.Report) error {
	args := m.Called(ctx, r, report)
	return args.Error(0)
}

func (m *RunRepository) Get(ctx context.Context, id string) (*run.Run, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*run.Run); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RunRepository) List(ctx context.Context) ([]run.RunSummary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]run.RunSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RunRepository) LoadCycles(ctx context.Context, id string) ([]*cycle.Cycle, error) {
	args := m.Called(ctx, id)
	if cycles, ok := args.Get(0).([]*cycle.Cycle); ok {
		return cycles, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RunRepository) LoadCycle(ctx context.Context, id string, n int) (*cycle.Cycle, error) {
	args := m.Called(ctx, id, n)
	if c, ok := args.Get(0).(*cycle.Cycle); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RunRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Loader is a mock for run.Loader.
type Loader struct {
	mock.Mock
}

func (m *Loader) LoadFile(ctx context.Context, path string) (*eranos.Report, error) {
	args := m.Called(ctx, path)
	if report, ok := args.Get(0).(*eranos.Report); ok {
		return report, args.Error(1)
	}
	return nil, args.Error(1)
}
