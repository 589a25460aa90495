// Package stack builds the ingestion and metrics components from
// configuration. The server and the CLI share it.
package stack

import (
	"fmt"
	"log/slog"

	"github.com/rpggio/burnup/internal/config"
	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/domain/yield"
	"github.com/rpggio/burnup/internal/eranos"
)

// NewLoader builds a report loader. Without a yield table the loader rejects
// reports that carry lumped fission products.
func NewLoader(cfg config.IngestConfig, logger *slog.Logger) (*eranos.Loader, error) {
	var expander cycle.Expander
	if cfg.YieldTable != "" {
		table, err := yield.LoadFile(cfg.YieldTable)
		if err != nil {
			return nil, fmt.Errorf("loading yield table: %w", err)
		}
		logger.Info("yield table loaded", "path", cfg.YieldTable, "parents", len(table.Keys()), "products", len(table.Products()))
		expander = table
	}
	return eranos.NewLoader(expander, logger, eranos.Options{
		CoolingFraction: cfg.CoolingFraction,
		Balance: cycle.BalanceOptions{
			Tracer:    cfg.BlanketTracer,
			Threshold: cfg.BlanketThreshold,
		},
	}), nil
}

// NewEngine builds the metrics engine, reading the coefficient override file
// when one is configured.
func NewEngine(cfg config.MetricsConfig) (*metrics.Engine, error) {
	var (
		coeffs *metrics.Coefficients
		err    error
	)
	if cfg.Coefficients != "" {
		coeffs, err = metrics.LoadCoefficientsFile(cfg.Coefficients)
	} else {
		coeffs, err = metrics.DefaultCoefficients()
	}
	if err != nil {
		return nil, fmt.Errorf("loading coefficients: %w", err)
	}
	density, err := metrics.ParseDensityModel(cfg.Density)
	if err != nil {
		return nil, err
	}
	return metrics.NewEngine(coeffs, metrics.Options{
		IgnoreDose:   cfg.IgnoreDose,
		Density:      density,
		FixedDensity: cfg.FixedDensity,
	}), nil
}
