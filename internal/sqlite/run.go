package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rpggio/burnup/internal/domain/cycle"
	"github.com/rpggio/burnup/internal/domain/material"
	"github.com/rpggio/burnup/internal/domain/run"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/rpggio/burnup/internal/repository"
)

var _ run.Repository = (*RunRepository)(nil)

// Material slots.
const (
	slotNode      = "node"
	slotCharge    = "charge"
	slotDischarge = "discharge"
)

// RunRepository implements run.Repository for SQLite
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create stores a run and every cycle, feed entry and composition of its
// report in one transaction.
func (r *RunRepository) Create(ctx context.Context, rn *run.Run, report *eranos.Report) error {
	regions, err := json.Marshal(rn.Regions)
	if err != nil {
		return fmt.Errorf("failed to encode regions: %w", err)
	}
	warnings, err := json.Marshal(nonNil(rn.Warnings))
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (id, name, source_path, regions, blanket, cooling_mode,
			cooling_duration, cooling_fraction, cycle_count, trailing, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		rn.ID,
		rn.Name,
		rn.SourcePath,
		string(regions),
		rn.Blanket,
		rn.Cooling.Mode.String(),
		rn.Cooling.Duration,
		rn.Cooling.Fraction,
		rn.Cycles,
		rn.Trailing,
		string(warnings),
		rn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create run: %w", err)
	}

	for _, c := range report.Cycles {
		if err := insertCycle(ctx, tx, rn.ID, c, false); err != nil {
			return err
		}
	}
	if report.Trailing != nil {
		if err := insertCycle(ctx, tx, rn.ID, report.Trailing, true); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func insertCycle(ctx context.Context, tx *sql.Tx, runID string, c *cycle.Cycle, trailing bool) error {
	regions, err := json.Marshal(nonNil(c.Regions))
	if err != nil {
		return fmt.Errorf("failed to encode cycle regions: %w", err)
	}
	query := `
		INSERT INTO cycles (run_id, n, timestep, iterations, cooling, regions, required_feed, trailing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query, runID, c.N, c.Timestep, c.Iterations, c.Cooling, string(regions), c.RequiredFeed, trailing)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cycle %d declared twice: %w", c.N, repository.ErrConflict)
		}
		return fmt.Errorf("failed to create cycle %d: %w", c.N, err)
	}

	feedQuery := `
		INSERT INTO feeds (run_id, cycle, region, regime, uranium_added, excess_actinide)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, region := range feedRegions(c) {
		_, err := tx.ExecContext(ctx, feedQuery, runID, c.N, region,
			c.Regimes[region].String(), c.UraniumAdded[region], c.ExcessActinide[region])
		if err != nil {
			return fmt.Errorf("failed to create feed of cycle %d region %s: %w", c.N, region, err)
		}
	}

	for _, key := range c.Keys() {
		if err := insertMaterial(ctx, tx, runID, c.N, slotNode, key.Node, key.Region, c.Materials[key]); err != nil {
			return err
		}
	}
	if c.Charge != nil {
		if err := insertMaterial(ctx, tx, runID, c.N, slotCharge, 0, "", c.Charge); err != nil {
			return err
		}
	}
	if c.Discharge != nil {
		if err := insertMaterial(ctx, tx, runID, c.N, slotDischarge, 0, "", c.Discharge); err != nil {
			return err
		}
	}
	return nil
}

func insertMaterial(ctx context.Context, tx *sql.Tx, runID string, n int, slot string, node int, region string, m *material.Material) error {
	var nuSigmaF, sigmaA, diffusion sql.NullFloat64
	if m.Rates != nil {
		nuSigmaF = sql.NullFloat64{Float64: m.Rates.NuSigmaF, Valid: true}
		sigmaA = sql.NullFloat64{Float64: m.Rates.SigmaA, Valid: true}
		diffusion = sql.NullFloat64{Float64: m.Rates.Diffusion, Valid: true}
	}
	var volume sql.NullFloat64
	if m.Volume != nil {
		volume = sql.NullFloat64{Float64: *m.Volume, Valid: true}
	}
	query := `
		INSERT INTO materials (run_id, cycle, slot, node, region, volume, nu_sigma_f, sigma_a, diffusion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := tx.ExecContext(ctx, query, runID, n, slot, node, region, volume, nuSigmaF, sigmaA, diffusion)
	if err != nil {
		return fmt.Errorf("failed to create material %s/%d/%s of cycle %d: %w", slot, node, region, n, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read material id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nuclides (material_id, name, mass) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare nuclide insert: %w", err)
	}
	defer stmt.Close()
	for _, nuc := range m.Nuclides() {
		if _, err := stmt.ExecContext(ctx, id, nuc.Name, nuc.Mass); err != nil {
			return fmt.Errorf("failed to create nuclide %s: %w", nuc.Name, err)
		}
	}
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(ctx context.Context, id string) (*run.Run, error) {
	query := `
		SELECT id, name, source_path, regions, blanket, cooling_mode, cooling_duration,
			cooling_fraction, cycle_count, trailing, warnings, created_at
		FROM runs
		WHERE id = ?
	`

	var (
		rn                run.Run
		regions, warnings string
		coolingMode       string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rn.ID,
		&rn.Name,
		&rn.SourcePath,
		&regions,
		&rn.Blanket,
		&coolingMode,
		&rn.Cooling.Duration,
		&rn.Cooling.Fraction,
		&rn.Cycles,
		&rn.Trailing,
		&warnings,
		&rn.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := rn.Cooling.Mode.UnmarshalText([]byte(coolingMode)); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(regions), &rn.Regions); err != nil {
		return nil, fmt.Errorf("failed to decode run regions: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &rn.Warnings); err != nil {
		return nil, fmt.Errorf("failed to decode run warnings: %w", err)
	}
	if len(rn.Warnings) == 0 {
		rn.Warnings = nil
	}
	return &rn, nil
}

// List returns run summaries, newest first
func (r *RunRepository) List(ctx context.Context) ([]run.RunSummary, error) {
	query := `
		SELECT id, name, source_path, cycle_count, json_array_length(warnings), created_at
		FROM runs
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []run.RunSummary
	for rows.Next() {
		var s run.RunSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.SourcePath, &s.Cycles, &s.Warnings, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// LoadCycles rebuilds the cycles of a run, excluding the trailing one
func (r *RunRepository) LoadCycles(ctx context.Context, id string) ([]*cycle.Cycle, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	cycles, err := r.load(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*cycle.Cycle, 0, len(cycles))
	for _, lc := range cycles {
		if !lc.trailing {
			out = append(out, lc.Cycle)
		}
	}
	return out, nil
}

// LoadCycle rebuilds cycle n of a run, the trailing cycle included
func (r *RunRepository) LoadCycle(ctx context.Context, id string, n int) (*cycle.Cycle, error) {
	cycles, err := r.load(ctx, id, &n)
	if err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, repository.ErrNotFound
	}
	return cycles[0].Cycle, nil
}

type loadedCycle struct {
	*cycle.Cycle
	trailing bool
}

// load reads cycles of a run in index order, restricted to cycle n when n is
// set. Each result set is drained before the next query starts.
func (r *RunRepository) load(ctx context.Context, id string, n *int) ([]loadedCycle, error) {
	filter := func(column string) (string, []any) {
		if n == nil {
			return "", []any{id}
		}
		return " AND " + column + " = ?", []any{id, *n}
	}

	where, args := filter("n")
	rows, err := r.db.QueryContext(ctx, `
		SELECT n, timestep, iterations, cooling, regions, required_feed, trailing
		FROM cycles
		WHERE run_id = ?`+where+`
		ORDER BY n
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	var loaded []loadedCycle
	byN := make(map[int]*cycle.Cycle)
	for rows.Next() {
		var (
			c        cycle.Cycle
			regions  string
			trailing bool
		)
		if err := rows.Scan(&c.N, &c.Timestep, &c.Iterations, &c.Cooling, &regions, &c.RequiredFeed, &trailing); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cy := cycle.New(c.N, c.Timestep, c.Iterations, c.Cooling)
		cy.RequiredFeed = c.RequiredFeed
		if err := json.Unmarshal([]byte(regions), &cy.Regions); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to decode cycle regions: %w", err)
		}
		loaded = append(loaded, loadedCycle{Cycle: cy, trailing: trailing})
		byN[cy.N] = cy
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	if len(loaded) == 0 {
		return nil, nil
	}

	if err := r.loadFeeds(ctx, byN, filter); err != nil {
		return nil, err
	}
	if err := r.loadMaterials(ctx, byN, filter); err != nil {
		return nil, err
	}
	return loaded, nil
}

type cycleFilter func(column string) (string, []any)

func (r *RunRepository) loadFeeds(ctx context.Context, byN map[int]*cycle.Cycle, filter cycleFilter) error {
	where, args := filter("cycle")
	rows, err := r.db.QueryContext(ctx, `
		SELECT cycle, region, regime, uranium_added, excess_actinide
		FROM feeds
		WHERE run_id = ?`+where, args...)
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n               int
			region, regime  string
			uranium, excess float64
		)
		if err := rows.Scan(&n, &region, &regime, &uranium, &excess); err != nil {
			return fmt.Errorf("failed to scan feed: %w", err)
		}
		c := byN[n]
		var fr cycle.FeedRegime
		if err := fr.UnmarshalText([]byte(regime)); err != nil {
			return fmt.Errorf("failed to decode feed of cycle %d: %w", n, err)
		}
		if fr != cycle.RegimeNone {
			c.SetRegime(region, fr)
		}
		if uranium != 0 {
			c.UraniumAdded[region] = uranium
		}
		if excess != 0 {
			c.ExcessActinide[region] = excess
		}
	}
	return rows.Err()
}

func (r *RunRepository) loadMaterials(ctx context.Context, byN map[int]*cycle.Cycle, filter cycleFilter) error {
	where, args := filter("cycle")
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cycle, slot, node, region, volume, nu_sigma_f, sigma_a, diffusion
		FROM materials
		WHERE run_id = ?`+where, args...)
	if err != nil {
		return fmt.Errorf("failed to load materials: %w", err)
	}

	byID := make(map[int64]*material.Material)
	for rows.Next() {
		var (
			id                          int64
			n, node                     int
			slot, region                string
			volume, nuSigmaF, sigmaA, d sql.NullFloat64
		)
		if err := rows.Scan(&id, &n, &slot, &node, &region, &volume, &nuSigmaF, &sigmaA, &d); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan material: %w", err)
		}
		m := material.New()
		if volume.Valid {
			m.Volume = material.Float(volume.Float64)
		}
		if nuSigmaF.Valid {
			m.Rates = &material.Rates{NuSigmaF: nuSigmaF.Float64, SigmaA: sigmaA.Float64, Diffusion: d.Float64}
		}
		c := byN[n]
		switch slot {
		case slotCharge:
			c.Charge = m
		case slotDischarge:
			c.Discharge = m
		default:
			c.Set(node, region, m)
		}
		byID[id] = m
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load materials: %w", err)
	}

	where, args = filter("m.cycle")
	rows, err = r.db.QueryContext(ctx, `
		SELECT n.material_id, n.name, n.mass
		FROM nuclides n
		JOIN materials m ON m.id = n.material_id
		WHERE m.run_id = ?`+where, args...)
	if err != nil {
		return fmt.Errorf("failed to load nuclides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
			mass float64
		)
		if err := rows.Scan(&id, &name, &mass); err != nil {
			return fmt.Errorf("failed to scan nuclide: %w", err)
		}
		if err := byID[id].AddMass(name, mass); err != nil {
			return fmt.Errorf("failed to decode nuclide %s: %w", name, err)
		}
	}
	return rows.Err()
}

// Delete removes a run; cycles, feeds and compositions cascade
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted run: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// feedRegions returns the regions with any material-balance data, sorted.
func feedRegions(c *cycle.Cycle) []string {
	seen := make(map[string]struct{})
	for region := range c.Regimes {
		seen[region] = struct{}{}
	}
	for region := range c.UraniumAdded {
		seen[region] = struct{}{}
	}
	for region := range c.ExcessActinide {
		seen[region] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for region := range seen {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
