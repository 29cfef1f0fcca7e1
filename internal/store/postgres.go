package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmtrack/internal/core"
)

// Postgres implements core.BatchRepository and core.ProductRepository on a
// pgx connection pool. Every Commit* method runs the aggregate update and
// the activity insert in one transaction and compares the version token in
// the UPDATE's WHERE clause, so two commands racing on the same aggregate
// cannot both commit against stale counters.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// ── BatchRepository ──────────────────────────────────────────────────────────

func (s *Postgres) CreateBatch(ctx context.Context, b *core.Batch) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO batches (name, breed, shed, start_date, male_count, female_count, unsexed_count, population, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version, created_at, updated_at
	`, b.Name, b.Breed, b.Shed, b.StartDate, b.MaleCount, b.FemaleCount, b.UnsexedCount, b.Population, b.Status).
		Scan(&b.ID, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

func (s *Postgres) GetBatch(ctx context.Context, id int64) (*core.Batch, error) {
	var b core.Batch
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, breed, shed, start_date, male_count, female_count, unsexed_count, population, status, version, created_at, updated_at
		FROM batches
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Breed, &b.Shed, &b.StartDate,
		&b.MaleCount, &b.FemaleCount, &b.UnsexedCount, &b.Population,
		&b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Kind: "batch", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch batch %d: %w", id, err)
	}
	return &b, nil
}

func (s *Postgres) ListBatches(ctx context.Context, status *core.BatchStatus) ([]core.Batch, error) {
	query := `
		SELECT id, name, breed, shed, start_date, male_count, female_count, unsexed_count, population, status, version, created_at, updated_at
		FROM batches
	`
	var args []any
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []core.Batch
	for rows.Next() {
		var b core.Batch
		if err := rows.Scan(&b.ID, &b.Name, &b.Breed, &b.Shed, &b.StartDate,
			&b.MaleCount, &b.FemaleCount, &b.UnsexedCount, &b.Population,
			&b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (s *Postgres) CommitMortality(ctx context.Context, b *core.Batch, reg *core.MortalityRegistration) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.swapBatch(ctx, tx, b); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO mortality_registrations (batch_id, number_of_deaths, sex, date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, reg.BatchID, reg.NumberOfDeaths, reg.Sex, reg.Date, reg.Notes).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert mortality registration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit mortality registration: %w", err)
	}
	return nil
}

func (s *Postgres) CommitStatusSwitch(ctx context.Context, b *core.Batch, sw *core.StatusSwitch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.swapBatch(ctx, tx, b); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO status_switches (batch_id, new_status, date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, sw.BatchID, sw.NewStatus, sw.Date, sw.Notes).Scan(&sw.ID, &sw.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert status switch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status switch: %w", err)
	}
	return nil
}

// swapBatch writes the batch's mutated fields guarded by the version token.
// Zero rows affected means either the batch vanished or another command
// committed first; the two cases map to NotFoundError and ErrStaleVersion.
func (s *Postgres) swapBatch(ctx context.Context, tx pgx.Tx, b *core.Batch) error {
	tag, err := tx.Exec(ctx, `
		UPDATE batches
		SET male_count = $1, female_count = $2, unsexed_count = $3, population = $4,
		    status = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7
	`, b.MaleCount, b.FemaleCount, b.UnsexedCount, b.Population, b.Status, b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("failed to update batch %d: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)", b.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check batch %d: %w", b.ID, err)
		}
		if !exists {
			return &core.NotFoundError{Kind: "batch", ID: b.ID}
		}
		return core.ErrStaleVersion
	}
	b.Version++
	return nil
}

func (s *Postgres) AppendWeightMeasurement(ctx context.Context, w *core.WeightMeasurement) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO weight_measurements (batch_id, average_weight, sample_size, unit, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, w.BatchID, w.AverageWeight, w.SampleSize, w.Unit, w.Date, w.Notes).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert weight measurement: %w", err)
	}
	return nil
}

func (s *Postgres) ListMortalities(ctx context.Context, batchID int64) ([]core.MortalityRegistration, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, batch_id, number_of_deaths, sex, date, notes, created_at
		FROM mortality_registrations
		WHERE batch_id = $1
		ORDER BY created_at, id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mortality registrations: %w", err)
	}
	defer rows.Close()

	var regs []core.MortalityRegistration
	for rows.Next() {
		var r core.MortalityRegistration
		if err := rows.Scan(&r.ID, &r.BatchID, &r.NumberOfDeaths, &r.Sex, &r.Date, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mortality registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func (s *Postgres) ListStatusSwitches(ctx context.Context, batchID int64) ([]core.StatusSwitch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, batch_id, new_status, date, notes, created_at
		FROM status_switches
		WHERE batch_id = $1
		ORDER BY created_at, id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status switches: %w", err)
	}
	defer rows.Close()

	var switches []core.StatusSwitch
	for rows.Next() {
		var sw core.StatusSwitch
		if err := rows.Scan(&sw.ID, &sw.BatchID, &sw.NewStatus, &sw.Date, &sw.Notes, &sw.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status switch: %w", err)
		}
		switches = append(switches, sw)
	}
	return switches, rows.Err()
}

func (s *Postgres) ListWeightMeasurements(ctx context.Context, batchID int64) ([]core.WeightMeasurement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, batch_id, average_weight, sample_size, unit, date, notes, created_at
		FROM weight_measurements
		WHERE batch_id = $1
		ORDER BY created_at, id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weight measurements: %w", err)
	}
	defer rows.Close()

	var weighings []core.WeightMeasurement
	for rows.Next() {
		var w core.WeightMeasurement
		if err := rows.Scan(&w.ID, &w.BatchID, &w.AverageWeight, &w.SampleSize, &w.Unit, &w.Date, &w.Notes, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight measurement: %w", err)
		}
		weighings = append(weighings, w)
	}
	return weighings, rows.Err()
}

// ── ProductRepository ────────────────────────────────────────────────────────

func (s *Postgres) CreateProduct(ctx context.Context, p *core.Product) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, stock, unit_of_measure)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version, created_at
	`, p.Code, p.Name, p.Stock, p.UnitOfMeasure).Scan(&p.ID, &p.Version, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *Postgres) GetProduct(ctx context.Context, id int64) (*core.Product, error) {
	var p core.Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, stock, unit_of_measure, version, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Code, &p.Name, &p.Stock, &p.UnitOfMeasure, &p.Version, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Kind: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (s *Postgres) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, stock, unit_of_measure, version, created_at
		FROM products
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Stock, &p.UnitOfMeasure, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Postgres) CommitConsumption(ctx context.Context, p *core.Product, c *core.ProductConsumption) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = $1, version = version + 1
		WHERE id = $2 AND version = $3
	`, p.Stock, p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)", p.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check product %d: %w", p.ID, err)
		}
		if !exists {
			return &core.NotFoundError{Kind: "product", ID: p.ID}
		}
		return core.ErrStaleVersion
	}
	p.Version++

	err = tx.QueryRow(ctx, `
		INSERT INTO product_consumptions (batch_id, product_id, stock, unit_of_measure, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, c.BatchID, c.ProductID, c.Stock, c.UnitOfMeasure, c.Date, c.Notes).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product consumption: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product consumption: %w", err)
	}
	return nil
}

func (s *Postgres) ListConsumptions(ctx context.Context, batchID int64) ([]core.ProductConsumption, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, batch_id, product_id, stock, unit_of_measure, date, notes, created_at
		FROM product_consumptions
		WHERE batch_id = $1
		ORDER BY created_at, id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product consumptions: %w", err)
	}
	defer rows.Close()

	var consumptions []core.ProductConsumption
	for rows.Next() {
		var c core.ProductConsumption
		if err := rows.Scan(&c.ID, &c.BatchID, &c.ProductID, &c.Stock, &c.UnitOfMeasure, &c.Date, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product consumption: %w", err)
		}
		consumptions = append(consumptions, c)
	}
	return consumptions, rows.Err()
}
