// Package store provides the persistence implementations of the core
// repository ports: a pgx-backed Postgres store for production and an
// in-memory twin with identical version-token semantics for tests and
// local development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"farmtrack/internal/core"
)

// Memory is an in-memory implementation of core.BatchRepository and
// core.ProductRepository. All methods are safe for concurrent use and honor
// the same compare-and-swap contract as the Postgres store, so service-level
// tests exercise the real conflict/retry paths.
type Memory struct {
	mu           sync.Mutex
	nextID       int64
	batches      map[int64]core.Batch
	products     map[int64]core.Product
	mortalities  []core.MortalityRegistration
	switches     []core.StatusSwitch
	weighings    []core.WeightMeasurement
	consumptions []core.ProductConsumption
}

func NewMemory() *Memory {
	return &Memory{
		batches:  make(map[int64]core.Batch),
		products: make(map[int64]core.Product),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// ── BatchRepository ──────────────────────────────────────────────────────────

func (m *Memory) CreateBatch(ctx context.Context, b *core.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	b.ID = m.id()
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	m.batches[b.ID] = cloneBatch(*b)
	return nil
}

func (m *Memory) GetBatch(ctx context.Context, id int64) (*core.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.batches[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "batch", ID: id}
	}
	c := cloneBatch(b)
	return &c, nil
}

func (m *Memory) ListBatches(ctx context.Context, status *core.BatchStatus) ([]core.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.Batch
	for _, b := range m.batches {
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, cloneBatch(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CommitMortality(ctx context.Context, b *core.Batch, reg *core.MortalityRegistration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.swapBatch(b); err != nil {
		return err
	}
	reg.ID = m.id()
	reg.CreatedAt = time.Now()
	m.mortalities = append(m.mortalities, *reg)
	return nil
}

func (m *Memory) CommitStatusSwitch(ctx context.Context, b *core.Batch, sw *core.StatusSwitch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.swapBatch(b); err != nil {
		return err
	}
	sw.ID = m.id()
	sw.CreatedAt = time.Now()
	m.switches = append(m.switches, *sw)
	return nil
}

// swapBatch performs the version compare-and-swap under m.mu.
// On success the caller's copy gets the incremented version.
func (m *Memory) swapBatch(b *core.Batch) error {
	stored, ok := m.batches[b.ID]
	if !ok {
		return &core.NotFoundError{Kind: "batch", ID: b.ID}
	}
	if stored.Version != b.Version {
		return core.ErrStaleVersion
	}
	b.Version++
	b.UpdatedAt = time.Now()
	m.batches[b.ID] = cloneBatch(*b)
	return nil
}

func (m *Memory) AppendWeightMeasurement(ctx context.Context, w *core.WeightMeasurement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.batches[w.BatchID]; !ok {
		return &core.NotFoundError{Kind: "batch", ID: w.BatchID}
	}
	w.ID = m.id()
	w.CreatedAt = time.Now()
	m.weighings = append(m.weighings, *w)
	return nil
}

func (m *Memory) ListMortalities(ctx context.Context, batchID int64) ([]core.MortalityRegistration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.MortalityRegistration
	for _, r := range m.mortalities {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ListStatusSwitches(ctx context.Context, batchID int64) ([]core.StatusSwitch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.StatusSwitch
	for _, s := range m.switches {
		if s.BatchID == batchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) ListWeightMeasurements(ctx context.Context, batchID int64) ([]core.WeightMeasurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.WeightMeasurement
	for _, w := range m.weighings {
		if w.BatchID == batchID {
			out = append(out, w)
		}
	}
	return out, nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

func (m *Memory) CreateProduct(ctx context.Context, p *core.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.id()
	p.Version = 1
	p.CreatedAt = time.Now()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (*core.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "product", ID: id}
	}
	return &p, nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]core.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CommitConsumption(ctx context.Context, p *core.Product, c *core.ProductConsumption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[p.ID]
	if !ok {
		return &core.NotFoundError{Kind: "product", ID: p.ID}
	}
	if stored.Version != p.Version {
		return core.ErrStaleVersion
	}
	p.Version++
	m.products[p.ID] = *p

	c.ID = m.id()
	c.CreatedAt = time.Now()
	m.consumptions = append(m.consumptions, *c)
	return nil
}

func (m *Memory) ListConsumptions(ctx context.Context, batchID int64) ([]core.ProductConsumption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.ProductConsumption
	for _, c := range m.consumptions {
		if c.BatchID == batchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func cloneBatch(b core.Batch) core.Batch {
	if b.Breed != nil {
		v := *b.Breed
		b.Breed = &v
	}
	if b.Shed != nil {
		v := *b.Shed
		b.Shed = &v
	}
	return b
}
