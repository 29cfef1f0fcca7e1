package core

import (
	"context"
	"errors"
)

// ErrStaleVersion is returned by a repository commit when the aggregate was
// modified since it was loaded (the version token no longer matches).
// Services reload and retry; the availability checks are only correct when
// they observe the latest committed counters.
var ErrStaleVersion = errors.New("aggregate version is stale")

// BatchRepository is the persistence port for batches and their activities.
// Get* methods return *NotFoundError when the id does not exist. Commit*
// methods persist the mutated batch and append the activity as a single unit
// of work: either both land or neither does. They compare-and-swap on the
// batch's version and fail with ErrStaleVersion on conflict. Activity tables
// are append-only; there is no update or delete path.
type BatchRepository interface {
	CreateBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, id int64) (*Batch, error)
	ListBatches(ctx context.Context, status *BatchStatus) ([]Batch, error)

	CommitMortality(ctx context.Context, b *Batch, reg *MortalityRegistration) error
	CommitStatusSwitch(ctx context.Context, b *Batch, sw *StatusSwitch) error
	AppendWeightMeasurement(ctx context.Context, m *WeightMeasurement) error

	ListMortalities(ctx context.Context, batchID int64) ([]MortalityRegistration, error)
	ListStatusSwitches(ctx context.Context, batchID int64) ([]StatusSwitch, error)
	ListWeightMeasurements(ctx context.Context, batchID int64) ([]WeightMeasurement, error)
}

// ProductRepository is the persistence port for products and consumptions,
// with the same not-found, atomicity, and version-token contract as
// BatchRepository.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)

	CommitConsumption(ctx context.Context, p *Product, c *ProductConsumption) error
	ListConsumptions(ctx context.Context, batchID int64) ([]ProductConsumption, error)
}
