package app

import (
	"context"

	"farmtrack/internal/core"
)

// ApplicationService is the single interface all boundary adapters call.
// It decouples presentation from business logic. Command methods return the
// core Result for recoverable outcomes; the error return carries missing
// primary aggregates (core.NotFoundError) and infrastructure failures only.
type ApplicationService interface {
	// CreateBatch creates a new Active batch from the given counts.
	CreateBatch(ctx context.Context, req CreateBatchRequest) (core.Result[*core.Batch], error)

	// GetBatch returns a single batch by id.
	GetBatch(ctx context.Context, id int64) (*core.Batch, error)

	// ListBatches returns all batches, optionally filtered by status.
	ListBatches(ctx context.Context, status *core.BatchStatus) ([]core.Batch, error)

	// RegisterMortality records deaths against a batch, decrementing the
	// per-sex counter and the population.
	RegisterMortality(ctx context.Context, batchID int64, req RegisterMortalityRequest) (core.Result[*core.MortalityRegistration], error)

	// SwitchBatchStatus moves a batch along the allowed-transition graph.
	SwitchBatchStatus(ctx context.Context, batchID int64, req SwitchStatusRequest) (core.Result[*core.StatusSwitch], error)

	// RegisterWeighing records a sample weighing for an Active batch.
	RegisterWeighing(ctx context.Context, batchID int64, req RegisterWeighingRequest) (core.Result[*core.WeightMeasurement], error)

	// RegisterConsumption consumes product stock on behalf of a batch.
	RegisterConsumption(ctx context.Context, batchID int64, req RegisterConsumptionRequest) (core.Result[*core.ProductConsumption], error)

	// CreateProduct creates a new product with an opening stock.
	CreateProduct(ctx context.Context, req CreateProductRequest) (core.Result[*core.Product], error)

	// GetProduct returns a single product by id.
	GetProduct(ctx context.Context, id int64) (*core.Product, error)

	// ListProducts returns all products.
	ListProducts(ctx context.Context) ([]core.Product, error)

	// Activity histories, chronological, append-only reads.
	ListMortalities(ctx context.Context, batchID int64) ([]core.MortalityRegistration, error)
	ListStatusSwitches(ctx context.Context, batchID int64) ([]core.StatusSwitch, error)
	ListWeighings(ctx context.Context, batchID int64) ([]core.WeightMeasurement, error)
	ListConsumptions(ctx context.Context, batchID int64) ([]core.ProductConsumption, error)
}

type appService struct {
	batches  core.BatchService
	products core.ProductService
}

// NewAppService wires the core services behind the ApplicationService facade.
func NewAppService(batches core.BatchService, products core.ProductService) ApplicationService {
	return &appService{batches: batches, products: products}
}

func (s *appService) CreateBatch(ctx context.Context, req CreateBatchRequest) (core.Result[*core.Batch], error) {
	return s.batches.CreateBatch(ctx, core.CreateBatchInput{
		Name:         req.Name,
		Breed:        req.Breed,
		Shed:         req.Shed,
		StartDate:    req.StartDate,
		MaleCount:    req.MaleCount,
		FemaleCount:  req.FemaleCount,
		UnsexedCount: req.UnsexedCount,
	})
}

func (s *appService) GetBatch(ctx context.Context, id int64) (*core.Batch, error) {
	return s.batches.GetBatch(ctx, id)
}

func (s *appService) ListBatches(ctx context.Context, status *core.BatchStatus) ([]core.Batch, error) {
	return s.batches.ListBatches(ctx, status)
}

func (s *appService) RegisterMortality(ctx context.Context, batchID int64, req RegisterMortalityRequest) (core.Result[*core.MortalityRegistration], error) {
	return s.batches.RegisterMortality(ctx, core.MortalityInput{
		BatchID:        batchID,
		NumberOfDeaths: req.NumberOfDeaths,
		Sex:            req.Sex,
		Date:           req.Date,
		Notes:          req.Notes,
	})
}

func (s *appService) SwitchBatchStatus(ctx context.Context, batchID int64, req SwitchStatusRequest) (core.Result[*core.StatusSwitch], error) {
	return s.batches.SwitchStatus(ctx, core.StatusSwitchInput{
		BatchID:   batchID,
		NewStatus: req.NewStatus,
		Date:      req.Date,
		Notes:     req.Notes,
	})
}

func (s *appService) RegisterWeighing(ctx context.Context, batchID int64, req RegisterWeighingRequest) (core.Result[*core.WeightMeasurement], error) {
	return s.batches.RegisterWeightMeasurement(ctx, core.WeightMeasurementInput{
		BatchID:       batchID,
		AverageWeight: req.AverageWeight,
		SampleSize:    req.SampleSize,
		Unit:          req.Unit,
		Date:          req.Date,
		Notes:         req.Notes,
	})
}

func (s *appService) RegisterConsumption(ctx context.Context, batchID int64, req RegisterConsumptionRequest) (core.Result[*core.ProductConsumption], error) {
	return s.products.RegisterConsumption(ctx, core.ConsumptionInput{
		BatchID:       batchID,
		ProductID:     req.ProductID,
		Stock:         req.Stock,
		UnitOfMeasure: req.UnitOfMeasure,
		Date:          req.Date,
		Notes:         req.Notes,
	})
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (core.Result[*core.Product], error) {
	return s.products.CreateProduct(ctx, core.CreateProductInput{
		Code:          req.Code,
		Name:          req.Name,
		Stock:         req.Stock,
		UnitOfMeasure: req.UnitOfMeasure,
	})
}

func (s *appService) GetProduct(ctx context.Context, id int64) (*core.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context) ([]core.Product, error) {
	return s.products.ListProducts(ctx)
}

func (s *appService) ListMortalities(ctx context.Context, batchID int64) ([]core.MortalityRegistration, error) {
	return s.batches.ListMortalities(ctx, batchID)
}

func (s *appService) ListStatusSwitches(ctx context.Context, batchID int64) ([]core.StatusSwitch, error) {
	return s.batches.ListStatusSwitches(ctx, batchID)
}

func (s *appService) ListWeighings(ctx context.Context, batchID int64) ([]core.WeightMeasurement, error) {
	return s.batches.ListWeightMeasurements(ctx, batchID)
}

func (s *appService) ListConsumptions(ctx context.Context, batchID int64) ([]core.ProductConsumption, error) {
	return s.products.ListConsumptions(ctx, batchID)
}
