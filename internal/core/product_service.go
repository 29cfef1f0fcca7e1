package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateProductInput holds the fields required to create a new product.
type CreateProductInput struct {
	Code          string
	Name          string
	Stock         decimal.Decimal // opening stock in the native unit
	UnitOfMeasure string
}

// ConsumptionInput holds the raw arguments of a product consumption.
// Stock and UnitOfMeasure are the caller's requested amount and unit; they
// are converted into the product's native unit before the stock check.
type ConsumptionInput struct {
	BatchID       int64
	ProductID     int64
	Stock         decimal.Decimal
	UnitOfMeasure string
	Date          string
	Notes         string
}

// ProductService executes product commands. The batch a consumption belongs
// to is the primary aggregate: a missing batch id travels on the error path,
// while a missing product id is an ordinary field validation error, since
// the product is a secondary reference.
type ProductService interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (Result[*Product], error)
	// RegisterConsumption converts the requested amount into the product's
	// native unit, enforces the non-negative stock invariant, decrements the
	// stock, and appends the consumption activity recording the original
	// requested amount and unit.
	RegisterConsumption(ctx context.Context, in ConsumptionInput) (Result[*ProductConsumption], error)

	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListConsumptions(ctx context.Context, batchID int64) ([]ProductConsumption, error)
}

type productService struct {
	products ProductRepository
	batches  BatchRepository
}

func NewProductService(products ProductRepository, batches BatchRepository) ProductService {
	return &productService{products: products, batches: batches}
}

func (s *productService) CreateProduct(ctx context.Context, in CreateProductInput) (Result[*Product], error) {
	var errs []ValidationError
	if strings.TrimSpace(in.Code) == "" {
		errs = append(errs, fieldErrorf("code", "code is required"))
	}
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, fieldErrorf("name", "name is required"))
	}
	if in.Stock.IsNegative() {
		errs = append(errs, fieldErrorf("stock", "opening stock cannot be negative"))
	}
	unit := Unit(in.UnitOfMeasure)
	if !KnownUnit(unit) {
		errs = append(errs, fieldErrorf("unitOfMeasure", "unknown unit of measure %q", in.UnitOfMeasure))
	}
	if len(errs) > 0 {
		return Fail[*Product](errs), nil
	}

	p := &Product{
		Code:          strings.TrimSpace(in.Code),
		Name:          strings.TrimSpace(in.Name),
		Stock:         in.Stock,
		UnitOfMeasure: unit,
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return Result[*Product]{}, fmt.Errorf("failed to create product: %w", err)
	}
	return Ok(p), nil
}

func (s *productService) RegisterConsumption(ctx context.Context, in ConsumptionInput) (Result[*ProductConsumption], error) {
	var shapeErrs []ValidationError
	if !in.Stock.IsPositive() {
		shapeErrs = append(shapeErrs, fieldErrorf("stock", "stock amount must be greater than zero"))
	}
	if len(in.Notes) > MaxNotesLen {
		shapeErrs = append(shapeErrs, fieldErrorf("notes", "notes must be %d characters or fewer", MaxNotesLen))
	}
	date, err := ParseClientDate(in.Date)
	if err != nil {
		shapeErrs = append(shapeErrs, fieldErrorf("date", "%s", err.Error()))
	}
	requestedUnit := Unit(in.UnitOfMeasure)

	for attempt := 0; ; attempt++ {
		// The batch is the primary aggregate of the command.
		if _, err := s.batches.GetBatch(ctx, in.BatchID); err != nil {
			return Result[*ProductConsumption]{}, err
		}

		errs := append([]ValidationError(nil), shapeErrs...)

		p, err := s.products.GetProduct(ctx, in.ProductID)
		if err != nil {
			if IsNotFound(err) {
				errs = append(errs, fieldErrorf("productId", "product %d not found", in.ProductID))
				return Fail[*ProductConsumption](errs), nil
			}
			return Result[*ProductConsumption]{}, err
		}

		converted, convErr := Convert(in.Stock, requestedUnit, p.UnitOfMeasure)
		if convErr != nil {
			var ce *ConversionError
			if errors.As(convErr, &ce) {
				errs = append(errs, ValidationError{Field: "unitOfMeasure", Message: ce.Message})
				return Fail[*ProductConsumption](errs), nil
			}
			return Result[*ProductConsumption]{}, convErr
		}

		if in.Stock.IsPositive() && converted.GreaterThan(p.Stock) {
			errs = append(errs, fieldErrorf("stock",
				"insufficient stock: Only %s %s available", p.Stock.String(), p.UnitOfMeasure))
		}
		if len(errs) > 0 {
			return Fail[*ProductConsumption](errs), nil
		}

		p.Stock = p.Stock.Sub(converted)
		c := &ProductConsumption{
			BatchID:       in.BatchID,
			ProductID:     p.ID,
			Stock:         in.Stock, // original requested amount, not the converted figure
			UnitOfMeasure: requestedUnit,
			Date:          date,
			Notes:         in.Notes,
		}
		err = s.products.CommitConsumption(ctx, p, c)
		if errors.Is(err, ErrStaleVersion) && attempt < maxCommitRetries {
			continue
		}
		if err != nil {
			return Result[*ProductConsumption]{}, fmt.Errorf("failed to commit product consumption: %w", err)
		}
		return Ok(c), nil
	}
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context) ([]Product, error) {
	return s.products.ListProducts(ctx)
}

func (s *productService) ListConsumptions(ctx context.Context, batchID int64) ([]ProductConsumption, error) {
	if _, err := s.batches.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.products.ListConsumptions(ctx, batchID)
}
