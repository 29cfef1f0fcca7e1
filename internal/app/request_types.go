package app

import "github.com/shopspring/decimal"

// CreateBatchRequest is the input for creating a new batch.
type CreateBatchRequest struct {
	Name         string `json:"name"`
	Breed        string `json:"breed,omitempty"`
	Shed         string `json:"shed,omitempty"`
	StartDate    string `json:"start_date"`
	MaleCount    int    `json:"male_count"`
	FemaleCount  int    `json:"female_count"`
	UnsexedCount int    `json:"unsexed_count"`
}

// RegisterMortalityRequest is the input for registering deaths on a batch.
// The batch id comes from the URL, not the body.
type RegisterMortalityRequest struct {
	NumberOfDeaths int    `json:"number_of_deaths"`
	Sex            string `json:"sex"`
	Date           string `json:"date"`
	Notes          string `json:"notes,omitempty"`
}

// SwitchStatusRequest is the input for moving a batch along its lifecycle.
type SwitchStatusRequest struct {
	NewStatus string `json:"new_status"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
}

// RegisterWeighingRequest is the input for recording a sample weighing.
type RegisterWeighingRequest struct {
	AverageWeight decimal.Decimal `json:"average_weight"`
	SampleSize    int             `json:"sample_size"`
	Unit          string          `json:"unit"`
	Date          string          `json:"date"`
	Notes         string          `json:"notes,omitempty"`
}

// RegisterConsumptionRequest is the input for consuming product stock
// against a batch. Stock and unit are the requested figures; conversion into
// the product's native unit happens in the core.
type RegisterConsumptionRequest struct {
	ProductID     int64           `json:"product_id"`
	Stock         decimal.Decimal `json:"stock"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Date          string          `json:"date"`
	Notes         string          `json:"notes,omitempty"`
}

// CreateProductRequest is the input for creating a new product.
type CreateProductRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Stock         decimal.Decimal `json:"stock"`
	UnitOfMeasure string          `json:"unit_of_measure"`
}
