package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxNotesLen caps the free-text notes field on every activity.
const MaxNotesLen = 500

type Sex string

const (
	Male    Sex = "Male"
	Female  Sex = "Female"
	Unsexed Sex = "Unsexed"
)

// Valid reports whether s is one of the three recognized sex values.
func (s Sex) Valid() bool {
	switch s {
	case Male, Female, Unsexed:
		return true
	}
	return false
}

type BatchStatus string

const (
	StatusActive    BatchStatus = "Active"
	StatusProcessed BatchStatus = "Processed"
	StatusForSale   BatchStatus = "ForSale"
	StatusSold      BatchStatus = "Sold"
	StatusCanceled  BatchStatus = "Canceled"
)

// Valid reports whether s is one of the five recognized batch statuses.
func (s BatchStatus) Valid() bool {
	switch s {
	case StatusActive, StatusProcessed, StatusForSale, StatusSold, StatusCanceled:
		return true
	}
	return false
}

// Batch is a group of animals raised together. Population is stored and kept
// in lock-step with the three sex counters; the invariant
// population == male + female + unsexed holds after every mutation.
// Version is the optimistic-concurrency token checked by the stores.
type Batch struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Breed        *string     `json:"breed,omitempty"`
	Shed         *string     `json:"shed,omitempty"`
	StartDate    time.Time   `json:"start_date"`
	MaleCount    int         `json:"male_count"`
	FemaleCount  int         `json:"female_count"`
	UnsexedCount int         `json:"unsexed_count"`
	Population   int         `json:"population"`
	Status       BatchStatus `json:"status"`
	Version      int         `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CountForSex returns the current headcount for the given sex.
func (b *Batch) CountForSex(s Sex) int {
	switch s {
	case Male:
		return b.MaleCount
	case Female:
		return b.FemaleCount
	default:
		return b.UnsexedCount
	}
}

// RegisterDeaths decrements the counter for the given sex and the population
// by n. Callers must have validated n against CountForSex first.
func (b *Batch) RegisterDeaths(s Sex, n int) {
	switch s {
	case Male:
		b.MaleCount -= n
	case Female:
		b.FemaleCount -= n
	default:
		b.UnsexedCount -= n
	}
	b.Population -= n
}

// MortalityRegistration is an append-only record of deaths within a batch.
// Immutable once created.
type MortalityRegistration struct {
	ID             int64     `json:"id"`
	BatchID        int64     `json:"batch_id"`
	NumberOfDeaths int       `json:"number_of_deaths"`
	Sex            Sex       `json:"sex"`
	Date           time.Time `json:"date"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StatusSwitch is an append-only record of a batch lifecycle transition.
type StatusSwitch struct {
	ID        int64       `json:"id"`
	BatchID   int64       `json:"batch_id"`
	NewStatus BatchStatus `json:"new_status"`
	Date      time.Time   `json:"date"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// WeightMeasurement is an append-only sample weighing of a batch.
// It never mutates the batch itself.
type WeightMeasurement struct {
	ID            int64           `json:"id"`
	BatchID       int64           `json:"batch_id"`
	AverageWeight decimal.Decimal `json:"average_weight"`
	SampleSize    int             `json:"sample_size"`
	Unit          Unit            `json:"unit"`
	Date          time.Time       `json:"date"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Product is a consumable inventory asset (feed, medicine, bedding).
// Stock is tracked in the product's native unit and never goes negative.
type Product struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Stock         decimal.Decimal `json:"stock"`
	UnitOfMeasure Unit            `json:"unit_of_measure"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductConsumption is an append-only record of stock consumed by a batch.
// Stock and UnitOfMeasure hold the amount exactly as the caller requested,
// not the converted figure, so the audit trail preserves what was asked.
type ProductConsumption struct {
	ID            int64           `json:"id"`
	BatchID       int64           `json:"batch_id"`
	ProductID     int64           `json:"product_id"`
	Stock         decimal.Decimal `json:"stock"`
	UnitOfMeasure Unit            `json:"unit_of_measure"`
	Date          time.Time       `json:"date"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
