package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCommitRetries bounds how often a command reloads and retries after a
// version conflict before giving up.
const maxCommitRetries = 3

// CreateBatchInput holds the fields required to create a new batch.
// Breed and Shed are optional; empty strings mean "not set".
type CreateBatchInput struct {
	Name         string
	Breed        string
	Shed         string
	StartDate    string // ISO-8601, client-supplied
	MaleCount    int
	FemaleCount  int
	UnsexedCount int
}

// MortalityInput holds the raw arguments of a mortality registration.
// Sex and Date arrive unvalidated from the boundary.
type MortalityInput struct {
	BatchID        int64
	NumberOfDeaths int
	Sex            string
	Date           string
	Notes          string
}

// StatusSwitchInput holds the raw arguments of a status switch.
type StatusSwitchInput struct {
	BatchID   int64
	NewStatus string
	Date      string
	Notes     string
}

// WeightMeasurementInput holds the raw arguments of a sample weighing.
type WeightMeasurementInput struct {
	BatchID       int64
	AverageWeight decimal.Decimal
	SampleSize    int
	Unit          string
	Date          string
	Notes         string
}

// BatchService executes batch commands. Every command validates all
// applicable rules, aggregates the failures into the Result, and mutates
// nothing when any validation error is present. A missing batch id is a
// fatal precondition returned on the error path.
type BatchService interface {
	CreateBatch(ctx context.Context, in CreateBatchInput) (Result[*Batch], error)
	// RegisterMortality decrements the batch's per-sex counter and population
	// under availability constraints and appends the registration activity.
	RegisterMortality(ctx context.Context, in MortalityInput) (Result[*MortalityRegistration], error)
	// SwitchStatus moves the batch along the allowed-transition graph and
	// appends the switch activity atomically with the status update.
	SwitchStatus(ctx context.Context, in StatusSwitchInput) (Result[*StatusSwitch], error)
	// RegisterWeightMeasurement appends a sample weighing for an Active
	// batch. No batch fields are mutated.
	RegisterWeightMeasurement(ctx context.Context, in WeightMeasurementInput) (Result[*WeightMeasurement], error)

	GetBatch(ctx context.Context, id int64) (*Batch, error)
	ListBatches(ctx context.Context, status *BatchStatus) ([]Batch, error)
	ListMortalities(ctx context.Context, batchID int64) ([]MortalityRegistration, error)
	ListStatusSwitches(ctx context.Context, batchID int64) ([]StatusSwitch, error)
	ListWeightMeasurements(ctx context.Context, batchID int64) ([]WeightMeasurement, error)
}

type batchService struct {
	repo BatchRepository
}

func NewBatchService(repo BatchRepository) BatchService {
	return &batchService{repo: repo}
}

// ── Commands ─────────────────────────────────────────────────────────────────

func (s *batchService) CreateBatch(ctx context.Context, in CreateBatchInput) (Result[*Batch], error) {
	var errs []ValidationError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, fieldErrorf("name", "name is required"))
	}
	if in.MaleCount < 0 {
		errs = append(errs, fieldErrorf("maleCount", "male count cannot be negative"))
	}
	if in.FemaleCount < 0 {
		errs = append(errs, fieldErrorf("femaleCount", "female count cannot be negative"))
	}
	if in.UnsexedCount < 0 {
		errs = append(errs, fieldErrorf("unsexedCount", "unsexed count cannot be negative"))
	}
	startDate, err := ParseClientDate(in.StartDate)
	if err != nil {
		errs = append(errs, fieldErrorf("startDate", "%s", err.Error()))
	}
	if len(errs) > 0 {
		return Fail[*Batch](errs), nil
	}

	b := &Batch{
		Name:         strings.TrimSpace(in.Name),
		StartDate:    startDate,
		MaleCount:    in.MaleCount,
		FemaleCount:  in.FemaleCount,
		UnsexedCount: in.UnsexedCount,
		Population:   in.MaleCount + in.FemaleCount + in.UnsexedCount,
		Status:       StatusActive,
	}
	if v := strings.TrimSpace(in.Breed); v != "" {
		b.Breed = &v
	}
	if v := strings.TrimSpace(in.Shed); v != "" {
		b.Shed = &v
	}

	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return Result[*Batch]{}, fmt.Errorf("failed to create batch: %w", err)
	}
	return Ok(b), nil
}

func (s *batchService) RegisterMortality(ctx context.Context, in MortalityInput) (Result[*MortalityRegistration], error) {
	var shapeErrs []ValidationError
	if in.NumberOfDeaths <= 0 {
		shapeErrs = append(shapeErrs, fieldErrorf("numberOfDeaths", "number of deaths must be greater than zero"))
	}
	sex := Sex(in.Sex)
	if !sex.Valid() {
		shapeErrs = append(shapeErrs, fieldErrorf("sex", "unrecognized sex %q", in.Sex))
	}
	if len(in.Notes) > MaxNotesLen {
		shapeErrs = append(shapeErrs, fieldErrorf("notes", "notes must be %d characters or fewer", MaxNotesLen))
	}
	date, err := ParseClientDate(in.Date)
	if err != nil {
		shapeErrs = append(shapeErrs, fieldErrorf("date", "%s", err.Error()))
	}

	for attempt := 0; ; attempt++ {
		// Missing batch is fatal even when shape validation already failed:
		// not-found never mixes into the validation list.
		b, err := s.repo.GetBatch(ctx, in.BatchID)
		if err != nil {
			return Result[*MortalityRegistration]{}, err
		}

		errs := append([]ValidationError(nil), shapeErrs...)
		if sex.Valid() && in.NumberOfDeaths > 0 {
			if avail := b.CountForSex(sex); in.NumberOfDeaths > avail {
				errs = append(errs, fieldErrorf("numberOfDeaths",
					"number of deaths %d exceeds available %s count of %d",
					in.NumberOfDeaths, strings.ToLower(string(sex)), avail))
			}
		}
		if len(errs) > 0 {
			return Fail[*MortalityRegistration](errs), nil
		}

		b.RegisterDeaths(sex, in.NumberOfDeaths)
		reg := &MortalityRegistration{
			BatchID:        b.ID,
			NumberOfDeaths: in.NumberOfDeaths,
			Sex:            sex,
			Date:           date,
			Notes:          in.Notes,
		}
		err = s.repo.CommitMortality(ctx, b, reg)
		if errors.Is(err, ErrStaleVersion) && attempt < maxCommitRetries {
			continue
		}
		if err != nil {
			return Result[*MortalityRegistration]{}, fmt.Errorf("failed to commit mortality registration: %w", err)
		}
		return Ok(reg), nil
	}
}

func (s *batchService) SwitchStatus(ctx context.Context, in StatusSwitchInput) (Result[*StatusSwitch], error) {
	var shapeErrs []ValidationError
	newStatus := BatchStatus(in.NewStatus)
	if !newStatus.Valid() {
		shapeErrs = append(shapeErrs, fieldErrorf("newStatus", "unrecognized status %q", in.NewStatus))
	}
	if len(in.Notes) > MaxNotesLen {
		shapeErrs = append(shapeErrs, fieldErrorf("notes", "notes must be %d characters or fewer", MaxNotesLen))
	}
	date, err := ParseClientDate(in.Date)
	if err != nil {
		shapeErrs = append(shapeErrs, fieldErrorf("date", "%s", err.Error()))
	}

	for attempt := 0; ; attempt++ {
		b, err := s.repo.GetBatch(ctx, in.BatchID)
		if err != nil {
			return Result[*StatusSwitch]{}, err
		}

		errs := append([]ValidationError(nil), shapeErrs...)
		if newStatus.Valid() && !CanTransition(b.Status, newStatus) {
			errs = append(errs, fieldErrorf("newStatus",
				"cannot switch batch from %s to %s", b.Status, newStatus))
		}
		if len(errs) > 0 {
			return Fail[*StatusSwitch](errs), nil
		}

		b.Status = newStatus
		sw := &StatusSwitch{
			BatchID:   b.ID,
			NewStatus: newStatus,
			Date:      date,
			Notes:     in.Notes,
		}
		err = s.repo.CommitStatusSwitch(ctx, b, sw)
		if errors.Is(err, ErrStaleVersion) && attempt < maxCommitRetries {
			continue
		}
		if err != nil {
			return Result[*StatusSwitch]{}, fmt.Errorf("failed to commit status switch: %w", err)
		}
		return Ok(sw), nil
	}
}

func (s *batchService) RegisterWeightMeasurement(ctx context.Context, in WeightMeasurementInput) (Result[*WeightMeasurement], error) {
	b, err := s.repo.GetBatch(ctx, in.BatchID)
	if err != nil {
		return Result[*WeightMeasurement]{}, err
	}

	var errs []ValidationError
	if b.Status != StatusActive {
		errs = append(errs, fieldErrorf("status",
			"Only Active batches can register weight measurements; batch is %s", b.Status))
	}
	if !in.AverageWeight.IsPositive() {
		errs = append(errs, fieldErrorf("averageWeight", "average weight must be greater than zero"))
	}
	if in.SampleSize <= 0 {
		errs = append(errs, fieldErrorf("sampleSize", "sample size must be greater than zero"))
	}
	if len(in.Notes) > MaxNotesLen {
		errs = append(errs, fieldErrorf("notes", "notes must be %d characters or fewer", MaxNotesLen))
	}
	date, derr := ParseClientDate(in.Date)
	if derr != nil {
		errs = append(errs, fieldErrorf("date", "%s", derr.Error()))
	}
	unit := Unit(in.Unit)
	if cat, ok := CategoryOf(unit); !ok {
		errs = append(errs, fieldErrorf("unit", "unknown unit of measure %q", in.Unit))
	} else if cat != Mass {
		errs = append(errs, fieldErrorf("unit", "Only weight units can be used for weight measurements, got %s", unit))
	}
	if len(errs) > 0 {
		return Fail[*WeightMeasurement](errs), nil
	}

	m := &WeightMeasurement{
		BatchID:       b.ID,
		AverageWeight: in.AverageWeight,
		SampleSize:    in.SampleSize,
		Unit:          unit,
		Date:          date,
		Notes:         in.Notes,
	}
	if err := s.repo.AppendWeightMeasurement(ctx, m); err != nil {
		return Result[*WeightMeasurement]{}, fmt.Errorf("failed to append weight measurement: %w", err)
	}
	return Ok(m), nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *batchService) GetBatch(ctx context.Context, id int64) (*Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

func (s *batchService) ListBatches(ctx context.Context, status *BatchStatus) ([]Batch, error) {
	return s.repo.ListBatches(ctx, status)
}

func (s *batchService) ListMortalities(ctx context.Context, batchID int64) ([]MortalityRegistration, error) {
	if _, err := s.repo.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.repo.ListMortalities(ctx, batchID)
}

func (s *batchService) ListStatusSwitches(ctx context.Context, batchID int64) ([]StatusSwitch, error) {
	if _, err := s.repo.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.repo.ListStatusSwitches(ctx, batchID)
}

func (s *batchService) ListWeightMeasurements(ctx context.Context, batchID int64) ([]WeightMeasurement, error) {
	if _, err := s.repo.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.repo.ListWeightMeasurements(ctx, batchID)
}
