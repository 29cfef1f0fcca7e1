package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"farmtrack/internal/core"
	"farmtrack/internal/store"
)

func seedBatch(t *testing.T, m *store.Memory, male int) *core.Batch {
	t.Helper()
	b := &core.Batch{
		Name:       "Test batch",
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MaleCount:  male,
		Population: male,
		Status:     core.StatusActive,
	}
	if err := m.CreateBatch(context.Background(), b); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	return b
}

func TestMemory_VersionTokenOnBatches(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	b := seedBatch(t, m, 100)

	first, err := m.GetBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	second, err := m.GetBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}

	first.RegisterDeaths(core.Male, 10)
	err = m.CommitMortality(ctx, first, &core.MortalityRegistration{
		BatchID: first.ID, NumberOfDeaths: 10, Sex: core.Male,
		Date: time.Now(),
	})
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("version after commit = %d, want 2", first.Version)
	}

	// The second copy still carries version 1 and must be refused.
	second.RegisterDeaths(core.Male, 10)
	err = m.CommitMortality(ctx, second, &core.MortalityRegistration{
		BatchID: second.ID, NumberOfDeaths: 10, Sex: core.Male,
		Date: time.Now(),
	})
	if !errors.Is(err, core.ErrStaleVersion) {
		t.Fatalf("second commit err = %v, want ErrStaleVersion", err)
	}

	stored, _ := m.GetBatch(ctx, b.ID)
	if stored.MaleCount != 90 {
		t.Errorf("male count = %d, want 90 (stale commit must not apply)", stored.MaleCount)
	}
	regs, _ := m.ListMortalities(ctx, b.ID)
	if len(regs) != 1 {
		t.Errorf("got %d registrations, want 1", len(regs))
	}
}

func TestMemory_VersionTokenOnProducts(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	p := &core.Product{Code: "FEED-01", Name: "Feed", Stock: decimal.NewFromInt(100), UnitOfMeasure: core.Kilogram}
	if err := m.CreateProduct(ctx, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	first, _ := m.GetProduct(ctx, p.ID)
	second, _ := m.GetProduct(ctx, p.ID)

	first.Stock = first.Stock.Sub(decimal.NewFromInt(10))
	if err := m.CommitConsumption(ctx, first, &core.ProductConsumption{ProductID: first.ID, Stock: decimal.NewFromInt(10), UnitOfMeasure: core.Kilogram}); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	second.Stock = second.Stock.Sub(decimal.NewFromInt(10))
	err := m.CommitConsumption(ctx, second, &core.ProductConsumption{ProductID: second.ID, Stock: decimal.NewFromInt(10), UnitOfMeasure: core.Kilogram})
	if !errors.Is(err, core.ErrStaleVersion) {
		t.Fatalf("second commit err = %v, want ErrStaleVersion", err)
	}
}

func TestMemory_ConcurrentMortalities(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	b := seedBatch(t, m, 100)

	svc := core.NewBatchService(m)

	// Four writers race on the same batch; the retry loop absorbs every
	// possible conflict at this concurrency level, so all must succeed.
	var wg sync.WaitGroup
	errCh := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.RegisterMortality(ctx, core.MortalityInput{
				BatchID:        b.ID,
				NumberOfDeaths: 5,
				Sex:            "Male",
				Date:           "2026-02-01",
			})
			if err != nil {
				errCh <- err
				return
			}
			if !res.IsSuccess() {
				errCh <- errors.New(res.Errors[0].Error())
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent mortality: %v", err)
	}

	got, _ := m.GetBatch(ctx, b.ID)
	if got.MaleCount != 80 || got.Population != 80 {
		t.Errorf("male=%d population=%d, want 80/80 (no lost updates)", got.MaleCount, got.Population)
	}
	regs, _ := m.ListMortalities(ctx, b.ID)
	if len(regs) != 4 {
		t.Errorf("got %d registrations, want 4", len(regs))
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	m := store.NewMemory()
	b := seedBatch(t, m, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	copyB, err := m.GetBatch(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	copyB.RegisterDeaths(core.Male, 5)
	err = m.CommitMortality(ctx, copyB, &core.MortalityRegistration{BatchID: b.ID, NumberOfDeaths: 5, Sex: core.Male})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	stored, _ := m.GetBatch(context.Background(), b.ID)
	if stored.MaleCount != 10 {
		t.Errorf("canceled commit mutated the batch: male=%d", stored.MaleCount)
	}
}

func TestMemory_GetBatchReturnsCopy(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	breed := "Cobb 500"
	b := &core.Batch{
		Name: "Copy check", Breed: &breed,
		StartDate: time.Now(), MaleCount: 1, Population: 1, Status: core.StatusActive,
	}
	if err := m.CreateBatch(ctx, b); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, _ := m.GetBatch(ctx, b.ID)
	got.MaleCount = 999
	*got.Breed = "mutated"

	again, _ := m.GetBatch(ctx, b.ID)
	if again.MaleCount != 1 || *again.Breed != "Cobb 500" {
		t.Errorf("mutating a returned batch leaked into the store: %+v", again)
	}
}
