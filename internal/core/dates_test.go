package core_test

import (
	"testing"
	"time"

	"farmtrack/internal/core"
)

func TestParseClientDate(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		got, err := core.ParseClientDate("2026-03-15")
		if err != nil {
			t.Fatalf("ParseClientDate: %v", err)
		}
		want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("full timestamp", func(t *testing.T) {
		got, err := core.ParseClientDate("2026-03-15T08:30:00Z")
		if err != nil {
			t.Fatalf("ParseClientDate: %v", err)
		}
		want := time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("empty is required", func(t *testing.T) {
		_, err := core.ParseClientDate("  ")
		if err == nil || err.Error() != "date is required" {
			t.Errorf("err = %v, want \"date is required\"", err)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := core.ParseClientDate("15/03/2026")
		if err == nil {
			t.Fatal("expected error for non-ISO date")
		}
	})
}
