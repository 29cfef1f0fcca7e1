package core_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"farmtrack/internal/core"
)

func TestConvert_WithinCategory(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		from   core.Unit
		to     core.Unit
		want   string
	}{
		{"grams to kilograms", "2500", core.Gram, core.Kilogram, "2.5"},
		{"kilograms to grams", "2.5", core.Kilogram, core.Gram, "2500"},
		{"same unit is identity", "7.25", core.Kilogram, core.Kilogram, "7.25"},
		{"liters to liters", "3", core.Liter, core.Liter, "3"},
		{"units to units", "12", core.CountUnit, core.CountUnit, "12"},
		{"fractional grams", "1", core.Gram, core.Kilogram, "0.001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to)
			if err != nil {
				t.Fatalf("Convert(%s, %s, %s): %v", tt.amount, tt.from, tt.to, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Convert(%s, %s, %s) = %s, want %s", tt.amount, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvert_RoundTripIsLossless(t *testing.T) {
	amount := decimal.RequireFromString("123.456")
	toGrams, err := core.Convert(amount, core.Kilogram, core.Gram)
	if err != nil {
		t.Fatalf("to grams: %v", err)
	}
	back, err := core.Convert(toGrams, core.Gram, core.Kilogram)
	if err != nil {
		t.Fatalf("back to kilograms: %v", err)
	}
	if !back.Equal(amount) {
		t.Errorf("round trip changed the amount: started %s, ended %s", amount, back)
	}
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name    string
		from    core.Unit
		to      core.Unit
		message string
	}{
		{"cross category mass to volume", core.Kilogram, core.Liter, "cannot convert Kilogram to Liter"},
		{"cross category count to mass", core.CountUnit, core.Gram, "cannot convert Unit to Gram"},
		{"unknown from unit", core.Unit("Pound"), core.Kilogram, `unknown unit of measure "Pound"`},
		{"unknown to unit", core.Gram, core.Unit("Ounce"), `unknown unit of measure "Ounce"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.Convert(decimal.NewFromInt(1), tt.from, tt.to)
			if err == nil {
				t.Fatalf("Convert(1, %s, %s) succeeded, want error", tt.from, tt.to)
			}
			var ce *core.ConversionError
			if !errors.As(err, &ce) {
				t.Fatalf("error is %T, want *core.ConversionError", err)
			}
			if ce.Message != tt.message {
				t.Errorf("message = %q, want %q", ce.Message, tt.message)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		unit core.Unit
		cat  core.UnitCategory
	}{
		{core.Kilogram, core.Mass},
		{core.Gram, core.Mass},
		{core.Liter, core.Volume},
		{core.CountUnit, core.Count},
	}
	for _, tt := range tests {
		got, ok := core.CategoryOf(tt.unit)
		if !ok || got != tt.cat {
			t.Errorf("CategoryOf(%s) = %s, %v; want %s, true", tt.unit, got, ok, tt.cat)
		}
	}
	if _, ok := core.CategoryOf(core.Unit("Bushel")); ok {
		t.Error("CategoryOf(Bushel) reported a known unit")
	}
}
