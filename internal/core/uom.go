package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is a recognized unit of measure. The set is closed and hand-enumerated:
// stock and weight records only ever use these four units.
type Unit string

const (
	Kilogram  Unit = "Kilogram"
	Gram      Unit = "Gram"
	Liter     Unit = "Liter"
	CountUnit Unit = "Unit"
)

// UnitCategory partitions units into disjoint classes of mutually convertible
// units. Conversion is only defined within a category.
type UnitCategory string

const (
	Mass   UnitCategory = "Mass"
	Volume UnitCategory = "Volume"
	Count  UnitCategory = "Count"
)

// unitCategories assigns every recognized unit to exactly one category.
var unitCategories = map[Unit]UnitCategory{
	Kilogram:  Mass,
	Gram:      Mass,
	Liter:     Volume,
	CountUnit: Count,
}

// unitFactors expresses each unit as a multiple of its category's base unit
// (Gram for Mass, Liter for Volume, Unit for Count). Convert divides the
// from-factor by the to-factor, so the same-unit factor is always 1.
var unitFactors = map[Unit]decimal.Decimal{
	Kilogram:  decimal.NewFromInt(1000),
	Gram:      decimal.NewFromInt(1),
	Liter:     decimal.NewFromInt(1),
	CountUnit: decimal.NewFromInt(1),
}

// KnownUnit reports whether u is a recognized unit of measure.
func KnownUnit(u Unit) bool {
	_, ok := unitCategories[u]
	return ok
}

// CategoryOf returns the category of u, or false if u is unrecognized.
func CategoryOf(u Unit) (UnitCategory, bool) {
	c, ok := unitCategories[u]
	return c, ok
}

// ConversionError is the recoverable failure mode of Convert: an unknown
// unit or a cross-category conversion. Commands surface it as a field-level
// validation error on the unit-of-measure field.
type ConversionError struct {
	From    Unit
	To      Unit
	Message string
}

func (e *ConversionError) Error() string {
	return e.Message
}

// Convert converts amount from one unit to another within the same category.
// It fails with a ConversionError if either unit is unrecognized or the
// units belong to different categories. No rounding is applied beyond
// decimal's native precision.
func Convert(amount decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	fromCat, ok := unitCategories[from]
	if !ok {
		return decimal.Zero, &ConversionError{From: from, To: to,
			Message: fmt.Sprintf("unknown unit of measure %q", from)}
	}
	toCat, ok := unitCategories[to]
	if !ok {
		return decimal.Zero, &ConversionError{From: from, To: to,
			Message: fmt.Sprintf("unknown unit of measure %q", to)}
	}
	if fromCat != toCat {
		return decimal.Zero, &ConversionError{From: from, To: to,
			Message: fmt.Sprintf("cannot convert %s to %s", from, to)}
	}
	return amount.Mul(unitFactors[from]).Div(unitFactors[to]), nil
}
