package units

import "fmt"

// Unit is a measurement unit symbol as stored on ingredients and recipe lines.
type Unit string

const (
	Milligram  Unit = "mg"
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milliliter Unit = "ml"
	Centiliter Unit = "cl"
	Deciliter  Unit = "dl"
	Liter      Unit = "l"
	Piece      Unit = "pz"
	Portion    Unit = "porzione"
)

type IncompatibleUnitsError struct {
	From Unit
	To   Unit
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("units %q and %q are not compatible", e.From, e.To)
}

const (
	groupMass   = "mass"
	groupVolume = "volume"
)

// groupOf returns the dimension group of a unit. Count units each form their
// own group: a piece is never convertible to a portion.
func groupOf(u Unit) (string, bool) {
	switch u {
	case Milligram, Gram, Kilogram:
		return groupMass, true
	case Milliliter, Centiliter, Deciliter, Liter:
		return groupVolume, true
	case Piece, Portion:
		return "count:" + string(u), true
	}
	return "", false
}

// factor is the fixed scale of each unit relative to its group base
// (gram for mass, milliliter for volume, itself for count units).
var factor = map[Unit]float64{
	Milligram:  0.001,
	Gram:       1,
	Kilogram:   1000,
	Milliliter: 1,
	Centiliter: 10,
	Deciliter:  100,
	Liter:      1000,
	Piece:      1,
	Portion:    1,
}

// Compatible reports whether two units belong to the same dimension group.
// Unknown units are compatible only with themselves.
func Compatible(a, b Unit) bool {
	if a == b {
		return true
	}
	ga, oka := groupOf(a)
	gb, okb := groupOf(b)
	return oka && okb && ga == gb
}

// Convert linearly rescales a quantity between two compatible units. No
// rounding is performed; that is the caller's responsibility.
func Convert(quantity float64, from, to Unit) (float64, error) {
	if from == to {
		return quantity, nil
	}
	if !Compatible(from, to) {
		return 0, &IncompatibleUnitsError{From: from, To: to}
	}
	return quantity * factor[from] / factor[to], nil
}
