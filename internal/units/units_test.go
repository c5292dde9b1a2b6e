package units

import (
	"errors"
	"math"
	"testing"
)

func TestCompatible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b Unit
		want bool
	}{
		{Gram, Kilogram, true},
		{Kilogram, Milligram, true},
		{Liter, Milliliter, true},
		{Centiliter, Deciliter, true},
		{Gram, Liter, false},
		{Kilogram, Milliliter, false},
		{Piece, Piece, true},
		{Portion, Portion, true},
		{Piece, Portion, false}, // count groups are not mutually convertible
		{Piece, Gram, false},
		{Unit("box"), Unit("box"), true},
		{Unit("box"), Piece, false},
	}
	for _, tc := range cases {
		if got := Compatible(tc.a, tc.b); got != tc.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	cases := []struct {
		qty      float64
		from, to Unit
		want     float64
	}{
		{2, Kilogram, Gram, 2000},
		{500, Gram, Kilogram, 0.5},
		{1500, Milligram, Gram, 1.5},
		{1, Liter, Milliliter, 1000},
		{75, Centiliter, Liter, 0.75},
		{3, Deciliter, Milliliter, 300},
		{4, Piece, Piece, 4},
	}
	for _, tc := range cases {
		got, err := Convert(tc.qty, tc.from, tc.to)
		if err != nil {
			t.Fatalf("Convert(%v, %q, %q) error: %v", tc.qty, tc.from, tc.to, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Convert(%v, %q, %q) = %v, want %v", tc.qty, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	pairs := [][2]Unit{
		{Gram, Kilogram},
		{Milligram, Kilogram},
		{Milliliter, Liter},
		{Centiliter, Deciliter},
	}
	for _, p := range pairs {
		const x = 123.456
		there, err := Convert(x, p[0], p[1])
		if err != nil {
			t.Fatalf("Convert(%q -> %q): %v", p[0], p[1], err)
		}
		back, err := Convert(there, p[1], p[0])
		if err != nil {
			t.Fatalf("Convert(%q -> %q): %v", p[1], p[0], err)
		}
		if math.Abs(back-x) > 1e-9 {
			t.Errorf("round trip %q<->%q: got %v, want %v", p[0], p[1], back, x)
		}
	}
}

func TestConvertIncompatible(t *testing.T) {
	t.Parallel()

	_, err := Convert(1, Kilogram, Liter)
	var incompatible *IncompatibleUnitsError
	if !errors.As(err, &incompatible) {
		t.Fatalf("expected IncompatibleUnitsError, got %v", err)
	}
	if incompatible.From != Kilogram || incompatible.To != Liter {
		t.Errorf("unexpected error fields: %+v", incompatible)
	}

	if _, err := Convert(1, Piece, Portion); err == nil {
		t.Error("expected error converting pz to porzione")
	}
}
