// Package mathx holds the small numeric helpers shared by the tile map, the
// world and the simulation region.
package mathx

import "math"

// canonicalEpsilon is the relative slack allowed on a canonical offset to
// absorb float32 round-trip error.
const canonicalEpsilon = 1e-4

func RoundToInt32(v float32) int32 {
	return int32(math.Round(float64(v)))
}

func FloorToInt32(v float32) int32 {
	return int32(math.Floor(float64(v)))
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func Square(v float32) float32 { return v * v }

func SquareRoot(v float32) float32 { return float32(math.Sqrt(float64(v))) }

func AbsF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// CanonicalizeCoord folds offset into cell so that offset ends up within half
// a cell of the cell centre. Used for both tile and chunk cells.
//
// Ties round to even and the fold repeats until the offset no longer rounds
// away from zero, so a canonical offset is a fixed point.
func CanonicalizeCoord(cellSide float32, cell *int32, offset *float32) {
	for i := 0; i < 4; i++ {
		shift := int32(math.RoundToEven(float64(*offset / cellSide)))
		if shift == 0 {
			return
		}
		*cell += shift
		*offset -= float32(shift) * cellSide
	}
}

// IsCanonical reports whether offset lies within half a cell, with epsilon.
func IsCanonical(cellSide, offset float32) bool {
	limit := 0.5*cellSide + canonicalEpsilon*cellSide
	return offset >= -limit && offset <= limit
}
