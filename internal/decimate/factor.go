// Package decimate reduces the number of depth samples in LAS files.
//
// A factor f in (0, 1] is the fraction of samples removed: 0.5 drops every
// second sample, 0.9 drops nine in ten. The row at ordinal i is kept iff
// i mod round(1/(1-f)) == 0. For f = 1 the stride is unbounded and only the
// first row is kept.
package decimate

import (
	"math"
	"strconv"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// Factor is a validated decimation factor.
type Factor struct {
	f float64
}

// NewFactor validates f.
func NewFactor(f float64) (Factor, error) {
	if err := types.ValidateFactor(f); err != nil {
		return Factor{}, err
	}
	return Factor{f: f}, nil
}

// ParseFactor parses and validates a factor given as text.
func ParseFactor(s string) (Factor, error) {
	f, err := types.ParseFactor(s)
	if err != nil {
		return Factor{}, err
	}
	return Factor{f: f}, nil
}

// Value returns the factor as a float.
func (f Factor) Value() float64 {
	return f.f
}

// Stride returns round(1/(1-f)). Zero means only the first row is kept.
func (f Factor) Stride() int {
	if f.f >= 1 {
		return 0
	}
	s := math.Round(1 / (1 - f.f))
	if s > math.MaxInt32 {
		return 0
	}
	return int(s)
}

// Keep reports whether the row at ordinal i survives decimation.
func (f Factor) Keep(i int) bool {
	stride := f.Stride()
	if stride == 0 {
		return i == 0
	}
	return i%stride == 0
}

// String returns the shortest decimal form of the factor, as embedded in
// output file names.
func (f Factor) String() string {
	return strconv.FormatFloat(f.f, 'f', -1, 64)
}
