// Package testutil provides shared test infrastructure for the simulator:
// the reference scenario and tolerance-based float assertions used across
// sim/ and its sub-package tests.
package testutil

import (
	"math"
	"testing"
)

// Reference scenario: 60 customers per hour, 150 s mean service, 3 servers.
const (
	RefArrivalRate = 60.0 / 3600.0
	RefServiceRate = 1.0 / 150.0
	RefServers     = 3

	// Steady-state mean sojourn times of the reference scenario.
	RefSeparateSojourn = 900.0              // M/M/1 with λ/3 per queue
	RefSharedSojourn   = 360.67415730337075 // M/M/3, Erlang C
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	if math.IsNaN(got) {
		t.Errorf("%s: got NaN, want %v", name, want)
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertNonDecreasing fails if values ever decrease.
func AssertNonDecreasing(t *testing.T, name string, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("%s: value %d (%v) is below value %d (%v)", name, i, values[i], i-1, values[i-1])
			return
		}
	}
}
