package analytic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/queue-sim/sim/internal/testutil"
)

const (
	refLambda = testutil.RefArrivalRate
	refMu     = testutil.RefServiceRate
	refN      = testutil.RefServers
)

func TestSeparateQueues_ReferenceScenario(t *testing.T) {
	e := SeparateQueues(refLambda, refMu, refN)
	assert.True(t, e.Stable)
	testutil.AssertFloat64Equal(t, "separate sojourn", testutil.RefSeparateSojourn, e.SojournTime, 1e-9)
	assert.InDelta(t, 750.0, e.WaitTime, 1e-6)
	assert.InDelta(t, 150.0/180.0, e.Utilization, 1e-12)
}

func TestSharedQueue_ReferenceScenario(t *testing.T) {
	e := SharedQueue(refLambda, refMu, refN)
	assert.True(t, e.Stable)
	testutil.AssertFloat64Equal(t, "shared sojourn", testutil.RefSharedSojourn, e.SojournTime, 1e-9)
	assert.InDelta(t, 3.5112, e.QueueLength, 1e-3)
	// Little's law on the wait list
	assert.InDelta(t, e.QueueLength, refLambda*e.WaitTime, 1e-9)
}

func TestSharedBeatsSeparate(t *testing.T) {
	for n := 2; n <= 8; n++ {
		sep := SeparateQueues(refLambda, refMu, n)
		shared := SharedQueue(refLambda, refMu, n)
		if refLambda >= float64(n)*refMu {
			// both overloaded: neither has a finite sojourn to compare
			assert.False(t, sep.Stable, "n=%d separate", n)
			assert.False(t, shared.Stable, "n=%d shared", n)
			continue
		}
		if shared.SojournTime >= sep.SojournTime {
			t.Errorf("n=%d: shared W=%.1f should be below separate W=%.1f", n, shared.SojournTime, sep.SojournTime)
		}
	}
}

func TestSharedBeatsSeparate_TooFewServersIsUnstable(t *testing.T) {
	// GIVEN two servers for an offered load of 2.5 Erlangs
	sep := SeparateQueues(refLambda, refMu, 2)
	shared := SharedQueue(refLambda, refMu, 2)

	// THEN neither layout is stable and both sojourns are unbounded
	assert.False(t, sep.Stable)
	assert.False(t, shared.Stable)
	assert.True(t, math.IsInf(sep.SojournTime, 1))
	assert.True(t, math.IsInf(shared.SojournTime, 1))
}

func TestMMC_SingleServerMatchesMM1Formula(t *testing.T) {
	lambda, mu := 0.5, 1.0
	e := MMC(lambda, mu, 1)
	assert.InDelta(t, 1/(mu-lambda), e.SojournTime, 1e-12)
	assert.InDelta(t, lambda/mu, ErlangC(lambda/mu, 1), 1e-12)
}

func TestMMC_Unstable(t *testing.T) {
	// GIVEN λ = 2·c·μ
	e := MMC(2, 1, 1)

	// THEN every time and length is unbounded
	assert.False(t, e.Stable)
	assert.True(t, math.IsInf(e.WaitTime, 1))
	assert.True(t, math.IsInf(e.SojournTime, 1))
	assert.True(t, math.IsInf(e.QueueLength, 1))
	assert.Equal(t, 2.0, e.Utilization)
	assert.Contains(t, e.String(), "unstable")
}

func TestErlangC_LargeServerCountFinite(t *testing.T) {
	p := ErlangC(400, 500)
	assert.False(t, math.IsNaN(p))
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestMMC_InvalidPanics(t *testing.T) {
	assert.Panics(t, func() { MMC(0, 1, 1) })
	assert.Panics(t, func() { MMC(1, 1, 0) })
	assert.Panics(t, func() { SeparateQueues(1, 1, 0) })
}
