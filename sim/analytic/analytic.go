// Package analytic provides closed-form steady-state expectations for the
// M/M/1 and M/M/c queues the simulator models. It is used to report how far
// a finite run lies from theory; it does not depend on the engine.
package analytic

import (
	"fmt"
	"math"
)

// Expectation is the steady-state behaviour of a queueing system.
// All times are in the same unit as 1/rate. For an unstable system
// (utilization >= 1) the time and length fields are +Inf.
type Expectation struct {
	Utilization float64 `json:"utilization" yaml:"utilization"`   // ρ = λ / (c·μ)
	WaitTime    float64 `json:"wait_time" yaml:"wait_time"`       // Wq, mean time in the wait list
	SojournTime float64 `json:"sojourn_time" yaml:"sojourn_time"` // W = Wq + 1/μ
	QueueLength float64 `json:"queue_length" yaml:"queue_length"` // Lq, mean wait-list length
	Stable      bool    `json:"stable" yaml:"stable"`
}

func (e Expectation) String() string {
	if !e.Stable {
		return fmt.Sprintf("unstable (ρ=%.3f)", e.Utilization)
	}
	return fmt.Sprintf("ρ=%.3f Wq=%.1f W=%.1f Lq=%.3f", e.Utilization, e.WaitTime, e.SojournTime, e.QueueLength)
}

// MM1 returns the expectation for a single-server queue.
func MM1(lambda, mu float64) Expectation {
	return MMC(lambda, mu, 1)
}

// MMC returns the expectation for a c-server queue with one shared FIFO
// wait list, using the Erlang C probability of waiting.
func MMC(lambda, mu float64, c int) Expectation {
	if lambda <= 0 || mu <= 0 || c < 1 {
		panic(fmt.Sprintf("MMC: invalid parameters λ=%v μ=%v c=%d", lambda, mu, c))
	}
	offered := lambda / mu // a = λ/μ, in Erlangs
	rho := offered / float64(c)
	if rho >= 1 {
		return Expectation{
			Utilization: rho,
			WaitTime:    math.Inf(1),
			SojournTime: math.Inf(1),
			QueueLength: math.Inf(1),
		}
	}

	pWait := ErlangC(offered, c)
	wq := pWait / (float64(c)*mu - lambda)
	return Expectation{
		Utilization: rho,
		WaitTime:    wq,
		SojournTime: wq + 1/mu,
		QueueLength: lambda * wq,
		Stable:      true,
	}
}

// ErlangC returns the probability that an arrival has to wait in an M/M/c
// queue with offered load a = λ/μ. Requires a < c.
//
// Terms a^n/n! are built incrementally so large c does not overflow.
func ErlangC(offered float64, c int) float64 {
	rho := offered / float64(c)
	if rho >= 1 {
		return 1
	}
	term := 1.0 // a^0 / 0!
	sum := 0.0
	for n := 0; n < c; n++ {
		sum += term
		term *= offered / float64(n+1)
	}
	// term is now a^c / c!
	tail := term / (1 - rho)
	return tail / (sum + tail)
}

// SeparateQueues returns the per-customer expectation for n independent
// single-server queues fed by uniform random routing: each queue is M/M/1
// with arrival rate λ/n.
func SeparateQueues(lambda, mu float64, n int) Expectation {
	if n < 1 {
		panic(fmt.Sprintf("SeparateQueues: n must be >= 1, got %d", n))
	}
	return MM1(lambda/float64(n), mu)
}

// SharedQueue returns the expectation for one wait list feeding n servers.
func SharedQueue(lambda, mu float64, n int) Expectation {
	return MMC(lambda, mu, n)
}
