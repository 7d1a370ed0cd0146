// Package stats computes descriptive statistics over simulation results.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/queue-sim/sim"
)

// Summary describes the sojourn and wait times of a set of customer records.
// All fields are zero for empty input.
type Summary struct {
	Count         int     `json:"count" yaml:"count"`
	MeanSojourn   float64 `json:"mean_sojourn" yaml:"mean_sojourn"`
	MeanWait      float64 `json:"mean_wait" yaml:"mean_wait"`
	StdDevSojourn float64 `json:"stddev_sojourn" yaml:"stddev_sojourn"`
	P50           float64 `json:"p50_sojourn" yaml:"p50_sojourn"`
	P90           float64 `json:"p90_sojourn" yaml:"p90_sojourn"`
	P99           float64 `json:"p99_sojourn" yaml:"p99_sojourn"`
	MaxSojourn    float64 `json:"max_sojourn" yaml:"max_sojourn"`
}

// Summarize computes a Summary over records.
func Summarize(records []sim.CustomerRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	sojourn := make([]float64, len(records))
	wait := make([]float64, len(records))
	for i, r := range records {
		sojourn[i] = r.SojournTime
		wait[i] = r.WaitTime
	}

	s := Summary{
		Count:       len(records),
		MeanSojourn: stat.Mean(sojourn, nil),
		MeanWait:    stat.Mean(wait, nil),
		MaxSojourn:  floats.Max(sojourn),
	}
	if len(sojourn) > 1 {
		s.StdDevSojourn = stat.StdDev(sojourn, nil)
	}

	sort.Float64s(sojourn)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sojourn, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sojourn, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, sojourn, nil)
	return s
}

// CumulativeMeanSojourn returns, for each record in departure order, the
// mean sojourn time of all records up to and including it. The curve shows
// how the running average settles toward its steady-state value.
func CumulativeMeanSojourn(records []sim.CustomerRecord) []float64 {
	out := make([]float64, len(records))
	sum := 0.0
	for i, r := range records {
		sum += r.SojournTime
		out[i] = sum / float64(i+1)
	}
	return out
}

// MeanQueueLength returns the average sampled wait-list length of one series.
func MeanQueueLength(samples []sim.MonitorSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	lengths := make([]float64, len(samples))
	for i, s := range samples {
		lengths[i] = float64(s.QueueLength)
	}
	return stat.Mean(lengths, nil)
}

// MeanOfMeans averages per-trial values, e.g. mean sojourn across seeds.
func MeanOfMeans(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
