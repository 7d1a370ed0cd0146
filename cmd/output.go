package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/analytic"
	"github.com/inference-sim/queue-sim/sim/stats"
	"github.com/inference-sim/queue-sim/sim/trace"
)

// theoryFor returns the closed-form expectation matching topology.
func theoryFor(cfg sim.ScenarioConfig, topo sim.Topology) analytic.Expectation {
	if topo == sim.TopologyShared {
		return analytic.SharedQueue(cfg.ArrivalRate, cfg.ServiceRate, cfg.NumServers)
	}
	return analytic.SeparateQueues(cfg.ArrivalRate, cfg.ServiceRate, cfg.NumServers)
}

// printResult displays the metrics of one run.
func printResult(out io.Writer, res *sim.Result) {
	s := stats.Summarize(res.Records)
	fmt.Fprintln(out, "=== Simulation Metrics ===")
	fmt.Fprintf(out, "Run ID               : %s\n", res.RunID)
	fmt.Fprintf(out, "Topology             : %s\n", res.Topology)
	fmt.Fprintf(out, "Seed                 : %d\n", res.Seed)
	fmt.Fprintf(out, "Arrivals             : %d\n", res.Arrivals)
	fmt.Fprintf(out, "Completed Customers  : %d\n", s.Count)
	fmt.Fprintf(out, "In System at Horizon : %d\n", res.InSystem)
	if s.Count > 0 {
		fmt.Fprintf(out, "Mean Sojourn Time    : %.2f s\n", s.MeanSojourn)
		fmt.Fprintf(out, "Mean Wait Time       : %.2f s\n", s.MeanWait)
		fmt.Fprintf(out, "Sojourn p50/p90/p99  : %.2f / %.2f / %.2f s\n", s.P50, s.P90, s.P99)
		fmt.Fprintf(out, "Max Sojourn Time     : %.2f s\n", s.MaxSojourn)
	}
	for i, srv := range res.Servers {
		line := fmt.Sprintf("  %-10s utilization %.3f, peak queue %d", srv.Name, srv.Utilization, srv.PeakQueueLen)
		if i < len(res.Samples) {
			line += fmt.Sprintf(", mean sampled queue %.2f", stats.MeanQueueLength(res.Samples[i]))
		}
		fmt.Fprintln(out, line)
	}
	if res.Trace != nil {
		ts := trace.Summarize(res.Trace)
		fmt.Fprintf(out, "Routing Decisions    : %d (mean regret %.2f, suboptimal %d)\n",
			ts.TotalDecisions, ts.MeanRegret, ts.SuboptimalCount)
	}
}

// printTrials displays the mean of per-trial mean sojourn times.
func printTrials(out io.Writer, topo sim.Topology, results []*sim.Result) {
	means := make([]float64, len(results))
	for i, res := range results {
		means[i] = stats.Summarize(res.Records).MeanSojourn
	}
	fmt.Fprintf(out, "=== %d Trials (%s) ===\n", len(results), topo)
	fmt.Fprintf(out, "Mean of Mean Sojourn : %.2f s\n", stats.MeanOfMeans(means))
}

// printComparison displays simulated against analytic mean sojourn times.
func printComparison(out io.Writer, cfg sim.ScenarioConfig, comparisons []*sim.Comparison) {
	var sep, shared []float64
	for _, cmp := range comparisons {
		sep = append(sep, stats.Summarize(cmp.Separate.Records).MeanSojourn)
		shared = append(shared, stats.Summarize(cmp.Shared.Records).MeanSojourn)
	}
	fmt.Fprintf(out, "=== Comparison (%d trial(s), ρ=%.3f) ===\n", len(comparisons), cfg.OfferedLoad())
	fmt.Fprintf(out, "%-10s %14s %14s %9s\n", "Topology", "Simulated (s)", "Theory (s)", "Error")
	printComparisonRow(out, sim.TopologySeparate, stats.MeanOfMeans(sep), theoryFor(cfg, sim.TopologySeparate))
	printComparisonRow(out, sim.TopologyShared, stats.MeanOfMeans(shared), theoryFor(cfg, sim.TopologyShared))
}

func printComparisonRow(out io.Writer, topo sim.Topology, simulated float64, theory analytic.Expectation) {
	errStr := "n/a"
	if theory.Stable {
		errStr = fmt.Sprintf("%+.1f%%", 100*(simulated-theory.SojournTime)/theory.SojournTime)
	}
	fmt.Fprintf(out, "%-10s %14.2f %14s %9s\n", topo, simulated, formatSeconds(theory.SojournTime), errStr)
}

// printTheory displays both closed-form expectations.
func printTheory(out io.Writer, cfg sim.ScenarioConfig) {
	fmt.Fprintf(out, "=== Theory (λ=%.6f/s, μ=%.6f/s, N=%d) ===\n", cfg.ArrivalRate, cfg.ServiceRate, cfg.NumServers)
	for _, topo := range sim.Topologies {
		fmt.Fprintf(out, "%-10s %s\n", topo, theoryFor(cfg, topo))
	}
}

func formatSeconds(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}

// runSummary is the machine-readable form of one run.
type runSummary struct {
	RunID            string              `yaml:"run_id" json:"run_id"`
	Topology         sim.Topology        `yaml:"topology" json:"topology"`
	Seed             int64               `yaml:"seed" json:"seed"`
	Arrivals         int64               `yaml:"arrivals" json:"arrivals"`
	InSystem         int64               `yaml:"in_system" json:"in_system"`
	Stats            stats.Summary       `yaml:"stats" json:"stats"`
	Theory           *theorySummary      `yaml:"theory,omitempty" json:"theory,omitempty"`
	Servers          []sim.ServerStats   `yaml:"servers" json:"servers"`
	MeanQueueLengths []float64           `yaml:"mean_queue_lengths,omitempty" json:"mean_queue_lengths,omitempty"`
	Routing          *trace.TraceSummary `yaml:"routing,omitempty" json:"routing,omitempty"`
}

// theorySummary mirrors analytic.Expectation with infinities dropped,
// since neither JSON nor YAML round-trips +Inf portably.
type theorySummary struct {
	Utilization float64 `yaml:"utilization" json:"utilization"`
	SojournTime float64 `yaml:"sojourn_time" json:"sojourn_time"`
	WaitTime    float64 `yaml:"wait_time" json:"wait_time"`
}

// summaryFile is the document written by --summary.
type summaryFile struct {
	Scenario resolvedScenario `yaml:"scenario" json:"scenario"`
	Runs     []runSummary     `yaml:"runs" json:"runs"`
}

func buildSummary(sc resolvedScenario, results []*sim.Result) summaryFile {
	doc := summaryFile{Scenario: sc, Runs: make([]runSummary, 0, len(results))}
	for _, res := range results {
		rs := runSummary{
			RunID:    res.RunID,
			Topology: res.Topology,
			Seed:     res.Seed,
			Arrivals: res.Arrivals,
			InSystem: res.InSystem,
			Stats:    stats.Summarize(res.Records),
			Servers:  res.Servers,
		}
		if e := theoryFor(sc.Config, res.Topology); e.Stable {
			rs.Theory = &theorySummary{Utilization: e.Utilization, SojournTime: e.SojournTime, WaitTime: e.WaitTime}
		}
		for _, series := range res.Samples {
			rs.MeanQueueLengths = append(rs.MeanQueueLengths, stats.MeanQueueLength(series))
		}
		if res.Trace != nil {
			rs.Routing = trace.Summarize(res.Trace)
		}
		doc.Runs = append(doc.Runs, rs)
	}
	return doc
}

// writeSummary writes doc to path as JSON when path ends in .json and as
// YAML otherwise. An empty path is a no-op.
func writeSummary(path string, doc summaryFile) error {
	if path == "" {
		return nil
	}
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	logrus.Infof("summary written to %s", path)
	return nil
}
