package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queue-sim/sim"
)

// newTestViper parses args into a fresh flag set bound to a fresh viper.
func newTestViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerFlags(fs)
	require.NoError(t, fs.Parse(args))
	v := viper.New()
	bindViper(v, fs)
	return v
}

func TestResolveScenario_Defaults(t *testing.T) {
	sc, err := resolveScenario(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultScenarioConfig(), sc.Config)
	assert.Equal(t, int64(42), sc.Seed)
	assert.Equal(t, "separate", sc.Topology)
	assert.Equal(t, sim.RoutingRandom, sc.Routing)
	assert.Equal(t, 1, sc.Trials)
}

func TestResolveScenario_FlagsAndEnv(t *testing.T) {
	// GIVEN an environment override and an explicit flag
	t.Setenv("QSIM_SERVERS", "4")
	t.Setenv("QSIM_ROUTING", "round-robin")

	sc, err := resolveScenario(newTestViper(t, "--arrival-rate", "0.02", "--routing", "shortest-queue"))
	require.NoError(t, err)

	// THEN env applies where no flag is given and flags win otherwise
	assert.Equal(t, 4, sc.Config.NumServers)
	assert.Equal(t, 0.02, sc.Config.ArrivalRate)
	assert.Equal(t, sim.RoutingShortestQueue, sc.Routing)
}

func TestResolveScenario_FileOverriddenByExplicitFlags(t *testing.T) {
	// GIVEN a scenario file setting servers, horizon and seed
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 9\nnum_servers: 5\nhorizon: 100\ntopology: shared\n"), 0o644))

	// WHEN the horizon is also given on the command line
	sc, err := resolveScenario(newTestViper(t, "--config", path, "--horizon", "50"))
	require.NoError(t, err)

	// THEN the flag wins for horizon and the file wins over defaults elsewhere
	assert.Equal(t, 50.0, sc.Config.Horizon)
	assert.Equal(t, 5, sc.Config.NumServers)
	assert.Equal(t, int64(9), sc.Seed)
	assert.Equal(t, "shared", sc.Topology)
	assert.Equal(t, sim.DefaultScenarioConfig().ArrivalRate, sc.Config.ArrivalRate)
}

func TestResolveScenario_FileZerosOverrideDefaults(t *testing.T) {
	// GIVEN a scenario file that disables the monitor and asks for an empty run
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_interval: 0\nhorizon: 0\n"), 0o644))

	// WHEN resolved without overriding flags
	sc, err := resolveScenario(newTestViper(t, "--config", path))
	require.NoError(t, err)

	// THEN the explicit zeros replace the non-zero defaults
	assert.Equal(t, 0.0, sc.Config.SampleInterval)
	assert.Equal(t, 0.0, sc.Config.Horizon)
	assert.Equal(t, sim.DefaultScenarioConfig().NumServers, sc.Config.NumServers)
}

func TestResolveScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero servers", []string{"--servers", "0"}},
		{"negative horizon", []string{"--horizon", "-1"}},
		{"unknown routing", []string{"--routing", "sticky"}},
		{"unknown trace level", []string{"--trace-level", "all"}},
		{"zero trials", []string{"--trials", "0"}},
		{"unknown output format", []string{"--output-format", "xlsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveScenario(newTestViper(t, tt.args...))
			require.Error(t, err)
			assert.True(t, errors.Is(err, sim.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestRunTheory_PrintsReferenceMeans(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runTheory(newTestViper(t), &out))
	assert.Contains(t, out.String(), "W=900.0")
	assert.Contains(t, out.String(), "W=360.7")
}

func TestRunSingle_ExportsAndSummarizes(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "out")
	summary := filepath.Join(dir, "summary.json")

	var out bytes.Buffer
	err := runSingle(newTestViper(t,
		"--horizon", "3600", "--topology", "shared", "--trace-level", "decisions",
		"--output-format", "csv", "--output-path", prefix, "--summary", summary), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "=== Simulation Metrics ===")
	assert.Contains(t, out.String(), "Topology             : shared")
	assert.FileExists(t, prefix+"_customers.csv")
	assert.FileExists(t, prefix+"_samples.csv")

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	var doc summaryFile
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 1)
	assert.Equal(t, sim.TopologyShared, doc.Runs[0].Topology)
	assert.Equal(t, 3600.0, doc.Scenario.Config.Horizon)
	require.NotNil(t, doc.Runs[0].Theory)
	assert.InDelta(t, 360.67, doc.Runs[0].Theory.SojournTime, 0.01)
	assert.Len(t, doc.Runs[0].MeanQueueLengths, 1)
}

func TestRunSingle_UnknownTopology(t *testing.T) {
	var out bytes.Buffer
	err := runSingle(newTestViper(t, "--topology", "mesh", "--horizon", "10"), &out)
	assert.True(t, errors.Is(err, sim.ErrInvalidConfig))
}

func TestRunSingle_TrialsUseConsecutiveSeeds(t *testing.T) {
	summary := filepath.Join(t.TempDir(), "summary.yaml")
	var out bytes.Buffer
	require.NoError(t, runSingle(newTestViper(t, "--horizon", "1800", "--trials", "3", "--seed", "10", "--summary", summary), &out))

	assert.Contains(t, out.String(), "=== 3 Trials (separate) ===")

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	var doc summaryFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 3)
	for i, rs := range doc.Runs {
		assert.Equal(t, int64(10+i), rs.Seed)
	}
}

func TestRunSingle_ReferenceExampleRunsBoth(t *testing.T) {
	// GIVEN the shipped reference scenario, which asks for both topologies
	path := filepath.Join("..", "examples", "reference.yaml")

	// WHEN run with a short horizon
	var out bytes.Buffer
	require.NoError(t, runSingle(newTestViper(t, "--config", path, "--horizon", "3600"), &out))

	// THEN both topologies are simulated and compared
	assert.Contains(t, out.String(), "Topology             : separate")
	assert.Contains(t, out.String(), "Topology             : shared")
	assert.Contains(t, out.String(), "=== Comparison (1 trial(s)")
}

func TestRunCompare_BothTopologies(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "summary.yaml")

	var out bytes.Buffer
	err := runCompare(newTestViper(t, "--horizon", "3600", "--trials", "2", "--progress",
		"--output-format", "sqlite", "--output-path", filepath.Join(dir, "cmp"), "--summary", summary), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "=== Comparison (2 trial(s)")
	assert.Contains(t, out.String(), "900.00")
	assert.FileExists(t, filepath.Join(dir, "cmp.sqlite3"))

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	var doc summaryFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 4)
	assert.Equal(t, sim.TopologySeparate, doc.Runs[0].Topology)
	assert.Equal(t, sim.TopologyShared, doc.Runs[1].Topology)
	assert.Len(t, doc.Runs[0].Servers, 3)
}

func TestPrintComparison_UnstableTheory(t *testing.T) {
	// GIVEN an overloaded configuration
	cfg := sim.DefaultScenarioConfig()
	cfg.ArrivalRate = 1

	// WHEN a comparison with empty results is printed
	var out bytes.Buffer
	printComparison(&out, cfg, []*sim.Comparison{{Separate: &sim.Result{}, Shared: &sim.Result{}}})

	// THEN infinite expectations print as inf without an error percentage
	assert.Contains(t, out.String(), "inf")
	assert.Contains(t, out.String(), "n/a")
}
