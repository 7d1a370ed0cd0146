package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/recorder"
	"github.com/inference-sim/queue-sim/sim/trace"
)

// envPrefix scopes environment overrides, e.g. QSIM_ARRIVAL_RATE.
const envPrefix = "QSIM"

// topologyBoth makes `run` behave like `compare`.
const topologyBoth = "both"

var (
	// Scenario flags
	seed           int64   // Seed for the first trial; trial i uses seed+i
	arrivalRate    float64 // λ, customers per second
	serviceRate    float64 // μ, per server, per second
	numServers     int     // N
	horizon        float64 // Simulated seconds
	sampleInterval float64 // Queue monitor period in seconds; 0 disables
	topology       string  // Topology for `run`
	routing        string  // Router for the separate topology
	configPath     string  // Optional YAML scenario file

	// Run control
	trials     int    // Independent replications
	traceLevel string // Routing decision trace level
	logLevel   string // Log verbosity level
	progress   bool   // Show a progress bar over simulated time

	// Outputs
	outputFormat string // Export format for records and samples
	outputPath   string // Export file prefix
	summaryPath  string // YAML or JSON summary file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queue-sim",
	Short: "Discrete-event simulator comparing separate queues with one shared queue",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(viper.GetString("log"))
		if err != nil {
			return fmt.Errorf("invalid log level %q", viper.GetString("log"))
		}
		logrus.SetLevel(level)
		return nil
	},
}

// runCmd simulates a single topology
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one topology",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runSingle(viper.GetViper(), os.Stdout))
	},
}

// compareCmd simulates both topologies and compares them with theory
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Simulate separate and shared queues and compare with the analytic means",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runCompare(viper.GetViper(), os.Stdout))
	},
}

// theoryCmd prints the closed-form expectations only
var theoryCmd = &cobra.Command{
	Use:   "theory",
	Short: "Print the steady-state M/M/1 and M/M/c expectations",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runTheory(viper.GetViper(), os.Stdout))
	},
}

func exitOnError(err error) {
	if err != nil {
		logrus.Errorf("%v", err)
		atexit.Exit(1)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// registerFlags declares every flag on fs. Shared with tests so they can
// build an isolated flag set.
func registerFlags(fs *pflag.FlagSet) {
	def := sim.DefaultScenarioConfig()

	fs.Int64Var(&seed, "seed", 42, "Seed for random arrivals, services and routing")
	fs.Float64Var(&arrivalRate, "arrival-rate", def.ArrivalRate, "Customer arrivals per second (λ)")
	fs.Float64Var(&serviceRate, "service-rate", def.ServiceRate, "Service completions per second per server (μ)")
	fs.IntVar(&numServers, "servers", def.NumServers, "Number of servers (N)")
	fs.Float64Var(&horizon, "horizon", def.Horizon, "Simulation horizon in seconds")
	fs.Float64Var(&sampleInterval, "sample-interval", def.SampleInterval, "Queue length sampling period in seconds (0 disables)")
	fs.StringVar(&topology, "topology", string(sim.TopologySeparate), "Topology for run: separate, shared or both")
	fs.StringVar(&routing, "routing", sim.RoutingRandom, "Routing for separate queues: random, round-robin, shortest-queue")
	fs.StringVar(&configPath, "config", "", "YAML scenario file; explicitly set flags override its values")

	fs.IntVar(&trials, "trials", 1, "Number of independent replications (seeds seed..seed+trials-1)")
	fs.StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Routing trace level: none, decisions")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.BoolVar(&progress, "progress", false, "Show a progress bar over simulated time")

	fs.StringVar(&outputFormat, "output-format", "",
		"Export records and samples: "+strings.Join(recorder.Formats, ", ")+" (empty disables)")
	fs.StringVar(&outputPath, "output-path", "", "Export file prefix (default queue_sim_<id>)")
	fs.StringVar(&summaryPath, "summary", "", "Write a run summary to this file (.json for JSON, otherwise YAML)")
}

// bindViper binds fs and QSIM_* environment variables into v.
func bindViper(v *viper.Viper, fs *pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		logrus.Fatalf("binding flags: %v", err)
	}
}

// init sets up CLI flags and subcommands
func init() {
	registerFlags(rootCmd.PersistentFlags())
	bindViper(viper.GetViper(), rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(theoryCmd)
}

// openRecorder creates the configured exporter, or returns nil when
// exporting is disabled. The writer is closed on abnormal exit too.
func openRecorder(v *viper.Viper) (recorder.Writer, error) {
	format := v.GetString("output-format")
	if format == "" {
		return nil, nil
	}
	w, err := recorder.New(format, v.GetString("output-path"))
	if err != nil {
		return nil, err
	}
	atexit.Register(func() {
		if err := w.Close(); err != nil {
			logrus.Errorf("closing %s exporter: %v", format, err)
		}
	})
	return w, nil
}

func closeRecorder(w recorder.Writer) error {
	if w == nil {
		return nil
	}
	return w.Close()
}

// runSingle implements `run`.
func runSingle(v *viper.Viper, out io.Writer) error {
	sc, err := resolveScenario(v)
	if err != nil {
		return err
	}
	if sc.Topology == topologyBoth {
		return runCompare(v, out)
	}
	topo, err := sim.ParseTopology(sc.Topology)
	if err != nil {
		return err
	}
	w, err := openRecorder(v)
	if err != nil {
		return err
	}

	var results []*sim.Result
	for i := 0; i < sc.Trials; i++ {
		key := sim.NewSimulationKey(sc.Seed + int64(i))
		opts, done := sc.runnerOptions(fmt.Sprintf("%s seed %d", topo, int64(key)))
		res, err := sim.RunScenario(sc.Config, topo, key, sc.Routing, opts...)
		done()
		if err != nil {
			return err
		}
		if w != nil {
			if err := w.Write(res); err != nil {
				return fmt.Errorf("exporting run %s: %w", res.RunID, err)
			}
		}
		printResult(out, res)
		results = append(results, res)
	}
	if len(results) > 1 {
		printTrials(out, topo, results)
	}
	if err := closeRecorder(w); err != nil {
		return err
	}
	return writeSummary(v.GetString("summary"), buildSummary(sc, results))
}

// runCompare implements `compare`.
func runCompare(v *viper.Viper, out io.Writer) error {
	sc, err := resolveScenario(v)
	if err != nil {
		return err
	}
	w, err := openRecorder(v)
	if err != nil {
		return err
	}

	var results []*sim.Result
	comparisons := make([]*sim.Comparison, 0, sc.Trials)
	for i := 0; i < sc.Trials; i++ {
		key := sim.NewSimulationKey(sc.Seed + int64(i))
		cmp := &sim.Comparison{}
		for _, topo := range sim.Topologies {
			opts, done := sc.runnerOptions(fmt.Sprintf("%s seed %d", topo, int64(key)))
			res, err := sim.RunScenario(sc.Config, topo, key, sc.Routing, opts...)
			done()
			if err != nil {
				return fmt.Errorf("%s: %w", topo, err)
			}
			if topo == sim.TopologySeparate {
				cmp.Separate = res
			} else {
				cmp.Shared = res
			}
			if w != nil {
				if err := w.Write(res); err != nil {
					return fmt.Errorf("exporting run %s: %w", res.RunID, err)
				}
			}
			results = append(results, res)
		}
		comparisons = append(comparisons, cmp)
	}

	for _, cmp := range comparisons {
		printResult(out, cmp.Separate)
		printResult(out, cmp.Shared)
	}
	printComparison(out, sc.Config, comparisons)
	if err := closeRecorder(w); err != nil {
		return err
	}
	return writeSummary(v.GetString("summary"), buildSummary(sc, results))
}

// runTheory implements `theory`.
func runTheory(v *viper.Viper, out io.Writer) error {
	sc, err := resolveScenario(v)
	if err != nil {
		return err
	}
	printTheory(out, sc.Config)
	return nil
}
