package cmd

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/recorder"
	"github.com/inference-sim/queue-sim/sim/trace"
)

// resolvedScenario is the effective configuration after merging defaults,
// the scenario file, environment variables and explicit flags.
type resolvedScenario struct {
	Config     sim.ScenarioConfig `yaml:"config" json:"config"`
	Seed       int64              `yaml:"seed" json:"seed"`
	Topology   string             `yaml:"topology" json:"topology"`
	Routing    string             `yaml:"routing" json:"routing"`
	Trials     int                `yaml:"trials" json:"trials"`
	TraceLevel trace.TraceLevel   `yaml:"trace_level" json:"trace_level"`
	Progress   bool               `yaml:"-" json:"-"`
}

// resolveScenario reads v. Values set explicitly (flag or QSIM_* variable)
// win over the scenario file, which wins over flag defaults.
func resolveScenario(v *viper.Viper) (resolvedScenario, error) {
	sc := resolvedScenario{
		Config: sim.ScenarioConfig{
			ArrivalRate:    v.GetFloat64("arrival-rate"),
			ServiceRate:    v.GetFloat64("service-rate"),
			NumServers:     v.GetInt("servers"),
			Horizon:        v.GetFloat64("horizon"),
			SampleInterval: v.GetFloat64("sample-interval"),
		},
		Seed:       v.GetInt64("seed"),
		Topology:   v.GetString("topology"),
		Routing:    v.GetString("routing"),
		Trials:     v.GetInt("trials"),
		TraceLevel: trace.TraceLevel(v.GetString("trace-level")),
		Progress:   v.GetBool("progress"),
	}

	if path := v.GetString("config"); path != "" {
		f, err := sim.LoadScenarioFile(path)
		if err != nil {
			return sc, err
		}
		overlayScenarioFile(v, &sc, f)
	}

	if sc.Trials < 1 {
		return sc, fmt.Errorf("%w: trials must be >= 1, got %d", sim.ErrInvalidConfig, sc.Trials)
	}
	if !sim.IsValidRoutingPolicy(sc.Routing) {
		return sc, fmt.Errorf("%w: unknown routing policy %q", sim.ErrInvalidConfig, sc.Routing)
	}
	if f := v.GetString("output-format"); f != "" && !slices.Contains(recorder.Formats, f) {
		return sc, fmt.Errorf("%w: unknown output format %q", sim.ErrInvalidConfig, f)
	}
	if !trace.IsValidTraceLevel(string(sc.TraceLevel)) {
		return sc, fmt.Errorf("%w: unknown trace level %q", sim.ErrInvalidConfig, sc.TraceLevel)
	}
	if err := sc.Config.Validate(); err != nil {
		return sc, err
	}
	if sc.Config.SampleInterval == 0 {
		logrus.Warn("sample interval is 0: queue monitor disabled")
	}
	logrus.Debugf("resolved scenario: %+v", sc)
	return sc, nil
}

func overlayScenarioFile(v *viper.Viper, sc *resolvedScenario, f *sim.ScenarioFile) {
	if f.Seed != nil && !v.IsSet("seed") {
		sc.Seed = *f.Seed
	}
	if f.Topology != "" && !v.IsSet("topology") {
		sc.Topology = f.Topology
	}
	if f.Routing != "" && !v.IsSet("routing") {
		sc.Routing = f.Routing
	}

	explicit := sc.Config
	sc.Config = f.Overlay(sc.Config)
	if v.IsSet("arrival-rate") {
		sc.Config.ArrivalRate = explicit.ArrivalRate
	}
	if v.IsSet("service-rate") {
		sc.Config.ServiceRate = explicit.ServiceRate
	}
	if v.IsSet("servers") {
		sc.Config.NumServers = explicit.NumServers
	}
	if v.IsSet("horizon") {
		sc.Config.Horizon = explicit.Horizon
	}
	if v.IsSet("sample-interval") {
		sc.Config.SampleInterval = explicit.SampleInterval
	}
}

// runnerOptions returns the options for one run and a function to call
// once the run returns.
func (sc resolvedScenario) runnerOptions(desc string) ([]sim.RunnerOption, func()) {
	opts := []sim.RunnerOption{sim.WithTrace(sc.TraceLevel)}
	if !sc.Progress || sc.Config.Horizon <= 0 {
		return opts, func() {}
	}
	bar := progressbar.NewOptions64(int64(sc.Config.Horizon),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
	opts = append(opts, sim.WithHook(progressHook(bar)))
	return opts, func() { _ = bar.Finish() }
}

// progressHook advances bar to the simulated clock after every event.
func progressHook(bar *progressbar.ProgressBar) sim.Hook {
	last := int64(-1)
	return sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos != sim.HookPosAfterEvent {
			return
		}
		if now := int64(ctx.Now); now != last {
			last = now
			_ = bar.Set64(now)
		}
	})
}
