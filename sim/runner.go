package sim

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim/trace"
)

// Sources bundles the random inputs of one run. Injecting them keeps the
// engine free of seeding concerns and lets tests supply fixed samples.
type Sources struct {
	InterArrival Sampler
	Service      Sampler
	Router       Router // ignored by the shared topology; nil means random
	Seed         int64  // informational, copied into the Result
}

// NewSources derives independent arrival, service and routing streams for
// one topology from key.
func NewSources(key SimulationKey, topology Topology, routing string) (Sources, error) {
	rng := NewPartitionedRNG(key)
	router, err := NewRouter(routing, rng.ForSubsystem(ScopedSubsystem(topology, SubsystemRouter)))
	if err != nil {
		return Sources{}, err
	}
	return Sources{
		InterArrival: NewExpSampler(rng.ForSubsystem(ScopedSubsystem(topology, SubsystemArrival))),
		Service:      NewExpSampler(rng.ForSubsystem(ScopedSubsystem(topology, SubsystemService))),
		Router:       router,
		Seed:         int64(key),
	}, nil
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithTrace enables routing-decision tracing at level.
func WithTrace(level trace.TraceLevel) RunnerOption {
	return func(r *Runner) {
		r.traceCfg = trace.TraceConfig{Level: level}
	}
}

// WithHook registers a scheduler hook before the run starts.
func WithHook(h Hook) RunnerOption {
	return func(r *Runner) {
		r.sched.AddHook(h)
	}
}

// Runner wires one scenario: a scheduler, its resources, the arrival
// process and the optional queue monitor. A Runner runs once.
type Runner struct {
	cfg      ScenarioConfig
	topology Topology
	sched    *Scheduler
	servers  []*ServerResource
	arrival  *ArrivalProcess
	monitor  *QueueMonitor
	result   *Result
	traceCfg trace.TraceConfig
	ran      bool
}

// NewRunner validates cfg and builds a runner for topology. Nothing is
// scheduled when an error is returned.
func NewRunner(cfg ScenarioConfig, topology Topology, src Sources, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseTopology(string(topology)); err != nil {
		return nil, err
	}
	if src.InterArrival == nil || src.Service == nil {
		return nil, fmt.Errorf("%w: inter-arrival and service samplers are required", ErrInvalidConfig)
	}

	r := &Runner{
		cfg:      cfg,
		topology: topology,
		sched:    NewScheduler(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !trace.IsValidTraceLevel(string(r.traceCfg.Level)) {
		return nil, fmt.Errorf("%w: unknown trace level %q", ErrInvalidConfig, r.traceCfg.Level)
	}

	if err := r.buildServers(); err != nil {
		return nil, err
	}

	r.result = &Result{
		RunID:    xid.New().String(),
		Topology: topology,
		Seed:     src.Seed,
		Config:   cfg,
		Records:  make([]CustomerRecord, 0),
	}
	if r.traceCfg.Enabled() {
		r.result.Trace = trace.NewSimulationTrace(r.traceCfg)
	}

	router := src.Router
	if topology == TopologyShared {
		router = nil
	} else if router == nil {
		return nil, fmt.Errorf("%w: separate topology needs a router", ErrInvalidConfig)
	}

	r.arrival = &ArrivalProcess{
		rate:         cfg.ArrivalRate,
		serviceRate:  cfg.ServiceRate,
		interArrival: src.InterArrival,
		service:      src.Service,
		router:       router,
		servers:      r.servers,
		result:       r.result,
		trace:        r.result.Trace,
	}
	if cfg.SampleInterval > 0 {
		r.monitor = NewQueueMonitor(cfg.SampleInterval, r.servers)
	}

	if rho := cfg.OfferedLoad(); rho >= 1 {
		logrus.Warnf("offered load ρ=%.3f >= 1: %s queues will grow without bound", rho, topology)
	}
	return r, nil
}

func (r *Runner) buildServers() error {
	switch r.topology {
	case TopologySeparate:
		r.servers = make([]*ServerResource, r.cfg.NumServers)
		for i := range r.servers {
			srv, err := NewServerResource(fmt.Sprintf("queue_%d", i), 1, r.sched)
			if err != nil {
				return err
			}
			r.servers[i] = srv
		}
	case TopologyShared:
		srv, err := NewServerResource("shared", r.cfg.NumServers, r.sched)
		if err != nil {
			return err
		}
		r.servers = []*ServerResource{srv}
	}
	return nil
}

// Scheduler exposes the runner's scheduler, e.g. to attach hooks.
func (r *Runner) Scheduler() *Scheduler {
	return r.sched
}

// Servers returns the resources of this run, indexed like CustomerRecord.Server.
func (r *Runner) Servers() []*ServerResource {
	return r.servers
}

// Run executes the scenario up to the horizon and returns its results.
func (r *Runner) Run() *Result {
	if r.ran {
		panic("Runner.Run: runner already ran")
	}
	r.ran = true

	logrus.Infof("run %s: %s topology, λ=%.6f/s μ=%.6f/s N=%d horizon=%.0fs",
		r.result.RunID, r.topology, r.cfg.ArrivalRate, r.cfg.ServiceRate, r.cfg.NumServers, r.cfg.Horizon)

	r.arrival.Start(r.sched)
	if r.monitor != nil {
		r.monitor.Start(r.sched)
	}
	r.result.Events = r.sched.Run(r.cfg.Horizon)

	now := r.sched.Now()
	r.result.EndTime = now
	r.result.Arrivals = r.arrival.Spawned()
	r.result.InSystem = r.result.Arrivals - int64(len(r.result.Records))
	if r.monitor != nil {
		r.result.Samples = r.monitor.Samples()
	}
	r.result.Servers = make([]ServerStats, len(r.servers))
	for i, srv := range r.servers {
		r.result.Servers[i] = srv.Stats(r.cfg.Horizon)
	}

	logrus.Infof("run %s: %d arrivals, %d departed, %d still in system at t=%.0fs",
		r.result.RunID, r.result.Arrivals, len(r.result.Records), r.result.InSystem, r.cfg.Horizon)
	return r.result
}

// RunScenario builds sources from key and runs one topology.
func RunScenario(cfg ScenarioConfig, topology Topology, key SimulationKey, routing string, opts ...RunnerOption) (*Result, error) {
	src, err := NewSources(key, topology, routing)
	if err != nil {
		return nil, err
	}
	r, err := NewRunner(cfg, topology, src, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(), nil
}

// Comparison holds the results of both topologies for one configuration.
type Comparison struct {
	Separate *Result
	Shared   *Result
}

// RunComparison runs the separate and shared topologies with independent
// schedulers and independent random streams derived from key.
func RunComparison(cfg ScenarioConfig, key SimulationKey, routing string, opts ...RunnerOption) (*Comparison, error) {
	separate, err := RunScenario(cfg, TopologySeparate, key, routing, opts...)
	if err != nil {
		return nil, fmt.Errorf("separate queues: %w", err)
	}
	shared, err := RunScenario(cfg, TopologyShared, key, routing, opts...)
	if err != nil {
		return nil, fmt.Errorf("shared queue: %w", err)
	}
	return &Comparison{Separate: separate, Shared: shared}, nil
}
