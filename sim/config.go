package sim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration error so callers can
// test for it with errors.Is.
var ErrInvalidConfig = errors.New("invalid scenario config")

// Topology selects how customers reach the servers.
type Topology string

const (
	// TopologySeparate is N independent single-server queues with routing at arrival.
	TopologySeparate Topology = "separate"
	// TopologyShared is one shared queue feeding N servers.
	TopologyShared Topology = "shared"
)

// Topologies lists the topologies in the order a comparison runs them.
var Topologies = []Topology{TopologySeparate, TopologyShared}

// ParseTopology validates a topology name.
func ParseTopology(name string) (Topology, error) {
	switch Topology(name) {
	case TopologySeparate, TopologyShared:
		return Topology(name), nil
	default:
		return "", fmt.Errorf("%w: unknown topology %q; valid: separate, shared", ErrInvalidConfig, name)
	}
}

// ScenarioConfig holds the fixed parameters of one run. Rates are per
// second; times are seconds.
type ScenarioConfig struct {
	ArrivalRate    float64 `yaml:"arrival_rate" json:"arrival_rate"`       // λ
	ServiceRate    float64 `yaml:"service_rate" json:"service_rate"`       // μ, per server
	NumServers     int     `yaml:"num_servers" json:"num_servers"`         // N
	Horizon        float64 `yaml:"horizon" json:"horizon"`                 // simulation end time
	SampleInterval float64 `yaml:"sample_interval" json:"sample_interval"` // monitor period; 0 disables the monitor
}

// DefaultScenarioConfig returns the reference scenario: 60 customers per
// hour, 150 s mean service, 3 servers, an 8 hour day, queues sampled
// every minute.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		ArrivalRate:    60.0 / 3600.0,
		ServiceRate:    1.0 / 150.0,
		NumServers:     3,
		Horizon:        8 * 3600,
		SampleInterval: 60,
	}
}

// Validate checks the configuration. It fails fast; nothing is scheduled
// for an invalid configuration.
func (c ScenarioConfig) Validate() error {
	if err := validateFinitePositive("arrival_rate", c.ArrivalRate); err != nil {
		return err
	}
	if err := validateFinitePositive("service_rate", c.ServiceRate); err != nil {
		return err
	}
	if c.NumServers < 1 {
		return fmt.Errorf("%w: num_servers must be >= 1, got %d", ErrInvalidConfig, c.NumServers)
	}
	if c.Horizon < 0 || math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) {
		return fmt.Errorf("%w: horizon must be a finite non-negative number, got %v", ErrInvalidConfig, c.Horizon)
	}
	if c.SampleInterval < 0 || math.IsNaN(c.SampleInterval) || math.IsInf(c.SampleInterval, 0) {
		return fmt.Errorf("%w: sample_interval must be a finite non-negative number, got %v", ErrInvalidConfig, c.SampleInterval)
	}
	return nil
}

// OfferedLoad returns ρ = λ / (N·μ).
func (c ScenarioConfig) OfferedLoad() float64 {
	return c.ArrivalRate / (float64(c.NumServers) * c.ServiceRate)
}

func validateFinitePositive(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite positive number, got %v", ErrInvalidConfig, name, v)
	}
	return nil
}

// ScenarioFile is the on-disk YAML form of a scenario. Fields are pointers
// so that an explicit zero (e.g. sample_interval: 0) is distinguishable from
// an absent key; absent fields fall back to command-line values.
type ScenarioFile struct {
	Seed     *int64 `yaml:"seed,omitempty"`
	Topology string `yaml:"topology,omitempty"` // separate, shared or both
	Routing  string `yaml:"routing,omitempty"`

	ArrivalRate    *float64 `yaml:"arrival_rate,omitempty"`
	ServiceRate    *float64 `yaml:"service_rate,omitempty"`
	NumServers     *int     `yaml:"num_servers,omitempty"`
	Horizon        *float64 `yaml:"horizon,omitempty"`
	SampleInterval *float64 `yaml:"sample_interval,omitempty"`
}

// Overlay returns base with every field present in the file replaced.
func (f *ScenarioFile) Overlay(base ScenarioConfig) ScenarioConfig {
	if f.ArrivalRate != nil {
		base.ArrivalRate = *f.ArrivalRate
	}
	if f.ServiceRate != nil {
		base.ServiceRate = *f.ServiceRate
	}
	if f.NumServers != nil {
		base.NumServers = *f.NumServers
	}
	if f.Horizon != nil {
		base.Horizon = *f.Horizon
	}
	if f.SampleInterval != nil {
		base.SampleInterval = *f.SampleInterval
	}
	return base
}

// LoadScenarioFile reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenarioFile(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var f ScenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if f.Routing != "" && !IsValidRoutingPolicy(f.Routing) {
		return nil, fmt.Errorf("%w: unknown routing policy %q in %s", ErrInvalidConfig, f.Routing, path)
	}
	logrus.Debugf("loaded scenario file %s", path)
	return &f, nil
}
