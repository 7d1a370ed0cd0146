package sim

import "github.com/inference-sim/queue-sim/sim/trace"

// ServerStats summarizes one ServerResource at the end of a run.
type ServerStats struct {
	Name         string  `json:"name"`
	Capacity     int     `json:"capacity"`
	Granted      int64   `json:"granted"`        // acquisitions granted
	PeakQueueLen int     `json:"peak_queue_len"` // longest wait list observed
	Waiting      int     `json:"waiting"`        // wait list length at the horizon
	InUse        int     `json:"in_use"`         // slots held at the horizon
	Utilization  float64 `json:"utilization"`    // time-averaged InUse / Capacity
}

// Result is the output of one scenario run: the ordered customer records
// and, when monitoring is enabled, one MonitorSample series per resource.
type Result struct {
	RunID    string         `json:"run_id"`
	Topology Topology       `json:"topology"`
	Seed     int64          `json:"seed"`
	Config   ScenarioConfig `json:"config"`

	Records []CustomerRecord  `json:"records"` // in departure order
	Samples [][]MonitorSample `json:"samples,omitempty"`
	Servers []ServerStats     `json:"servers"`

	Arrivals int64   `json:"arrivals"`  // customers spawned before the horizon
	InSystem int64   `json:"in_system"` // customers still waiting or in service at the horizon
	EndTime  float64 `json:"end_time"`  // clock value when the run stopped
	Events   int64   `json:"events"`    // events executed

	Trace *trace.SimulationTrace `json:"-"`
}

func (r *Result) addRecord(rec CustomerRecord) {
	r.Records = append(r.Records, rec)
}
