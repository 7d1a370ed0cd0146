package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim/trace"
)

// ArrivalProcess is an unbounded Poisson generator of customers. Every
// resumption spawns exactly one customer at the current time and schedules
// the next arrival after an exponential gap with rate λ. It has no stop
// condition; it is simply never resumed once the horizon is reached.
type ArrivalProcess struct {
	rate         float64
	serviceRate  float64
	interArrival Sampler
	service      Sampler
	router       Router // nil when there is a single shared server
	servers      []*ServerResource
	result       *Result
	trace        *trace.SimulationTrace // nil when tracing is disabled

	nextID int64
}

// Start schedules the first arrival.
func (a *ArrivalProcess) Start(s *Scheduler) {
	s.ScheduleAfter(a.interArrival.Exponential(a.rate), a)
}

// Spawned returns the number of customers generated so far.
func (a *ArrivalProcess) Spawned() int64 {
	return a.nextID
}

// Resume spawns one customer and schedules the next arrival.
func (a *ArrivalProcess) Resume(s *Scheduler) {
	a.nextID++
	target := a.route(s)
	c := NewCustomer(a.nextID, s.Now(), target, a.servers[target], a.service, a.serviceRate, a.result)
	logrus.Debugf("[t=%12.3f] customer %d arrives, joins %s", s.Now(), c.ID, a.servers[target].Name())
	c.Resume(s)

	s.ScheduleAfter(a.interArrival.Exponential(a.rate), a)
}

func (a *ArrivalProcess) route(s *Scheduler) int {
	if a.router == nil || len(a.servers) == 1 {
		return 0
	}
	var loads []int
	if a.trace != nil {
		loads = make([]int, len(a.servers))
		for i, srv := range a.servers {
			loads[i] = load(srv)
		}
	}
	decision := a.router.Route(a.servers)
	if decision.Target < 0 || decision.Target >= len(a.servers) {
		panic("ArrivalProcess: router returned out-of-range server index")
	}
	if a.trace != nil {
		a.trace.RecordRouting(trace.RoutingRecord{
			CustomerID: a.nextID,
			Clock:      s.Now(),
			Chosen:     decision.Target,
			Reason:     decision.Reason,
			Loads:      loads,
		})
	}
	return decision.Target
}
