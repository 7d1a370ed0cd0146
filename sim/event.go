package sim

import "fmt"

// Process is anything the scheduler can resume: a customer, the arrival
// generator or the queue monitor. Resume runs until the process suspends
// again (by scheduling itself or by waiting on a resource) or completes.
type Process interface {
	Resume(s *Scheduler)
}

// PendingEvent is a scheduled resumption of a Process.
type PendingEvent struct {
	DueTime float64 // Simulated time (seconds) at which Process resumes
	Seq     uint64  // Creation order, breaks ties between equal due times
	Process Process // Process to resume
}

func (e *PendingEvent) String() string {
	return fmt.Sprintf("PendingEvent(due=%.6f, seq=%d, process=%T)", e.DueTime, e.Seq, e.Process)
}
