package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Scheduler owns the simulated clock and the set of pending resumptions.
// It is single-threaded: exactly one process runs at any simulated instant,
// and events due at the same time run in the order they were scheduled.
type Scheduler struct {
	now      float64
	events   *EventHeap
	nextSeq  uint64 // per-scheduler counter for deterministic tie-breaking
	executed int64
	hooks    []Hook
}

// NewScheduler creates a scheduler with the clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		events: NewEventHeap(),
	}
}

// Now returns the current simulated time in seconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Pending returns the number of resumptions not yet executed.
func (s *Scheduler) Pending() int {
	return s.events.Len()
}

// Executed returns the number of events resumed so far.
func (s *Scheduler) Executed() int64 {
	return s.executed
}

// AddHook registers a hook invoked before and after every event.
func (s *Scheduler) AddHook(h Hook) {
	s.hooks = append(s.hooks, h)
}

// ScheduleAfter registers a resumption of p delay seconds after now.
func (s *Scheduler) ScheduleAfter(delay float64, p Process) {
	if delay < 0 || math.IsNaN(delay) {
		panic(fmt.Sprintf("ScheduleAfter: invalid delay %v", delay))
	}
	if p == nil {
		panic("ScheduleAfter: process must not be nil")
	}
	s.nextSeq++
	s.events.Schedule(&PendingEvent{
		DueTime: s.now + delay,
		Seq:     s.nextSeq,
		Process: p,
	})
}

// Run resumes pending processes in (due time, sequence) order until no
// events remain or the next one is due after until. Processes still
// suspended at that point are abandoned. Returns the number of events run.
func (s *Scheduler) Run(until float64) int64 {
	var ran int64
	for {
		next := s.events.Peek()
		if next == nil || next.DueTime > until {
			break
		}
		ev := s.events.PopNext()

		// Clock monotonicity
		if ev.DueTime < s.now {
			panic(fmt.Sprintf("clock went backwards: %.6f < %.6f", ev.DueTime, s.now))
		}
		s.now = ev.DueTime

		logrus.Tracef("[t=%12.3f] resuming %T (seq %d)", s.now, ev.Process, ev.Seq)

		s.invokeHooks(HookPosBeforeEvent, ev)
		ev.Process.Resume(s)
		s.invokeHooks(HookPosAfterEvent, ev)

		ran++
		s.executed++
	}
	logrus.Debugf("[t=%12.3f] run stopped at horizon %.3f, %d events executed, %d abandoned",
		s.now, until, ran, s.events.Len())
	return ran
}

func (s *Scheduler) invokeHooks(pos HookPos, ev *PendingEvent) {
	if len(s.hooks) == 0 {
		return
	}
	ctx := HookCtx{
		Now:     s.now,
		Pos:     pos,
		Event:   ev,
		Pending: s.events.Len(),
	}
	for _, h := range s.hooks {
		h.Func(ctx)
	}
}
