package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ServerResource is a finite-capacity contention point with a FIFO wait
// list. Capacity 1 models one server of a separate queue; capacity N models
// the N servers behind a shared queue.
//
// A request is granted immediately iff InUse() < Capacity() when it is made;
// otherwise it waits and is granted, in arrival order, as soon as a slot frees.
type ServerResource struct {
	name     string
	capacity int
	inUse    int
	waitQ    *WaitQueue
	sched    *Scheduler

	granted      int64   // total acquisitions granted
	peakQueueLen int     // largest wait list length observed
	busyArea     float64 // integral of inUse over simulated time
	lastChange   float64 // simulated time of the last inUse change
}

// NewServerResource creates a resource bound to scheduler s.
func NewServerResource(name string, capacity int, s *Scheduler) (*ServerResource, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: server %q capacity must be >= 1, got %d", ErrInvalidConfig, name, capacity)
	}
	if s == nil {
		return nil, fmt.Errorf("server %q: scheduler must not be nil", name)
	}
	return &ServerResource{
		name:       name,
		capacity:   capacity,
		waitQ:      &WaitQueue{},
		sched:      s,
		lastChange: s.Now(),
	}, nil
}

// Name returns the resource name.
func (r *ServerResource) Name() string { return r.name }

// Capacity returns the number of servers behind this resource.
func (r *ServerResource) Capacity() int { return r.capacity }

// InUse returns the number of slots currently held.
func (r *ServerResource) InUse() int { return r.inUse }

// QueueLen returns the number of processes waiting for a slot.
func (r *ServerResource) QueueLen() int { return r.waitQ.Len() }

// Acquire requests one slot for p. It returns true when the slot is granted
// immediately; the caller continues without suspending. Otherwise p joins
// the wait list, Acquire returns false, and p is resumed by a later Release
// once the slot has been handed over.
func (r *ServerResource) Acquire(p Process) bool {
	if r.inUse < r.capacity {
		r.setInUse(r.inUse + 1)
		r.granted++
		return true
	}
	r.waitQ.Enqueue(p)
	if n := r.waitQ.Len(); n > r.peakQueueLen {
		r.peakQueueLen = n
	}
	logrus.Debugf("[t=%12.3f] %s busy (%d/%d), queue length %d",
		r.sched.Now(), r.name, r.inUse, r.capacity, r.waitQ.Len())
	return false
}

// Release frees one slot. If a process is waiting, the slot passes straight
// to the oldest waiter (InUse is unchanged) and that waiter is resumed now.
func (r *ServerResource) Release() {
	if r.inUse == 0 {
		panic(fmt.Sprintf("Release: server %q has no slot in use", r.name))
	}
	next := r.waitQ.Dequeue()
	if next == nil {
		r.setInUse(r.inUse - 1)
		return
	}
	r.granted++
	next.Resume(r.sched)
}

// Stats reports accounting for this resource up to simulated time now.
func (r *ServerResource) Stats(now float64) ServerStats {
	area := r.busyArea
	if now > r.lastChange {
		area += float64(r.inUse) * (now - r.lastChange)
	}
	util := 0.0
	if now > 0 {
		util = area / (now * float64(r.capacity))
	}
	return ServerStats{
		Name:         r.name,
		Capacity:     r.capacity,
		Granted:      r.granted,
		PeakQueueLen: r.peakQueueLen,
		Waiting:      r.waitQ.Len(),
		InUse:        r.inUse,
		Utilization:  util,
	}
}

func (r *ServerResource) setInUse(n int) {
	now := r.sched.Now()
	r.busyArea += float64(r.inUse) * (now - r.lastChange)
	r.lastChange = now
	r.inUse = n
}
