package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// CustomerState represents the lifecycle state of a customer.
type CustomerState string

const (
	StateArrived   CustomerState = "arrived"
	StateWaiting   CustomerState = "waiting"
	StateInService CustomerState = "in_service"
	StateDeparted  CustomerState = "departed"
)

// CustomerRecord is the immutable outcome of one served customer.
// Times are simulated seconds.
type CustomerRecord struct {
	ID            int64   `json:"id"`
	Server        int     `json:"server"`         // index of the resource that served the customer
	ArrivalTime   float64 `json:"arrival_time"`   // time the customer entered the system
	ServiceStart  float64 `json:"service_start"`  // time a server was acquired
	DepartureTime float64 `json:"departure_time"` // time service finished
	ServiceTime   float64 `json:"service_time"`   // sampled service duration
	WaitTime      float64 `json:"wait_time"`      // ServiceStart - ArrivalTime
	SojournTime   float64 `json:"sojourn_time"`   // DepartureTime - ArrivalTime
}

// Customer is the per-arrival process:
// arrived → (waiting) → in_service → departed.
type Customer struct {
	ID          int64
	State       CustomerState
	ArrivalTime float64

	serverIdx    int
	server       *ServerResource
	service      Sampler
	serviceRate  float64
	serviceStart float64
	serviceTime  float64
	result       *Result
}

// NewCustomer creates a customer arriving now at server (index serverIdx).
// The customer does nothing until it is resumed.
func NewCustomer(id int64, now float64, serverIdx int, server *ServerResource,
	service Sampler, serviceRate float64, result *Result) *Customer {
	return &Customer{
		ID:          id,
		State:       StateArrived,
		ArrivalTime: now,
		serverIdx:   serverIdx,
		server:      server,
		service:     service,
		serviceRate: serviceRate,
		result:      result,
	}
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer(%d, %s)", c.ID, c.State)
}

// Resume advances the state machine by one step.
func (c *Customer) Resume(s *Scheduler) {
	switch c.State {
	case StateArrived:
		if c.server.Acquire(c) {
			c.startService(s)
			return
		}
		c.State = StateWaiting
	case StateWaiting:
		// Resumed by Release: the slot is already ours.
		c.startService(s)
	case StateInService:
		c.depart(s)
	default:
		panic(fmt.Sprintf("Resume: customer %d resumed in state %s", c.ID, c.State))
	}
}

func (c *Customer) startService(s *Scheduler) {
	c.State = StateInService
	c.serviceStart = s.Now()
	c.serviceTime = c.service.Exponential(c.serviceRate)
	logrus.Debugf("[t=%12.3f] customer %d starts service on %s (%.3fs)",
		c.serviceStart, c.ID, c.server.Name(), c.serviceTime)
	s.ScheduleAfter(c.serviceTime, c)
}

func (c *Customer) depart(s *Scheduler) {
	defer c.server.Release()

	now := s.Now()
	c.State = StateDeparted
	c.result.addRecord(CustomerRecord{
		ID:            c.ID,
		Server:        c.serverIdx,
		ArrivalTime:   c.ArrivalTime,
		ServiceStart:  c.serviceStart,
		DepartureTime: now,
		ServiceTime:   c.serviceTime,
		WaitTime:      c.serviceStart - c.ArrivalTime,
		SojournTime:   now - c.ArrivalTime,
	})
	logrus.Debugf("[t=%12.3f] customer %d departs %s after %.3fs", now, c.ID, c.server.Name(), now-c.ArrivalTime)
}
