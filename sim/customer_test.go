package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCustomer_FreeServer_ServedImmediately(t *testing.T) {
	// GIVEN an idle server and a service sampler that returns 5s
	ctrl := gomock.NewController(t)
	service := NewMockSampler(ctrl)
	service.EXPECT().Exponential(0.2).Return(5.0).Times(1)

	s := NewScheduler()
	srv, err := NewServerResource("queue_0", 1, s)
	require.NoError(t, err)
	res := &Result{}

	// WHEN a customer arrives at t=0 and the scheduler runs
	c := NewCustomer(1, s.Now(), 0, srv, service, 0.2, res)
	c.Resume(s)
	assert.Equal(t, StateInService, c.State)
	assert.Equal(t, 1, srv.InUse())
	s.Run(100)

	// THEN it departs after exactly its service time with no wait
	assert.Equal(t, StateDeparted, c.State)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, 0.0, rec.WaitTime)
	assert.Equal(t, 5.0, rec.ServiceTime)
	assert.Equal(t, 5.0, rec.SojournTime)
	assert.Equal(t, 5.0, rec.DepartureTime)
	assert.Equal(t, 0, srv.InUse(), "slot released on departure")
}

func TestCustomer_BusyServer_WaitsThenServed(t *testing.T) {
	// GIVEN one server and two customers arriving together, each needing 10s
	ctrl := gomock.NewController(t)
	service := NewMockSampler(ctrl)
	service.EXPECT().Exponential(gomock.Any()).Return(10.0).Times(2)

	s := NewScheduler()
	srv, err := NewServerResource("queue_0", 1, s)
	require.NoError(t, err)
	res := &Result{}

	first := NewCustomer(1, 0, 0, srv, service, 0.1, res)
	second := NewCustomer(2, 0, 0, srv, service, 0.1, res)

	// WHEN both arrive
	first.Resume(s)
	second.Resume(s)

	// THEN the second waits in the queue
	assert.Equal(t, StateWaiting, second.State)
	assert.Equal(t, 1, srv.QueueLen())

	// WHEN the scheduler runs
	s.Run(100)

	// THEN the second starts when the first leaves and its sojourn is wait + service
	require.Len(t, res.Records, 2)
	rec := res.Records[1]
	assert.Equal(t, int64(2), rec.ID)
	assert.Equal(t, 10.0, rec.ServiceStart)
	assert.Equal(t, 10.0, rec.WaitTime)
	assert.Equal(t, 20.0, rec.SojournTime)
	assert.GreaterOrEqual(t, rec.SojournTime, rec.ServiceTime)
	assert.Equal(t, 0, srv.InUse())
}

func TestCustomer_ResumeAfterDeparture_Panics(t *testing.T) {
	s := NewScheduler()
	srv, err := NewServerResource("queue_0", 1, s)
	require.NoError(t, err)
	c := NewCustomer(1, 0, 0, srv, &scriptedSampler{values: []float64{1}}, 1, &Result{})
	c.Resume(s)
	s.Run(10)
	require.Equal(t, StateDeparted, c.State)

	assert.Panics(t, func() { c.Resume(s) })
}

func TestCustomer_String(t *testing.T) {
	c := &Customer{ID: 4, State: StateWaiting}
	assert.Equal(t, "Customer(4, waiting)", c.String())
}
