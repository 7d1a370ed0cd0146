package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitQueue_FIFO(t *testing.T) {
	// GIVEN three waiters enqueued in order
	wq := &WaitQueue{}
	a := &funcProcess{name: "a"}
	b := &funcProcess{name: "b"}
	c := &funcProcess{name: "c"}
	wq.Enqueue(a)
	wq.Enqueue(b)
	wq.Enqueue(c)

	// THEN Peek sees the oldest and Dequeue returns them in order
	assert.Equal(t, 3, wq.Len())
	assert.Same(t, a, wq.Peek())
	assert.Same(t, a, wq.Dequeue())
	assert.Same(t, b, wq.Dequeue())
	assert.Same(t, c, wq.Dequeue())
	assert.Nil(t, wq.Dequeue())
	assert.Nil(t, wq.Peek())
	assert.Equal(t, 0, wq.Len())
}

func TestWaitQueue_String(t *testing.T) {
	wq := &WaitQueue{}
	wq.Enqueue(&funcProcess{name: "x"})
	wq.Enqueue(&funcProcess{name: "y"})
	assert.Equal(t, "[x y]", wq.String())
}

func TestWaitQueue_EnqueueNilPanics(t *testing.T) {
	wq := &WaitQueue{}
	assert.Panics(t, func() { wq.Enqueue(nil) })
}
