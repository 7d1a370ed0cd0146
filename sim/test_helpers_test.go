package sim

import "fmt"

// funcProcess adapts a closure to Process for scheduler and resource tests.
type funcProcess struct {
	name string
	fn   func(s *Scheduler)
}

func (p *funcProcess) Resume(s *Scheduler) { p.fn(s) }

func (p *funcProcess) String() string { return p.name }

// traceLog collects "name@time" strings in resumption order.
type traceLog struct {
	entries []string
}

func (l *traceLog) process(name string) *funcProcess {
	return &funcProcess{name: name, fn: func(s *Scheduler) {
		l.entries = append(l.entries, fmt.Sprintf("%s@%g", name, s.Now()))
	}}
}

// scriptedSampler returns values in order and then repeats the last one.
type scriptedSampler struct {
	values []float64
	calls  int
	rates  []float64
}

func (s *scriptedSampler) Exponential(rate float64) float64 {
	s.rates = append(s.rates, rate)
	v := s.values[len(s.values)-1]
	if s.calls < len(s.values) {
		v = s.values[s.calls]
	}
	s.calls++
	return v
}

// countingSampler counts the draws made through an underlying Sampler.
type countingSampler struct {
	Sampler
	calls int
}

func (s *countingSampler) Exponential(rate float64) float64 {
	s.calls++
	return s.Sampler.Exponential(rate)
}

// testSources returns scripted sources with round-robin routing.
func testSources(interArrival, service []float64) Sources {
	return Sources{
		InterArrival: &scriptedSampler{values: interArrival},
		Service:      &scriptedSampler{values: service},
		Router:       &RoundRobin{},
	}
}
