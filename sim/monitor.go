package sim

// MonitorSample is one observation of a resource's wait list.
type MonitorSample struct {
	Time        float64 `json:"time"`
	QueueLength int     `json:"queue_length"`
}

// QueueMonitor periodically samples the wait-list length of each observed
// resource. It is purely observational.
type QueueMonitor struct {
	interval float64
	servers  []*ServerResource
	samples  [][]MonitorSample
}

// NewQueueMonitor creates a monitor observing servers every interval seconds.
func NewQueueMonitor(interval float64, servers []*ServerResource) *QueueMonitor {
	return &QueueMonitor{
		interval: interval,
		servers:  servers,
		samples:  make([][]MonitorSample, len(servers)),
	}
}

// Start schedules the first sample one interval from now.
func (m *QueueMonitor) Start(s *Scheduler) {
	s.ScheduleAfter(m.interval, m)
}

// Resume records one sample per resource and schedules the next round.
func (m *QueueMonitor) Resume(s *Scheduler) {
	now := s.Now()
	for i, srv := range m.servers {
		m.samples[i] = append(m.samples[i], MonitorSample{Time: now, QueueLength: srv.QueueLen()})
	}
	s.ScheduleAfter(m.interval, m)
}

// Samples returns the per-resource sample series, indexed like the servers.
func (m *QueueMonitor) Samples() [][]MonitorSample {
	return m.samples
}
