// Package sim provides the discrete-event engine for comparing N separate
// single-server queues against one shared queue feeding N servers.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - scheduler.go: the clock, the pending-event heap and the Run loop
//   - resource.go: ServerResource acquire/release with a FIFO wait list
//   - customer.go: the customer state machine (arrived → waiting → in_service → departed)
//   - runner.go: wiring of one scenario and the two-topology comparison
//
// # Processes
//
// Every simulated actor is a Process, an explicit state machine that the
// Scheduler resumes. A process suspends in exactly two ways: by scheduling
// its own resumption with Scheduler.ScheduleAfter, or by losing a contended
// ServerResource.Acquire, in which case Release resumes it later. There are
// three process types: ArrivalProcess, QueueMonitor and Customer.
//
// # Determinism
//
// The engine is single-threaded. Events due at the same time run in the
// order they were scheduled, and all randomness enters through Sources,
// which NewSources derives from a SimulationKey. The same key and
// configuration produce identical records.
//
// Sub-packages:
//   - sim/trace/: routing decision trace
//   - sim/stats/: descriptive statistics over records and monitor samples
//   - sim/analytic/: closed-form M/M/1 and M/M/c expectations
//   - sim/recorder/: CSV, SQLite and Parquet exporters
package sim
