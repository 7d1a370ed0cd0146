// Package trace provides routing-decision recording for the separate-queues
// topology. This package has no dependencies on sim/ — it stores pure data types.
package trace

// RoutingRecord captures a single routing decision made at customer arrival.
type RoutingRecord struct {
	CustomerID int64
	Clock      float64
	Chosen     int     // index of the server the customer joined
	Reason     string  // policy explanation
	Loads      []int   // waiting + in-service count per server at decision time
	Regret     float64 // Loads[Chosen] - min(Loads); 0 if the least-loaded server was chosen
}
