package sim

import (
	"fmt"
	"math/rand"
)

// Routing policy names accepted by NewRouter.
const (
	RoutingRandom        = "random"
	RoutingRoundRobin    = "round-robin"
	RoutingShortestQueue = "shortest-queue"
)

var validRoutingPolicies = map[string]bool{
	"":                   true, // empty defaults to random
	RoutingRandom:        true,
	RoutingRoundRobin:    true,
	RoutingShortestQueue: true,
}

// IsValidRoutingPolicy returns true if name is a recognized routing policy.
func IsValidRoutingPolicy(name string) bool {
	return validRoutingPolicies[name]
}

// RoutingDecision encapsulates the routing decision for one arriving customer.
type RoutingDecision struct {
	Target int    // index into the servers slice
	Reason string // human-readable explanation
}

// Router decides which server an arriving customer joins in the separate
// topology. The decision is final; customers are never re-routed.
type Router interface {
	Route(servers []*ServerResource) RoutingDecision
}

// RandomRouter picks a server uniformly at random.
type RandomRouter struct {
	rng *rand.Rand
}

// NewRandomRouter creates a RandomRouter drawing from rng.
func NewRandomRouter(rng *rand.Rand) *RandomRouter {
	if rng == nil {
		panic("NewRandomRouter: rng must not be nil")
	}
	return &RandomRouter{rng: rng}
}

// Route implements Router for RandomRouter.
func (r *RandomRouter) Route(servers []*ServerResource) RoutingDecision {
	if len(servers) == 0 {
		panic("RandomRouter.Route: empty servers")
	}
	return RoutingDecision{Target: r.rng.Intn(len(servers)), Reason: RoutingRandom}
}

// RoundRobin routes customers in round-robin order across servers.
type RoundRobin struct {
	counter int
}

// Route implements Router for RoundRobin.
func (rr *RoundRobin) Route(servers []*ServerResource) RoutingDecision {
	if len(servers) == 0 {
		panic("RoundRobin.Route: empty servers")
	}
	target := rr.counter % len(servers)
	rr.counter++
	return RoutingDecision{Target: target, Reason: RoutingRoundRobin}
}

// ShortestQueue routes to the server with the fewest customers waiting or in
// service. Ties go to the lowest index.
type ShortestQueue struct{}

// Route implements Router for ShortestQueue.
func (ShortestQueue) Route(servers []*ServerResource) RoutingDecision {
	if len(servers) == 0 {
		panic("ShortestQueue.Route: empty servers")
	}
	best := 0
	bestLoad := load(servers[0])
	for i := 1; i < len(servers); i++ {
		if l := load(servers[i]); l < bestLoad {
			best, bestLoad = i, l
		}
	}
	return RoutingDecision{Target: best, Reason: fmt.Sprintf("%s (load=%d)", RoutingShortestQueue, bestLoad)}
}

// NewRouter creates a routing policy by name. rng is used by policies that
// need randomness.
func NewRouter(name string, rng *rand.Rand) (Router, error) {
	switch name {
	case "", RoutingRandom:
		return NewRandomRouter(rng), nil
	case RoutingRoundRobin:
		return &RoundRobin{}, nil
	case RoutingShortestQueue:
		return ShortestQueue{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown routing policy %q; valid: random, round-robin, shortest-queue", ErrInvalidConfig, name)
	}
}

func load(r *ServerResource) int {
	return r.QueueLen() + r.InUse()
}
