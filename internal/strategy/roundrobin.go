package strategy

import (
	"net/http"
	"sync"

	"github.com/stefanpapad/target-balancer/internal/target"
)

type roundRobinStrategy struct {
	mutex    sync.Mutex
	counters map[string]int
}

// NewRoundRobinStrategy creates the default strategy: per-group cyclic
// selection. State is keyed by group name, so one instance serves any
// number of groups independently.
func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{
		counters: make(map[string]int),
	}
}

// Select returns candidates[index mod n] for the group's counter and
// advances it modulo the current candidate count. For a fixed count the
// group cycles through all candidates in list order; if the count
// changes between calls the new modulus may skip or revisit positions.
func (rr *roundRobinStrategy) Select(group *target.Group, _ *http.Request) *target.Target {
	targets := group.Targets()
	if len(targets) == 0 {
		return nil
	}

	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	index := rr.counters[group.Name()]
	chosen := targets[index%len(targets)]
	rr.counters[group.Name()] = (index + 1) % len(targets)

	return chosen
}
