package strategy

import (
	"net/http"

	"github.com/stefanpapad/target-balancer/internal/target"
)

// Algorithm names accepted from configuration.
const (
	AlgorithmRoundRobin = "ROUND_ROBIN"
	AlgorithmWeighted   = "WEIGHTED"
	AlgorithmSticky     = "STICKY"
	AlgorithmLRT        = "LRT"
)

// Strategy selects one target from a group's candidate list. The
// request is available for algorithms that need it (sticky sessions);
// current implementations ignore it. Select returns nil when the group
// has no targets.
type Strategy interface {
	Select(group *target.Group, req *http.Request) *target.Target
}
