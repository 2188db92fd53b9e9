package strategy

import (
	"net/http"

	"github.com/stefanpapad/target-balancer/internal/target"
)

// firstCandidateStrategy stands in for algorithms that are advertised
// but have no selection policy yet (WEIGHTED, STICKY, LRT). It always
// returns the first candidate in list order. Each gets its own named
// variant rather than aliasing to round robin, so the gap stays visible
// until the real policies are written.
type firstCandidateStrategy struct {
	algorithm string
}

// NewWeightedStrategy returns the WEIGHTED placeholder.
//
// TODO: consume Group.WeightedTargets once a weighted policy is specified.
func NewWeightedStrategy() Strategy {
	return &firstCandidateStrategy{algorithm: AlgorithmWeighted}
}

// NewStickyStrategy returns the STICKY placeholder.
func NewStickyStrategy() Strategy {
	return &firstCandidateStrategy{algorithm: AlgorithmSticky}
}

// NewLeastResponseTimeStrategy returns the LRT placeholder.
func NewLeastResponseTimeStrategy() Strategy {
	return &firstCandidateStrategy{algorithm: AlgorithmLRT}
}

func (f *firstCandidateStrategy) Select(group *target.Group, _ *http.Request) *target.Target {
	targets := group.Targets()
	if len(targets) == 0 {
		return nil
	}

	return targets[0]
}
