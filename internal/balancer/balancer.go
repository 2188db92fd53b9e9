package balancer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stefanpapad/target-balancer/internal/strategy"
	"github.com/stefanpapad/target-balancer/internal/target"
)

// Config is the read-only view of configuration the balancer needs. It
// is queried per request, so live reconfiguration of the algorithm or
// timeout takes effect immediately.
type Config interface {
	LoadBalancingAlgorithm() string
	ConnectionTimeout() time.Duration
}

// Response is the HTTP-shaped result of a forward: either the backend's
// real response or an error response built by the responder.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ErrorResponder builds the error responses the balancer hands back on
// forwarding failures. The balancer never constructs error bodies
// itself.
type ErrorResponder interface {
	Respond(statusCode int, message string) *Response
}

// Balancer selects targets and forwards requests. Its only mutable
// state is the round-robin counters (owned by the round-robin strategy)
// and the per-backend session registry; both are safe for concurrent
// use.
type Balancer struct {
	config    Config
	responder ErrorResponder
	logger    *slog.Logger

	roundRobin strategy.Strategy
	weighted   strategy.Strategy
	sticky     strategy.Strategy
	lrt        strategy.Strategy

	sessions *sessionRegistry
}

// Option configures a Balancer.
type Option func(*Balancer)

// WithSessionFactory overrides how per-backend sessions are created.
// Tests use it to count session creations and to stub transports.
func WithSessionFactory(factory SessionFactory) Option {
	return func(b *Balancer) {
		b.sessions = newSessionRegistry(factory)
	}
}

// New creates a balancer. Counters and sessions are created lazily per
// group / backend and live for the life of the process.
func New(config Config, responder ErrorResponder, logger *slog.Logger, opts ...Option) *Balancer {
	b := &Balancer{
		config:     config,
		responder:  responder,
		logger:     logger,
		roundRobin: strategy.NewRoundRobinStrategy(),
		weighted:   strategy.NewWeightedStrategy(),
		sticky:     strategy.NewStickyStrategy(),
		lrt:        strategy.NewLeastResponseTimeStrategy(),
		sessions:   newSessionRegistry(newSession),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// SelectTarget picks a target from the group using the configured
// algorithm. It returns nil when the group has no targets; the caller
// decides how to surface that. Unrecognized algorithm names fall back
// to round robin.
func (b *Balancer) SelectTarget(group *target.Group, req *http.Request) *target.Target {
	if len(group.Targets()) == 0 {
		return nil
	}

	switch b.config.LoadBalancingAlgorithm() {
	case strategy.AlgorithmWeighted:
		return b.weighted.Select(group, req)
	case strategy.AlgorithmSticky:
		return b.sticky.Select(group, req)
	case strategy.AlgorithmLRT:
		return b.lrt.Select(group, req)
	default:
		return b.roundRobin.Select(group, req)
	}
}
