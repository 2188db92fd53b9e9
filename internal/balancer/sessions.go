package balancer

import (
	"net/http"
	"sync"
	"time"
)

const (
	// Idle connection slots kept open per backend endpoint.
	maxIdleSessionsPerBackend = 20
	idleSessionTimeout        = 90 * time.Second
)

// SessionFactory creates the reusable HTTP client for a backend
// endpoint, keyed by "ip:port".
type SessionFactory func(addr string) *http.Client

// newSession builds the production session: a pooled transport with a
// bounded idle pool and no automatic redirect following, so redirects
// are relayed to the original caller as-is. Timeouts are applied per
// request via context, not on the client.
func newSession(addr string) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleSessionsPerBackend,
		MaxIdleConnsPerHost: maxIdleSessionsPerBackend,
		IdleConnTimeout:     idleSessionTimeout,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// sessionRegistry caches one session per backend endpoint for the life
// of the process. The key space is bounded by the number of distinct
// endpoints ever seen; entries are never torn down.
type sessionRegistry struct {
	mutex    sync.RWMutex
	sessions map[string]*http.Client
	factory  SessionFactory
}

func newSessionRegistry(factory SessionFactory) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*http.Client),
		factory:  factory,
	}
}

func (r *sessionRegistry) Get(addr string) *http.Client {
	r.mutex.RLock()
	session, exists := r.sessions[addr]
	r.mutex.RUnlock()

	if exists {
		return session
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if session, exists = r.sessions[addr]; exists {
		return session
	}

	session = r.factory(addr)
	r.sessions[addr] = session
	return session
}
