package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/stefanpapad/target-balancer/internal/balancer"
	"github.com/stefanpapad/target-balancer/internal/metrics"
	"github.com/stefanpapad/target-balancer/internal/target"
)

// Route binds a path prefix to a target group.
type Route struct {
	Prefix string
	Group  *target.Group
}

// ProxyHandler dispatches inbound requests to target groups by longest
// matching route prefix and runs the select-then-forward pipeline.
type ProxyHandler struct {
	logger           *slog.Logger
	balancer         *balancer.Balancer
	responder        balancer.ErrorResponder
	routes           []Route
	metricsCollector *metrics.Collector
}

// NewProxyHandler creates the front-door handler. Routes are matched
// longest prefix first regardless of their configured order.
func NewProxyHandler(logger *slog.Logger, lb *balancer.Balancer, responder balancer.ErrorResponder, routes []Route, collector *metrics.Collector) *ProxyHandler {
	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	return &ProxyHandler{
		logger:           logger,
		balancer:         lb,
		responder:        responder,
		routes:           sorted,
		metricsCollector: collector,
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Received request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("host", r.Host))

	route, rewritten := h.matchRoute(r.URL.Path)
	if route == nil {
		h.write(w, h.responder.Respond(http.StatusNotFound, "no target group for path"))
		return
	}

	h.emitEvent(metrics.Event{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Group:     route.Group.Name(),
	})

	chosen := h.balancer.SelectTarget(route.Group, r)
	if chosen == nil {
		h.logger.Warn("No targets available",
			slog.String("group", route.Group.Name()))
		h.write(w, h.responder.Respond(http.StatusServiceUnavailable, "no targets available"))
		return
	}

	h.emitEvent(metrics.Event{
		Type:      metrics.EventTargetSelected,
		Timestamp: time.Now(),
		Group:     route.Group.Name(),
		Target:    chosen.Addr(),
	})

	h.logger.Info("Forwarding to target",
		slog.String("group", route.Group.Name()),
		slog.String("target", chosen.Addr()),
		slog.String("path", rewritten))

	start := time.Now()
	resp := h.balancer.ForwardRequest(chosen, r, rewritten)

	h.emitEvent(metrics.Event{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Group:      route.Group.Name(),
		Target:     chosen.Addr(),
		Duration:   time.Since(start),
		StatusCode: resp.StatusCode,
	})

	h.write(w, resp)
}

// matchRoute returns the longest route prefix containing the path and
// the path with that prefix stripped.
func (h *ProxyHandler) matchRoute(path string) (*Route, string) {
	for i := range h.routes {
		route := &h.routes[i]

		if !strings.HasPrefix(path, route.Prefix) {
			continue
		}

		rest := strings.TrimPrefix(path, route.Prefix)
		if rest != "" && !strings.HasPrefix(rest, "/") && route.Prefix != "/" {
			continue
		}

		if rest == "" {
			rest = "/"
		}

		return route, rest
	}

	return nil, ""
}

func (h *ProxyHandler) write(w http.ResponseWriter, resp *balancer.Response) {
	for key, values := range resp.Header {
		for _, value := range values {
			w.Header()[key] = append(w.Header()[key], value)
		}
	}

	w.WriteHeader(resp.StatusCode)

	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Error("Failed to write response", slog.Any("err", err))
	}
}

func (h *ProxyHandler) emitEvent(event metrics.Event) {
	if h.metricsCollector == nil {
		return
	}

	select {
	case h.metricsCollector.EventChannel() <- event:
	default:
	}
}
