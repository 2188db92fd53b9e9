// Package metrics provides real-time metrics collection for the load
// balancer: request counts and selection counts per target group,
// per-target response times with percentile calculations (P50, P95,
// P99), and status code distribution.
//
// Events flow through a buffered channel into a dedicated collector
// goroutine, so the request path never blocks on metrics. The channel
// is drained on shutdown to avoid losing tail events.
package metrics
