package main

import (
	"net/http"

	"github.com/stefanpapad/target-balancer/internal/handler"
	"github.com/stefanpapad/target-balancer/internal/metrics"
)

func setupRouter(proxyHandler *handler.ProxyHandler, metricsCollector *metrics.Collector, algorithm string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", proxyHandler.ServeHTTP)
	mux.HandleFunc("/metrics", metricsCollector.Handler(algorithm))

	return mux
}
