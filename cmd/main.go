package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stefanpapad/target-balancer/config"
	"github.com/stefanpapad/target-balancer/internal/balancer"
	"github.com/stefanpapad/target-balancer/internal/handler"
	"github.com/stefanpapad/target-balancer/internal/httpserver"
	"github.com/stefanpapad/target-balancer/internal/metrics"
	"github.com/stefanpapad/target-balancer/internal/target"
	"github.com/stefanpapad/target-balancer/pkg/logger"
)

const metricsEventBuffer = 1000

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	routes := buildRoutes(cfg, log)
	if len(routes) == 0 {
		log.Error("No target groups configured")
		os.Exit(1)
	}

	collector := metrics.NewCollector(metricsEventBuffer, log)
	collector.Start(ctx)

	responder := handler.NewJSONResponder()
	lb := balancer.New(cfg, responder, log)

	proxyHandler := handler.NewProxyHandler(log, lb, responder, routes, collector)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(proxyHandler, collector, cfg.LoadBalancingAlgorithm()))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting load balancer", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildRoutes constructs a target group per configuration entry. A
// group that resolves to zero targets stays routable and answers 503
// until its members come back, matching the degrade-don't-fail
// parsing contract.
func buildRoutes(cfg *config.Config, log *slog.Logger) []handler.Route {
	var routes []handler.Route

	for _, gc := range cfg.TargetGroups {
		group := target.NewGroup(gc.Name, gc.Targets, gc.Weights)

		if len(group.Targets()) == 0 {
			log.Warn("Target group has no resolvable targets",
				slog.String("group", gc.Name),
				slog.String("targets", gc.Targets))
		} else {
			log.Info("Registered target group",
				slog.String("group", gc.Name),
				slog.String("route", gc.Route),
				slog.Int("targets", len(group.Targets())))
		}

		routes = append(routes, handler.Route{
			Prefix: gc.Route,
			Group:  group,
		})
	}

	return routes
}
