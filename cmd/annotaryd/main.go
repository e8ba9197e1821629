package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evmlabs/annotary/service/annotate"
	"github.com/evmlabs/annotary/service/assets"
	"github.com/evmlabs/annotary/service/config"
	"github.com/evmlabs/annotary/service/enrich"
	"github.com/evmlabs/annotary/service/evm"
	"github.com/evmlabs/annotary/service/metrics"
	"github.com/evmlabs/annotary/service/names"
	natspkg "github.com/evmlabs/annotary/service/nats"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting annotaryd",
		"metrics_addr", cfg.MetricsAddr,
		"nats_url", cfg.NATSURL,
		"networks", len(cfg.RPCURLs),
		"log_level", cfg.LogLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics registry and endpoint
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics endpoint listening", "addr", cfg.MetricsAddr)

	// Per-network chain clients
	clients := make(map[string]*evm.Client, len(cfg.RPCURLs))
	networks := make(map[string]evm.Network, len(cfg.RPCURLs))
	for network, url := range cfg.RPCURLs {
		rpcClient, err := rpc.DialContext(ctx, url)
		if err != nil {
			logger.Error("failed to dial RPC endpoint", "network", network, "url", url, "error", err)
			os.Exit(1)
		}
		defer rpcClient.Close()
		clients[network] = evm.NewClient(rpcClient, network, m, logger)
		networks[network] = evm.NetworkNamed(network)
		logger.Info("initialized chain client", "network", network)
	}
	chainMux := evm.NewMux(clients)

	// Known-asset snapshot
	assetSource, err := assets.LoadFile(cfg.AssetsFile)
	if err != nil {
		logger.Error("failed to load assets file", "path", cfg.AssetsFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded assets file", "path", cfg.AssetsFile)

	// Name resolution
	var resolver names.Resolver = names.NewAddressBook(nil)
	if cfg.AddressBookFile != "" {
		book, err := names.LoadAddressBook(cfg.AddressBookFile)
		if err != nil {
			logger.Error("failed to load address book", "path", cfg.AddressBookFile, "error", err)
			os.Exit(1)
		}
		resolver = book
		logger.Info("loaded address book", "path", cfg.AddressBookFile)
	}
	batcher := names.NewBatcher(resolver, m, logger)

	// NATS transport
	publisher, err := natspkg.NewPublisher(cfg.NATSURL, m, logger)
	if err != nil {
		logger.Error("failed to initialize NATS publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	subscriber, err := natspkg.NewTransactionSubscriber(cfg.NATSURL, logger)
	if err != nil {
		logger.Error("failed to initialize NATS subscriber", "error", err)
		os.Exit(1)
	}
	defer subscriber.Close()

	// Annotation pipeline
	annotationResolver := annotate.NewResolver(chainMux, assetSource, batcher, m, logger)
	typedDataAnnotator := annotate.NewTypedDataAnnotator(assetSource, m, logger)

	coordinator := enrich.NewCoordinator(
		subscriber,
		publisher,
		annotationResolver,
		typedDataAnnotator,
		networks,
		uint8(cfg.DisplayDecimals),
		m,
		logger,
	)
	if err := coordinator.Start(ctx); err != nil {
		logger.Error("failed to start enrichment coordinator", "error", err)
		os.Exit(1)
	}

	logger.Info("annotaryd initialized, all dependencies ready")

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info("shutdown signal received", "signal", sig.String())

	coordinator.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown metrics server gracefully", "error", err)
	}

	logger.Info("annotaryd shutdown complete")
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
