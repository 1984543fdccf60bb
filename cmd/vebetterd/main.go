package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vebetterdao/config"
	"vebetterdao/core"
	"vebetterdao/core/events"
	"vebetterdao/core/journal"
	"vebetterdao/observability"
	"vebetterdao/observability/logging"
	"vebetterdao/observability/otel"
	"vebetterdao/rpc"
	"vebetterdao/storage"
)

const (
	rpcTokenEnv     = "VEBETTERDAO_RPC_TOKEN"
	otelEndpointEnv = "VEBETTERDAO_OTLP_ENDPOINT"
	otelHeadersEnv  = "VEBETTERDAO_OTLP_HEADERS"

	version = "0.1.0"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	blockInterval := flag.Duration("block-interval", 10*time.Second, "Interval between produced blocks (0 disables automatic production)")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("VEBETTERDAO_ENV"))
	logger := logging.Setup("vebetterd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	nodeCfg, err := cfg.NodeConfig()
	if err != nil {
		logger.Error("invalid config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", slog.Any("error", err), slog.String("path", cfg.DataDir))
		os.Exit(1)
	}
	db, err := storage.OpenStateDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		logger.Error("failed to open state database", slog.Any("error", err), slog.String("path", cfg.DataDir))
		os.Exit(1)
	}
	defer db.Close()

	journalDB, err := storage.NewBoltDB(filepath.Join(cfg.DataDir, "events.db"))
	if err != nil {
		logger.Error("failed to open event journal", slog.Any("error", err))
		os.Exit(1)
	}
	defer journalDB.Close()
	eventJournal, err := journal.Open(journalDB)
	if err != nil {
		logger.Error("failed to open event journal", slog.Any("error", err))
		os.Exit(1)
	}

	root, err := db.HeadRoot()
	if err != nil {
		logger.Error("failed to read head root", slog.Any("error", err))
		os.Exit(1)
	}

	node, err := core.NewNode(db, root, nodeCfg)
	if err != nil {
		logger.Error("failed to start node", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("node ready",
		slog.String("network", cfg.NetworkName),
		slog.Uint64("height", node.Height()),
		slog.String("root", node.Root().Hex()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if endpoint := strings.TrimSpace(os.Getenv(otelEndpointEnv)); endpoint != "" {
		shutdown, err := otel.Init(ctx, otel.Config{
			ServiceName:    "vebetterd",
			ServiceVersion: version,
			Environment:    env,
			Endpoint:       endpoint,
			Insecure:       true,
			Headers:        otel.ParseHeaders(os.Getenv(otelHeadersEnv)),
			Metrics:        true,
			Traces:         true,
		})
		if err != nil {
			logger.Error("failed to initialize telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	if cfg.MetricsAddress != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddress, metricsMux); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	authToken := strings.TrimSpace(os.Getenv(rpcTokenEnv))
	if authToken == "" {
		authToken = cfg.RPCAuthToken
	}
	if authToken == "" {
		logger.Warn("no RPC auth token configured, mutating methods are disabled")
	} else {
		logger.Info("rpc auth enabled", logging.MaskField("token", authToken))
	}
	server := rpc.NewServer(node, authToken)
	server.SetJournal(eventJournal)
	go func() {
		if err := server.Start(cfg.RPCAddress); err != nil {
			logger.Error("rpc server stopped", slog.Any("error", err))
			stop()
		}
	}()

	if *blockInterval > 0 {
		go produceBlocks(ctx, node, *blockInterval, logger)
	}
	go consumeEvents(ctx, node, eventJournal, logger)

	<-ctx.Done()
	logger.Info("shutting down")
}

// consumeEvents journals every protocol event and mirrors the headline ones
// into the Prometheus counters.
func consumeEvents(ctx context.Context, node *core.Node, eventJournal *journal.Journal, logger *slog.Logger) {
	updates, cancel := node.Events().Subscribe(256)
	defer cancel()
	metrics := observability.Protocol()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-updates:
			if !ok {
				return
			}
			if err := eventJournal.Append(event); err != nil {
				logger.Error("failed to journal event", slog.String("type", event.EventType()), slog.Any("error", err))
			}
			switch event.EventType() {
			case events.EventEmissionDistributed:
				metrics.RecordCycleDistributed()
			case events.EventRoundCreated:
				metrics.RecordRoundStarted()
			}
		}
	}
}

// produceBlocks drives the chain clock. Every tick advances one block, which
// also triggers any due emission distribution.
func produceBlocks(ctx context.Context, node *core.Node, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height, err := node.AdvanceBlock()
			if err != nil {
				logger.Error("failed to advance block", slog.Any("error", err))
				continue
			}
			logger.Debug("block produced", slog.Uint64("height", height))
		}
	}
}
