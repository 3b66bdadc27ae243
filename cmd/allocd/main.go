// Allocd is a resource allocation decision-support daemon.
//
// It serves an HTTP API that manages resources and tasks, generates
// allocation alternatives with several planning strategies, and learns
// from recorded user selections to recommend alternatives.
//
// Configuration is loaded from ~/.config/allocd/config.yaml and
// ALLOCD_* environment variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults (embedded persistence)
//	allocd
//
//	# Configure via environment
//	ALLOCD_SERVER_PORT=9090 ALLOCD_STORE_NATS_URL=nats://localhost:4222 allocd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/config"
	allochttp "github.com/enzy247/allocd/internal/http"
	"github.com/enzy247/allocd/internal/logging"
	"github.com/enzy247/allocd/internal/recommender"
	"github.com/enzy247/allocd/internal/store"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/allocd/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  allocd           Start the allocd daemon\n")
			fmt.Fprintf(os.Stderr, "  allocd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("allocd\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the allocd server and blocks until the context is
// cancelled. It loads configuration, builds the logger, connects to (or
// starts) NATS, wires the store and recommender, and serves HTTP.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("Starting allocd",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	deps, err := initDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	logger.Info("Dependencies initialized",
		zap.Bool("embedded_nats", deps.embedded != nil),
		zap.Bool("model_restored", deps.recommender.Trained()))

	srv, err := allochttp.NewServer(deps.store, deps.recommender, logger, &allochttp.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// dependencies holds all infrastructure dependencies.
type dependencies struct {
	embedded    *store.Embedded
	natsConn    *nats.Conn
	store       *store.Store
	recommender *recommender.Service
	logger      *zap.Logger
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	if d.natsConn != nil {
		d.natsConn.Close()
	}
	if d.embedded != nil {
		d.embedded.Shutdown()
	}
}

// initDependencies connects to NATS (starting an embedded server when no
// external URL is configured), builds the store and the recommender, and
// restores a persisted model snapshot if one exists.
func initDependencies(cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	deps := &dependencies{logger: logger}

	natsURL := cfg.Store.NATSURL
	if natsURL == "" {
		embedded, err := store.StartEmbedded(cfg.Store.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded server: %w", err)
		}
		deps.embedded = embedded
		natsURL = embedded.ClientURL()
		logger.Info("Started embedded persistence server",
			zap.String("data_dir", cfg.Store.DataDir))
	}

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
	}
	deps.natsConn = nc
	logger.Info("Connected to NATS", zap.String("url", natsURL))

	st, err := store.New(nc, &store.Config{BucketPrefix: cfg.Store.BucketPrefix}, logger)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	deps.store = st

	recCfg := recommender.DefaultConfig()
	recCfg.MinSamples = cfg.Recommender.MinSamples
	recCfg.Threshold = cfg.Recommender.Threshold
	recCfg.TopN = cfg.Recommender.TopN
	rec := recommender.NewService(recCfg, logger)

	snapshot, err := st.LoadModel()
	switch {
	case err == nil:
		if err := rec.Restore(snapshot); err != nil {
			logger.Warn("Failed to restore persisted model, starting untrained", zap.Error(err))
		} else {
			logger.Info("Restored persisted recommendation model")
		}
	case errors.Is(err, store.ErrNotFound):
		// First run, nothing to restore.
	default:
		deps.Close()
		return nil, fmt.Errorf("failed to load persisted model: %w", err)
	}
	deps.recommender = rec

	return deps, nil
}
