package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jonny/pdm-service/internal/adapter/inbound/httpapi"
	"github.com/jonny/pdm-service/internal/adapter/outbound/report"
	"github.com/jonny/pdm-service/internal/config"
	"github.com/jonny/pdm-service/internal/domain/service"
	"github.com/jonny/pdm-service/internal/observability"
	"github.com/jonny/pdm-service/pkg/health"
	"github.com/jonny/pdm-service/pkg/version"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file loaded before the config")
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := config.LoadEnvFile(*envPath); err != nil {
		logger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog := buildLogger(cfg.Logging)
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		closeLog()
		os.Exit(1)
	}

	logger.Info("pdm-service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// --- Database ---
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}
	defer db.Close()

	// --- Model ---
	classifier, explainer, err := loadModel(ctx, cfg.Model)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	scorer := service.NewScorer(classifier)
	info, err := scorer.Info(ctx)
	if err != nil {
		return fmt.Errorf("describing model: %w", err)
	}
	logger.Info("model loaded",
		"provider", info.Provider,
		"version", info.Version,
		"trees", info.Trees,
		"explainer", cfg.Model.ExplainerEnabled,
	)

	// --- Side channels ---
	sinks, closeSinks := buildSinks(ctx, cfg, logger)
	defer closeSinks()

	// --- Metrics ---
	registry, metrics := observability.NewRegistry()

	// --- Domain services ---
	orchestrator := service.NewOrchestrator(
		scorer,
		service.NewAttributor(explainer, logger),
		db.repo,
		sinks,
		metrics,
		logger,
	)
	history := service.NewHistoryService(
		db.repo,
		report.CSVEncoder{},
		metrics,
		cfg.History.DefaultPageSize,
		cfg.History.MaxPageSize,
	)
	reporter := service.NewReporter(report.NewPDFRenderer(cfg.Report.Title).WithCurrency(cfg.Report.Currency))

	// --- API ---
	handler := httpapi.NewHandler(orchestrator, history, reporter, scorer, logger)
	apiServer := httpapi.NewServer(httpapi.ServerConfig{
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		APIToken:          cfg.Server.APIToken,
		RateLimitPerMin:   cfg.Server.RateLimitPerMinute(),
		TrustProxyHeaders: cfg.Server.RateLimit.TrustProxyHeaders,
		BodyLimitBytes:    cfg.Server.BodyLimitBytes,
	}, handler, logger)

	// --- Health checker ---
	checker := health.NewChecker()
	checker.Register("database", db.ping)
	checker.Register("model", scorer.Ready)

	// --- Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", checker.LivenessHandler())
	metricsMux.HandleFunc("/readyz", checker.ReadinessHandler())
	metricsMux.Handle("/metrics", observability.Handler(registry))
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// API HTTP server.
	g.Go(func() error {
		return apiServer.Start(gCtx)
	})

	// Metrics/health server.
	if cfg.Server.MetricsPort != 0 {
		g.Go(func() error {
			logger.Info("starting metrics server", "port", cfg.Server.MetricsPort)
			errCh := make(chan error, 1)
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			select {
			case <-gCtx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return metricsServer.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		})
	}

	logger.Info("pdm-service started",
		"version", version.String(),
		"database", cfg.Database.Driver,
		"port", cfg.Server.Port,
	)

	return g.Wait()
}
