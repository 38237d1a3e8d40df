package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SettleReporting/internal/config"
	"SettleReporting/internal/enrichment"
	"SettleReporting/internal/ingestion"
	"SettleReporting/internal/observability"
	"SettleReporting/internal/query"
	"SettleReporting/internal/reporting"
	"SettleReporting/internal/server"
	"SettleReporting/internal/store"
)

func main() {
	logger := observability.NewLogger("settlereporting")

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	metrics := observability.NewMetrics()

	// --- Postgres ---
	st, err := store.Open(ctx, cfg.PostgresDSN, logger, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer st.Close()
	logger.Info().Msg("postgres connected")

	migrator := store.NewMigrator(st.DB(), cfg.MigrationsDir, logger)
	if err := migrator.Up(ctx); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}
	logger.Info().Msg("migrations applied")

	// --- NATS / JetStream ---
	nc, js, err := ingestion.ConnectNATS(cfg.NATSURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect nats")
	}
	defer nc.Close()
	logger.Info().Str("url", cfg.NATSURL).Msg("nats connected")

	if err := ingestion.EnsureStreams(ctx, js); err != nil {
		logger.Fatal().Err(err).Msg("ensure streams")
	}

	// --- Wiring ---
	settleClient := enrichment.NewSettlementsClient(cfg.SettlementsServiceURL, logger, metrics)
	partClient := enrichment.NewParticipantsClient(cfg.ParticipantsServiceURL, logger, metrics)

	ingestSvc := reporting.NewService(logger, metrics, st, st, st, settleClient, partClient)

	subscriber := ingestion.NewNATSSubscriber(js, ingestSvc, logger, metrics, cfg.IngestBatchSize)

	health := observability.NewHealthChecker()
	health.Register("postgres", st.Ping)
	health.Register("nats", func(context.Context) error {
		if !nc.IsConnected() {
			return errNATSDisconnected
		}
		return nil
	})

	queries := query.NewService(st, metrics, logger)
	api := server.New(queries, health, logger)

	var wg sync.WaitGroup

	// One consumer loop per reporting sub-domain.
	for _, sub := range ingestion.DefaultSubjects() {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := subscriber.Run(ctx, sub); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Str("consumer", sub.ConsumerName).Msg("consumer loop stopped")
				cancel()
			}
		}()
	}

	// Metrics listener, separate from the API.
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := api.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	logger.Info().Msg("settlereporting started")

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	wg.Wait()
	logger.Info().Msg("settlereporting stopped")
}

var errNATSDisconnected = errors.New("nats connection lost")
