package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ciderworks/internal/domain/cellar"
	"github.com/yanqian/ciderworks/internal/infra/batchrepo"
	"github.com/yanqian/ciderworks/internal/infra/calibrationstore"
	"github.com/yanqian/ciderworks/internal/infra/config"
	"github.com/yanqian/ciderworks/pkg/metrics"
)

func provideCellarConfig(cfg *config.Config) cellar.Config {
	return cellar.Config{
		Fermentation:               cfg.Fermentation.Settings(),
		HydrometerCalibrationTempC: cfg.Fermentation.HydrometerCalibrationTempC,
		SchedulePolicies:           cfg.Schedules,
	}
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetricsRecorder(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewRecorder(reg)
}

func provideBatchRepository(cfg *config.Config, logger *slog.Logger) (cellar.BatchRepository, func()) {
	fallback := batchrepo.NewMemoryRepository()
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory batch repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory batch repository", "error", err)
		return fallback, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory batch repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory batch repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := batchrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory batch repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("postgres batch repository enabled")
	return repo, pool.Close
}

func provideCalibrationStore(cfg *config.Config, logger *slog.Logger) (cellar.CalibrationStore, func()) {
	noop := func() {}
	if !cfg.Valkey.Enabled {
		return calibrationstore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return calibrationstore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return calibrationstore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return calibrationstore.NewMemoryStore(), noop
	}
	logger.Info("valkey calibration store enabled", "addr", cfg.Valkey.Addr)
	return calibrationstore.NewValkeyStore(client, cfg.Valkey.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
