// Package app wires configuration into the storage driver, the validation
// pipeline and the registry service. Both binaries build on it.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"tourreg/internal/config"
	"tourreg/internal/core/tx"
	"tourreg/internal/domain/audit"
	"tourreg/internal/domain/export"
	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
	"tourreg/internal/domain/submission"
	"tourreg/internal/domain/validation"
	"tourreg/internal/infrastructure/metrics"
	pgcounter "tourreg/internal/infrastructure/regcode"
	"tourreg/internal/infrastructure/storage/memory"
	"tourreg/internal/infrastructure/storage/postgres"
	"tourreg/internal/infrastructure/storage/postgres/migrations"
	"tourreg/internal/infrastructure/storage/postgres/registry_repo"
	"tourreg/pkg/logger"
)

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Storage is one opened storage driver.
type Storage struct {
	Driver    string
	Repo      registry.Repository
	TxManager tx.Manager
	Audit     audit.Log
	Counter   regcode.Counter
	Pinger    Pinger

	close func()
}

// Close releases driver resources.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage opens the driver selected by cfg.Storage.Driver.
// The postgres driver applies migrations first when database.migrate is set.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.New()
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		return &Storage{
			Driver:    config.DriverMemory,
			Repo:      store,
			TxManager: tx.NoopManager{},
			Audit:     store,
			Counter:   store,
			Pinger:    store,
		}, nil

	case config.DriverPostgres:
		if cfg.Database.Migrate {
			if err := migrations.Up(cfg.Database.URL); err != nil {
				return nil, err
			}
			logger.Info(ctx, "database migrations applied")
		}

		poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
		if cfg.Database.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Database.MaxConns
		}
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, err
		}

		txManager := postgres.NewTxManager(pool)
		auditLog, err := postgres.NewAuditLog(txManager)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &Storage{
			Driver:    config.DriverPostgres,
			Repo:      registry_repo.New(txManager),
			TxManager: txManager,
			Audit:     auditLog,
			Counter:   pgcounter.New(pool),
			Pinger:    pool,
			close:     pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// App holds the constructed components.
type App struct {
	Storage   *Storage
	Metrics   *metrics.Metrics
	Service   *submission.Service
	Formatter *export.Formatter
}

// New opens storage and builds the service graph. reg may be nil to skip metrics.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	var observer regcode.Observer
	if m != nil {
		observer = m
	}
	allocator, err := regcode.NewAllocator(storage.Repo, storage.Counter, regcode.Options{
		Strategy: cfg.Strategy(),
		Attempts: cfg.Registry.AllocationAttempts,
	}, observer)
	if err != nil {
		storage.Close()
		return nil, err
	}

	var recorder validation.Recorder
	if m != nil {
		recorder = m
	}
	pipeline := validation.NewPipeline(
		validation.NewCompletenessScorer(),
		validation.NewComplianceScorer(),
		validation.NewDuplicateDetector(storage.Repo, validation.DetectorOptions{
			SameRegionOnly: cfg.Registry.SameRegionOnly,
		}),
		allocator,
		recorder,
	)

	service := submission.NewService(submission.Config{
		Repo:      storage.Repo,
		TxManager: storage.TxManager,
		Pipeline:  pipeline,
		Audit:     storage.Audit,
	})

	formatter := export.NewFormatter(export.Options{
		Version: cfg.Export.Version,
		Origin:  cfg.Export.Origin,
		Region:  cfg.Export.Region,
		State:   cfg.Export.State,
	})

	logger.Info(ctx, "registry service ready",
		"storage", storage.Driver,
		"allocation_strategy", cfg.Strategy().String(),
		"same_region_only", cfg.Registry.SameRegionOnly,
	)

	return &App{
		Storage:   storage,
		Metrics:   m,
		Service:   service,
		Formatter: formatter,
	}, nil
}

// Close releases storage.
func (a *App) Close() {
	a.Storage.Close()
}
