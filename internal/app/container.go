// Package app wires configuration into a ready store and use cases.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workboard/internal/config"
	dbpostgres "workboard/internal/database/postgres"
	dbsqlite "workboard/internal/database/sqlite"
	"workboard/internal/domain/matching"
	"workboard/internal/importer"
	"workboard/internal/infrastructure/cache"
	"workboard/internal/logger"
	"workboard/internal/partition"
	"workboard/internal/skill"
	"workboard/internal/store"
	"workboard/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Store    *store.Store
	Redis    *cache.Redis

	Workers      *usecase.Workers
	Jobs         *usecase.Jobs
	Applications *usecase.Applications
	Matching     *usecase.Matching
	Importer     *importer.Importer
}

func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Container, error) {
	log = logger.OrNop(log)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	backend, err := openBackend(connectCtx, cfg)
	if err != nil {
		return nil, err
	}

	resolver, err := partition.NewResolver(cfg.Store.WorkerPartitions)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	opts := store.Options{
		OpTimeout:          cfg.Store.OpTimeout,
		ScatterConcurrency: cfg.Store.ScatterConcurrency,
		Logger:             log,
		Metrics:            store.NewMetrics(reg),
	}

	var rdb *cache.Redis
	if cfg.Redis.Enabled {
		rdb = cache.NewRedis(connectCtx, cfg.Redis, log)
		opts.Mirror = rdb
	}

	st, err := store.New(backend, resolver, opts)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	if err := st.Open(ctx); err != nil {
		_ = st.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	synonyms := skill.DefaultSynonyms
	if len(cfg.Skills.Synonyms) > 0 {
		synonyms = cfg.Skills.Synonyms
	}
	normalizer, err := skill.NewNormalizer(synonyms)
	if err != nil {
		_ = st.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("synonyms: %w", err)
	}

	scorer, err := matching.NewScorer(matching.Weights{
		Skill:    cfg.Scoring.WeightSkill,
		Location: cfg.Scoring.WeightLocation,
	})
	if err != nil {
		_ = st.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("scoring: %w", err)
	}

	workers := usecase.NewWorkerUsecase(st, normalizer, log)
	jobs := usecase.NewJobUsecase(st, normalizer, log)

	log.Debug("container ready",
		zap.String("driver", backend.Name()),
		zap.Int("worker_partitions", resolver.WorkerPartitions()),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	return &Container{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Store:    st,
		Redis:    rdb,
		Workers:      workers,
		Jobs:         jobs,
		Applications: usecase.NewApplicationUsecase(st, log),
		Matching:     usecase.NewMatchingUsecase(st, scorer, log),
		Importer: importer.New(workers, jobs, importer.Options{
			Workers:       cfg.Import.Workers,
			RatePerSecond: cfg.Import.RatePerSecond,
			Logger:        log,
		}),
	}, nil
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPostgresBackend(db), nil
	case config.DriverSQLite:
		db, err := dbsqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteBackend(db), nil
	case config.DriverMemory:
		return store.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	errs = append(errs, c.Redis.Close())
	return errors.Join(errs...)
}
