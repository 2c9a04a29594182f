// Package store routes worker, job and application documents to their
// partition tables and runs scatter-gather reads across partitions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"workboard/internal/domain"
	"workboard/internal/logger"
	"workboard/internal/partition"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	CollectionWorkers      = "workers"
	CollectionJobs         = "jobs"
	CollectionApplications = "applications"

	defaultOpTimeout    = 5 * time.Second
	defaultScatterLimit = 8
)

// CountMirror receives per-partition record counts. Failures are logged and
// never fail a write.
type CountMirror interface {
	IncrPartition(ctx context.Context, table string, delta int64) error
	SetPartitions(ctx context.Context, counts map[string]int64) error
	Healthy(ctx context.Context) bool
}

type Options struct {
	OpTimeout          time.Duration
	ScatterConcurrency int
	Logger             *zap.Logger
	Metrics            *Metrics
	Mirror             CountMirror
}

type Store struct {
	backend      Backend
	resolver     *partition.Resolver
	opTimeout    time.Duration
	scatterLimit int
	log          *zap.Logger
	metrics      *Metrics
	mirror       CountMirror

	locks keyLock
	sf    singleflight.Group

	mu      sync.Mutex
	counts  map[string]int64
	ensured map[string]bool
}

func New(backend Backend, resolver *partition.Resolver, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store: nil backend")
	}
	if resolver == nil {
		return nil, errors.New("store: nil resolver")
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	if opts.ScatterConcurrency <= 0 {
		opts.ScatterConcurrency = defaultScatterLimit
	}
	return &Store{
		backend:      backend,
		resolver:     resolver,
		opTimeout:    opts.OpTimeout,
		scatterLimit: opts.ScatterConcurrency,
		log:          logger.OrNop(opts.Logger).Named("store"),
		metrics:      opts.Metrics,
		mirror:       opts.Mirror,
		counts:       map[string]int64{},
		ensured:      map[string]bool{},
	}, nil
}

// Open creates the worker partition tables and loads record counts from the
// backend.
func (s *Store) Open(ctx context.Context) error {
	if err := s.EnsurePartitions(ctx); err != nil {
		return err
	}
	return s.RefreshCounts(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) Resolver() *partition.Resolver {
	return s.resolver
}

func (s *Store) Driver() string {
	return s.backend.Name()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.do(ctx, "ping", "", s.backend.Ping)
}

// EnsurePartitions creates every worker partition table for the configured
// count. Job tables are created when the first posting of a year arrives.
func (s *Store) EnsurePartitions(ctx context.Context) error {
	for _, table := range s.resolver.WorkerTables() {
		if err := s.ensureTable(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ensureTable(ctx context.Context, table string) error {
	s.mu.Lock()
	done := s.ensured[table]
	s.mu.Unlock()
	if done {
		return nil
	}

	err := s.do(ctx, "ensure", table, func(ctx context.Context) error {
		return s.backend.EnsureTable(ctx, table)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ensured[table] = true
	if _, ok := s.counts[table]; !ok {
		s.counts[table] = 0
		s.metrics.setRecords(collectionOf(table), table, 0)
	}
	s.mu.Unlock()
	return nil
}

// do runs one backend call under the per-call timeout and maps its failure
// onto the domain error taxonomy. ErrNoDocument passes through untouched.
func (s *Store) do(ctx context.Context, op, table string, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	start := time.Now()
	err := fn(cctx)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		err = s.classify(cctx, op, table, err)
	}
	s.metrics.observeOp(op, time.Since(start), errClass(err))
	return err
}

func (s *Store) classify(ctx context.Context, op, table string, err error) error {
	switch {
	case isTimeout(ctx, err):
		s.log.Warn("store call timed out", zap.String("op", op), zap.String("table", table), zap.Duration("timeout", s.opTimeout))
		return fmt.Errorf("%w: %s %s: %w", domain.ErrStoreTimeout, op, table, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s %s: %w", op, table, err)
	default:
		s.log.Warn("partition unavailable", zap.String("op", op), zap.String("table", table), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", domain.ErrPartitionUnavailable, op, table, err)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func errClass(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrNoDocument):
		return ""
	case errors.Is(err, domain.ErrStoreTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrPartitionUnavailable):
		return "unavailable"
	default:
		return "canceled"
	}
}

func collectionOf(table string) string {
	if _, ok := partition.ParseWorkerTable(table); ok {
		return CollectionWorkers
	}
	if _, ok := partition.ParseApplicationTable(table); ok {
		return CollectionApplications
	}
	return CollectionJobs
}

var collectionRank = map[string]int{CollectionWorkers: 0, CollectionJobs: 1, CollectionApplications: 2}

func decode[T any](table string, doc []byte) (T, error) {
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("%w: corrupt document in %s: %w", domain.ErrPartitionUnavailable, table, err)
	}
	return v, nil
}

// gather runs fn on every table concurrently and concatenates the results in
// table order. The first failure cancels the rest and fails the whole read.
func gather[T any](ctx context.Context, s *Store, query string, tables []string, fn func(context.Context, string) ([]T, error)) ([]T, error) {
	s.metrics.observeFanout(query, len(tables))
	if len(tables) == 0 {
		return []T{}, nil
	}

	parts := make([][]T, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.scatterLimit)
	for i, table := range tables {
		g.Go(func() error {
			items, err := fn(gctx, table)
			if err != nil {
				return err
			}
			parts[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	s.log.Debug("scatter-gather done", zap.String("query", query), zap.Int("partitions", len(tables)), zap.Int("records", n))
	return out, nil
}

// scanTable reads and decodes every document of one partition table.
func scanTable[T any](ctx context.Context, s *Store, table string) ([]T, error) {
	var docs [][]byte
	err := s.do(ctx, "scan", table, func(ctx context.Context) error {
		var err error
		docs, err = s.backend.Scan(ctx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](table, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) adjustCount(ctx context.Context, table string, delta int64) {
	s.mu.Lock()
	s.counts[table] += delta
	n := s.counts[table]
	s.mu.Unlock()

	s.metrics.setRecords(collectionOf(table), table, n)
	if s.mirror != nil {
		if err := s.mirror.IncrPartition(ctx, table, delta); err != nil {
			s.log.Warn("count mirror update failed", zap.String("table", table), zap.Error(err))
		}
	}
}

// RefreshCounts reloads every partition's record count from the backend.
func (s *Store) RefreshCounts(ctx context.Context) error {
	tables := make([]string, 0)
	for _, prefix := range []string{partition.WorkerTablePrefix, partition.JobTablePrefix, partition.ApplicationTablePrefix} {
		var found []string
		err := s.do(ctx, "tables", prefix, func(ctx context.Context) error {
			var err error
			found, err = s.backend.Tables(ctx, prefix)
			return err
		})
		if err != nil {
			return err
		}
		tables = append(tables, found...)
	}

	counts, err := gather(ctx, s, "count", tables, func(ctx context.Context, table string) ([]int64, error) {
		var n int64
		err := s.do(ctx, "count", table, func(ctx context.Context) error {
			var err error
			n, err = s.backend.Count(ctx, table)
			return err
		})
		if err != nil {
			return nil, err
		}
		return []int64{n}, nil
	})
	if err != nil {
		return err
	}

	snapshot := make(map[string]int64, len(tables))
	s.mu.Lock()
	for i, table := range tables {
		s.counts[table] = counts[i]
		s.ensured[table] = true
	}
	for table, n := range s.counts {
		snapshot[table] = n
	}
	s.mu.Unlock()

	for table, n := range snapshot {
		s.metrics.setRecords(collectionOf(table), table, n)
	}
	if s.mirror != nil {
		if err := s.mirror.SetPartitions(ctx, snapshot); err != nil {
			s.log.Warn("count mirror sync failed", zap.Error(err))
		}
	}
	return nil
}

// PartitionStats reports the record count of every known partition: all
// configured worker partitions first, then job years ascending, then
// application years ascending.
func (s *Store) PartitionStats(ctx context.Context) ([]domain.PartitionStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	snapshot := make(map[string]int64, len(s.counts))
	for table, n := range s.counts {
		snapshot[table] = n
	}
	s.mu.Unlock()
	for _, table := range s.resolver.WorkerTables() {
		if _, ok := snapshot[table]; !ok {
			snapshot[table] = 0
		}
	}

	out := make([]domain.PartitionStat, 0, len(snapshot))
	for table, n := range snapshot {
		if p, ok := partition.ParseWorkerTable(table); ok {
			out = append(out, domain.PartitionStat{Collection: CollectionWorkers, Table: table, Partition: p, Records: n})
			continue
		}
		if year, ok := partition.ParseJobTable(table); ok {
			out = append(out, domain.PartitionStat{Collection: CollectionJobs, Table: table, Partition: year, Records: n})
			continue
		}
		if year, ok := partition.ParseApplicationTable(table); ok {
			out = append(out, domain.PartitionStat{Collection: CollectionApplications, Table: table, Partition: year, Records: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return collectionRank[out[i].Collection] < collectionRank[out[j].Collection]
		}
		return out[i].Partition < out[j].Partition
	})
	return out, nil
}

func (s *Store) Status(ctx context.Context) (domain.StoreStatus, error) {
	stats, err := s.PartitionStats(ctx)
	if err != nil {
		return domain.StoreStatus{}, err
	}
	st := domain.StoreStatus{
		Driver:     s.backend.Name(),
		Partitions: stats,
		ServerTime: time.Now().UTC(),
	}
	for _, p := range stats {
		switch p.Collection {
		case CollectionWorkers:
			st.TotalWorkers += p.Records
		case CollectionJobs:
			st.TotalJobs += p.Records
		case CollectionApplications:
			st.TotalApplications += p.Records
		}
	}
	if s.mirror != nil {
		st.RedisHealthy = s.mirror.Healthy(ctx)
	}
	return st, nil
}
