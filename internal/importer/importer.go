// Package importer loads worker profiles and job postings in bulk through the
// ingestion use cases.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"workboard/internal/domain/job"
	"workboard/internal/domain/worker"
	"workboard/internal/logger"
	"workboard/internal/usecase"

	"go.uber.org/zap"
)

const (
	KindWorker = "worker"
	KindJob    = "job"
)

// Dataset is the import file format.
type Dataset struct {
	Workers []usecase.WorkerInput `json:"workers"`
	Jobs    []usecase.JobInput    `json:"jobs"`
}

type Failure struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type Summary struct {
	WorkersWritten int       `json:"workers_written"`
	JobsWritten    int       `json:"jobs_written"`
	Failures       []Failure `json:"failures"`
}

type workerRegistrar interface {
	RegisterWorker(ctx context.Context, in usecase.WorkerInput) (worker.Profile, error)
}

type jobPoster interface {
	PostJob(ctx context.Context, in usecase.JobInput) (job.Posting, error)
}

type Options struct {
	Workers       int
	RatePerSecond int
	Logger        *zap.Logger
}

type Importer struct {
	workers workerRegistrar
	jobs    jobPoster
	opts    Options
	logger  *zap.Logger
}

func New(workers workerRegistrar, jobs jobPoster, opts Options) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Importer{
		workers: workers,
		jobs:    jobs,
		opts:    opts,
		logger:  logger.OrNop(opts.Logger).Named("importer"),
	}
}

func LoadFile(path string) (Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read import file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode import file %s: %w", path, err)
	}
	return ds, nil
}

// Import writes every record of ds. A failing record is reported in the
// summary and does not stop the rest. The returned error is only set when
// ctx ends before all records were attempted.
func (im *Importer) Import(ctx context.Context, ds Dataset) (Summary, error) {
	total := len(ds.Workers) + len(ds.Jobs)
	pool := NewPool(im.opts.Workers, total)
	pool.SetRateLimit(im.opts.RatePerSecond)
	results := pool.Run(ctx)

	for i, in := range ds.Workers {
		pool.Submit(Task{
			Kind: KindWorker,
			ID:   recordID(in.ID, i),
			Run: func(ctx context.Context) error {
				_, err := im.workers.RegisterWorker(ctx, in)
				return err
			},
		})
	}
	for i, in := range ds.Jobs {
		pool.Submit(Task{
			Kind: KindJob,
			ID:   recordID(in.ID, i),
			Run: func(ctx context.Context) error {
				_, err := im.jobs.PostJob(ctx, in)
				return err
			},
		})
	}
	pool.Close()

	var sum Summary
	seen := 0
	for res := range results {
		seen++
		if res.Err != nil {
			im.logger.Warn("import record failed", zap.String("kind", res.Kind), zap.String("id", res.ID), zap.Error(res.Err))
			sum.Failures = append(sum.Failures, Failure{Kind: res.Kind, ID: res.ID, Error: res.Err.Error()})
			continue
		}
		switch res.Kind {
		case KindWorker:
			sum.WorkersWritten++
		case KindJob:
			sum.JobsWritten++
		}
	}
	sort.Slice(sum.Failures, func(i, j int) bool {
		if sum.Failures[i].Kind != sum.Failures[j].Kind {
			return sum.Failures[i].Kind > sum.Failures[j].Kind
		}
		return sum.Failures[i].ID < sum.Failures[j].ID
	})

	im.logger.Info("import finished",
		zap.Int("workers", sum.WorkersWritten),
		zap.Int("jobs", sum.JobsWritten),
		zap.Int("failures", len(sum.Failures)),
	)
	if seen < total {
		err := ctx.Err()
		if err == nil {
			err = errors.New("import stopped early")
		}
		return sum, fmt.Errorf("import interrupted after %d of %d records: %w", seen, total, err)
	}
	return sum, nil
}

// recordID names a record in the summary; records without an id are named by
// their position in the file.
func recordID(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}
