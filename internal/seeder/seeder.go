// Package seeder writes a small fixed sample of workers and postings for
// local runs. Records carry stable ids, so seeding twice updates in place.
package seeder

import (
	"context"
	"fmt"
	"time"

	"workboard/internal/domain/job"
	"workboard/internal/domain/worker"
	"workboard/internal/usecase"
)

type Target struct {
	Workers interface {
		RegisterWorker(ctx context.Context, in usecase.WorkerInput) (worker.Profile, error)
	}
	Jobs interface {
		PostJob(ctx context.Context, in usecase.JobInput) (job.Posting, error)
	}
}

type Seeder interface {
	Name() string
	Run(ctx context.Context, t Target) error
}

type Runner struct {
	Seeders []Seeder
}

func (r Runner) Run(ctx context.Context, t Target) error {
	if t.Workers == nil || t.Jobs == nil {
		return fmt.Errorf("nil seed target")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, t); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Defaults seeds postings relative to now.
func Defaults(now time.Time) []Seeder {
	return []Seeder{
		WorkerSeeder{},
		JobSeeder{Now: now},
	}
}
