package usecase

import (
	"context"

	"workboard/internal/domain/application"
	"workboard/internal/domain/job"
	"workboard/internal/domain/worker"
	"workboard/internal/store"
)

// WorkerStore is the part of *store.Store the worker use cases need.
type WorkerStore interface {
	ModifyWorker(ctx context.Context, id string, fn func(prev worker.Profile, exists bool) (worker.Profile, error)) (worker.Profile, bool, error)
	GetWorker(ctx context.Context, id string) (worker.Profile, error)
	DeleteWorker(ctx context.Context, id string) error
	QueryWorkers(ctx context.Context, f store.WorkerFilter) ([]worker.Profile, error)
	FindWorkerByUser(ctx context.Context, userID string) (worker.Profile, error)
}

// JobStore is the part of *store.Store the job use cases need.
type JobStore interface {
	PutJob(ctx context.Context, j job.Posting) (bool, error)
	GetJob(ctx context.Context, year int, id string) (job.Posting, error)
	FindJob(ctx context.Context, id string) (job.Posting, error)
	DeleteJob(ctx context.Context, year int, id string) error
	QueryJobs(ctx context.Context, f store.JobFilter) ([]job.Posting, error)
	QueryByYearRange(ctx context.Context, start, end int) ([]job.Posting, error)
}

// ApplicationStore is the part of *store.Store the application use cases
// need. Workers and postings are read to validate and enrich applications.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, a application.Application) (application.Application, error)
	GetApplication(ctx context.Context, id string) (application.Application, error)
	ModifyApplication(ctx context.Context, id string, fn func(application.Application) (application.Application, error)) (application.Application, error)
	DeleteApplication(ctx context.Context, id string) error
	QueryApplications(ctx context.Context, f store.ApplicationFilter) ([]application.Application, error)
	GetWorker(ctx context.Context, id string) (worker.Profile, error)
	GetJob(ctx context.Context, year int, id string) (job.Posting, error)
	FindJob(ctx context.Context, id string) (job.Posting, error)
	QueryJobs(ctx context.Context, f store.JobFilter) ([]job.Posting, error)
}

var (
	_ WorkerStore      = (*store.Store)(nil)
	_ JobStore         = (*store.Store)(nil)
	_ ApplicationStore = (*store.Store)(nil)
)
