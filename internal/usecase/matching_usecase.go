package usecase

import (
	"context"
	"fmt"

	"workboard/internal/domain/application"
	"workboard/internal/domain/job"
	"workboard/internal/domain/match"
	"workboard/internal/domain/matching"
	"workboard/internal/domain/worker"
	"workboard/internal/logger"
	"workboard/internal/store"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type MatchParams struct {
	Page     int
	PageSize int
	// Years limits which posting partitions are read. Nil reads all of them.
	Years *store.YearRange
	// MinScore drops candidates scoring below it before ranking.
	MinScore float64
}

type MatchingUsecase interface {
	MatchesFor(ctx context.Context, workerID string, params MatchParams) (match.Page, error)
}

type matchStore interface {
	GetWorker(ctx context.Context, id string) (worker.Profile, error)
	QueryJobs(ctx context.Context, f store.JobFilter) ([]job.Posting, error)
	QueryApplications(ctx context.Context, f store.ApplicationFilter) ([]application.Application, error)
}

type Matching struct {
	store  matchStore
	scorer *matching.Scorer
	logger *zap.Logger
}

func NewMatchingUsecase(st matchStore, scorer *matching.Scorer, log *zap.Logger) *Matching {
	return &Matching{store: st, scorer: scorer, logger: logger.OrNop(log).Named("matching")}
}

// MatchesFor ranks every open posting against the worker and returns one
// page. The worker read touches a single partition; the candidate read
// scatters over every year partition unless params.Years narrows it. Results
// on the page carry the worker's application status, read only from the
// application partitions of the page's posting years. Store failures are
// returned as they are, without retry.
func (u *Matching) MatchesFor(ctx context.Context, workerID string, params MatchParams) (match.Page, error) {
	size := params.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 0 || size > MaxPageSize {
		return match.Page{}, fmt.Errorf("%w: page size %d", ErrInvalidInput, params.PageSize)
	}
	if params.Page < 0 {
		return match.Page{}, fmt.Errorf("%w: page %d", ErrInvalidInput, params.Page)
	}
	if params.MinScore < 0 || params.MinScore > 1 {
		return match.Page{}, fmt.Errorf("%w: min score %v", ErrInvalidInput, params.MinScore)
	}

	w, err := u.store.GetWorker(ctx, workerID)
	if err != nil {
		return match.Page{}, err
	}

	jobs, err := u.store.QueryJobs(ctx, store.JobFilter{OpenOnly: true, Years: params.Years})
	if err != nil {
		return match.Page{}, err
	}

	years := make(map[string]int, len(jobs))
	cands := make([]matching.Candidate, 0, len(jobs))
	for _, j := range jobs {
		years[j.ID] = j.Year
		res := u.scorer.Score(w, j)
		if res.Score < params.MinScore {
			continue
		}
		cands = append(cands, matching.Candidate{Result: res, PostedAt: j.PostedAt})
	}
	matching.Rank(cands)

	page := match.Page{
		WorkerID: w.ID,
		Page:     params.Page,
		PageSize: size,
		Total:    len(cands),
		Results:  matching.Paginate(cands, params.Page, size),
	}
	if err := u.attachApplications(ctx, w.ID, page.Results, years); err != nil {
		return match.Page{}, err
	}
	u.logger.Debug("matches computed",
		zap.String("worker_id", w.ID),
		zap.Int("candidates", len(jobs)),
		zap.Int("ranked", len(cands)),
		zap.Int("page", params.Page),
	)
	return page, nil
}

func (u *Matching) attachApplications(ctx context.Context, workerID string, results []match.Result, years map[string]int) error {
	if len(results) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(results))
	seen := map[int]bool{}
	var pageYears []int
	for _, r := range results {
		ids[r.JobID] = struct{}{}
		if y := years[r.JobID]; !seen[y] {
			seen[y] = true
			pageYears = append(pageYears, y)
		}
	}
	apps, err := u.store.QueryApplications(ctx, store.ApplicationFilter{WorkerID: workerID, JobIDs: ids, Years: pageYears})
	if err != nil {
		return err
	}
	status := make(map[string]application.Status, len(apps))
	for _, a := range apps {
		if a.JobYear == years[a.JobID] {
			status[a.JobID] = a.Status
		}
	}
	for i := range results {
		results[i].ApplicationStatus = status[results[i].JobID]
	}
	return nil
}
