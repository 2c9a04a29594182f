package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"workboard/internal/domain"
	"workboard/internal/domain/job"
	"workboard/internal/domain/match"
	"workboard/internal/domain/matching"
	"workboard/internal/domain/worker"
	"workboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesFor_RanksOpenPostings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	w, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"Python", "SQL"}, Region: "NYC"})
	require.NoError(t, err)

	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-best", Title: "Data engineer", Skills: []string{"python", "sql", "docker"}, Region: "nyc", PostedAt: at(2024, 5, 1)})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-java", Title: "Java dev", Skills: []string{"java"}, Region: "Boston", PostedAt: at(2023, 5, 1)})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-closed", Title: "Closed", Skills: []string{"python", "sql"}, Region: "NYC", Status: job.StatusClosed, PostedAt: at(2024, 6, 1)})
	require.NoError(t, err)

	page, err := f.matching.MatchesFor(ctx, w.ID, MatchParams{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Equal(t, 2, page.Total, "closed postings are not candidates")
	require.Len(t, page.Results, 2)

	best := page.Results[0]
	assert.Equal(t, "j-best", best.JobID)
	assert.InDelta(t, 0.767, best.Score, 1e-3)
	assert.Equal(t, 2, best.SkillOverlap)
	assert.True(t, best.LocationBonus)
	assert.Equal(t, []string{"docker"}, best.MissingSkills)

	assert.Equal(t, "j-java", page.Results[1].JobID)
	assert.Zero(t, page.Results[1].Score)
}

func TestMatchesFor_TieBreaksByRecencyThenID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"go"}, Region: "Pune"})
	require.NoError(t, err)
	for _, in := range []JobInput{
		{ID: "j-b", Title: "b", Skills: []string{"go"}, Region: "Pune", PostedAt: at(2022, 1, 1)},
		{ID: "j-a", Title: "a", Skills: []string{"go"}, Region: "Pune", PostedAt: at(2022, 1, 1)},
		{ID: "j-new", Title: "new", Skills: []string{"go"}, Region: "Pune", PostedAt: at(2024, 1, 1)},
	} {
		_, err := f.jobs.PostJob(ctx, in)
		require.NoError(t, err)
	}

	page, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{})
	require.NoError(t, err)
	got := make([]string, 0, len(page.Results))
	for r := range page.Seq() {
		got = append(got, r.JobID)
	}
	assert.Equal(t, []string{"j-new", "j-a", "j-b"}, got)
}

func TestMatchesFor_NoJobsIsEmptyPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"go"}})
	require.NoError(t, err)

	page, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Results)
	assert.False(t, page.HasNext())
}

func TestMatchesFor_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.matching.MatchesFor(ctx, "nobody", MatchParams{})
	assert.ErrorIs(t, err, domain.ErrWorkerNotFound)

	_, err = f.matching.MatchesFor(ctx, "", MatchParams{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)

	for _, p := range []MatchParams{{PageSize: MaxPageSize + 1}, {PageSize: -1}, {Page: -1}, {MinScore: 1.5}} {
		_, err = f.matching.MatchesFor(ctx, "nobody", p)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", p)
	}
}

func TestMatchesFor_PartitionFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"go"}})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-1", Title: "x", Skills: []string{"go"}, PostedAt: at(2023, 1, 1)})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-2", Title: "y", Skills: []string{"go"}, PostedAt: at(2024, 1, 1)})
	require.NoError(t, err)

	f.mem.SetUnavailable("jobs_2023", true)
	page, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{})
	assert.ErrorIs(t, err, domain.ErrPartitionUnavailable)
	assert.Empty(t, page.Results)

	page, err = f.matching.MatchesFor(ctx, "w-1", MatchParams{Years: &store.YearRange{Start: 2024, End: 2024}})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "j-2", page.Results[0].JobID)
}

func TestMatchesFor_PaginatesAndRestarts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"go"}})
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		_, err := f.jobs.PostJob(ctx, JobInput{ID: fmt.Sprintf("j-%02d", i), Title: "t", Skills: []string{"go"}, PostedAt: at(2024, 1, 1)})
		require.NoError(t, err)
	}

	first, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{Page: 0, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, first.Results, 20)
	assert.True(t, first.HasNext())

	second, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, second.Results, 5)
	assert.Equal(t, "j-20", second.Results[0].JobID)
	assert.False(t, second.HasNext())

	var a, b []match.Result
	for r := range second.Seq() {
		a = append(a, r)
	}
	for r := range second.Seq() {
		b = append(b, r)
	}
	assert.Equal(t, a, b, "sequence is restartable")

	past, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{Page: 5, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, past.Results)
	assert.Equal(t, 25, past.Total)
}

func TestMatchesFor_HugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"go"}})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-1", Title: "t", Skills: []string{"go"}, PostedAt: at(2024, 1, 1)})
	require.NoError(t, err)

	for _, p := range []MatchParams{
		{Page: math.MaxInt64 / 3, PageSize: 5},
		{Page: 1 << 62, PageSize: 20},
		{Page: math.MaxInt, PageSize: MaxPageSize},
	} {
		page, err := f.matching.MatchesFor(ctx, "w-1", p)
		require.NoError(t, err, "%+v", p)
		assert.Empty(t, page.Results, "%+v", p)
		assert.Equal(t, 1, page.Total)
		assert.False(t, page.HasNext())
	}
}

func TestMatchesFor_MinScore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"go"}, Region: "Pune"})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-hit", Title: "t", Skills: []string{"go"}, Region: "Pune", PostedAt: at(2024, 1, 1)})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-miss", Title: "t", Skills: []string{"rust"}, PostedAt: at(2024, 1, 1)})
	require.NoError(t, err)

	page, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "j-hit", page.Results[0].JobID)
	assert.Equal(t, 1, page.Total)
}

type failingStore struct {
	err error
}

func (f failingStore) GetWorker(context.Context, string) (worker.Profile, error) {
	return worker.Profile{ID: "w-1"}, nil
}

func (f failingStore) QueryJobs(context.Context, store.JobFilter) ([]job.Posting, error) {
	return nil, f.err
}

func TestMatchesFor_TimeoutIsNotRetried(t *testing.T) {
	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)
	cause := fmt.Errorf("%w: scan jobs_2024: deadline", domain.ErrStoreTimeout)
	uc := NewMatchingUsecase(failingStore{err: cause}, scorer, nil)

	_, err = uc.MatchesFor(context.Background(), "w-1", MatchParams{})
	if !errors.Is(err, domain.ErrStoreTimeout) {
		t.Fatalf("expected ErrStoreTimeout, got %v", err)
	}
}

func TestMatchesFor_ScoresAreBitIdentical(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workers.RegisterWorker(ctx, WorkerInput{ID: "w-1", Skills: []string{"python", "aws", "sql"}, Region: "Delhi"})
	require.NoError(t, err)
	_, err = f.jobs.PostJob(ctx, JobInput{ID: "j-1", Title: "t", Skills: []string{"aws", "docker", "kubernetes", "python"}, Region: "delhi", PostedAt: at(2024, 1, 1)})
	require.NoError(t, err)

	a, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{})
	require.NoError(t, err)
	b, err := f.matching.MatchesFor(ctx, "w-1", MatchParams{})
	require.NoError(t, err)
	require.Len(t, a.Results, 1)
	assert.Equal(t, math.Float64bits(a.Results[0].Score), math.Float64bits(b.Results[0].Score))
}
