package seeder

import (
	"context"
	"testing"
	"time"

	"workboard/internal/domain/matching"
	"workboard/internal/partition"
	"workboard/internal/skill"
	"workboard/internal/store"
	"workboard/internal/usecase"
)

func TestRunner_SeedsSampleDataIdempotently(t *testing.T) {
	ctx := context.Background()
	r, err := partition.NewResolver(2)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	st, err := store.New(store.NewMemoryBackend(), r, store.Options{})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := st.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}

	n := skill.MustNormalizer(skill.DefaultSynonyms)
	target := Target{Workers: usecase.NewWorkerUsecase(st, n, nil), Jobs: usecase.NewJobUsecase(st, n, nil)}
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := (Runner{Seeders: Defaults(now)}).Run(ctx, target); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	status, err := st.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.TotalWorkers != 3 || status.TotalJobs != 5 {
		t.Fatalf("expected 3 workers and 5 jobs, got %d and %d", status.TotalWorkers, status.TotalJobs)
	}

	// Three postings land in the previous year's partition.
	years, err := st.JobYears(ctx)
	if err != nil {
		t.Fatalf("job years: %v", err)
	}
	if len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Fatalf("unexpected years %v", years)
	}

	later := now.AddDate(0, 0, 20)
	if err := (Runner{Seeders: Defaults(later)}).Run(ctx, target); err != nil {
		t.Fatalf("reseed after year change: %v", err)
	}
	status, err = st.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.TotalJobs != 5 {
		t.Fatalf("reseeding duplicated postings: %d jobs", status.TotalJobs)
	}

	scorer, err := matching.NewScorer(matching.DefaultWeights())
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	page, err := usecase.NewMatchingUsecase(st, scorer, nil).MatchesFor(ctx, "sample-worker-1", usecase.MatchParams{})
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(page.Results) != 5 || page.Results[0].JobID != "sample-job-1" {
		t.Fatalf("unexpected ranking %+v", page.Results)
	}
}

func TestRunner_NilTarget(t *testing.T) {
	if err := (Runner{Seeders: Defaults(time.Now())}).Run(context.Background(), Target{}); err == nil {
		t.Fatalf("expected error")
	}
}
