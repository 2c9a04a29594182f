package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"workboard/internal/config"
	"workboard/internal/database"
	dbpostgres "workboard/internal/database/postgres"
	"workboard/internal/domain"
	"workboard/internal/domain/job"
	"workboard/internal/domain/matching"
	"workboard/internal/domain/worker"
	"workboard/internal/partition"
	"workboard/internal/skill"
	"workboard/internal/store"
	"workboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_PostgresStore_MatchAndRebalance(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer db.Close()

	backend := store.NewPostgresBackend(db)
	st := openStore(t, ctx, backend, 3)

	suffix := uuid.NewString()[:8]
	workerID := "it-worker-" + suffix
	recentID := "it-job-recent-" + suffix
	oldID := "it-job-old-" + suffix
	closedID := "it-job-closed-" + suffix

	w := worker.Profile{
		ID:        workerID,
		RawSkills: []string{"Python", "SQL"},
		Skills:    skill.NewSet("python", "sql"),
		Location:  domain.Location{Region: "NYC"},
	}
	_, err := st.PutWorker(ctx, w)
	require.NoError(t, err)

	jobs := []job.Posting{
		integrationJob(recentID, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), job.StatusOpen, "python", "sql", "docker"),
		integrationJob(oldID, time.Date(2021, 8, 9, 0, 0, 0, 0, time.UTC), job.StatusOpen, "python"),
		integrationJob(closedID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), job.StatusClosed, "python", "sql"),
	}
	for _, j := range jobs {
		_, err := st.PutJob(ctx, j)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer ccancel()
		_ = st.DeleteWorker(cctx, workerID)
		for _, j := range jobs {
			_ = st.DeleteJob(cctx, j.PostedAt.UTC().Year(), j.ID)
		}
	})

	got, err := st.GetWorker(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, w.Skills, got.Skills)

	found, err := st.FindJob(ctx, oldID)
	require.NoError(t, err)
	assert.Equal(t, 2021, found.Year)

	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)
	uc := usecase.NewMatchingUsecase(st, scorer, nil)

	page, err := uc.MatchesFor(ctx, workerID, usecase.MatchParams{
		PageSize: usecase.MaxPageSize,
		Years:    &store.YearRange{Start: 2024, End: 2024},
	})
	require.NoError(t, err)

	var ids []string
	for r := range page.Seq() {
		ids = append(ids, r.JobID)
	}
	assert.Contains(t, ids, recentID)
	assert.NotContains(t, ids, oldID, "outside the year range")
	assert.NotContains(t, ids, closedID, "closed postings are not matched")

	wider := openStore(t, ctx, backend, 7)
	report, err := wider.Rebalance(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Scanned, 1)

	moved, err := wider.GetWorker(ctx, workerID)
	require.NoError(t, err)
	want, err := wider.Resolver().WorkerPartition(workerID)
	require.NoError(t, err)
	assert.Equal(t, want, moved.Partition)

	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer ccancel()
		_ = wider.DeleteWorker(cctx, workerID)
	})
}

func openStore(t *testing.T, ctx context.Context, backend store.Backend, partitions int) *store.Store {
	t.Helper()

	r, err := partition.NewResolver(partitions)
	require.NoError(t, err)
	st, err := store.New(backend, r, store.Options{OpTimeout: 10 * time.Second})
	require.NoError(t, err)
	require.NoError(t, st.Open(ctx))
	return st
}

func integrationJob(id string, posted time.Time, status job.Status, skills ...string) job.Posting {
	return job.Posting{
		ID:             id,
		Title:          fmt.Sprintf("integration %s", id),
		RawSkills:      skills,
		RequiredSkills: skill.NewSet(skills...),
		Location:       domain.Location{Region: "nyc"},
		Status:         status,
		PostedAt:       posted,
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("WORKBOARD_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("WORKBOARD_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("WORKBOARD_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	user := stringsOrDefault(os.Getenv("WORKBOARD_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("WORKBOARD_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("WORKBOARD_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set WORKBOARD_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port,
		DBName:     name,
		DBUser:     user,
		DBPassword: pass,
		DBSSLMode:  ssl,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
