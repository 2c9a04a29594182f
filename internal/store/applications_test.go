package store

import (
	"context"
	"testing"
	"time"

	"workboard/internal/domain"
	"workboard/internal/domain/application"
	"workboard/internal/partition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplication(jobID string, year int, workerID string, applied time.Time) application.Application {
	return application.Application{
		JobID:     jobID,
		JobYear:   year,
		WorkerID:  workerID,
		Status:    application.StatusPending,
		AppliedAt: applied,
		UpdatedAt: applied,
	}
}

func TestStore_CreateApplicationGuardsThePair(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := newTestStore(t, mem, 2, Options{})

	applied := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a, err := s.CreateApplication(ctx, testApplication("j-1", 2023, "w-1", applied))
	require.NoError(t, err)
	assert.Equal(t, application.IDFor("j-1", "w-1"), a.ID)

	_, err = s.CreateApplication(ctx, testApplication("j-1", 2023, "w-1", applied.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrApplicationExists)

	_, err = s.CreateApplication(ctx, testApplication("j-1", 2023, "w-2", applied))
	require.NoError(t, err, "another worker may apply to the same posting")

	_, err = s.CreateApplication(ctx, testApplication("j-1", 99, "w-3", applied))
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)

	n, err := mem.Count(ctx, partition.ApplicationTable(2023))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.GetApplication(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, applied.Equal(got.AppliedAt), "the duplicate did not overwrite")
}

func TestStore_ModifyApplicationKeepsKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, NewMemoryBackend(), 2, Options{})

	a, err := s.CreateApplication(ctx, testApplication("j-1", 2024, "w-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = s.ModifyApplication(ctx, a.ID, func(prev application.Application) (application.Application, error) {
		prev.JobYear = 2023
		return prev, nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)

	next, err := s.ModifyApplication(ctx, a.ID, func(prev application.Application) (application.Application, error) {
		prev.Status = application.StatusApproved
		return prev, nil
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, next.Status)

	got, err := s.GetApplication(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, got.Status)
}

func TestStore_QueryApplicationsReadsListedYears(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := newTestStore(t, mem, 2, Options{})

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, in := range []application.Application{
		testApplication("j-21", 2021, "w-1", base),
		testApplication("j-22", 2022, "w-1", base.Add(time.Hour)),
		testApplication("j-22", 2022, "w-2", base.Add(2*time.Hour)),
	} {
		_, err := s.CreateApplication(ctx, in)
		require.NoError(t, err, "application %d", i)
	}

	all, err := s.QueryApplications(ctx, ApplicationFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "j-22", all[0].JobID, "newest first")

	mem.ResetTouched()
	only, err := s.QueryApplications(ctx, ApplicationFilter{Years: []int{2022, 2030}})
	require.NoError(t, err)
	assert.Len(t, only, 2)
	assert.Equal(t, []string{partition.ApplicationTable(2022)}, mem.Touched())

	none, err := s.QueryApplications(ctx, ApplicationFilter{Years: []int{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ApplicationPartitionsInStats(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := newTestStore(t, mem, 2, Options{})

	_, err := s.PutJob(ctx, testJob("j-1", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), "Pune", "go"))
	require.NoError(t, err)
	_, err = s.CreateApplication(ctx, testApplication("j-1", 2022, "w-1", time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	reopened := newTestStore(t, mem, 2, Options{})
	stats, err := reopened.PartitionStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, CollectionJobs, stats[2].Collection)
	assert.Equal(t, domain.PartitionStat{Collection: CollectionApplications, Table: "applications_2022", Partition: 2022, Records: 1}, stats[3])

	st, err := reopened.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalJobs)
	assert.Equal(t, int64(1), st.TotalApplications)

	years, err := reopened.JobYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2022}, years, "application tables are not posting years")
}
