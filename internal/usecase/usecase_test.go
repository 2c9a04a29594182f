package usecase

import (
	"context"
	"testing"
	"time"

	"workboard/internal/domain/matching"
	"workboard/internal/partition"
	"workboard/internal/skill"
	"workboard/internal/store"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem          *store.MemoryBackend
	store        *store.Store
	workers      *Workers
	jobs         *Jobs
	applications *Applications
	matching     *Matching
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemoryBackend()
	r, err := partition.NewResolver(4)
	require.NoError(t, err)
	st, err := store.New(mem, r, store.Options{})
	require.NoError(t, err)
	require.NoError(t, st.Open(ctx))

	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)
	n := skill.MustNormalizer(skill.DefaultSynonyms)

	return &fixture{
		mem:          mem,
		store:        st,
		workers:      NewWorkerUsecase(st, n, nil),
		jobs:         NewJobUsecase(st, n, nil),
		applications: NewApplicationUsecase(st, nil),
		matching:     NewMatchingUsecase(st, scorer, nil),
	}
}

func at(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	return &t
}

func strPtr(s string) *string { return &s }
