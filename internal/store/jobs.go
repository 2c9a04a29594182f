package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"workboard/internal/domain"
	"workboard/internal/domain/job"
	"workboard/internal/partition"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

func jobKey(id string) string {
	return "job:" + id
}

// PutJob writes the posting to the partition of its posting year, creating
// the table on first use. Year is derived from PostedAt. An id already stored
// under another year is rejected with domain.ErrPostingYearFixed; checking
// that reads every year partition.
func (s *Store) PutJob(ctx context.Context, j job.Posting) (bool, error) {
	if err := partition.ValidateID(j.ID); err != nil {
		return false, err
	}
	year, err := partition.JobPartition(j.PostedAt)
	if err != nil {
		return false, err
	}
	j.Year = year
	table := partition.JobTable(year)

	doc, err := json.Marshal(j)
	if err != nil {
		return false, fmt.Errorf("encode job %s: %w", j.ID, err)
	}
	if err := s.ensureTable(ctx, table); err != nil {
		return false, err
	}

	unlock := s.locks.lock(jobKey(j.ID))
	defer unlock()

	existing, err := s.findJobs(ctx, j.ID)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Year != year {
			return false, fmt.Errorf("%w: %s is stored under %d, not %d", domain.ErrPostingYearFixed, j.ID, e.Year, year)
		}
	}

	var inserted bool
	err = s.do(ctx, "upsert", table, func(ctx context.Context) error {
		var err error
		inserted, err = s.backend.Upsert(ctx, table, j.ID, doc)
		return err
	})
	if err != nil {
		return false, err
	}
	if inserted {
		s.adjustCount(ctx, table, 1)
	}
	s.log.Debug("job written", zap.String("id", j.ID), zap.String("table", table), zap.Bool("inserted", inserted))
	return inserted, nil
}

// GetJob reads the single partition for year.
func (s *Store) GetJob(ctx context.Context, year int, id string) (job.Posting, error) {
	if err := partition.ValidateYear(year); err != nil {
		return job.Posting{}, err
	}
	if err := partition.ValidateID(id); err != nil {
		return job.Posting{}, err
	}
	table := partition.JobTable(year)

	var doc []byte
	err := s.do(ctx, "get", table, func(ctx context.Context) error {
		var err error
		doc, err = s.backend.Get(ctx, table, id)
		return err
	})
	if errors.Is(err, ErrNoDocument) {
		return job.Posting{}, fmt.Errorf("%w: %s in %d", domain.ErrJobNotFound, id, year)
	}
	if err != nil {
		return job.Posting{}, err
	}
	return decode[job.Posting](table, doc)
}

// FindJob looks the id up in every year partition. Prefer GetJob when the
// year is known.
func (s *Store) FindJob(ctx context.Context, id string) (job.Posting, error) {
	if err := partition.ValidateID(id); err != nil {
		return job.Posting{}, err
	}
	found, err := s.findJobs(ctx, id)
	if err != nil {
		return job.Posting{}, err
	}
	if len(found) == 0 {
		return job.Posting{}, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return found[len(found)-1], nil
}

// findJobs returns every stored copy of id, oldest year first.
func (s *Store) findJobs(ctx context.Context, id string) ([]job.Posting, error) {
	years, err := s.JobYears(ctx)
	if err != nil {
		return nil, err
	}

	found, err := gather(ctx, s, "find_job", jobTables(years), func(ctx context.Context, table string) ([]job.Posting, error) {
		var doc []byte
		err := s.do(ctx, "get", table, func(ctx context.Context) error {
			var err error
			doc, err = s.backend.Get(ctx, table, id)
			return err
		})
		if errors.Is(err, ErrNoDocument) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		j, err := decode[job.Posting](table, doc)
		if err != nil {
			return nil, err
		}
		return []job.Posting{j}, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(a, b int) bool { return found[a].Year < found[b].Year })
	return found, nil
}

func (s *Store) DeleteJob(ctx context.Context, year int, id string) error {
	if err := partition.ValidateYear(year); err != nil {
		return err
	}
	if err := partition.ValidateID(id); err != nil {
		return err
	}
	table := partition.JobTable(year)

	unlock := s.locks.lock(jobKey(id))
	defer unlock()

	var deleted bool
	err := s.do(ctx, "delete", table, func(ctx context.Context) error {
		var err error
		deleted, err = s.backend.Delete(ctx, table, id)
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s in %d", domain.ErrJobNotFound, id, year)
	}
	s.adjustCount(ctx, table, -1)
	return nil
}

// QueryByYearRange returns every posting from years start..end inclusive,
// reading only partitions in that range.
func (s *Store) QueryByYearRange(ctx context.Context, start, end int) ([]job.Posting, error) {
	return s.QueryJobs(ctx, JobFilter{Years: &YearRange{Start: start, End: end}})
}

// QueryJobs reads every year partition, or only those inside f.Years. Results
// are ordered newest first, then by id.
func (s *Store) QueryJobs(ctx context.Context, f JobFilter) ([]job.Posting, error) {
	if f.Years != nil {
		if err := f.Years.Validate(); err != nil {
			return nil, err
		}
	}
	years, err := s.JobYears(ctx)
	if err != nil {
		return nil, err
	}
	if f.Years != nil {
		inRange := years[:0:0]
		for _, y := range years {
			if f.Years.Contains(y) {
				inRange = append(inRange, y)
			}
		}
		years = inRange
	}

	out, err := gather(ctx, s, "jobs", jobTables(years), func(ctx context.Context, table string) ([]job.Posting, error) {
		all, err := scanTable[job.Posting](ctx, s, table)
		if err != nil {
			return nil, err
		}
		kept := all[:0]
		for _, j := range all {
			if f.Match(j) {
				kept = append(kept, j)
			}
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, k int) bool {
		if !out[i].PostedAt.Equal(out[k].PostedAt) {
			return out[i].PostedAt.After(out[k].PostedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out, nil
}

// JobYears lists the year partitions that exist, ascending. Concurrent
// callers share one catalog lookup. The shared lookup is not tied to any one
// caller's cancellation; it is bounded by the store's op timeout, and each
// caller stops waiting when its own ctx ends.
func (s *Store) JobYears(ctx context.Context) ([]int, error) {
	return s.tableYears(ctx, partition.JobTablePrefix, partition.ParseJobTable)
}

func (s *Store) tableYears(ctx context.Context, prefix string, parse func(string) (int, bool)) ([]int, error) {
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(prefix, func() (any, error) {
		var tables []string
		err := s.do(lookupCtx, "tables", prefix, func(ctx context.Context) error {
			var err error
			tables, err = s.backend.Tables(ctx, prefix)
			return err
		})
		if err != nil {
			return nil, err
		}
		years := make([]int, 0, len(tables))
		for _, t := range tables {
			if y, ok := parse(t); ok {
				years = append(years, y)
			}
		}
		sort.Ints(years)
		return years, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, s.classify(ctx, "tables", prefix, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	years := res.Val.([]int)
	out := make([]int, len(years))
	copy(out, years)
	return out, nil
}

func jobTables(years []int) []string {
	out := make([]string, 0, len(years))
	for _, y := range years {
		out = append(out, partition.JobTable(y))
	}
	return out
}
