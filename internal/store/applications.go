package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"workboard/internal/domain"
	"workboard/internal/domain/application"
	"workboard/internal/partition"

	"go.uber.org/zap"
)

func applicationKey(id string) string {
	return "application:" + id
}

// CreateApplication stores a into the partition of its posting's year under
// an id derived from the job and worker. A second application for the same
// pair fails with domain.ErrApplicationExists.
func (s *Store) CreateApplication(ctx context.Context, a application.Application) (application.Application, error) {
	if err := partition.ValidateID(a.JobID); err != nil {
		return application.Application{}, err
	}
	if err := partition.ValidateID(a.WorkerID); err != nil {
		return application.Application{}, err
	}
	if err := partition.ValidateYear(a.JobYear); err != nil {
		return application.Application{}, err
	}
	a.ID = application.IDFor(a.JobID, a.WorkerID)
	table := partition.ApplicationTable(a.JobYear)

	if err := s.ensureTable(ctx, table); err != nil {
		return application.Application{}, err
	}

	unlock := s.locks.lock(applicationKey(a.ID))
	defer unlock()

	err := s.do(ctx, "get", table, func(ctx context.Context) error {
		_, err := s.backend.Get(ctx, table, a.ID)
		return err
	})
	switch {
	case err == nil:
		return application.Application{}, fmt.Errorf("%w: worker %s on job %s", domain.ErrApplicationExists, a.WorkerID, a.JobID)
	case !errors.Is(err, ErrNoDocument):
		return application.Application{}, err
	}

	if _, err := s.writeApplication(ctx, table, a); err != nil {
		return application.Application{}, err
	}
	return a, nil
}

// GetApplication looks id up in every application partition.
func (s *Store) GetApplication(ctx context.Context, id string) (application.Application, error) {
	if err := partition.ValidateID(id); err != nil {
		return application.Application{}, err
	}
	years, err := s.ApplicationYears(ctx)
	if err != nil {
		return application.Application{}, err
	}

	found, err := gather(ctx, s, "find_application", applicationTables(years), func(ctx context.Context, table string) ([]application.Application, error) {
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
		a, err := decode[application.Application](table, doc)
		if err != nil {
			return nil, err
		}
		return []application.Application{a}, nil
	})
	if err != nil {
		return application.Application{}, err
	}
	if len(found) == 0 {
		return application.Application{}, fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, id)
	}
	return found[0], nil
}

// ModifyApplication rewrites the application with id under its write lock.
// fn may not change the id, the pair it derives from, or the posting year.
func (s *Store) ModifyApplication(ctx context.Context, id string, fn func(application.Application) (application.Application, error)) (application.Application, error) {
	if err := partition.ValidateID(id); err != nil {
		return application.Application{}, err
	}

	unlock := s.locks.lock(applicationKey(id))
	defer unlock()

	prev, err := s.GetApplication(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	next, err := fn(prev)
	if err != nil {
		return application.Application{}, err
	}
	if next.ID != prev.ID || next.JobID != prev.JobID || next.WorkerID != prev.WorkerID || next.JobYear != prev.JobYear {
		return application.Application{}, fmt.Errorf("%w: modify %s changed its key", domain.ErrInvalidIdentifier, id)
	}

	if _, err := s.writeApplication(ctx, partition.ApplicationTable(prev.JobYear), next); err != nil {
		return application.Application{}, err
	}
	return next, nil
}

// writeApplication expects the caller to hold the id's lock.
func (s *Store) writeApplication(ctx context.Context, table string, a application.Application) (bool, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode application %s: %w", a.ID, err)
	}

	var inserted bool
	err = s.do(ctx, "upsert", table, func(ctx context.Context) error {
		var err error
		inserted, err = s.backend.Upsert(ctx, table, a.ID, doc)
		return err
	})
	if err != nil {
		return false, err
	}
	if inserted {
		s.adjustCount(ctx, table, 1)
	}
	s.log.Debug("application written", zap.String("id", a.ID), zap.String("table", table), zap.String("status", string(a.Status)))
	return inserted, nil
}

func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	if err := partition.ValidateID(id); err != nil {
		return err
	}

	unlock := s.locks.lock(applicationKey(id))
	defer unlock()

	a, err := s.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	table := partition.ApplicationTable(a.JobYear)

	var deleted bool
	err = s.do(ctx, "delete", table, func(ctx context.Context) error {
		var err error
		deleted, err = s.backend.Delete(ctx, table, id)
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, id)
	}
	s.adjustCount(ctx, table, -1)
	return nil
}

// QueryApplications reads every application partition, or only those listed
// in f.Years. Results are ordered newest application first, then by id.
func (s *Store) QueryApplications(ctx context.Context, f ApplicationFilter) ([]application.Application, error) {
	years, err := s.ApplicationYears(ctx)
	if err != nil {
		return nil, err
	}
	if f.Years != nil {
		want := make(map[int]struct{}, len(f.Years))
		for _, y := range f.Years {
			want[y] = struct{}{}
		}
		kept := years[:0:0]
		for _, y := range years {
			if _, ok := want[y]; ok {
				kept = append(kept, y)
			}
		}
		years = kept
	}

	out, err := gather(ctx, s, "applications", applicationTables(years), func(ctx context.Context, table string) ([]application.Application, error) {
		all, err := scanTable[application.Application](ctx, s, table)
		if err != nil {
			return nil, err
		}
		kept := all[:0]
		for _, a := range all {
			if f.Match(a) {
				kept = append(kept, a)
			}
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, k int) bool {
		if !out[i].AppliedAt.Equal(out[k].AppliedAt) {
			return out[i].AppliedAt.After(out[k].AppliedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out, nil
}

// ApplicationYears lists the application partitions that exist, ascending.
func (s *Store) ApplicationYears(ctx context.Context) ([]int, error) {
	return s.tableYears(ctx, partition.ApplicationTablePrefix, partition.ParseApplicationTable)
}

func applicationTables(years []int) []string {
	out := make([]string, 0, len(years))
	for _, y := range years {
		out = append(out, partition.ApplicationTable(y))
	}
	return out
}
