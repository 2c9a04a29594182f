package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"workboard/internal/domain"
	"workboard/internal/domain/worker"
	"workboard/internal/partition"

	"go.uber.org/zap"
)

func workerKey(id string) string {
	return "worker:" + id
}

// PutWorker writes the profile to its hash partition, replacing any document
// with the same id. The stored Partition is always the resolver's answer.
func (s *Store) PutWorker(ctx context.Context, w worker.Profile) (bool, error) {
	table, p, err := s.resolver.WorkerTableFor(w.ID)
	if err != nil {
		return false, err
	}
	if err := s.ensureTable(ctx, table); err != nil {
		return false, err
	}

	unlock := s.locks.lock(workerKey(w.ID))
	defer unlock()

	return s.writeWorker(ctx, table, p, w)
}

// ModifyWorker reads the profile with id, passes it to fn and writes fn's
// result, all while holding the id's write lock. exists is false when no
// profile is stored yet. An error from fn aborts without writing.
func (s *Store) ModifyWorker(ctx context.Context, id string, fn func(prev worker.Profile, exists bool) (worker.Profile, error)) (worker.Profile, bool, error) {
	table, p, err := s.resolver.WorkerTableFor(id)
	if err != nil {
		return worker.Profile{}, false, err
	}
	if err := s.ensureTable(ctx, table); err != nil {
		return worker.Profile{}, false, err
	}

	unlock := s.locks.lock(workerKey(id))
	defer unlock()

	prev, err := s.GetWorker(ctx, id)
	exists := err == nil
	if err != nil && !errors.Is(err, domain.ErrWorkerNotFound) {
		return worker.Profile{}, false, err
	}

	w, err := fn(prev, exists)
	if err != nil {
		return worker.Profile{}, false, err
	}
	if w.ID != id {
		return worker.Profile{}, false, fmt.Errorf("%w: modify %s returned %q", domain.ErrInvalidIdentifier, id, w.ID)
	}
	w.Partition = p

	inserted, err := s.writeWorker(ctx, table, p, w)
	if err != nil {
		return worker.Profile{}, false, err
	}
	return w, inserted, nil
}

// writeWorker expects the caller to hold the id's lock.
func (s *Store) writeWorker(ctx context.Context, table string, p int, w worker.Profile) (bool, error) {
	w.Partition = p
	doc, err := json.Marshal(w)
	if err != nil {
		return false, fmt.Errorf("encode worker %s: %w", w.ID, err)
	}

	var inserted bool
	err = s.do(ctx, "upsert", table, func(ctx context.Context) error {
		var err error
		inserted, err = s.backend.Upsert(ctx, table, w.ID, doc)
		return err
	})
	if err != nil {
		return false, err
	}
	if inserted {
		s.adjustCount(ctx, table, 1)
	}
	s.log.Debug("worker written", zap.String("id", w.ID), zap.String("table", table), zap.Bool("inserted", inserted))
	return inserted, nil
}

// GetWorker reads exactly one partition.
func (s *Store) GetWorker(ctx context.Context, id string) (worker.Profile, error) {
	table, _, err := s.resolver.WorkerTableFor(id)
	if err != nil {
		return worker.Profile{}, err
	}

	var doc []byte
	err = s.do(ctx, "get", table, func(ctx context.Context) error {
		var err error
		doc, err = s.backend.Get(ctx, table, id)
		return err
	})
	if errors.Is(err, ErrNoDocument) {
		return worker.Profile{}, fmt.Errorf("%w: %s", domain.ErrWorkerNotFound, id)
	}
	if err != nil {
		return worker.Profile{}, err
	}
	return decode[worker.Profile](table, doc)
}

func (s *Store) DeleteWorker(ctx context.Context, id string) error {
	table, _, err := s.resolver.WorkerTableFor(id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(workerKey(id))
	defer unlock()

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
		return fmt.Errorf("%w: %s", domain.ErrWorkerNotFound, id)
	}
	s.adjustCount(ctx, table, -1)
	return nil
}

// QueryWorkers reads every worker partition. Results are ordered by id.
func (s *Store) QueryWorkers(ctx context.Context, f WorkerFilter) ([]worker.Profile, error) {
	out, err := gather(ctx, s, "workers", s.resolver.WorkerTables(), func(ctx context.Context, table string) ([]worker.Profile, error) {
		all, err := scanTable[worker.Profile](ctx, s, table)
		if err != nil {
			return nil, err
		}
		kept := all[:0]
		for _, w := range all {
			if f.Match(w) {
				kept = append(kept, w)
			}
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindWorkerByUser scans every worker partition for the profile owned by
// userID.
func (s *Store) FindWorkerByUser(ctx context.Context, userID string) (worker.Profile, error) {
	if err := partition.ValidateID(userID); err != nil {
		return worker.Profile{}, err
	}
	found, err := gather(ctx, s, "worker_by_user", s.resolver.WorkerTables(), func(ctx context.Context, table string) ([]worker.Profile, error) {
		all, err := scanTable[worker.Profile](ctx, s, table)
		if err != nil {
			return nil, err
		}
		kept := all[:0]
		for _, w := range all {
			if w.UserID == userID {
				kept = append(kept, w)
			}
		}
		return kept, nil
	})
	if err != nil {
		return worker.Profile{}, err
	}
	if len(found) == 0 {
		return worker.Profile{}, fmt.Errorf("%w: no profile for user %s", domain.ErrWorkerNotFound, userID)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found[0], nil
}
