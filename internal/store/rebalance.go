package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"workboard/internal/domain/worker"
	"workboard/internal/partition"

	"go.uber.org/zap"
)

type RebalanceReport struct {
	Scanned int `json:"scanned"`
	Moved   int `json:"moved"`
	// Dropped counts stale copies removed because the target partition
	// already held a newer write for the same id.
	Dropped int `json:"dropped"`
}

// Rebalance moves every worker document whose table no longer matches the
// resolver's answer, for example after the partition count changed. It is
// the only operation that rewrites a stored Partition.
func (s *Store) Rebalance(ctx context.Context) (RebalanceReport, error) {
	var report RebalanceReport

	if err := s.EnsurePartitions(ctx); err != nil {
		return report, err
	}

	var tables []string
	err := s.do(ctx, "tables", partition.WorkerTablePrefix, func(ctx context.Context) error {
		var err error
		tables, err = s.backend.Tables(ctx, partition.WorkerTablePrefix)
		return err
	})
	if err != nil {
		return report, err
	}

	for _, from := range tables {
		profiles, err := scanTable[worker.Profile](ctx, s, from)
		if err != nil {
			return report, err
		}
		for _, w := range profiles {
			report.Scanned++
			to, p, err := s.resolver.WorkerTableFor(w.ID)
			if err != nil {
				return report, fmt.Errorf("rebalance %s: %w", from, err)
			}
			if to == from {
				continue
			}
			moved, err := s.moveWorker(ctx, w, from, to, p)
			if err != nil {
				return report, err
			}
			if moved {
				report.Moved++
			} else {
				report.Dropped++
			}
		}
	}

	s.log.Info("rebalance finished",
		zap.Int("partitions", s.resolver.WorkerPartitions()),
		zap.Int("scanned", report.Scanned),
		zap.Int("moved", report.Moved),
		zap.Int("dropped", report.Dropped),
	)
	return report, nil
}

func (s *Store) moveWorker(ctx context.Context, w worker.Profile, from, to string, p int) (bool, error) {
	unlock := s.locks.lock(workerKey(w.ID))
	defer unlock()

	err := s.do(ctx, "get", to, func(ctx context.Context) error {
		_, err := s.backend.Get(ctx, to, w.ID)
		return err
	})
	switch {
	case err == nil:
		err = s.do(ctx, "delete", from, func(ctx context.Context) error {
			_, err := s.backend.Delete(ctx, from, w.ID)
			return err
		})
		if err != nil {
			return false, err
		}
		s.adjustCount(ctx, from, -1)
		return false, nil
	case !errors.Is(err, ErrNoDocument):
		return false, err
	}

	w.Partition = p
	doc, err := json.Marshal(w)
	if err != nil {
		return false, fmt.Errorf("encode worker %s: %w", w.ID, err)
	}
	err = s.do(ctx, "move", from+">"+to, func(ctx context.Context) error {
		return s.backend.Move(ctx, from, to, w.ID, doc)
	})
	if err != nil {
		return false, err
	}
	s.adjustCount(ctx, from, -1)
	s.adjustCount(ctx, to, 1)
	return true, nil
}
