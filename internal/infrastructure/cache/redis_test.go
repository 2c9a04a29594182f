package cache

import (
	"context"
	"testing"
)

func TestRedis_UnavailableIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, r := range map[string]*Redis{"nil": nil, "no client": {}} {
		t.Run(name, func(t *testing.T) {
			if err := r.IncrPartition(ctx, "jobs_2024", 1); err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if err := r.SetPartitions(ctx, map[string]int64{"jobs_2024": 3}); err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			counts, err := r.Counts(ctx)
			if err != nil || len(counts) != 0 {
				t.Fatalf("expected empty counts, got %v %v", counts, err)
			}
			if r.Healthy(ctx) {
				t.Fatalf("expected unhealthy")
			}
			if err := r.Close(); err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}
