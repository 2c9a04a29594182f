package partition

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"workboard/internal/domain"
)

func TestWorkerPartition_InRangeAndStable(t *testing.T) {
	r, err := NewResolver(DefaultWorkerPartitions)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("worker-%d", i)
		p1, err := r.WorkerPartition(id)
		if err != nil {
			t.Fatalf("unexpected err for %s: %v", id, err)
		}
		if p1 < 0 || p1 >= DefaultWorkerPartitions {
			t.Fatalf("partition out of range for %s: %d", id, p1)
		}
		p2, _ := r.WorkerPartition(id)
		if p1 != p2 {
			t.Fatalf("partition not stable for %s: %d vs %d", id, p1, p2)
		}
	}
}

func TestWorkerPartition_SameAcrossResolvers(t *testing.T) {
	a, _ := NewResolver(8)
	b, _ := NewResolver(8)
	for _, id := range []string{"a", "68e737fa7cedddd24c3dda57", "3f1c0b1e-2b7f-4a57-9d33-2f4e3f4e8b10"} {
		pa, _ := a.WorkerPartition(id)
		pb, _ := b.WorkerPartition(id)
		if pa != pb {
			t.Fatalf("resolvers disagree for %s: %d vs %d", id, pa, pb)
		}
	}
}

func TestWorkerPartition_Distribution(t *testing.T) {
	r, _ := NewResolver(8)
	counts := make([]int, 8)
	for i := 0; i < 8000; i++ {
		p, _ := r.WorkerPartition(fmt.Sprintf("w%05d", i))
		counts[p]++
	}
	for p, c := range counts {
		if c == 0 {
			t.Fatalf("partition %d received no workers", p)
		}
	}
}

func TestWorkerPartition_SmallCount(t *testing.T) {
	r, _ := NewResolver(1)
	p, err := r.WorkerPartition("anyone")
	if err != nil || p != 0 {
		t.Fatalf("expected partition 0, got %d err=%v", p, err)
	}
}

func TestWorkerPartition_InvalidIdentifier(t *testing.T) {
	r, _ := NewResolver(8)
	for _, id := range []string{"", "   ", "has space", "tab\tid", "nl\n", string(make([]byte, 200))} {
		if _, err := r.WorkerPartition(id); !errors.Is(err, domain.ErrInvalidIdentifier) {
			t.Fatalf("expected ErrInvalidIdentifier for %q, got %v", id, err)
		}
	}
}

func TestNewResolver_RejectsNonPositive(t *testing.T) {
	if _, err := NewResolver(0); err == nil {
		t.Fatalf("expected error for zero partitions")
	}
}

func TestJobPartition(t *testing.T) {
	tests := []struct {
		name    string
		in      time.Time
		want    int
		wantErr bool
	}{
		{name: "mid year", in: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), want: 2024},
		{name: "new year utc", in: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), want: 2025},
		{name: "offset zone resolves in utc", in: time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("x", -2*3600)), want: 2025},
		{name: "zero timestamp", in: time.Time{}, wantErr: true},
		{name: "year too small", in: time.Date(999, 1, 1, 0, 0, 0, 0, time.UTC), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JobPartition(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidIdentifier) {
					t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTableNames(t *testing.T) {
	if got := WorkerTable(3); got != "workers_partition_3" {
		t.Fatalf("unexpected worker table %q", got)
	}
	if got := JobTable(2024); got != "jobs_2024" {
		t.Fatalf("unexpected job table %q", got)
	}
	if p, ok := ParseWorkerTable("workers_partition_7"); !ok || p != 7 {
		t.Fatalf("expected 7, got %d ok=%v", p, ok)
	}
	if _, ok := ParseWorkerTable("workers_partition_07"); ok {
		t.Fatalf("expected leading zero to be rejected")
	}
	if y, ok := ParseJobTable("jobs_2023"); !ok || y != 2023 {
		t.Fatalf("expected 2023, got %d ok=%v", y, ok)
	}
	if y, ok := ParseApplicationTable(ApplicationTable(2021)); !ok || y != 2021 {
		t.Fatalf("expected 2021, got %d ok=%v", y, ok)
	}
	if _, ok := ParseJobTable("applications_2021"); ok {
		t.Fatalf("expected an application table not to parse as a job table")
	}
	if !IsTableName("applications_2021") {
		t.Fatalf("expected applications_2021 to be a table name")
	}
	for _, bad := range []string{"jobs", "jobs_", "jobs_20x4", "jobs_12345", "users", "jobs_2024; drop table x", "applications_", "applications_99"} {
		if IsTableName(bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
