// Package partition maps entity identifiers and timestamps to storage
// partitions. Workers are hash partitioned by identifier into a fixed number
// of buckets; job postings are range partitioned by the calendar year they
// were posted in. The functions here are the only authority on that mapping.
package partition

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"workboard/internal/domain"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultWorkerPartitions = 8

	WorkerTablePrefix      = "workers_partition_"
	JobTablePrefix         = "jobs_"
	ApplicationTablePrefix = "applications_"

	MinYear = 1000
	MaxYear = 9999

	maxIDLength = 128
)

type Resolver struct {
	workerPartitions int
}

func NewResolver(workerPartitions int) (*Resolver, error) {
	if workerPartitions <= 0 {
		return nil, fmt.Errorf("worker partitions must be positive, got %d", workerPartitions)
	}
	return &Resolver{workerPartitions: workerPartitions}, nil
}

func (r *Resolver) WorkerPartitions() int {
	return r.workerPartitions
}

// WorkerPartition returns xxhash64(id) mod n. The hash is unseeded, so the
// answer is the same in every process.
func (r *Resolver) WorkerPartition(id string) (int, error) {
	if err := ValidateID(id); err != nil {
		return 0, err
	}
	sum := xxhash.Sum64String(id)
	return int(sum % uint64(r.workerPartitions)), nil
}

func (r *Resolver) WorkerTableFor(id string) (string, int, error) {
	p, err := r.WorkerPartition(id)
	if err != nil {
		return "", 0, err
	}
	return WorkerTable(p), p, nil
}

// WorkerTables lists every worker partition table for the configured count.
func (r *Resolver) WorkerTables() []string {
	out := make([]string, 0, r.workerPartitions)
	for i := 0; i < r.workerPartitions; i++ {
		out = append(out, WorkerTable(i))
	}
	return out
}

// JobPartition returns the UTC calendar year of postedAt.
func JobPartition(postedAt time.Time) (int, error) {
	if postedAt.IsZero() {
		return 0, fmt.Errorf("%w: missing posting timestamp", domain.ErrInvalidIdentifier)
	}
	year := postedAt.UTC().Year()
	if err := ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: year %d out of range", domain.ErrInvalidIdentifier, year)
	}
	return nil
}

func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidIdentifier)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: id longer than %d bytes", domain.ErrInvalidIdentifier, maxIDLength)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: id is not valid utf-8", domain.ErrInvalidIdentifier)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: id %q contains whitespace or control characters", domain.ErrInvalidIdentifier, id)
		}
	}
	return nil
}

func WorkerTable(p int) string {
	return WorkerTablePrefix + strconv.Itoa(p)
}

func JobTable(year int) string {
	return JobTablePrefix + strconv.Itoa(year)
}

// ApplicationTable is the table holding applications to postings of year.
func ApplicationTable(year int) string {
	return ApplicationTablePrefix + strconv.Itoa(year)
}

func ParseWorkerTable(name string) (int, bool) {
	raw, ok := strings.CutPrefix(name, WorkerTablePrefix)
	if !ok || raw == "" {
		return 0, false
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p < 0 || strconv.Itoa(p) != raw {
		return 0, false
	}
	return p, true
}

func ParseJobTable(name string) (int, bool) {
	return parseYearTable(name, JobTablePrefix)
}

func ParseApplicationTable(name string) (int, bool) {
	return parseYearTable(name, ApplicationTablePrefix)
}

func parseYearTable(name, prefix string) (int, bool) {
	raw, ok := strings.CutPrefix(name, prefix)
	if !ok || len(raw) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil || ValidateYear(year) != nil {
		return 0, false
	}
	return year, true
}

// IsTableName reports whether name is a table the resolver could have
// produced. Backends use it before interpolating a name into SQL.
func IsTableName(name string) bool {
	if _, ok := ParseWorkerTable(name); ok {
		return true
	}
	if _, ok := ParseJobTable(name); ok {
		return true
	}
	_, ok := ParseApplicationTable(name)
	return ok
}
