package store

import (
	"context"
	"errors"
)

var (
	// ErrNoDocument is returned by Backend.Get for a missing id or table.
	ErrNoDocument = errors.New("document not found")
	// ErrUnavailable marks a partition table the backend cannot reach.
	ErrUnavailable = errors.New("backend unavailable")
)

// Backend stores opaque JSON documents keyed by id inside named partition
// tables. Table names always come from the partition package. A table that
// does not exist reads as empty.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	EnsureTable(ctx context.Context, table string) error
	Tables(ctx context.Context, prefix string) ([]string, error)

	// Upsert reports whether the id was newly inserted.
	Upsert(ctx context.Context, table, id string, doc []byte) (bool, error)
	Get(ctx context.Context, table, id string) ([]byte, error)
	Delete(ctx context.Context, table, id string) (bool, error)
	Scan(ctx context.Context, table string) ([][]byte, error)
	Count(ctx context.Context, table string) (int64, error)

	// Move writes doc under id in table to and removes it from table from
	// as one unit.
	Move(ctx context.Context, from, to, id string, doc []byte) error
}
