// Package sqlite opens the embedded database used for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"workboard/internal/config"
)

// Open connects with WAL journaling and a busy timeout. Each pragma needs the
// `_pragma=` prefix with modernc.org/sqlite.
func Open(ctx context.Context, cfg config.SQLiteConfig) (*sql.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+"_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}

	// One writer at a time; WAL lets reads proceed.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping sqlite")
	}
	return db, nil
}

// IsNoSuchTable reports a statement against a table that was never created.
func IsNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
