package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"workboard/internal/database/sqlite"
	"workboard/internal/partition"
)

// SQLiteBackend is meant for local runs and tests against a real SQL engine.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Name() string {
	return "sqlite"
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func sqliteTable(table string) (string, error) {
	if !partition.IsTableName(table) {
		return "", errors.Errorf("not a partition table: %q", table)
	}
	return `"` + table + `"`, nil
}

func (b *SQLiteBackend) EnsureTable(ctx context.Context, table string) error {
	q, err := sqliteTable(table)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%%s', 'now'))
	)`, q)
	if _, err := b.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to create table %s", table)
	}
	return nil
}

func (b *SQLiteBackend) Tables(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND substr(name, 1, ?) = ? ORDER BY name`,
		len(prefix), prefix,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan table name")
		}
		if partition.IsTableName(name) {
			out = append(out, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	return out, nil
}

func (b *SQLiteBackend) Upsert(ctx context.Context, table, id string, doc []byte) (bool, error) {
	q, err := sqliteTable(table)
	if err != nil {
		return false, err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to begin upsert")
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+q+` WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "failed to check %s/%s", table, id)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+q+` (id, doc, updated_ts) VALUES (?, ?, strftime('%s', 'now'))
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_ts = excluded.updated_ts`,
		id, string(doc),
	); err != nil {
		return false, errors.Wrapf(err, "failed to upsert %s/%s", table, id)
	}
	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "failed to commit upsert")
	}
	return !exists, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, table, id string) ([]byte, error) {
	q, err := sqliteTable(table)
	if err != nil {
		return nil, err
	}
	var doc string
	err = b.db.QueryRowContext(ctx, `SELECT doc FROM `+q+` WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || sqlite.IsNoSuchTable(err) {
			return nil, ErrNoDocument
		}
		return nil, errors.Wrapf(err, "failed to get %s/%s", table, id)
	}
	return []byte(doc), nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, table, id string) (bool, error) {
	q, err := sqliteTable(table)
	if err != nil {
		return false, err
	}
	res, err := b.db.ExecContext(ctx, `DELETE FROM `+q+` WHERE id = ?`, id)
	if err != nil {
		if sqlite.IsNoSuchTable(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to delete %s/%s", table, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read rows affected")
	}
	return n > 0, nil
}

func (b *SQLiteBackend) Scan(ctx context.Context, table string) ([][]byte, error) {
	q, err := sqliteTable(table)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, `SELECT doc FROM `+q+` ORDER BY id`)
	if err != nil {
		if sqlite.IsNoSuchTable(err) {
			return [][]byte{}, nil
		}
		return nil, errors.Wrapf(err, "failed to scan %s", table)
	}
	defer rows.Close()

	out := make([][]byte, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrapf(err, "failed to read row from %s", table)
		}
		out = append(out, []byte(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", table)
	}
	return out, nil
}

func (b *SQLiteBackend) Count(ctx context.Context, table string) (int64, error) {
	q, err := sqliteTable(table)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := b.db.QueryRowContext(ctx, `SELECT count(*) FROM `+q).Scan(&n); err != nil {
		if sqlite.IsNoSuchTable(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "failed to count %s", table)
	}
	return n, nil
}

func (b *SQLiteBackend) Move(ctx context.Context, from, to, id string, doc []byte) error {
	src, err := sqliteTable(from)
	if err != nil {
		return err
	}
	dst, err := sqliteTable(to)
	if err != nil {
		return err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin move")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+dst+` (id, doc, updated_ts) VALUES (?, ?, strftime('%s', 'now'))
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_ts = excluded.updated_ts`,
		id, string(doc),
	); err != nil {
		return errors.Wrapf(err, "failed to write %s/%s", to, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+src+` WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "failed to remove %s/%s", from, id)
	}
	return errors.Wrap(tx.Commit(), "failed to commit move")
}
