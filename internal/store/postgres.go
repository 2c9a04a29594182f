package store

import (
	"context"
	"fmt"

	"workboard/internal/database"
	"workboard/internal/database/postgres"
	"workboard/internal/partition"

	"github.com/jackc/pgx/v5"
)

// PostgresBackend keeps one table per partition with the document in a JSONB
// column.
type PostgresBackend struct {
	db database.DB
}

func NewPostgresBackend(db database.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string {
	return "postgres"
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}

func quoteTable(table string) (string, error) {
	if !partition.IsTableName(table) {
		return "", fmt.Errorf("not a partition table: %q", table)
	}
	return pgx.Identifier{table}.Sanitize(), nil
}

func (b *PostgresBackend) EnsureTable(ctx context.Context, table string) error {
	q, err := quoteTable(table)
	if err != nil {
		return err
	}
	_, err = b.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+q+` (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (b *PostgresBackend) Tables(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.Query(ctx,
		`SELECT tablename
		 FROM pg_tables
		 WHERE schemaname = current_schema() AND starts_with(tablename, $1)
		 ORDER BY tablename`,
		prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if partition.IsTableName(name) {
			out = append(out, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *PostgresBackend) Upsert(ctx context.Context, table, id string, doc []byte) (bool, error) {
	q, err := quoteTable(table)
	if err != nil {
		return false, err
	}
	var inserted bool
	row := b.db.QueryRow(ctx,
		`INSERT INTO `+q+` (id, doc, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at
		 RETURNING (xmax = 0)`,
		id, doc,
	)
	if err := row.Scan(&inserted); err != nil {
		return false, err
	}
	return inserted, nil
}

func (b *PostgresBackend) Get(ctx context.Context, table, id string) ([]byte, error) {
	q, err := quoteTable(table)
	if err != nil {
		return nil, err
	}
	var doc []byte
	row := b.db.QueryRow(ctx, `SELECT doc FROM `+q+` WHERE id = $1`, id)
	if err := row.Scan(&doc); err != nil {
		if postgres.IsNoRows(err) || postgres.IsUndefinedTable(err) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return doc, nil
}

func (b *PostgresBackend) Delete(ctx context.Context, table, id string) (bool, error) {
	q, err := quoteTable(table)
	if err != nil {
		return false, err
	}
	n, err := b.db.Exec(ctx, `DELETE FROM `+q+` WHERE id = $1`, id)
	if err != nil {
		if postgres.IsUndefinedTable(err) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

func (b *PostgresBackend) Scan(ctx context.Context, table string) ([][]byte, error) {
	q, err := quoteTable(table)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.Query(ctx, `SELECT doc FROM `+q+` ORDER BY id`)
	if err != nil {
		if postgres.IsUndefinedTable(err) {
			return [][]byte{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([][]byte, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		if postgres.IsUndefinedTable(err) {
			return [][]byte{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (b *PostgresBackend) Count(ctx context.Context, table string) (int64, error) {
	q, err := quoteTable(table)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := b.db.QueryRow(ctx, `SELECT count(*) FROM `+q).Scan(&n); err != nil {
		if postgres.IsUndefinedTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (b *PostgresBackend) Move(ctx context.Context, from, to, id string, doc []byte) error {
	src, err := quoteTable(from)
	if err != nil {
		return err
	}
	dst, err := quoteTable(to)
	if err != nil {
		return err
	}

	tx, err := b.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO `+dst+` (id, doc, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		id, doc,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM `+src+` WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
