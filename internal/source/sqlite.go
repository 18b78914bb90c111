package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // Registers the "sqlite" database/sql driver

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

// SQLiteSource reads datasets from an SQLite file.
type SQLiteSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and avoids
	// SQLITE_BUSY from concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	slog.Info("connected to database", "driver", "sqlite", "path", path)
	return &SQLiteSource{db: db, logger: slog.Default().With("source", "sqlite")}, nil
}

// Fetch implements Source.
func (s *SQLiteSource) Fetch(ctx context.Context, def dataset.Definition, q grid.Query) (Page, error) {
	started := time.Now()
	count, page, err := BuildQuery(SQLite, def, q, q.PageSize, q.Offset())
	if err != nil {
		return Page{}, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, count.SQL, count.Args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count %s: %w", def.Info.Key, err)
	}

	rows, err := s.query(ctx, def, page)
	if err != nil {
		return Page{}, err
	}
	logFetch(s.logger, def, q, len(rows), total, started)
	return Page{Rows: rows, Total: total}, nil
}

// FetchAll implements Source.
func (s *SQLiteSource) FetchAll(ctx context.Context, def dataset.Definition, q grid.Query, limit int) ([]dataset.Row, error) {
	_, page, err := BuildQuery(SQLite, def, q, limit, 0)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, def, page)
}

func (s *SQLiteSource) query(ctx context.Context, def dataset.Definition, stmt Statement) ([]dataset.Row, error) {
	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", def.Info.Key, err)
	}
	defer rows.Close()

	values := func() ([]any, error) {
		vals := make([]any, len(def.Fields))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		return vals, nil
	}
	return collect(def, rows, values)
}

// Migrate implements Source.
func (s *SQLiteSource) Migrate(ctx context.Context, defs []dataset.Definition, seed bool) error {
	return migrate(ctx, sqlMigrator{s.db}, SQLite, defs, seed)
}

// Close implements Source.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

type sqlMigrator struct{ db *sql.DB }

func (m sqlMigrator) exec(ctx context.Context, query string, args ...any) error {
	_, err := m.db.ExecContext(ctx, query, args...)
	return err
}

func (m sqlMigrator) count(ctx context.Context, table string) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdentifier(table)).Scan(&n)
	return n, err
}
