package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

// PostgresSource reads datasets from PostgreSQL through a pgx pool.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres parses cfg.URL, applies the pool settings and verifies the
// connection.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresSource, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "driver", "postgres", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return NewPostgres(pool), nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool, logger: slog.Default().With("source", "postgres")}
}

// Fetch implements Source.
func (s *PostgresSource) Fetch(ctx context.Context, def dataset.Definition, q grid.Query) (Page, error) {
	started := time.Now()
	count, page, err := BuildQuery(Postgres, def, q, q.PageSize, q.Offset())
	if err != nil {
		return Page{}, err
	}

	var total int64
	if err := s.pool.QueryRow(ctx, count.SQL, count.Args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count %s: %w", def.Info.Key, err)
	}

	rows, err := s.query(ctx, def, page)
	if err != nil {
		return Page{}, err
	}
	logFetch(s.logger, def, q, len(rows), int(total), started)
	return Page{Rows: rows, Total: int(total)}, nil
}

// FetchAll implements Source.
func (s *PostgresSource) FetchAll(ctx context.Context, def dataset.Definition, q grid.Query, limit int) ([]dataset.Row, error) {
	_, page, err := BuildQuery(Postgres, def, q, limit, 0)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, def, page)
}

func (s *PostgresSource) query(ctx context.Context, def dataset.Definition, stmt Statement) ([]dataset.Row, error) {
	rows, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", def.Info.Key, err)
	}
	defer rows.Close()
	return collect(def, rows, rows.Values)
}

// Migrate implements Source.
func (s *PostgresSource) Migrate(ctx context.Context, defs []dataset.Definition, seed bool) error {
	return migrate(ctx, pgMigrator{s.pool}, Postgres, defs, seed)
}

// Close implements Source.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

type pgMigrator struct{ pool *pgxpool.Pool }

func (m pgMigrator) exec(ctx context.Context, sql string, args ...any) error {
	_, err := m.pool.Exec(ctx, sql, args...)
	return err
}

func (m pgMigrator) count(ctx context.Context, table string) (int, error) {
	var n int64
	err := m.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+quoteIdentifier(table)).Scan(&n)
	return int(n), err
}

// numericFloat converts pgx NUMERIC values to float64.
func numericFloat(v any) (float64, bool) {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}
