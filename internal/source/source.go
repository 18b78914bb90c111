// Package source fetches dataset rows for a grid query from a SQL database.
//
// The grid engine only records intent (sort, filters, page); this package is
// the host-side half that turns a grid.Query into SQL, runs it on PostgreSQL
// or SQLite, and hands back rows plus the total count for pagination.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

// Page is one fetched page of rows.
type Page struct {
	Rows  []dataset.Row
	Total int
}

// Source fetches rows for datasets.
type Source interface {
	// Fetch returns the page of rows q asks for plus the total match count.
	Fetch(ctx context.Context, def dataset.Definition, q grid.Query) (Page, error)

	// FetchAll returns every row matching q's filters in q's order, up to
	// limit rows. Pagination fields of q are ignored.
	FetchAll(ctx context.Context, def dataset.Definition, q grid.Query, limit int) ([]dataset.Row, error)

	// Migrate creates the tables of defs and, when seed is set, loads
	// their demo rows into tables that are still empty.
	Migrate(ctx context.Context, defs []dataset.Definition, seed bool) error

	Close() error
}

// Open connects to the database cfg selects.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Source, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		src, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.DriverSQLite:
		src, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// WithTimeout wraps src so every fetch is bounded by d.
func WithTimeout(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return &timeoutSource{Source: src, timeout: d}
}

type timeoutSource struct {
	Source
	timeout time.Duration
}

func (s *timeoutSource) Fetch(ctx context.Context, def dataset.Definition, q grid.Query) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Source.Fetch(ctx, def, q)
}

func (s *timeoutSource) FetchAll(ctx context.Context, def dataset.Definition, q grid.Query, limit int) ([]dataset.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Source.FetchAll(ctx, def, q, limit)
}

// rowScanner abstracts over pgx and database/sql result sets.
type rowScanner interface {
	Next() bool
	Err() error
}

// collect decodes rows produced by a page statement. values reads the
// current row in field order.
func collect(def dataset.Definition, rows rowScanner, values func() ([]any, error)) ([]dataset.Row, error) {
	var out []dataset.Row
	for rows.Next() {
		vals, err := values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(dataset.Row, len(def.Fields))
		for i, f := range def.Fields {
			if i >= len(vals) {
				break
			}
			setPath(row, f.Name, decode(vals[i], f.Type))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// setPath stores v under a dotted name, creating nested maps as needed.
func setPath(row dataset.Row, name string, v any) {
	segs := strings.Split(name, ".")
	cur := row
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// decode normalizes driver values so both databases produce the same Go
// types: int64 or float64 for numbers, bool, time.Time for dates, string.
func decode(v any, t grid.DataType) any {
	if v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch t {
	case grid.TypeNumber:
		return decodeNumber(v)
	case grid.TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b
		case int64:
			return b != 0
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return b
			}
			return parsed
		}
	case grid.TypeDate:
		switch d := v.(type) {
		case time.Time:
			return d
		case string:
			for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05"} {
				if parsed, err := time.Parse(layout, d); err == nil {
					return parsed
				}
			}
			return d
		}
	}
	return v
}

func decodeNumber(v any) any {
	switch n := v.(type) {
	case int64, float64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case float32:
		return float64(n)
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
		return n
	default:
		if f, ok := numericFloat(v); ok {
			return f
		}
		return v
	}
}

// logFetch records a completed fetch at debug level.
func logFetch(logger *slog.Logger, def dataset.Definition, q grid.Query, rows, total int, started time.Time) {
	logger.Debug("rows fetched",
		"dataset", def.Info.Key,
		"page", q.Page,
		"page_size", q.PageSize,
		"filters", len(q.Filters),
		"rows", rows,
		"total", total,
		"duration", time.Since(started),
	)
}
