package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/tableview/internal/dataset"
)

type migrator interface {
	exec(ctx context.Context, sql string, args ...any) error
	count(ctx context.Context, table string) (int, error)
}

// migrate runs every definition's DDL, then seeds empty tables. All DDL
// runs first so seeds may reference tables of other datasets.
func migrate(ctx context.Context, m migrator, d Dialect, defs []dataset.Definition, seed bool) error {
	for _, def := range defs {
		for _, stmt := range def.DDL {
			if err := m.exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s: %w", def.Info.Key, err)
			}
		}
	}
	if !seed {
		return nil
	}

	for _, def := range defs {
		for _, s := range def.Seeds {
			n, err := m.count(ctx, s.Table)
			if err != nil {
				return fmt.Errorf("seed %s: %w", s.Table, err)
			}
			if n > 0 {
				continue
			}
			stmt := insertStatement(d, s)
			for i, row := range s.Rows {
				if err := m.exec(ctx, stmt, row...); err != nil {
					return fmt.Errorf("seed %s row %d: %w", s.Table, i, err)
				}
			}
			slog.Info("seeded table", "table", s.Table, "rows", len(s.Rows))
		}
	}
	return nil
}

func insertStatement(d Dialect, s dataset.Seed) string {
	cols := make([]string, len(s.Columns))
	placeholders := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quoteIdentifier(c)
		placeholders[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(s.Table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}
