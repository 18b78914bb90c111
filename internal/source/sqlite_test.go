package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tableview/internal/dataset"
	_ "github.com/JonMunkholm/tableview/internal/dataset/tables"
	"github.com/JonMunkholm/tableview/internal/grid"
)

func seededSQLite(t *testing.T) *SQLiteSource {
	t.Helper()
	ctx := context.Background()

	src, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	require.NoError(t, src.Migrate(ctx, dataset.All(), true))
	return src
}

func usersDef(t *testing.T) dataset.Definition {
	t.Helper()
	def, err := dataset.Lookup("users")
	require.NoError(t, err)
	return def
}

func TestSQLite_FetchPages(t *testing.T) {
	src := seededSQLite(t)
	def := usersDef(t)
	ctx := context.Background()

	page, err := src.Fetch(ctx, def, grid.Query{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 47, page.Total)
	require.Len(t, page.Rows, 20)
	require.Equal(t, int64(1), page.Rows[0]["id"])

	page, err = src.Fetch(ctx, def, grid.Query{Page: 3, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Rows, 7)
	require.Equal(t, int64(41), page.Rows[0]["id"])
}

func TestSQLite_DecodesRows(t *testing.T) {
	src := seededSQLite(t)
	def := usersDef(t)

	page, err := src.Fetch(context.Background(), def, grid.Query{Page: 1, PageSize: 7})
	require.NoError(t, err)

	first := page.Rows[0]
	dept, ok := first["department"].(map[string]any)
	require.True(t, ok, "department should be a nested map, got %#v", first["department"])
	require.Equal(t, "Cardiology", dept["name"])
	require.IsType(t, true, first["active"])

	// The seventh user has no department.
	noDept := page.Rows[6]["department"].(map[string]any)
	require.Nil(t, noDept["name"])
}

func TestSQLite_SortAndFilter(t *testing.T) {
	src := seededSQLite(t)
	def := usersDef(t)
	ctx := context.Background()
	must := mustFilter(t)

	page, err := src.Fetch(ctx, def, grid.Query{
		Sort:     &grid.SortState{ColumnID: "age", Direction: grid.Desc, SortKey: "age_years"},
		Page:     1,
		PageSize: 5,
	})
	require.NoError(t, err)
	require.Equal(t, int64(18), page.Rows[0]["id"])
	require.Equal(t, int64(63), page.Rows[0]["age_years"])

	tests := []struct {
		name   string
		filter grid.Filter
		total  int
	}{
		{"department eq", must(grid.Eq("department", grid.TextValue("Cardiology"))), 9},
		{"name contains is case-insensitive", must(grid.Contains("name", "ada")), 6},
		{"filter-only role in", must(grid.InList("role", grid.TextValue("admin"), grid.TextValue("viewer"))), 23},
		{"department is null", must(grid.NewFilterBuilder().ForColumn("department").
			WithOperator(grid.OpIsNull).WithValue(grid.BoolValue(true)).Build()), 6},
		{"inactive", must(grid.Eq("active", grid.BoolValue(false))), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := src.Fetch(ctx, def, grid.Query{Filters: []grid.Filter{tt.filter}, Page: 1, PageSize: 50})
			require.NoError(t, err)
			require.Equal(t, tt.total, page.Total)
			require.Len(t, page.Rows, tt.total)
		})
	}
}

func TestSQLite_FetchAllAndHeadcount(t *testing.T) {
	src := seededSQLite(t)
	ctx := context.Background()

	rows, err := src.FetchAll(ctx, usersDef(t), grid.Query{Page: 2, PageSize: 5}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	require.Equal(t, int64(1), rows[0]["id"])

	depts, err := dataset.Lookup("departments")
	require.NoError(t, err)
	all, err := src.FetchAll(ctx, depts, grid.Query{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	require.Equal(t, "Cardiology", all[0]["name"])
	require.Equal(t, int64(9), all[0]["headcount"])
	require.Equal(t, int64(0), all[5]["headcount"])
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	src := seededSQLite(t)
	ctx := context.Background()

	require.NoError(t, src.Migrate(ctx, dataset.All(), true))

	page, err := src.Fetch(ctx, usersDef(t), grid.Query{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, 47, page.Total)
}

func TestSQLite_UnknownSort(t *testing.T) {
	src := seededSQLite(t)

	_, err := src.Fetch(context.Background(), usersDef(t), grid.Query{
		Sort: &grid.SortState{ColumnID: "status", Direction: grid.Asc}, Page: 1, PageSize: 10,
	})
	require.ErrorIs(t, err, grid.ErrUnknownColumn)
}
