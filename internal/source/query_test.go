package source

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

func widgetDef() dataset.Definition {
	return dataset.Definition{
		Info: dataset.Info{Key: "widgets"},
		From: "widgets w",
		Fields: []dataset.Field{
			{Name: "id", Expr: "w.id", Type: grid.TypeNumber},
			{Name: "name", Expr: "w.name", Type: grid.TypeString},
			{Name: "made", Expr: "w.made", Type: grid.TypeDate},
			{Name: "owner.name", Expr: "o.name", Type: grid.TypeString},
		},
		DefaultOrder: "w.id",
		Schema: grid.MustSchema(
			grid.Column[dataset.Row]{Key: "name", Sortable: true, Filter: &grid.FilterDescriptor{}},
			grid.Column[dataset.Row]{
				Key: "owner", Sortable: true, SortKey: "owner.name",
				Filter: &grid.FilterDescriptor{FilterID: "owner.name"},
			},
		),
	}
}

func mustFilter(t *testing.T) func(grid.Filter, error) grid.Filter {
	t.Helper()
	return func(f grid.Filter, err error) grid.Filter {
		t.Helper()
		if err != nil {
			t.Fatalf("build filter: %v", err)
		}
		return f
	}
}

func TestNewWhereBuilder(t *testing.T) {
	wb := NewWhereBuilder(Postgres)

	if wb.argIndex != 1 {
		t.Errorf("expected argIndex to be 1, got %d", wb.argIndex)
	}
	whereClause, args := wb.Build()
	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}
	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_Add(t *testing.T) {
	wb := NewWhereBuilder(Postgres)
	wb.Add("status", "")
	wb.Add("status", "active")
	wb.Add("type", "user")

	whereClause, args := wb.Build()

	expectedClause := " WHERE status = $1 AND type = $2"
	if whereClause != expectedClause {
		t.Errorf("expected %q, got %q", expectedClause, whereClause)
	}
	if !reflect.DeepEqual(args, []any{"active", "user"}) {
		t.Errorf("expected args [active user], got %v", args)
	}
	if wb.NextArgIndex() != 3 {
		t.Errorf("NextArgIndex() = %d, want 3", wb.NextArgIndex())
	}
}

func TestWhereBuilder_AddFilter(t *testing.T) {
	must := mustFilter(t)
	name := dataset.Field{Name: "name", Expr: "w.name", Type: grid.TypeString}
	id := dataset.Field{Name: "id", Expr: "w.id", Type: grid.TypeNumber}
	made := dataset.Field{Name: "made", Expr: "w.made", Type: grid.TypeDate}
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dialect  Dialect
		field    dataset.Field
		filter   grid.Filter
		wantSQL  string
		wantArgs []any
	}{
		{"eq", Postgres, name, must(grid.Eq("name", grid.TextValue("Ada"))),
			" WHERE w.name = $1", []any{"Ada"}},
		{"neq keeps nulls", Postgres, name,
			must(grid.NewFilterBuilder().ForColumn("name").WithOperator(grid.OpNeq).WithValue(grid.TextValue("Ada")).Build()),
			" WHERE (w.name <> $1 OR w.name IS NULL)", []any{"Ada"}},
		{"contains postgres", Postgres, name, must(grid.Contains("name", "50%")),
			` WHERE w.name ILIKE $1 ESCAPE '\'`, []any{`%50\%%`}},
		{"contains sqlite", SQLite, name, must(grid.Contains("name", "ada")),
			` WHERE w.name LIKE ? ESCAPE '\'`, []any{"%ada%"}},
		{"in", Postgres, id, must(grid.InList("id", grid.IntValue(1), grid.IntValue(2))),
			" WHERE w.id IN ($1, $2)", []any{int64(1), int64(2)}},
		{"between dates", SQLite, made, must(grid.Between("made", grid.TimeValue(day), grid.TimeValue(day.AddDate(0, 1, 0)))),
			" WHERE w.made BETWEEN ? AND ?", []any{"2024-03-05", "2024-04-05"}},
		{"fractional number", Postgres, id,
			must(grid.NewFilterBuilder().ForColumn("id").WithOperator(grid.OpGt).WithValue(grid.NumberValue(2.5)).Build()),
			" WHERE w.id > $1", []any{2.5}},
		{"is null ignores operand", Postgres, name,
			must(grid.NewFilterBuilder().ForColumn("name").WithOperator(grid.OpIsNull).WithValue(grid.BoolValue(true)).Build()),
			" WHERE w.name IS NULL", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder(tt.dialect)
			if err := wb.AddFilter(tt.field, tt.filter); err != nil {
				t.Fatalf("AddFilter() error = %v", err)
			}
			gotSQL, gotArgs := wb.Build()
			if gotSQL != tt.wantSQL {
				t.Errorf("SQL = %q, want %q", gotSQL, tt.wantSQL)
			}
			if len(tt.wantArgs) == 0 && len(gotArgs) == 0 {
				return
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	must := mustFilter(t)
	q := grid.Query{
		Sort:     &grid.SortState{ColumnID: "owner", Direction: grid.Desc, SortKey: "owner.name"},
		Filters:  []grid.Filter{must(grid.Eq("owner", grid.TextValue("Ada")))},
		Page:     3,
		PageSize: 20,
	}

	count, page, err := BuildQuery(Postgres, widgetDef(), q, q.PageSize, q.Offset())
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	if want := "SELECT COUNT(*) FROM widgets w WHERE o.name = $1"; count.SQL != want {
		t.Errorf("count SQL = %q, want %q", count.SQL, want)
	}
	wantPage := `SELECT w.id AS "id", w.name AS "name", w.made AS "made", o.name AS "owner.name" ` +
		`FROM widgets w WHERE o.name = $1 ORDER BY o.name DESC, w.id ASC LIMIT $2 OFFSET $3`
	if page.SQL != wantPage {
		t.Errorf("page SQL =\n%s\nwant\n%s", page.SQL, wantPage)
	}
	if !reflect.DeepEqual(page.Args, []any{"Ada", 20, 40}) {
		t.Errorf("page args = %v, want [Ada 20 40]", page.Args)
	}
}

func TestBuildQuery_DisabledFiltersAndNoLimit(t *testing.T) {
	f, err := grid.Eq("name", grid.TextValue("Ada"))
	if err != nil {
		t.Fatal(err)
	}
	f.Disabled = true

	count, page, err := BuildQuery(SQLite, widgetDef(), grid.Query{Filters: []grid.Filter{f}}, 0, 0)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if strings.Contains(count.SQL, "WHERE") {
		t.Errorf("disabled filter leaked into SQL: %s", count.SQL)
	}
	if strings.Contains(page.SQL, "LIMIT") {
		t.Errorf("limit 0 should select every row: %s", page.SQL)
	}
	if !strings.HasSuffix(page.SQL, "ORDER BY w.id ASC") {
		t.Errorf("expected default order, got %s", page.SQL)
	}
}

func TestBuildQuery_UnknownColumns(t *testing.T) {
	_, _, err := BuildQuery(Postgres, widgetDef(), grid.Query{
		Sort: &grid.SortState{ColumnID: "colour", Direction: grid.Asc},
	}, 10, 0)
	if !errors.Is(err, grid.ErrUnknownColumn) {
		t.Errorf("unknown sort error = %v, want ErrUnknownColumn", err)
	}

	f, _ := grid.Eq("colour", grid.TextValue("red"))
	_, _, err = BuildQuery(Postgres, widgetDef(), grid.Query{Filters: []grid.Filter{f}}, 10, 0)
	if !errors.Is(err, grid.ErrUnknownColumn) {
		t.Errorf("unknown filter error = %v, want ErrUnknownColumn", err)
	}
}

func TestDecode(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   any
		typ  grid.DataType
		want any
	}{
		{nil, grid.TypeString, nil},
		{[]byte("Ada"), grid.TypeString, "Ada"},
		{int32(7), grid.TypeNumber, int64(7)},
		{"12.5", grid.TypeNumber, 12.5},
		{int64(1), grid.TypeBoolean, true},
		{int64(0), grid.TypeBoolean, false},
		{"2024-03-05", grid.TypeDate, day},
		{day, grid.TypeDate, day},
	}
	for _, tt := range tests {
		if got := decode(tt.in, tt.typ); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("decode(%#v, %s) = %#v, want %#v", tt.in, tt.typ, got, tt.want)
		}
	}
}

func TestSetPath(t *testing.T) {
	row := dataset.Row{}
	setPath(row, "id", int64(1))
	setPath(row, "department.name", "Cardiology")
	setPath(row, "department.floor", int64(3))

	dept, ok := row["department"].(map[string]any)
	if !ok {
		t.Fatalf("department = %#v, want nested map", row["department"])
	}
	if dept["name"] != "Cardiology" || dept["floor"] != int64(3) {
		t.Errorf("department = %v", dept)
	}
}
