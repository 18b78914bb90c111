package tui

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	_ "github.com/JonMunkholm/tableview/internal/dataset/tables"
	"github.com/JonMunkholm/tableview/internal/grid"
	"github.com/JonMunkholm/tableview/internal/source"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Table: config.TableConfig{
			DefaultPageSize: 20,
			PageSizeOptions: []int{10, 20, 50},
			MaxPageSize:     1000,
			EmptyMessage:    "Nothing matches",
		},
		Export: config.ExportConfig{
			Dir:         t.TempDir(),
			Orientation: "landscape",
			PaperSize:   "A4",
		},
	}
}

func testDefs(t *testing.T) []dataset.Definition {
	t.Helper()
	users, err := dataset.Lookup("users")
	require.NoError(t, err)
	departments, err := dataset.Lookup("departments")
	require.NoError(t, err)
	return []dataset.Definition{users, departments}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	ctx := context.Background()

	src, err := source.OpenSQLite(ctx, filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	require.NoError(t, src.Migrate(ctx, dataset.All(), true))

	m, err := New(testConfig(t), src, testDefs(t))
	require.NoError(t, err)
	return run(m, m.Init())
}

// run executes cmd and feeds its messages back until nothing is pending.
func run(m Model, cmd tea.Cmd) Model {
	for cmd != nil {
		next, c := m.Update(cmd())
		m = next.(Model)
		cmd = c
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = run(next.(Model), cmd)
	}
	return m
}

func firstID(t *testing.T, m Model) any {
	t.Helper()
	rows := m.active().table.Rows()
	require.NotEmpty(t, rows)
	return rows[0]["id"]
}

func TestModel_InitialLoad(t *testing.T) {
	m := newTestModel(t)
	v := m.active().table.View()

	require.Equal(t, grid.ViewReady, v.State)
	require.Equal(t, 47, v.Pagination.Total)
	require.Len(t, v.Rows, 20)

	screen := m.View()
	require.Contains(t, screen, "Users")
	require.Contains(t, screen, "Departments")
	require.Contains(t, screen, "1-20 of 47")
}

func TestModel_Pagination(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "right")
	require.Equal(t, 2, m.active().table.Pagination().Page())
	require.EqualValues(t, 21, firstID(t, m))

	m = press(m, "end")
	require.Equal(t, 3, m.active().table.Pagination().Page())
	require.Len(t, m.active().table.Rows(), 7)

	m = press(m, "right")
	require.Equal(t, 3, m.active().table.Pagination().Page(), "next on the last page is a no-op")

	m = press(m, "home")
	require.EqualValues(t, 1, firstID(t, m))
}

func TestModel_SortFocusedColumn(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "]") // Age
	col, ok := m.focusedColumn()
	require.True(t, ok)
	require.Equal(t, "age", col.Key)

	m = press(m, "s")
	require.Equal(t, grid.Asc, m.active().table.Sort().Current().Direction)

	m = press(m, "s")
	require.Equal(t, grid.Desc, m.active().table.Sort().Current().Direction)
	require.EqualValues(t, 18, firstID(t, m))
	require.Contains(t, m.View(), "Age ▼")

	// Activating the sorted column again flips back to ascending.
	m = press(m, "s")
	require.Equal(t, grid.Asc, m.active().table.Sort().Current().Direction)
	require.EqualValues(t, 1, firstID(t, m))
	require.Contains(t, m.View(), "Age ▲")

	m = press(m, "S")
	require.Nil(t, m.active().table.Sort().Current())
	require.NotContains(t, m.View(), "Age ▲")
}

func TestModel_SortResetsPage(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "right", "s")
	require.Equal(t, 1, m.active().table.Pagination().Page())
}

func TestModel_UnsortableColumn(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "]", "]", "]", "]", "]") // Status
	m = press(m, "s")
	require.Nil(t, m.active().table.Sort().Current())
	require.Equal(t, "Status is not sortable", m.status)
}

func TestModel_Selection(t *testing.T) {
	m := newTestModel(t)
	sel := m.active().table.Selection()

	m = press(m, "space", "down", "space")
	require.Equal(t, 2, sel.Count())

	// Selection survives paging.
	m = press(m, "right", "left")
	require.Equal(t, 2, sel.Count())

	m = press(m, "a")
	require.Equal(t, 20, sel.Count())
	require.True(t, m.active().table.AllSelected())

	m = press(m, "a")
	require.Equal(t, 0, sel.Count())
}

func TestModel_ColumnVisibility(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 6, m.active().table.View().VisibleColumns)

	m = press(m, "[") // Wraps to Email, hidden by default
	col, _ := m.focusedColumn()
	require.Equal(t, "email", col.Key)

	m = press(m, "c")
	require.Equal(t, 7, m.active().table.View().VisibleColumns)

	m = press(m, "r")
	require.Equal(t, 6, m.active().table.View().VisibleColumns)
	require.Equal(t, "Columns reset", m.status)
}

func TestModel_TabSwitchResetsPaging(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "right")
	users := m.active()
	require.Equal(t, 2, users.table.Pagination().Page())

	m = press(m, "tab")
	require.Equal(t, "departments", m.active().def.Info.Key)
	require.Equal(t, grid.ViewReady, m.active().table.View().State)
	require.Equal(t, 0, m.cursor)

	m = press(m, "shift+tab")
	require.Equal(t, "users", m.active().def.Info.Key)
	require.Equal(t, 1, users.table.Pagination().Page())
	require.Equal(t, 20, users.table.Pagination().PageSize())
}

func TestModel_QuickFilter(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "]", "]") // Department of the first row, Cardiology
	m = press(m, "f")

	v := m.active().table.View()
	require.Len(t, v.Filters, 1)
	require.Equal(t, 9, v.Pagination.Total)
	for _, row := range v.Rows {
		for _, c := range row.Cells {
			if c.Key == "department" {
				require.Equal(t, "Cardiology", c.Text)
			}
		}
	}
	require.Contains(t, m.View(), "Filters:")

	// Filtering the same column again replaces the value.
	m = press(m, "f")
	require.Len(t, m.active().table.Filters().Filters(), 1)

	m = press(m, "F")
	require.Equal(t, 47, m.active().table.View().Pagination.Total)
}

func TestModel_QuickFilterDerivedColumn(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "]", "]", "]", "]", "]", "f") // Status
	require.Equal(t, "Status cannot be filtered", m.err)
	require.Empty(t, m.active().table.Filters().Filters())
}

func TestModel_Export(t *testing.T) {
	m := newTestModel(t)
	dir := m.cfg.Export.Dir
	name := "users-" + time.Now().Format(time.DateOnly)

	m = press(m, "e")
	require.Empty(t, m.err)
	require.Contains(t, m.status, "Exported page (CSV)")

	f, err := os.Open(filepath.Join(dir, name+".csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 21)
	require.Equal(t, []string{"Name", "Age", "Department", "Salary", "Joined", "Status"}, records[0])

	m = press(m, "space", "x")
	require.Contains(t, m.status, "Exported selection")
	raw, err := os.ReadFile(filepath.Join(dir, name+".xlsx"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "PK"))

	m = press(m, "p")
	raw, err = os.ReadFile(filepath.Join(dir, name+".pdf"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "%PDF"))
	require.False(t, m.active().table.ExportBusy())
}

func TestModel_StaleResultDropped(t *testing.T) {
	m := newTestModel(t)
	ts := m.active()

	next, cmd := m.Update(pageLoadedMsg{index: 0, seq: ts.seq - 1, page: source.Page{Total: 3}})
	require.Nil(t, cmd)
	require.Equal(t, 47, next.(Model).active().table.Pagination().State().Total)
}

type failingSource struct {
	source.Source
}

func (failingSource) Fetch(context.Context, dataset.Definition, grid.Query) (source.Page, error) {
	return source.Page{}, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
}

func TestModel_LoadError(t *testing.T) {
	m, err := New(testConfig(t), failingSource{}, testDefs(t))
	require.NoError(t, err)

	m = run(m, m.Init())
	require.NotEmpty(t, m.err)
	require.True(t, m.active().stale)
	require.False(t, m.active().table.Loading())
	require.Contains(t, m.View(), m.err)
}

func TestPad(t *testing.T) {
	tests := []struct {
		in      string
		w       int
		numeric bool
		want    string
	}{
		{"Ada", 5, false, "Ada  "},
		{"42", 5, true, "   42"},
		{"Margaret Hamilton", 8, false, "Margare…"},
		{"", 2, false, "  "},
	}
	for _, tt := range tests {
		if got := pad(tt.in, tt.w, tt.numeric); got != tt.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
}

func TestFilterValue(t *testing.T) {
	day := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)

	v, ok := filterValue("Cardiology")
	require.True(t, ok)
	require.Equal(t, "Cardiology", v.Text())

	v, ok = filterValue(int64(42))
	require.True(t, ok)
	require.Equal(t, 42.0, v.Number())

	v, ok = filterValue(day)
	require.True(t, ok)
	require.True(t, v.Time().Equal(day))

	_, ok = filterValue(nil)
	require.False(t, ok)
}
