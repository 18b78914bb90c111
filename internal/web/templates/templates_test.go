package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func readyData() TableData {
	return TableData{
		Info: dataset.Info{Key: "users", Label: "Users"},
		Base: "/table/users",
		View: grid.View[dataset.Row]{
			State: grid.ViewReady,
			Headers: []grid.HeaderView{
				{Key: "name", Heading: "Name", Sortable: true, SortDirection: grid.Asc, Pinned: grid.PinLeft},
				{Key: "salary", Heading: "Salary", Numeric: true},
			},
			Rows: []grid.RowView[dataset.Row]{
				{Selected: true, Cells: []grid.CellView{
					{Key: "name", Text: `<script>alert("x")</script>`},
					{Key: "salary", Text: "84,500", Numeric: true},
				}},
				{Cells: []grid.CellView{
					{Key: "name", Text: "Grace"},
					{Key: "salary", Text: "-1", Numeric: true, Warning: &grid.CellWarning{Severity: grid.SeverityError, Message: "Negative salary"}},
				}},
			},
			Pagination:     grid.Pagination{Page: 2, PageSize: 20, Total: 1234, TotalPages: 62, PageSizeOptions: []int{10, 20}, HasNext: true, HasPrevious: true},
			PageNumbers:    []int{1, 2, 3},
			PageRange:      "21-40 of 1,234",
			Filters:        []grid.Filter{{ID: "age-1", ColumnID: "age", Operator: grid.OpGt, Value: grid.IntValue(30), Disabled: true}},
			SelectionCount: 1,
			HasSelection:   true,
			ColumnMenu:     []grid.ColumnToggle{{Key: "name", Heading: "Name", Visible: true}, {Key: "email", Heading: "Email"}},
			VisibleColumns: 2,
			TotalColumns:   3,
			ExportMenuOpen: true,
		},
		RowIDs:  []string{"1", "2"},
		Columns: []FilterColumn{{Key: "age", Heading: "Age", Operators: []grid.Operator{grid.OpEq, grid.OpGt}}},
	}
}

func TestTablePartial_Ready(t *testing.T) {
	html := renderString(t, TablePartial(readyData()))

	require.True(t, strings.HasPrefix(html, `<section id="table"`))
	require.Contains(t, html, "21-40 of 1,234")
	require.Contains(t, html, "(1,234 rows)")
	require.Contains(t, html, "Columns (2 of 3)")
	require.Contains(t, html, `<th class="pin-left" aria-sort="ascending">`)
	require.Contains(t, html, "Name ▲")
	require.Contains(t, html, `<tr class="selected">`)
	require.Contains(t, html, `<td class="num warn-error" title="Negative salary">-1</td>`)
	require.Contains(t, html, `<li class="chip disabled">age greater than 30`)
	require.Contains(t, html, `<button class="current" aria-current="page">2</button>`)
	require.Contains(t, html, `<option value="20" selected>20 per page</option>`)
	require.Contains(t, html, `href="/api/table/users/export/csv?scope=selected"`)
	require.Contains(t, html, "1 selected")
}

func TestTablePartial_EscapesText(t *testing.T) {
	html := renderString(t, TablePartial(readyData()))

	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	require.Contains(t, html, `hx-vals="{&#34;id&#34;:&#34;1&#34;}"`)
}

func TestTablePartial_States(t *testing.T) {
	data := readyData()
	data.View.State = grid.ViewLoading
	require.Contains(t, renderString(t, TablePartial(data)), `<p class="loading">Loading…</p>`)

	data.View.State = grid.ViewEmpty
	data.View.EmptyMessage = "Nothing matches"
	html := renderString(t, TablePartial(data))
	require.Contains(t, html, `<p class="empty">Nothing matches</p>`)
	require.NotContains(t, html, "<table>")
}

func TestTabStrip(t *testing.T) {
	tabs, err := grid.NewTabs([]grid.Tab{
		{ID: "users", Label: "Users"},
		{ID: "departments", Label: "Departments"},
		{ID: "audit", Label: "Audit", Disabled: true},
	}, grid.TabsSelfOwned, 0, nil)
	require.NoError(t, err)

	html := renderString(t, TabStrip(tabs))
	require.Contains(t, html, `<span class="tab active" role="tab" aria-selected="true">Users</span>`)
	require.Contains(t, html, `href="/table/departments" hx-get="/table/departments?tab=switch"`)
	require.Contains(t, html, `<span class="tab disabled" role="tab">Audit</span>`)

	require.Empty(t, renderString(t, TabStrip(nil)))
}

func TestIndex_GroupsDatasets(t *testing.T) {
	html := renderString(t, Index([]dataset.Info{
		{Key: "users", Group: "Directory", Label: "Users", Description: "People & roles"},
		{Key: "departments", Group: "Directory", Label: "Departments"},
		{Key: "budgets", Group: "Finance", Label: "Budgets"},
	}))

	require.True(t, strings.HasPrefix(html, "<!doctype html>"))
	require.Equal(t, 1, strings.Count(html, "<h2>Directory</h2>"))
	require.Contains(t, html, "<h2>Finance</h2>")
	require.Contains(t, html, `<a href="/table/users">Users</a>`)
	require.Contains(t, html, "People &amp; roles")
	require.Contains(t, html, `<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)

	require.Contains(t, renderString(t, Index(nil)), "No tables are registered.")
}

func TestErrorAlert(t *testing.T) {
	html := renderString(t, ErrorAlert("Age must be a number", "Check the value", "REQ001"))
	require.Equal(t, `<div class="alert" role="alert"><strong>Age must be a number</strong><span>Check the value</span><code>REQ001</code></div>`, html)

	require.Equal(t, `<div class="alert" role="alert"><strong>Oops</strong></div>`, renderString(t, ErrorAlert("Oops", "", "")))
}

func TestFilterLabel(t *testing.T) {
	require.Equal(t, "Adults", FilterLabel(grid.Filter{Label: "Adults", ColumnID: "age"}))
	require.Equal(t, "department is empty", FilterLabel(grid.Filter{ColumnID: "department", Operator: grid.OpIsNull}))
}
