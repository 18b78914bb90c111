// Package tui is the terminal host of the table engine. It shows one tab per
// dataset, maps keys onto the grid mutators and renders the derived view
// with lipgloss. Rows are fetched by commands so the UI never blocks on the
// database.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/export"
	"github.com/JonMunkholm/tableview/internal/grid"
	"github.com/JonMunkholm/tableview/internal/source"
)

// Timeouts for work started from the UI.
const (
	FetchTimeout  = 30 * time.Second
	ExportTimeout = 60 * time.Second
)

// pageLoadedMsg carries the result of a fetch command.
type pageLoadedMsg struct {
	index int
	seq   int
	query grid.Query
	page  source.Page
	err   error
}

// tableState is one dataset tab.
type tableState struct {
	def        dataset.Definition
	table      *grid.Table[dataset.Row]
	stale      bool
	seq        int // Generation of the latest fetch; older results are dropped
	lastExport string
}

func newTableState(def dataset.Definition, cfg *config.Config) (*tableState, error) {
	ts := &tableState{def: def, stale: true}

	opts := []grid.Option[dataset.Row]{
		grid.WithPageSize[dataset.Row](cfg.Table.DefaultPageSize),
		grid.WithLogger[dataset.Row](slog.Default().With("dataset", def.Info.Key)),
		grid.WithCallbacks(grid.Callbacks[dataset.Row]{
			OnReload: func(grid.Query) { ts.stale = true },
			OnExport: export.FileFunc(export.Default, cfg.Export.Dir, func(path string) { ts.lastExport = path }),
		}),
	}
	if len(cfg.Table.PageSizeOptions) > 0 {
		opts = append(opts, grid.WithPageSizeOptions[dataset.Row](cfg.Table.PageSizeOptions...))
	}
	if cfg.Table.EmptyMessage != "" {
		opts = append(opts, grid.WithEmptyMessage[dataset.Row](cfg.Table.EmptyMessage))
	}

	table, err := def.NewTable(opts...)
	if err != nil {
		return nil, err
	}
	ts.table = table
	return ts, nil
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg    *config.Config
	src    source.Source
	tabs   *grid.Tabs
	tables []*tableState

	keys KeyMap
	help help.Model

	cursor int // Row of the current page
	column int // Entry of the active table's column menu

	width  int
	height int

	status string
	err    string
}

// New creates the model with one tab per definition, the first one active.
func New(cfg *config.Config, src source.Source, defs []dataset.Definition) (Model, error) {
	tables := make([]*tableState, len(defs))
	list := make([]grid.Tab, len(defs))
	for i, def := range defs {
		ts, err := newTableState(def, cfg)
		if err != nil {
			return Model{}, err
		}
		tables[i] = ts
		list[i] = grid.Tab{ID: def.Info.Key, Label: def.Info.Label}
	}

	// Switching tabs starts the target dataset over at page 1.
	tabs, err := grid.NewTabs(list, grid.TabsSelfOwned, 0, func(i int, _ grid.Tab) {
		tables[i].table.Pagination().SetPageSize(cfg.Table.DefaultPageSize)
	})
	if err != nil {
		return Model{}, err
	}

	return Model{
		cfg:    cfg,
		src:    src,
		tabs:   tabs,
		tables: tables,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}, nil
}

// Init loads the first tab.
func (m Model) Init() tea.Cmd {
	return m.fetch(m.tabs.Active())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ts := m.active()
	pager := ts.table.Pagination()
	m.err = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(ts.table.Rows())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.PrevPage):
		pager.PrevPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.NextPage):
		pager.NextPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.FirstPage):
		pager.FirstPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.LastPage):
		pager.LastPage()
		m.cursor = 0

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(m.tabs.Next())
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(m.tabs.Prev())

	case key.Matches(msg, m.keys.PrevColumn):
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.NextColumn):
		m.moveColumn(1)
	case key.Matches(msg, m.keys.Sort):
		m.sortFocused()
	case key.Matches(msg, m.keys.ClearSort):
		ts.table.Sort().Clear()
	case key.Matches(msg, m.keys.ToggleColumn):
		if col, ok := m.focusedColumn(); ok {
			m.fail(ts.table.Columns().Toggle(col.Key))
		}
	case key.Matches(msg, m.keys.ResetColumns):
		ts.table.Columns().ResetToDefault()
		m.status = "Columns reset"

	case key.Matches(msg, m.keys.Select):
		if row, ok := m.cursorRow(); ok {
			ts.table.Selection().Toggle(row)
		}
	case key.Matches(msg, m.keys.SelectAll):
		ts.table.ToggleSelectAll()

	case key.Matches(msg, m.keys.FilterValue):
		m.filterFocusedValue()
	case key.Matches(msg, m.keys.ClearFilters):
		ts.table.Filters().Clear()

	case key.Matches(msg, m.keys.ExportCSV):
		m.export(grid.FormatCSV)
	case key.Matches(msg, m.keys.ExportExcel):
		m.export(grid.FormatExcel)
	case key.Matches(msg, m.keys.ExportPDF):
		m.export(grid.FormatPDF)
	}

	return m, m.fetch(m.tabs.Active())
}

// fetch starts loading tab i when a mutation marked it stale.
func (m Model) fetch(i int) tea.Cmd {
	ts := m.tables[i]
	if !ts.stale {
		return nil
	}
	ts.stale = false
	ts.seq++
	ts.table.SetLoading(true)

	src, def, q, seq := m.src, ts.def, ts.table.Query(), ts.seq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout)
		defer cancel()

		page, err := src.Fetch(ctx, def, q)
		return pageLoadedMsg{index: i, seq: seq, query: q, page: page, err: err}
	}
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	ts := m.tables[msg.index]
	if msg.seq != ts.seq {
		return m, nil
	}
	ts.table.SetLoading(false)

	if msg.err != nil {
		ts.stale = true // Retried on the next key press
		m.fail(fmt.Errorf("load %s: %w", ts.def.Info.Key, msg.err))
		return m, nil
	}

	ts.table.SetData(msg.page.Rows, msg.page.Total)

	// The total shrank below the requested page; fetch the clamped one.
	if ts.table.Pagination().Page() != msg.query.Page {
		ts.stale = true
		return m, m.fetch(msg.index)
	}

	if n := len(msg.page.Rows); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m, nil
}

func (m *Model) switchTab(err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.cursor, m.column = 0, 0
	m.status = ""
}

func (m *Model) moveColumn(delta int) {
	n := len(m.active().table.View().ColumnMenu)
	if n == 0 {
		return
	}
	m.column = ((m.column+delta)%n + n) % n
}

func (m *Model) sortFocused() {
	col, ok := m.focusedColumn()
	if !ok {
		return
	}
	sorted, err := m.active().table.ToggleSort(col.Key)
	if err != nil {
		m.fail(err)
		return
	}
	if !sorted {
		m.status = col.Heading + " is not sortable"
	}
}

// filterFocusedValue narrows the table to rows whose focused column equals
// the value under the cursor. One quick filter is kept per column.
func (m *Model) filterFocusedValue() {
	ts := m.active()
	col, ok := m.focusedColumn()
	if !ok {
		return
	}
	row, ok := m.cursorRow()
	if !ok {
		return
	}
	if _, ok := ts.def.FieldFor(col.Key, true); !ok {
		m.err = col.Heading + " cannot be filtered"
		return
	}
	schemaCol, _ := ts.table.Schema().Column(col.Key)
	raw, _ := schemaCol.Value(row)
	v, ok := filterValue(raw)
	if !ok {
		m.err = col.Heading + " has no value to filter on"
		return
	}

	filters := ts.table.Filters()
	id := "quick-" + col.Key
	if _, exists := filters.Get(id); exists {
		m.fail(filters.Update(id, grid.FilterPatch{Value: &v}))
		return
	}
	f, err := grid.Eq(col.Key, v)
	if err != nil {
		m.fail(err)
		return
	}
	f.ID = id
	f.Temporary = true
	m.fail(filters.Add(f))
}

// export writes the selection, or the current page when nothing is
// selected, to a file in the export directory.
func (m *Model) export(format grid.Format) {
	ts := m.active()
	rows := ts.table.Rows()
	scope := "page"
	if sel := ts.table.Selection(); sel.HasSelection() {
		rows = sel.Items()
		scope = "selection"
	}

	orientation := grid.Orientation(strings.ToLower(m.cfg.Export.Orientation))
	if orientation != grid.Portrait && orientation != grid.Landscape {
		orientation = ""
	}
	opts := grid.ExportOptions{
		Filename:    ts.def.Info.Key + "-" + time.Now().Format(time.DateOnly),
		Title:       ts.def.Info.Label,
		Subtitle:    export.Subtitle(len(rows), len(ts.table.Query().Filters)),
		Orientation: orientation,
		PageSize:    m.cfg.Export.PaperSize,
	}

	ctx, cancel := context.WithTimeout(context.Background(), ExportTimeout)
	defer cancel()

	if err := ts.table.ExportRows(ctx, format, opts, rows); err != nil {
		m.fail(err)
		return
	}
	slog.Info("export written", "dataset", ts.def.Info.Key, "format", format, "rows", len(rows), "path", ts.lastExport)
	m.status = fmt.Sprintf("Exported %s (%s) to %s", scope, format.Label(), ts.lastExport)
}

// fail shows err in the status line in its user-facing form.
func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	slog.Warn("tui: action failed", "error", err)
	msg := grid.MapError(err)
	m.err = msg.Message
	if msg.Action != "" {
		m.err += ". " + msg.Action
	}
	m.status = ""
}

func (m Model) active() *tableState {
	return m.tables[m.tabs.Active()]
}

func (m Model) focusedColumn() (grid.ColumnToggle, bool) {
	menu := m.active().table.View().ColumnMenu
	if m.column < 0 || m.column >= len(menu) {
		return grid.ColumnToggle{}, false
	}
	return menu[m.column], true
}

func (m Model) cursorRow() (dataset.Row, bool) {
	rows := m.active().table.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil, false
	}
	return rows[m.cursor], true
}

// filterValue converts a decoded cell value into a filter value.
func filterValue(raw any) (grid.Value, bool) {
	switch v := raw.(type) {
	case string:
		return grid.TextValue(v), true
	case int:
		return grid.IntValue(v), true
	case int64:
		return grid.NumberValue(float64(v)), true
	case float64:
		return grid.NumberValue(v), true
	case bool:
		return grid.BoolValue(v), true
	case time.Time:
		return grid.TimeValue(v), true
	}
	return grid.Value{}, false
}
