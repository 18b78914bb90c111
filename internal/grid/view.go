package grid

// ViewState is the top-level state a presentation layer switches on.
type ViewState string

const (
	ViewLoading ViewState = "loading"
	ViewEmpty   ViewState = "empty"
	ViewReady   ViewState = "ready"
)

// HeaderView is one rendered header cell.
type HeaderView struct {
	Key           string    `json:"key"`
	Heading       string    `json:"heading"`
	Numeric       bool      `json:"numeric"`
	Sortable      bool      `json:"sortable"`
	SortDirection Direction `json:"sortDirection,omitempty"`
	Width         string    `json:"width,omitempty"`
	Pinned        Pin       `json:"pinned,omitempty"`
}

// CellView is one rendered cell.
type CellView struct {
	Key     string       `json:"key"`
	Raw     any          `json:"raw"`
	Text    string       `json:"text"`
	Numeric bool         `json:"numeric"`
	Warning *CellWarning `json:"warning,omitempty"`
}

// RowView is one rendered row of the current page.
type RowView[T any] struct {
	Row      T          `json:"-"`
	Selected bool       `json:"selected"`
	Cells    []CellView `json:"cells"`
}

// ColumnToggle is one entry of the column visibility menu.
type ColumnToggle struct {
	Key     string `json:"key"`
	Heading string `json:"heading"`
	Visible bool   `json:"visible"`
}

// View is the read-only, render-ready composition of every slice.
type View[T any] struct {
	State        ViewState    `json:"state"`
	EmptyMessage string       `json:"emptyMessage,omitempty"`
	Headers      []HeaderView `json:"headers"`
	Rows         []RowView[T] `json:"rows"`

	Pagination  Pagination `json:"pagination"`
	PageNumbers []int      `json:"pageNumbers"`
	PageRange   string     `json:"pageRange"`

	Sort    *SortState `json:"sortBy,omitempty"`
	Filters []Filter   `json:"filters"`

	SelectionCount int  `json:"selectionCount"`
	HasSelection   bool `json:"hasSelection"`
	AllSelected    bool `json:"allSelected"`

	ColumnMenu     []ColumnToggle `json:"columnMenu"`
	VisibleColumns int            `json:"visibleColumns"`
	TotalColumns   int            `json:"totalColumns"`

	ExportMenuOpen bool `json:"exportMenuOpen"`
	ExportBusy     bool `json:"exportBusy"`
}

// VisibleColumns returns the renderable columns whose meta is visible, in
// schema order. Filter-only columns are never included.
func (t *Table[T]) VisibleColumns() []Column[T] {
	out := make([]Column[T], 0, t.schema.Len())
	for _, c := range t.schema.cols {
		if c.FilterOnly() || !t.columns.IsVisible(c.Key) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// View derives the current render-ready view. Loading takes precedence over
// everything; an empty row set yields ViewEmpty with no headers.
func (t *Table[T]) View() View[T] {
	p := t.pagination.State()
	v := View[T]{
		Pagination:     p,
		PageNumbers:    t.pagination.PageNumbers(),
		PageRange:      PageRangeText(p),
		Sort:           t.sorter.Current(),
		Filters:        t.filters.Filters(),
		SelectionCount: t.selection.Count(),
		HasSelection:   t.selection.HasSelection(),
		AllSelected:    t.AllSelected(),
		ColumnMenu:     t.columnMenu(),
		VisibleColumns: t.columns.VisibleCount(),
		TotalColumns:   t.columns.Len(),
		ExportMenuOpen: t.exportMenuOpen,
		ExportBusy:     t.exportBusy.Load(),
	}

	switch {
	case t.loading:
		v.State = ViewLoading
		return v
	case len(t.rows) == 0:
		v.State = ViewEmpty
		v.EmptyMessage = t.emptyMessage
		return v
	}

	cols := t.VisibleColumns()
	v.State = ViewReady
	v.Headers = make([]HeaderView, len(cols))
	for i, c := range cols {
		meta, _ := t.columns.Meta(c.Key)
		v.Headers[i] = HeaderView{
			Key:           c.Key,
			Heading:       c.Heading,
			Numeric:       c.Numeric,
			Sortable:      c.Sortable,
			SortDirection: meta.SortDirection,
			Width:         c.Width,
			Pinned:        c.Pinned,
		}
	}

	v.Rows = make([]RowView[T], len(t.rows))
	for i, row := range t.rows {
		cells := make([]CellView, len(cols))
		for j, c := range cols {
			raw, _ := c.Value(row)
			cells[j] = CellView{
				Key:     c.Key,
				Raw:     raw,
				Text:    c.Display(row),
				Numeric: c.Numeric,
				Warning: c.WarningFor(row),
			}
		}
		v.Rows[i] = RowView[T]{Row: row, Selected: t.selection.IsSelected(row), Cells: cells}
	}
	return v
}

func (t *Table[T]) columnMenu() []ColumnToggle {
	out := make([]ColumnToggle, 0, t.schema.Len())
	for _, c := range t.schema.cols {
		if c.FilterOnly() {
			continue
		}
		out = append(out, ColumnToggle{Key: c.Key, Heading: c.Heading, Visible: t.columns.IsVisible(c.Key)})
	}
	return out
}
