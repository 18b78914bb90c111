package grid

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultEmptyMessage is shown when the host delivers no rows.
const DefaultEmptyMessage = "No data available"

// Query is the full set of parameters a data source needs to produce the
// rows for the current view.
type Query struct {
	Sort     *SortState `json:"sortBy,omitempty"`
	Filters  []Filter   `json:"filters"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// Offset returns the number of rows before the requested page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Callbacks are the host's hooks into the table. All are optional.
type Callbacks[T any] struct {
	OnSort            func(sort *SortState) // Nil sort means cleared
	OnFilter          func(filters []Filter)
	OnPageChange      func(page, pageSize int)
	OnSelectionChange func(selected []T)

	// OnReload fires after any sort, filter or page change with the full
	// query the host should fetch. The engine never fetches on its own.
	OnReload func(q Query)

	// OnExport performs the actual encoding. See Table.Export.
	OnExport ExportFunc
}

// Option configures a Table.
type Option[T any] func(*Table[T])

// WithIdentity sets the row identity used by the selection.
// The default reads the row's "id" field.
func WithIdentity[T any](fn IdentityFunc[T]) Option[T] {
	return func(t *Table[T]) { t.identity = fn }
}

// WithPageSize sets the initial page size.
func WithPageSize[T any](n int) Option[T] {
	return func(t *Table[T]) { t.initialPageSize = n }
}

// WithPageSizeOptions sets the page sizes offered to the user.
func WithPageSizeOptions[T any](sizes ...int) Option[T] {
	return func(t *Table[T]) { t.pageSizeOptions = append([]int(nil), sizes...) }
}

// WithCallbacks installs the host callbacks.
func WithCallbacks[T any](cb Callbacks[T]) Option[T] {
	return func(t *Table[T]) { t.callbacks = cb }
}

// WithLogger sets the logger used for state-change diagnostics.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(t *Table[T]) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithEmptyMessage overrides the empty-state message.
func WithEmptyMessage[T any](msg string) Option[T] {
	return func(t *Table[T]) { t.emptyMessage = msg }
}

// Table is the composition root: it owns every slice for one table instance,
// wires each slice's change to the host callbacks and derives the view.
//
// A Table is not safe for concurrent use; hosts that share one across
// goroutines must serialize access. The export busy flag is the exception.
type Table[T any] struct {
	schema   Schema[T]
	rows     []T
	loading  bool
	identity IdentityFunc[T]

	initialPageSize int
	pageSizeOptions []int
	emptyMessage    string
	callbacks       Callbacks[T]
	logger          *slog.Logger
	now             func() time.Time

	pagination *Paginator
	sorter     *Sorter
	filters    *FilterList
	selection  *Selection[T]
	columns    *ColumnRegistry

	exportBusy     atomic.Bool
	exportMenuOpen bool
}

// New builds a table around schema. The schema must come from NewSchema.
func New[T any](schema Schema[T], opts ...Option[T]) (*Table[T], error) {
	if schema.Len() == 0 {
		return nil, &SchemaError{Reason: "schema has no columns (build it with grid.NewSchema)", Err: ErrInvalidSchema}
	}

	t := &Table[T]{
		schema:          schema,
		initialPageSize: DefaultPageSize,
		emptyMessage:    DefaultEmptyMessage,
		logger:          slog.Default(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.pagination = newPaginator(t.initialPageSize, t.pageSizeOptions, t.logger, t.pageChanged)
	t.sorter = newSorter(t.logger, t.sortChanged)
	t.filters = newFilterList(t.logger, t.filtersChanged)
	t.selection = newSelection(t.identity, t.logger, t.selectionChanged)
	t.columns = newColumnRegistry(seedsFor(schema), t.logger)

	return t, nil
}

func seedsFor[T any](schema Schema[T]) []columnSeed {
	seeds := make([]columnSeed, 0, schema.Len())
	for _, c := range schema.cols {
		seeds = append(seeds, columnSeed{key: c.Key, hidden: c.HiddenByDefault, filterOnly: c.FilterOnly()})
	}
	return seeds
}

// Schema returns the table's column schema.
func (t *Table[T]) Schema() Schema[T] { return t.schema }

// Pagination returns the pagination slice.
func (t *Table[T]) Pagination() *Paginator { return t.pagination }

// Sort returns the sort slice.
func (t *Table[T]) Sort() *Sorter { return t.sorter }

// Filters returns the filter slice.
func (t *Table[T]) Filters() *FilterList { return t.filters }

// Selection returns the selection slice.
func (t *Table[T]) Selection() *Selection[T] { return t.selection }

// Columns returns the column visibility registry.
func (t *Table[T]) Columns() *ColumnRegistry { return t.columns }

// Rows returns a copy of the rows currently delivered by the host.
func (t *Table[T]) Rows() []T { return append([]T(nil), t.rows...) }

// Loading reports the host-supplied loading flag.
func (t *Table[T]) Loading() bool { return t.loading }

// SetData replaces the displayed rows and the authoritative total. The
// total is never inferred from len(rows); it may exceed the delivered page.
// The selection is kept because it is identity based.
func (t *Table[T]) SetData(rows []T, total int) {
	t.rows = append([]T(nil), rows...)
	t.pagination.setTotal(total)
	t.logger.Debug("table data updated", "rows", len(rows), "total", total)
}

// SetLoading sets the loading flag. While loading, the view reports
// ViewLoading regardless of rows and columns.
func (t *Table[T]) SetLoading(loading bool) { t.loading = loading }

// SetSchema replaces the column schema. IsDefault always comes from the new
// schema. A surviving key keeps its visibility unless its default changed or
// it became filter-only, new columns are seeded from their defaults, and a
// sort on a removed column is cleared.
func (t *Table[T]) SetSchema(schema Schema[T]) error {
	if schema.Len() == 0 {
		return &SchemaError{Reason: "schema has no columns", Err: ErrInvalidSchema}
	}

	prev := t.columns
	next := newColumnRegistry(seedsFor(schema), t.logger)
	for _, key := range next.order {
		old, ok := prev.metas[key]
		if !ok {
			continue
		}
		m := next.metas[key]
		if old.IsDefault == m.IsDefault && !next.filterOnly[key] {
			m.Visible = old.Visible
		}
		m.SortDirection = old.SortDirection
	}
	t.schema = schema
	t.columns = next

	if cur := t.sorter.current; cur != nil {
		if _, ok := schema.Column(cur.ColumnID); !ok {
			t.sorter.Clear()
		}
	}
	return nil
}

// Query returns the parameters for fetching the current view.
func (t *Table[T]) Query() Query {
	return Query{
		Sort:     t.sorter.Current(),
		Filters:  t.filters.Active(),
		Page:     t.pagination.Page(),
		PageSize: t.pagination.PageSize(),
	}
}

// ToggleSort applies a header activation on the column with key. Clicking a
// non-sortable column does nothing and reports false.
func (t *Table[T]) ToggleSort(key string) (bool, error) {
	col, ok := t.schema.Column(key)
	if !ok {
		return false, unknownColumn(key, t.schema.Keys())
	}
	return t.sorter.Toggle(col.Key, col.Sortable, col.EffectiveSortKey()), nil
}

// AllSelected reports whether the header checkbox is checked: the selection
// and the current page are both non-empty and the same size.
func (t *Table[T]) AllSelected() bool {
	n := t.selection.Count()
	return n > 0 && len(t.rows) > 0 && n == len(t.rows)
}

// ToggleSelectAll clears the selection when all rows are selected and
// otherwise selects exactly the current page.
func (t *Table[T]) ToggleSelectAll() {
	if t.AllSelected() {
		t.selection.Clear()
		return
	}
	t.selection.SelectAll(t.rows)
}

func (t *Table[T]) sortChanged(sort *SortState) {
	if sort == nil {
		t.columns.markSorted("", "")
	} else {
		t.columns.markSorted(sort.ColumnID, sort.Direction)
	}
	t.pagination.reset()

	if t.callbacks.OnSort != nil {
		t.callbacks.OnSort(sort)
	}
	t.reload()
}

func (t *Table[T]) filtersChanged(filters []Filter) {
	t.pagination.reset()

	if t.callbacks.OnFilter != nil {
		t.callbacks.OnFilter(filters)
	}
	t.reload()
}

func (t *Table[T]) pageChanged(page, pageSize int) {
	if t.callbacks.OnPageChange != nil {
		t.callbacks.OnPageChange(page, pageSize)
	}
	t.reload()
}

func (t *Table[T]) selectionChanged(selected []T) {
	if t.callbacks.OnSelectionChange != nil {
		t.callbacks.OnSelectionChange(selected)
	}
}

func (t *Table[T]) reload() {
	if t.callbacks.OnReload == nil {
		return
	}
	q := t.Query()
	t.logger.Debug("reload requested", "page", q.Page, "page_size", q.PageSize, "filters", len(q.Filters))
	t.callbacks.OnReload(q)
}
