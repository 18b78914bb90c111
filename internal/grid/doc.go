// Package grid provides the state composition engine for tabular data views.
//
// The engine takes an immutable column schema plus a page of rows delivered by
// the host and derives everything a presentation layer needs: the visible
// columns, the current page window, the active sort and filters, and the
// selected subset. It performs no I/O. Every mutation that should cause new
// data to load is expressed as an outbound callback; the host decides whether
// and how to refetch.
//
// # Slices
//
// A [Table] owns five independently mutable pieces of state:
//
//   - [Paginator]: page, page size and the authoritative total row count.
//   - [Sorter]: at most one active [SortState].
//   - [FilterList]: insertion-ordered list of [Filter] intents.
//   - [Selection]: identity-keyed set of selected rows.
//   - [ColumnRegistry]: per-column runtime [ColumnMeta] (visibility, sort marker).
//
// Slices are only reachable through the Table that created them. Using a zero
// value slice panics with [ErrUnbound].
//
// # Cross-slice rules
//
// The Table is the single point where interactions are enforced:
//
//   - changing the sort or the filters resets the page to 1
//   - changing the page size resets the page to 1 but keeps the selection
//   - a new row page from the host keeps the selection (identity based)
//
// # Usage
//
//	schema, err := grid.NewSchema(
//	    grid.Column[User]{Key: "name", Heading: "Name", Accessor: grid.Field[User]("name"), Sortable: true},
//	    grid.Column[User]{Key: "age", Heading: "Age", Accessor: grid.Field[User]("age"), Numeric: true},
//	)
//	if err != nil {
//	    return err
//	}
//	tbl, err := grid.New(schema, grid.WithCallbacks(grid.Callbacks[User]{
//	    OnReload: func(q grid.Query) { go fetch(q) },
//	}))
//	tbl.SetData(rows, total)
//	view := tbl.View()
//
// # Export
//
// [Table.ExportPayload] flattens the current view into a format-agnostic
// [ExportPayload] with every accessor already resolved. [Table.Export] runs the
// host's export callback under a busy flag that rejects re-entrant triggers and
// is always released.
package grid
