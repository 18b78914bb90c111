package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tableview/internal/grid"
)

// tableOp is one mutation of a dataset's table.
type tableOp func(r *http.Request, ts *tableSession, in input) error

// tableHandler locks the dataset's session, brings it up to date, applies
// op, refetches if op asked for it and responds with the new view. A nil op
// just returns the view.
func (s *Server) tableHandler(op tableOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := s.sessions.get(clientID(r), chi.URLParam(r, "dataset"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		in, err := readInput(w, r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		ts.mu.Lock()
		defer ts.mu.Unlock()

		// Page bounds depend on the total, so the first request of a
		// session fetches before it mutates.
		if err := ts.refresh(r.Context(), s.src); err != nil {
			s.respondError(w, r, err)
			return
		}
		if op != nil {
			if err := op(r, ts, in); err != nil {
				s.respondError(w, r, err)
				return
			}
		}
		if err := ts.refresh(r.Context(), s.src); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondTable(w, r, ts)
	}
}

// tableRoutes registers the mutation endpoints shared by the page routes
// and the JSON API.
func (s *Server) tableRoutes(r chi.Router) {
	r.Post("/sort", s.tableHandler(sortTable))
	r.Delete("/sort", s.tableHandler(clearSort))
	r.Post("/page", s.tableHandler(changePage))
	r.Post("/page-size", s.tableHandler(changePageSize))

	r.Post("/filters", s.tableHandler(addFilter))
	r.Delete("/filters", s.tableHandler(clearFilters))
	r.Patch("/filters/{id}", s.tableHandler(updateFilter))
	r.Delete("/filters/{id}", s.tableHandler(removeFilter))

	r.Post("/selection/toggle", s.tableHandler(toggleRow))
	r.Post("/selection/all", s.tableHandler(toggleAllRows))
	r.Delete("/selection", s.tableHandler(clearSelection))

	r.Post("/columns/{key}/toggle", s.tableHandler(toggleColumn))
	r.Post("/columns/reset", s.tableHandler(resetColumns))

	r.Post("/export-menu", s.tableHandler(toggleExportMenu))
}

// sortTable sorts by column. Without a direction it behaves like a header
// click: a new column starts ascending, the sorted one flips direction.
func sortTable(r *http.Request, ts *tableSession, in input) error {
	key := in.text("column")
	if key == "" {
		return badRequest("column is required")
	}

	raw := strings.ToLower(in.text("direction"))
	if raw == "" {
		_, err := ts.table.ToggleSort(key)
		return err
	}
	dir := grid.Direction(raw)
	if !dir.Valid() {
		return badRequest("direction must be asc or desc")
	}

	col, ok := ts.def.Schema.Column(key)
	if !ok {
		return &grid.SchemaError{Key: key, Reason: "not in the table schema", Err: grid.ErrUnknownColumn}
	}
	if !col.Sortable {
		return nil
	}
	ts.table.Sort().Set(&grid.SortState{ColumnID: col.Key, Direction: dir, SortKey: col.EffectiveSortKey()})
	return nil
}

func clearSort(r *http.Request, ts *tableSession, in input) error {
	ts.table.Sort().Clear()
	return nil
}

// changePage moves to an explicit page or by an action: first, prev,
// next or last.
func changePage(r *http.Request, ts *tableSession, in input) error {
	p := ts.table.Pagination()
	switch action := in.text("action"); action {
	case "first":
		p.FirstPage()
	case "prev":
		p.PrevPage()
	case "next":
		p.NextPage()
	case "last":
		p.LastPage()
	case "":
		n, err := in.number("page")
		if err != nil {
			return err
		}
		p.SetPage(n)
	default:
		return badRequest("unknown page action %q", action)
	}
	return nil
}

func changePageSize(r *http.Request, ts *tableSession, in input) error {
	n, err := in.number("pageSize")
	if err != nil {
		return err
	}
	ts.table.Pagination().SetPageSize(n)
	return nil
}

func addFilter(r *http.Request, ts *tableSession, in input) error {
	f, err := filterFromInput(in, ts.def)
	if err != nil {
		return err
	}
	return ts.table.Filters().Add(f)
}

func updateFilter(r *http.Request, ts *tableSession, in input) error {
	patch, err := filterPatchFromInput(in, ts.def)
	if err != nil {
		return err
	}
	return ts.table.Filters().Update(chi.URLParam(r, "id"), patch)
}

func removeFilter(r *http.Request, ts *tableSession, in input) error {
	id := chi.URLParam(r, "id")
	if !ts.table.Filters().Remove(id) {
		return &grid.FilterError{ID: id, Err: grid.ErrFilterNotFound}
	}
	return nil
}

func clearFilters(r *http.Request, ts *tableSession, in input) error {
	ts.table.Filters().Clear()
	return nil
}

// toggleRow flips the selection of one row of the current page.
func toggleRow(r *http.Request, ts *tableSession, in input) error {
	id := in.text("id")
	if id == "" {
		return badRequest("id is required")
	}
	row, ok := ts.rowByID(id)
	if !ok {
		return badRequest("row %s is not on the current page", id)
	}
	ts.table.Selection().Toggle(row)
	return nil
}

func toggleAllRows(r *http.Request, ts *tableSession, in input) error {
	ts.table.ToggleSelectAll()
	return nil
}

func clearSelection(r *http.Request, ts *tableSession, in input) error {
	ts.table.Selection().Clear()
	return nil
}

func toggleColumn(r *http.Request, ts *tableSession, in input) error {
	return ts.table.Columns().Toggle(chi.URLParam(r, "key"))
}

func resetColumns(r *http.Request, ts *tableSession, in input) error {
	ts.table.Columns().ResetToDefault()
	return nil
}

func toggleExportMenu(r *http.Request, ts *tableSession, in input) error {
	ts.table.ToggleExportMenu()
	return nil
}
