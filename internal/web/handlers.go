package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
	"github.com/JonMunkholm/tableview/internal/web/templates"
)

// tableResponse is the JSON body returned by every table endpoint.
type tableResponse struct {
	Dataset dataset.Info `json:"dataset"`
	grid.View[dataset.Row]
	RowIDs []string   `json:"rowIds"`
	Query  grid.Query `json:"query"`
}

// handleIndex lists the registered datasets.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	defs := dataset.All()
	infos := make([]dataset.Info, len(defs))
	for i, d := range defs {
		infos[i] = d.Info
	}
	render(w, r, templates.Index(infos))
}

// handleListDatasets returns the registered datasets as JSON.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	defs := dataset.All()
	infos := make([]dataset.Info, len(defs))
	for i, d := range defs {
		infos[i] = d.Info
	}
	writeJSON(w, r, http.StatusOK, infos)
}

// handleStatus reports live table sessions and export slot usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"datasets": dataset.Count(),
		"sessions": s.sessions.count(),
		"exports":  s.exports.Status(),
	})
}

// handleTablePage renders a dataset's page. A tab switch (?tab=switch)
// starts the dataset over at page 1 with the default page size.
func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "dataset")
	ts, err := s.sessions.get(clientID(r), key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	tabs, err := s.tabsFor(key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if r.URL.Query().Get("tab") == "switch" {
		ts.table.Pagination().SetPageSize(s.cfg.Table.DefaultPageSize)
	}
	if err := ts.refresh(r.Context(), s.src); err != nil {
		s.respondError(w, r, err)
		return
	}

	data := tableData(ts)
	if isHTMX(r) {
		render(w, r, templates.TabStrip(tabs), templates.TablePartial(data), templates.ClearAlerts())
		return
	}
	render(w, r, templates.TablePage(tabs, data))
}

// tabsFor builds the dataset tab strip. The route owns the active tab, so
// the strip is caller-owned and committed with SetActive.
func (s *Server) tabsFor(active string) (*grid.Tabs, error) {
	defs := dataset.All()
	list := make([]grid.Tab, len(defs))
	index := -1
	for i, d := range defs {
		list[i] = grid.Tab{ID: d.Info.Key, Label: d.Info.Label}
		if d.Info.Key == active {
			index = i
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", dataset.ErrUnknownDataset, active)
	}

	tabs, err := grid.NewTabs(list, grid.TabsCallerOwned, 0, nil)
	if err != nil {
		return nil, err
	}
	if err := tabs.SetActive(index); err != nil {
		return nil, err
	}
	return tabs, nil
}

// tableData projects a session into the template model. Callers hold mu.
func tableData(ts *tableSession) templates.TableData {
	view := ts.table.View()
	identity := ts.def.Identity()

	ids := make([]string, len(view.Rows))
	for i, row := range view.Rows {
		ids[i] = fmt.Sprint(identity(row.Row))
	}

	var cols []templates.FilterColumn
	for _, c := range ts.def.Schema.Columns() {
		if c.Filter == nil {
			continue
		}
		field, ok := ts.def.FieldFor(c.Key, true)
		if !ok {
			continue
		}
		cols = append(cols, templates.FilterColumn{
			Key:       c.Key,
			Heading:   c.Heading,
			Operators: grid.OperatorsFor(field.Type),
		})
	}

	return templates.TableData{
		Info:    ts.def.Info,
		Base:    "/table/" + ts.def.Info.Key,
		View:    view,
		RowIDs:  ids,
		Columns: cols,
	}
}

// respondTable writes the table in the form the client asked for: an HTMX
// fragment, JSON, or a redirect back to the page for plain form posts.
// Callers hold mu.
func (s *Server) respondTable(w http.ResponseWriter, r *http.Request, ts *tableSession) {
	switch {
	case isHTMX(r):
		render(w, r, templates.TablePartial(tableData(ts)), templates.ClearAlerts())
	case wantsJSON(r):
		data := tableData(ts)
		writeJSON(w, r, http.StatusOK, tableResponse{
			Dataset: ts.def.Info,
			View:    data.View,
			RowIDs:  data.RowIDs,
			Query:   ts.table.Query(),
		})
	default:
		http.Redirect(w, r, "/table/"+ts.def.Info.Key, http.StatusSeeOther)
	}
}
