package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/export"
	"github.com/JonMunkholm/tableview/internal/grid"
	"github.com/JonMunkholm/tableview/internal/logging"
)

// Export scopes.
const (
	scopePage     = "page"
	scopeAll      = "all"
	scopeSelected = "selected"
)

// handleExport streams the table as a file download.
//
// Query parameters:
//   - scope: page (default), all (every row matching the filters, capped
//     by EXPORT_MAX_ROWS) or selected
//   - filename, title: override the defaults derived from the dataset
//   - hidden: true to include hidden and filter-only columns
//   - orientation, paper: document layout
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := grid.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ts, err := s.sessions.get(clientID(r), chi.URLParam(r, "dataset"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := s.exportOptions(r, ts.def)
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = scopePage
	}

	var buf bytes.Buffer
	err = s.exports.Do(r.Context(), func() error {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		return s.exportTable(r.Context(), ts, &buf, format, scope, &opts)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("export written",
		"dataset", ts.def.Info.Key,
		"format", format,
		"scope", scope,
		"bytes", buf.Len(),
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(opts, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// exportTable encodes the rows of scope into buf. Callers hold mu.
func (s *Server) exportTable(ctx context.Context, ts *tableSession, buf *bytes.Buffer, format grid.Format, scope string, opts *grid.ExportOptions) error {
	if err := ts.refresh(ctx, s.src); err != nil {
		return err
	}

	var rows []dataset.Row
	switch scope {
	case scopePage:
		rows = ts.table.Rows()
	case scopeSelected:
		rows = ts.table.Selection().Items()
	case scopeAll:
		all, err := s.src.FetchAll(ctx, ts.def, ts.table.Query(), s.cfg.Export.MaxRows)
		if err != nil {
			return fmt.Errorf("export %s: %w", ts.def.Info.Key, err)
		}
		rows = all
	default:
		return badRequest("scope must be page, all or selected")
	}

	if opts.Subtitle == "" {
		opts.Subtitle = export.Subtitle(len(rows), len(ts.table.Query().Filters))
	}
	return ts.table.ExportRows(export.ContextWithWriter(ctx, buf), format, *opts, rows)
}

// exportOptions reads the export options of a request, defaulting to the
// configured layout and a dataset-dated filename.
func (s *Server) exportOptions(r *http.Request, def dataset.Definition) grid.ExportOptions {
	q := r.URL.Query()
	opts := grid.ExportOptions{
		Filename:             q.Get("filename"),
		Title:                q.Get("title"),
		IncludeHiddenColumns: parseBoolParam(r, "hidden", false),
		Orientation:          grid.Orientation(strings.ToLower(q.Get("orientation"))),
		PageSize:             q.Get("paper"),
	}
	if opts.Filename == "" {
		opts.Filename = def.Info.Key + "-" + time.Now().Format(time.DateOnly)
	}
	if opts.Title == "" {
		opts.Title = def.Info.Label
	}
	if opts.Orientation != grid.Portrait && opts.Orientation != grid.Landscape {
		opts.Orientation = grid.Orientation(strings.ToLower(s.cfg.Export.Orientation))
	}
	if opts.PageSize == "" {
		opts.PageSize = s.cfg.Export.PaperSize
	}
	return opts
}
