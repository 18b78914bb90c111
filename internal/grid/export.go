package grid

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Format is an export target encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// Formats lists every supported export format in export menu order.
var Formats = []Format{FormatExcel, FormatCSV, FormatPDF}

// ParseFormat parses a format name case-insensitively. "xlsx" is accepted
// as an alias for excel.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatExcel, FormatPDF:
		return f, nil
	case "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Valid reports whether f is csv, excel or pdf.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatExcel || f == FormatPDF
}

// Label returns the menu label of f.
func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatExcel:
		return "Excel"
	case FormatPDF:
		return "PDF"
	}
	return string(f)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// ContentType returns the MIME type of the encoded output.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Orientation is the page orientation of document exports.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Export defaults.
const (
	DefaultOrientation = Landscape
	DefaultPaperSize   = "A4"
)

// ExportOptions is the options bag handed to encoders.
type ExportOptions struct {
	Filename string `json:"filename,omitempty"` // Without extension
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`

	// IncludeHiddenColumns exports every schema column, hidden and
	// filter-only ones included, instead of the visible header columns.
	IncludeHiddenColumns bool `json:"includeHiddenColumns,omitempty"`

	Orientation Orientation `json:"orientation,omitempty"`
	PageSize    string      `json:"pageSize,omitempty"` // Paper size, e.g. "A4"
}

// WithDefaults fills empty fields. The filename defaults to
// export-YYYY-MM-DD for the given day.
func (o ExportOptions) WithDefaults(now time.Time) ExportOptions {
	if o.Filename == "" {
		o.Filename = "export-" + now.Format("2006-01-02")
	}
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
	if o.PageSize == "" {
		o.PageSize = DefaultPaperSize
	}
	return o
}

// ExportColumn is one column of an export payload.
type ExportColumn struct {
	Key     string `json:"key"`
	Heading string `json:"heading"`
	Field   string `json:"accessor,omitempty"` // Field path; empty for derived accessors
	Numeric bool   `json:"numeric,omitempty"`
}

// ExportPayload is the format-agnostic projection handed to encoders.
// Every cell is already resolved, so encoders never evaluate accessors.
type ExportPayload struct {
	Columns     []ExportColumn `json:"columns"`
	Rows        [][]any        `json:"rows"`
	Title       string         `json:"title,omitempty"`
	Subtitle    string         `json:"subtitle,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Filters     []Filter       `json:"filters,omitempty"`
}

// Headings returns the column headings in order.
func (p ExportPayload) Headings() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Heading
	}
	return out
}

// ExportFunc performs the byte-level encoding of a payload.
type ExportFunc func(ctx context.Context, format Format, opts ExportOptions, payload ExportPayload) error

// ExportPayload projects the current rows through the export columns.
func (t *Table[T]) ExportPayload(opts ExportOptions) ExportPayload {
	return t.ExportPayloadFor(opts, t.rows)
}

// ExportPayloadFor projects rows supplied by the host, e.g. every row
// matching the current filters rather than just the displayed page.
func (t *Table[T]) ExportPayloadFor(opts ExportOptions, rows []T) ExportPayload {
	cols := t.VisibleColumns()
	if opts.IncludeHiddenColumns {
		cols = t.schema.Columns()
	}

	payload := ExportPayload{
		Columns:     make([]ExportColumn, len(cols)),
		Rows:        make([][]any, len(rows)),
		Title:       opts.Title,
		Subtitle:    opts.Subtitle,
		GeneratedAt: t.now(),
		Filters:     t.filters.Active(),
	}
	for i, c := range cols {
		path, _ := c.Accessor.Path()
		payload.Columns[i] = ExportColumn{Key: c.Key, Heading: c.Heading, Field: path, Numeric: c.Numeric}
	}
	for i, row := range rows {
		cells := make([]any, len(cols))
		for j, c := range cols {
			cells[j], _ = c.Value(row)
		}
		payload.Rows[i] = cells
	}
	return payload
}

// Export builds the payload and hands it to the OnExport callback. Only one
// export runs at a time; a second call while busy fails with ErrExportBusy.
// The busy flag is cleared and the export menu closed on every outcome.
func (t *Table[T]) Export(ctx context.Context, format Format, opts ExportOptions) error {
	return t.export(ctx, format, opts, t.rows)
}

// ExportRows is like Export but projects rows supplied by the host.
func (t *Table[T]) ExportRows(ctx context.Context, format Format, opts ExportOptions, rows []T) error {
	return t.export(ctx, format, opts, rows)
}

func (t *Table[T]) export(ctx context.Context, format Format, opts ExportOptions, rows []T) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if t.callbacks.OnExport == nil {
		return ErrExportUnavailable
	}
	if !t.exportBusy.CompareAndSwap(false, true) {
		return ErrExportBusy
	}
	defer func() {
		t.exportBusy.Store(false)
		t.exportMenuOpen = false
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	opts = opts.WithDefaults(t.now())
	payload := t.ExportPayloadFor(opts, rows)

	t.logger.Debug("export started", "format", format, "rows", len(payload.Rows), "columns", len(payload.Columns))
	if err := t.callbacks.OnExport(ctx, format, opts, payload); err != nil {
		t.logger.Warn("export failed", "format", format, "error", err)
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// ExportBusy reports whether an export is in progress.
func (t *Table[T]) ExportBusy() bool { return t.exportBusy.Load() }

// ExportMenuOpen reports whether the export menu is open.
func (t *Table[T]) ExportMenuOpen() bool { return t.exportMenuOpen }

// OpenExportMenu opens the export menu.
func (t *Table[T]) OpenExportMenu() { t.exportMenuOpen = true }

// CloseExportMenu closes the export menu.
func (t *Table[T]) CloseExportMenu() { t.exportMenuOpen = false }

// ToggleExportMenu flips the export menu. It stays closed while busy.
func (t *Table[T]) ToggleExportMenu() {
	if t.exportBusy.Load() {
		t.exportMenuOpen = false
		return
	}
	t.exportMenuOpen = !t.exportMenuOpen
}
