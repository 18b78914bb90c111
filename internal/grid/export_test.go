package grid

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func exportKeys(p ExportPayload) []string {
	keys := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		keys[i] = c.Key
	}
	return keys
}

func TestExportPayload_FilterOnlyGovernedByOption(t *testing.T) {
	schema := MustSchema(
		Column[user]{Key: "name", Heading: "Name"},
		Column[user]{Key: "role", Heading: "Role", Filter: &FilterDescriptor{FilterOnly: true}},
	)
	tbl, err := New(schema, WithLogger[user](quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	tbl.SetData(sampleUsers(), 3)

	v := tbl.View()
	if len(v.Headers) != 1 || v.Headers[0].Key != "name" {
		t.Errorf("headers = %+v, want only name", v.Headers)
	}

	if got := exportKeys(tbl.ExportPayload(ExportOptions{})); !slices.Equal(got, []string{"name"}) {
		t.Errorf("payload columns = %v, want [name]", got)
	}
	got := exportKeys(tbl.ExportPayload(ExportOptions{IncludeHiddenColumns: true}))
	if !slices.Equal(got, []string{"name", "role"}) {
		t.Errorf("payload columns with hidden = %v, want [name role]", got)
	}
}

func TestExportPayload_ResolvesAccessors(t *testing.T) {
	tbl, _ := newTestTable(t)
	tbl.SetData(sampleUsers(), 3)

	p := tbl.ExportPayload(ExportOptions{Title: "Staff"})
	if !slices.Equal(p.Headings(), []string{"Name", "Age", "Department"}) {
		t.Errorf("headings = %v", p.Headings())
	}
	if p.Columns[2].Field != "department.name" {
		t.Errorf("department accessor = %q, want department.name", p.Columns[2].Field)
	}
	if p.Rows[0][2] != "Cardiology" || p.Rows[1][1] != 45 {
		t.Errorf("rows = %v", p.Rows)
	}
	if p.Rows[2][2] != nil {
		t.Errorf("missing department resolved to %v, want nil", p.Rows[2][2])
	}
	if p.Title != "Staff" || p.GeneratedAt.IsZero() {
		t.Errorf("payload meta = %q, %v", p.Title, p.GeneratedAt)
	}
}

func TestExport_DefaultsAndMenuClose(t *testing.T) {
	var gotOpts ExportOptions
	var gotFormat Format
	tbl, _ := newTestTable(t, WithCallbacks(Callbacks[user]{
		OnExport: func(_ context.Context, f Format, opts ExportOptions, _ ExportPayload) error {
			gotFormat, gotOpts = f, opts
			return nil
		},
	}))
	tbl.now = func() time.Time { return time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC) }
	tbl.SetData(sampleUsers(), 3)
	tbl.OpenExportMenu()

	if err := tbl.Export(context.Background(), FormatPDF, ExportOptions{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if gotFormat != FormatPDF {
		t.Errorf("format = %q, want pdf", gotFormat)
	}
	if gotOpts.Filename != "export-2024-03-05" || gotOpts.Orientation != Landscape || gotOpts.PageSize != "A4" {
		t.Errorf("options = %+v", gotOpts)
	}
	if tbl.ExportMenuOpen() || tbl.ExportBusy() {
		t.Errorf("after export menu open = %v, busy = %v", tbl.ExportMenuOpen(), tbl.ExportBusy())
	}
}

func TestExport_RejectsReentrantTrigger(t *testing.T) {
	var tbl *Table[user]
	var inner error
	tbl, _ = newTestTable(t, WithCallbacks(Callbacks[user]{
		OnExport: func(ctx context.Context, _ Format, _ ExportOptions, _ ExportPayload) error {
			if !tbl.ExportBusy() {
				t.Error("busy flag not set during export")
			}
			inner = tbl.Export(ctx, FormatCSV, ExportOptions{})
			return nil
		},
	}))

	if err := tbl.Export(context.Background(), FormatExcel, ExportOptions{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !errors.Is(inner, ErrExportBusy) {
		t.Errorf("re-entrant Export error = %v, want ErrExportBusy", inner)
	}
	if tbl.ExportBusy() {
		t.Error("busy flag still set after export")
	}
}

func TestExport_FailureClearsBusy(t *testing.T) {
	boom := errors.New("encoder exploded")
	tbl, _ := newTestTable(t, WithCallbacks(Callbacks[user]{
		OnExport: func(context.Context, Format, ExportOptions, ExportPayload) error { return boom },
	}))
	tbl.OpenExportMenu()

	err := tbl.Export(context.Background(), FormatCSV, ExportOptions{})
	if !errors.Is(err, boom) {
		t.Errorf("Export error = %v, want wrapped encoder error", err)
	}
	if tbl.ExportBusy() || tbl.ExportMenuOpen() {
		t.Errorf("after failure busy = %v, menu open = %v", tbl.ExportBusy(), tbl.ExportMenuOpen())
	}

	// A second export is allowed once the first has failed
	if err := tbl.Export(context.Background(), FormatCSV, ExportOptions{}); errors.Is(err, ErrExportBusy) {
		t.Error("busy flag leaked into the next export")
	}
}

func TestExport_Errors(t *testing.T) {
	tbl, _ := newTestTable(t)

	if err := tbl.Export(context.Background(), FormatCSV, ExportOptions{}); !errors.Is(err, ErrExportUnavailable) {
		t.Errorf("Export without handler error = %v, want ErrExportUnavailable", err)
	}
	if err := tbl.Export(context.Background(), "docx", ExportOptions{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Export(docx) error = %v, want ErrUnknownFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"Excel", FormatExcel, false},
		{"xlsx", FormatExcel, false},
		{" pdf ", FormatPDF, false},
		{"docx", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
	if FormatExcel.Extension() != "xlsx" || FormatCSV.Extension() != "csv" {
		t.Error("unexpected extensions")
	}
}

func TestExportMenu(t *testing.T) {
	tbl, _ := newTestTable(t)

	tbl.ToggleExportMenu()
	if !tbl.ExportMenuOpen() {
		t.Error("ToggleExportMenu did not open")
	}
	tbl.CloseExportMenu()
	if tbl.ExportMenuOpen() {
		t.Error("CloseExportMenu did not close")
	}
}
