package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tableview/internal/grid"
)

func samplePayload() grid.ExportPayload {
	return grid.ExportPayload{
		Columns: []grid.ExportColumn{
			{Key: "name", Heading: "Name", Field: "name"},
			{Key: "age", Heading: "Age", Field: "age", Numeric: true},
			{Key: "active", Heading: "Active"},
		},
		Rows: [][]any{
			{"Ada, Countess", 36, true},
			{"Linus", 28.5, false},
			{nil, nil, nil},
		},
		GeneratedAt: time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, grid.ExportOptions{Title: "ignored"}, samplePayload()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Name", "Age", "Active"},
		{"Ada, Countess", "36", "Yes"},
		{"Linus", "28.50", "No"},
		{"", "", ""},
	}, records)
}

func TestEncodeExcel_TitleRows(t *testing.T) {
	var buf bytes.Buffer
	opts := grid.ExportOptions{Title: "Staff", Subtitle: "All departments"}
	require.NoError(t, EncodeExcel(&buf, opts, samplePayload()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		return v
	}
	require.Equal(t, "Staff", get("A1"))
	require.Equal(t, "All departments", get("A2"))
	require.Equal(t, "", get("A3"))
	require.Equal(t, "Name", get("A4"))
	require.Equal(t, "Active", get("C4"))
	require.Equal(t, "Ada, Countess", get("A5"))
	require.Equal(t, "36", get("B5"))

	merges, err := f.GetMergeCells(sheetName)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	require.Equal(t, "A1", merges[0].GetStartAxis())
	require.Equal(t, "C1", merges[0].GetEndAxis())
}

func TestEncodeExcel_NoTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeExcel(&buf, grid.ExportOptions{}, samplePayload()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	require.Equal(t, "Name", v)
}

func TestEncodePDF(t *testing.T) {
	payload := samplePayload()
	for i := 0; i < 120; i++ {
		payload.Rows = append(payload.Rows, []any{"Row", i, i%2 == 0})
	}

	for _, orientation := range []grid.Orientation{grid.Landscape, grid.Portrait} {
		var buf bytes.Buffer
		opts := grid.ExportOptions{Title: "Staff", Orientation: orientation, PageSize: "A4"}
		require.NoError(t, EncodePDF(&buf, opts, payload))
		require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output is not a PDF")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(grid.FormatCSV, EncoderFunc(EncodeCSV))

	require.Equal(t, []grid.Format{grid.FormatCSV}, r.Formats())
	require.Panics(t, func() { r.Register(grid.FormatCSV, EncoderFunc(EncodeCSV)) })

	err := r.Encode(io.Discard, grid.FormatPDF, grid.ExportOptions{}, samplePayload())
	require.ErrorIs(t, err, grid.ErrUnknownFormat)

	for _, f := range grid.Formats {
		_, ok := Default.Get(f)
		require.True(t, ok, "default registry missing %s", f)
	}
}

func TestFilename(t *testing.T) {
	require.Equal(t, "export-2024-03-05.xlsx", Filename(grid.ExportOptions{Filename: "export-2024-03-05"}, grid.FormatExcel))
	require.Equal(t, "export.csv", Filename(grid.ExportOptions{}, grid.FormatCSV))
	require.Equal(t, "a_b.pdf", Filename(grid.ExportOptions{Filename: "a/b"}, grid.FormatPDF))
}

var errEncode = errors.New("encoder failed")

func failingRegistry() *Registry {
	r := NewRegistry()
	r.Register(grid.FormatCSV, EncoderFunc(func(w io.Writer, _ grid.ExportOptions, _ grid.ExportPayload) error {
		_, _ = w.Write([]byte("partial"))
		return errEncode
	}))
	return r
}

func TestWriterFunc(t *testing.T) {
	fn := WriterFunc(Default)

	err := fn(context.Background(), grid.FormatCSV, grid.ExportOptions{}, samplePayload())
	require.ErrorIs(t, err, ErrNoWriter)

	var buf bytes.Buffer
	ctx := ContextWithWriter(context.Background(), &buf)
	require.NoError(t, fn(ctx, grid.FormatCSV, grid.ExportOptions{}, samplePayload()))
	require.True(t, strings.HasPrefix(buf.String(), "Name,Age,Active"))

	buf.Reset()
	err = WriterFunc(failingRegistry())(ctx, grid.FormatCSV, grid.ExportOptions{}, samplePayload())
	require.ErrorIs(t, err, errEncode)
	require.Zero(t, buf.Len(), "failed export wrote partial output")
}

func TestFileFunc(t *testing.T) {
	dir := t.TempDir()
	var written []string
	fn := FileFunc(Default, dir, func(p string) { written = append(written, p) })

	opts := grid.ExportOptions{Filename: "staff"}
	require.NoError(t, fn(context.Background(), grid.FormatCSV, opts, samplePayload()))
	require.Equal(t, []string{filepath.Join(dir, "staff.csv")}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "Ada, Countess")

	err = FileFunc(failingRegistry(), dir, nil)(context.Background(), grid.FormatCSV, grid.ExportOptions{Filename: "broken"}, samplePayload())
	require.ErrorIs(t, err, errEncode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "failed export left files behind")
}

func TestTableExportThroughWriter(t *testing.T) {
	type row struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	schema := grid.MustSchema(grid.Column[row]{Key: "name", Heading: "Name"})
	tbl, err := grid.New(schema, grid.WithCallbacks(grid.Callbacks[row]{OnExport: WriterFunc(Default)}))
	require.NoError(t, err)
	tbl.SetData([]row{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Grace"}}, 2)

	var buf bytes.Buffer
	require.NoError(t, tbl.Export(ContextWithWriter(context.Background(), &buf), grid.FormatCSV, grid.ExportOptions{}))
	require.Equal(t, "Name\nAda\nGrace\n", buf.String())
}

func TestSubtitle(t *testing.T) {
	tests := []struct {
		rows, filters int
		want          string
	}{
		{1, 0, "1 row"},
		{1204, 1, "1,204 rows, 1 filter applied"},
		{0, 3, "0 rows, 3 filters applied"},
	}
	for _, tt := range tests {
		if got := Subtitle(tt.rows, tt.filters); got != tt.want {
			t.Errorf("Subtitle(%d, %d) = %q, want %q", tt.rows, tt.filters, got, tt.want)
		}
	}
}
