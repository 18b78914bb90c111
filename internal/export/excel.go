package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tableview/internal/grid"
)

const sheetName = "Sheet1"

// EncodeExcel writes an .xlsx workbook with a single sheet. When a title is
// set it occupies the first row, merged across every column; the subtitle
// follows, then one blank spacer row before the header.
func EncodeExcel(w io.Writer, opts grid.ExportOptions, payload grid.ExportPayload) error {
	f := excelize.NewFile()
	defer f.Close()

	title := firstNonEmpty(opts.Title, payload.Title)
	subtitle := firstNonEmpty(opts.Subtitle, payload.Subtitle)
	ncols := max(len(payload.Columns), 1)

	row := 1
	if title != "" {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
		if err != nil {
			return fmt.Errorf("title style: %w", err)
		}
		if err := setRow(f, row, []any{title}); err != nil {
			return err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(ncols, row)
		if ncols > 1 {
			if err := f.MergeCell(sheetName, first, last); err != nil {
				return fmt.Errorf("merge title: %w", err)
			}
		}
		if err := f.SetCellStyle(sheetName, first, last, style); err != nil {
			return fmt.Errorf("apply title style: %w", err)
		}
		row++
	}
	if subtitle != "" {
		if err := setRow(f, row, []any{subtitle}); err != nil {
			return err
		}
		row++
	}
	if title != "" || subtitle != "" {
		row++
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	headings := make([]any, len(payload.Columns))
	for i, h := range payload.Headings() {
		headings[i] = h
	}
	if err := setRow(f, row, headings); err != nil {
		return err
	}
	if len(headings) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(headings), row)
		if err := f.SetCellStyle(sheetName, first, last, headerStyle); err != nil {
			return fmt.Errorf("apply header style: %w", err)
		}
	}
	row++

	for _, cells := range payload.Rows {
		values := make([]any, len(payload.Columns))
		for i := range values {
			if i < len(cells) {
				values[i] = excelValue(cells[i])
			}
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// excelValue keeps the types excelize stores natively and renders
// everything else as text.
func excelValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return val
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val
	default:
		return grid.FormatValue(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
