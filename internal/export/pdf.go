package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/JonMunkholm/tableview/internal/grid"
)

// Document layout, in millimetres.
const (
	pdfMargin    = 14.0
	pdfTopMargin = 10.0
	pdfRowHeight = 6.0
	pdfCellPad   = 2.0
)

// EncodePDF writes a paginated table document: optional title and subtitle,
// a "Generated:" timestamp, then the table with a dark header row repeated
// on every page and striped body rows.
func EncodePDF(w io.Writer, opts grid.ExportOptions, payload grid.ExportPayload) error {
	opts = opts.WithDefaults(payload.GeneratedAt)

	orientation := "L"
	if opts.Orientation == grid.Portrait {
		orientation = "P"
	}
	pdf := fpdf.New(orientation, "mm", opts.PageSize, "")
	pdf.SetMargins(pdfMargin, pdfTopMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfTopMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	y := pdfTopMargin
	if title := firstNonEmpty(opts.Title, payload.Title); title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(pdfMargin, y+4, tr(title))
		y += 8
	}
	if subtitle := firstNonEmpty(opts.Subtitle, payload.Subtitle); subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Text(pdfMargin, y+4, tr(subtitle))
		y += 8
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(pdfMargin, y+4, "Generated: "+payload.GeneratedAt.Format("2006-01-02 15:04:05"))
	y += 8
	pdf.SetY(y)

	if len(payload.Columns) == 0 {
		return output(pdf, w)
	}

	pageW, pageH := pdf.GetPageSize()
	colW := (pageW - 2*pdfMargin) / float64(len(payload.Columns))
	headings := payload.Headings()

	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(66, 66, 66)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range headings {
			pdf.CellFormat(colW, pdfRowHeight, tr(fitText(pdf, h, colW)), "", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	for i, cells := range payload.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-pdfTopMargin {
			pdf.AddPage()
			header()
		}

		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(245, 245, 245)
		}
		for j, col := range payload.Columns {
			text := ""
			if j < len(cells) {
				text = grid.FormatValue(cells[j])
			}
			align := "L"
			if col.Numeric {
				align = "R"
			}
			pdf.CellFormat(colW, pdfRowHeight, tr(fitText(pdf, text, colW)), "", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf, w)
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// fitText truncates s with an ellipsis so it fits in a cell of width w.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 2*pdfCellPad
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return strings.TrimSpace(string(r)) + "..."
}
