package export

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/tableview/internal/grid"
)

// EncodeCSV writes the headings followed by one record per row. Cells are
// rendered with grid.FormatValue; title and subtitle are not part of the
// CSV output.
func EncodeCSV(w io.Writer, _ grid.ExportOptions, payload grid.ExportPayload) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(payload.Headings()); err != nil {
		return err
	}

	const flushInterval = 1000
	record := make([]string, len(payload.Columns))
	for i, row := range payload.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = grid.FormatValue(row[j])
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}

		if (i+1)%flushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
