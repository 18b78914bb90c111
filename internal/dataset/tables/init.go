// Package tables registers all dataset definitions with the dataset registry.
// Import this package to ensure all datasets are registered.
package tables

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Each dataset file uses init() to register itself.

// currency renders a number with thousands separators, e.g. "$84,500.00".
func currency(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return "-"
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// isoDate renders dates as YYYY-MM-DD.
func isoDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Format(time.DateOnly)
	case string:
		if t == "" {
			return "-"
		}
		return t
	case nil:
		return "-"
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
