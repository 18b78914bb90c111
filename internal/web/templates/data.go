// Package templates renders the HTML views of the web host as templ
// components.
package templates

//go:generate templ generate

import (
	"encoding/json"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

// HTMXScript is loaded by every page. The CSP in the server allows its origin.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

// htmxConfig swaps error responses too, so alerts reach #alerts.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`

// FilterColumn is one entry of the filter form's column picker.
type FilterColumn struct {
	Key       string
	Heading   string
	Operators []grid.Operator
}

// TableData is everything the table fragment renders.
type TableData struct {
	Info    dataset.Info
	Base    string // URL prefix of the table's endpoints, e.g. /table/users
	View    grid.View[dataset.Row]
	RowIDs  []string
	Columns []FilterColumn
}

func (d TableData) rowID(i int) string {
	if i < len(d.RowIDs) {
		return d.RowIDs[i]
	}
	return ""
}

// FilterLabel is the chip text of f: its label, or "column operator value".
func FilterLabel(f grid.Filter) string {
	if f.Label != "" {
		return f.Label
	}
	switch f.Operator {
	case grid.OpIsNull, grid.OpIsNotNull:
		return f.ColumnID + " " + strings.ToLower(f.Operator.Label())
	}
	return f.ColumnID + " " + strings.ToLower(f.Operator.Label()) + " " + f.Value.String()
}

type datasetGroup struct {
	Name  string
	Items []dataset.Info
}

// groupDatasets splits datasets into runs sharing a group, keeping order.
func groupDatasets(datasets []dataset.Info) []datasetGroup {
	var groups []datasetGroup
	for _, d := range datasets {
		if n := len(groups); n > 0 && groups[n-1].Name == d.Group {
			groups[n-1].Items = append(groups[n-1].Items, d)
			continue
		}
		groups = append(groups, datasetGroup{Name: d.Group, Items: []dataset.Info{d}})
	}
	return groups
}

func tableURL(key string) templ.SafeURL {
	return templ.URL("/table/" + key)
}

// exportURL points at the JSON API's download route for the table at base.
func exportURL(base string, f grid.Format, scope string) templ.SafeURL {
	api := strings.Replace(base, "/table/", "/api/table/", 1)
	return templ.URL(api + "/export/" + string(f) + "?scope=" + scope)
}

// hxVals encodes a single hx-vals parameter.
func hxVals(name, value string) string {
	raw, _ := json.Marshal(map[string]string{name: value})
	return string(raw)
}

func headerClass(hd grid.HeaderView) string {
	var cls []string
	if hd.Numeric {
		cls = append(cls, "num")
	}
	if hd.Pinned != grid.PinNone {
		cls = append(cls, "pin-"+string(hd.Pinned))
	}
	return strings.Join(cls, " ")
}

// cellClass aligns numbers and repeats the pinning of header j.
func cellClass(headers []grid.HeaderView, j int, cell grid.CellView) string {
	var cls []string
	if cell.Numeric {
		cls = append(cls, "num")
	}
	if j < len(headers) && headers[j].Pinned != grid.PinNone {
		cls = append(cls, "pin-"+string(headers[j].Pinned))
	}
	return strings.Join(cls, " ")
}

func ariaSort(d grid.Direction) string {
	switch d {
	case grid.Asc:
		return "ascending"
	case grid.Desc:
		return "descending"
	}
	return "none"
}

func sortArrow(d grid.Direction) string {
	switch d {
	case grid.Asc:
		return " ▲"
	case grid.Desc:
		return " ▼"
	}
	return ""
}

// operatorUnion lists every operator any filterable column supports, in
// first-seen order.
func operatorUnion(cols []FilterColumn) []grid.Operator {
	seen := make(map[grid.Operator]bool)
	var out []grid.Operator
	for _, c := range cols {
		for _, op := range c.Operators {
			if !seen[op] {
				seen[op] = true
				out = append(out, op)
			}
		}
	}
	return out
}
