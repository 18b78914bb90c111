// This file contains shared request parsing and response helpers.
package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
	"github.com/JonMunkholm/tableview/internal/logging"
)

// maxBodySize bounds request bodies. Mutations carry a few small fields.
const maxBodySize = 64 * 1024

// input is a flat view over a request's parameters. JSON bodies and form
// submissions (HTMX) are read the same way.
type input struct {
	json map[string]json.RawMessage
	form map[string][]string
}

func readInput(w http.ResponseWriter, r *http.Request) (input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var in input
		if err := json.NewDecoder(r.Body).Decode(&in.json); err != nil && err != io.EOF {
			return input{}, badRequest("malformed JSON body: %v", err)
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return input{}, badRequest("malformed form: %v", err)
	}
	return input{form: r.Form}, nil
}

// has reports whether name was supplied.
func (in input) has(name string) bool {
	if _, ok := in.json[name]; ok {
		return true
	}
	_, ok := in.form[name]
	return ok
}

func (in input) text(name string) string {
	if raw, ok := in.json[name]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return strings.Trim(string(raw), `"`)
	}
	if vals := in.form[name]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

func (in input) number(name string) (int, error) {
	s := in.text(name)
	if s == "" {
		return 0, badRequest("%s is required", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest("%s must be a whole number", name)
	}
	return n, nil
}

// raw returns the JSON form of name, for typed decoding.
func (in input) raw(name string) (json.RawMessage, bool) {
	raw, ok := in.json[name]
	return raw, ok
}

// formValue converts a form string into a filter value typed by the
// dataset field it targets.
func formValue(s string, typ grid.DataType) (grid.Value, error) {
	switch typ {
	case grid.TypeNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return grid.Value{}, badRequest("%q is not a number", s)
		}
		return grid.NumberValue(f), nil
	case grid.TypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return grid.Value{}, badRequest("%q is not true or false", s)
		}
		return grid.BoolValue(b), nil
	case grid.TypeDate:
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return grid.Value{}, badRequest("%q is not a date (YYYY-MM-DD)", s)
		}
		return grid.TimeValue(t), nil
	default:
		return grid.TextValue(s), nil
	}
}

// filterFromInput builds a filter from a request. JSON bodies carry the
// filter's wire form; forms carry columnId, operator, value and, for
// between, valueTo. Lists for "in" are comma separated.
func filterFromInput(in input, def dataset.Definition) (grid.Filter, error) {
	if in.json != nil {
		raw, err := json.Marshal(in.json)
		if err != nil {
			return grid.Filter{}, badRequest("malformed filter")
		}
		var f grid.Filter
		if err := json.Unmarshal(raw, &f); err != nil {
			return grid.Filter{}, badRequest("malformed filter: %v", err)
		}
		return f, checkFilterColumn(def, f.ColumnID)
	}

	col := in.text("columnId")
	if err := checkFilterColumn(def, col); err != nil {
		return grid.Filter{}, err
	}
	field, _ := def.FieldFor(col, true)
	op := grid.Operator(in.text("operator"))

	b := grid.NewFilterBuilder().ForColumn(col).WithOperator(op)
	if label := in.text("label"); label != "" {
		b.WithLabel(label)
	}

	switch op {
	case grid.OpIsNull, grid.OpIsNotNull:
		b.WithValue(grid.BoolValue(true))
	case grid.OpIn:
		var items []grid.Value
		for _, part := range strings.Split(in.text("value"), ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			v, err := formValue(part, field.Type)
			if err != nil {
				return grid.Filter{}, err
			}
			items = append(items, v)
		}
		b.WithValue(grid.ListValue(items...))
	case grid.OpBetween:
		lo, err := formValue(in.text("value"), field.Type)
		if err != nil {
			return grid.Filter{}, err
		}
		hi, err := formValue(in.text("valueTo"), field.Type)
		if err != nil {
			return grid.Filter{}, err
		}
		b.WithValue(grid.RangeValue(lo, hi))
	default:
		if s := in.text("value"); s != "" {
			v, err := formValue(s, field.Type)
			if err != nil {
				return grid.Filter{}, err
			}
			b.WithValue(v)
		}
	}
	return b.Build()
}

// filterPatchFromInput reads the optional fields of a filter update.
func filterPatchFromInput(in input, def dataset.Definition) (grid.FilterPatch, error) {
	var patch grid.FilterPatch

	if in.has("columnId") {
		col := in.text("columnId")
		if err := checkFilterColumn(def, col); err != nil {
			return patch, err
		}
		patch.ColumnID = &col
	}
	if in.has("operator") {
		op := grid.Operator(in.text("operator"))
		patch.Operator = &op
	}
	if raw, ok := in.raw("value"); ok {
		var v grid.Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return patch, badRequest("malformed filter value: %v", err)
		}
		patch.Value = &v
	}
	if in.has("label") {
		label := in.text("label")
		patch.Label = &label
	}
	for name, dst := range map[string]**bool{"disabled": &patch.Disabled, "isTemporary": &patch.Temporary} {
		if !in.has(name) {
			continue
		}
		b, err := strconv.ParseBool(in.text(name))
		if err != nil {
			return patch, badRequest("%s must be true or false", name)
		}
		*dst = &b
	}
	return patch, nil
}

// checkFilterColumn rejects filters on columns the dataset cannot filter.
func checkFilterColumn(def dataset.Definition, key string) error {
	if key == "" {
		return badRequest("columnId is required")
	}
	if _, ok := def.FieldFor(key, true); !ok {
		return &grid.SchemaError{Key: key, Reason: "no filterable field", Err: grid.ErrUnknownColumn}
	}
	return nil
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// parseBoolParam parses a boolean query parameter with a default value.
func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return defaultVal
	}
	return b
}

// render writes components as one HTML response.
func render(w http.ResponseWriter, r *http.Request, components ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, c := range components {
		if err := c.Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render error", "error", err)
			return
		}
	}
}
