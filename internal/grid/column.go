package grid

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Placeholder is displayed for cells whose value is missing or empty.
const Placeholder = "-"

// accessorKind tags which variant an Accessor holds.
type accessorKind int

const (
	accessorNone accessorKind = iota
	accessorField
	accessorDerived
)

// Accessor reads a cell value from a row. It is either a field path
// (dot-notation, e.g. "department.name") or a derivation function.
// Construct with [Field] or [Derived].
type Accessor[T any] struct {
	kind accessorKind
	path string
	fn   func(T) any
}

// Field returns an accessor that reads the given dot-separated field path.
// Map rows are indexed by key; struct rows match the exported field name
// (case-insensitive) or its json tag.
func Field[T any](path string) Accessor[T] {
	return Accessor[T]{kind: accessorField, path: path}
}

// Derived returns an accessor that computes the value from the whole row.
func Derived[T any](fn func(row T) any) Accessor[T] {
	return Accessor[T]{kind: accessorDerived, fn: fn}
}

// IsZero reports whether the accessor was never set.
func (a Accessor[T]) IsZero() bool { return a.kind == accessorNone }

// Path returns the field path and true for field accessors.
func (a Accessor[T]) Path() (string, bool) {
	if a.kind != accessorField {
		return "", false
	}
	return a.path, true
}

// Resolve evaluates the accessor against row. The boolean is false when the
// row has no value at the field path.
func (a Accessor[T]) Resolve(row T) (any, bool) {
	switch a.kind {
	case accessorField:
		return lookupPath(row, a.path)
	case accessorDerived:
		if a.fn == nil {
			return nil, false
		}
		return a.fn(row), true
	default:
		return nil, false
	}
}

// Pin fixes a column to one edge of the table.
type Pin string

const (
	PinNone  Pin = ""
	PinLeft  Pin = "left"
	PinRight Pin = "right"
)

// Severity is the visual level of a cell warning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// CellWarning flags a cell, e.g. a value that looks wrong.
type CellWarning struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// FilterDescriptor describes how a column participates in filtering.
type FilterDescriptor struct {
	FilterID   string // Key sent to the data source, defaults to the column key
	LookupName string // Named lookup for select-style filters (e.g. "roles")
	FilterOnly bool   // Participates in filtering but is never rendered as a column
}

// Column is the immutable definition of one table column.
type Column[T any] struct {
	Key      string      // Unique within the schema
	Heading  string      // Header label
	Accessor Accessor[T] // Defaults to Field(Key)
	Numeric  bool        // Right-aligned, numeric ordering on the source side
	Sortable bool
	SortKey  string // Sent to the source when sorting, defaults to Key

	// Format turns the raw value into display text. It also receives the
	// full row for composite display logic.
	Format func(value any, row T) string

	Filter  *FilterDescriptor
	Warning func(row T) *CellWarning

	Width  string
	Pinned Pin

	// HiddenByDefault seeds the column's meta with visible=false and
	// isDefault=false so that a reset keeps it hidden.
	HiddenByDefault bool
}

// EffectiveSortKey returns SortKey, falling back to Key.
func (c Column[T]) EffectiveSortKey() string {
	if c.SortKey != "" {
		return c.SortKey
	}
	return c.Key
}

// FilterKey returns the key filters on this column are sent under.
func (c Column[T]) FilterKey() string {
	if c.Filter != nil && c.Filter.FilterID != "" {
		return c.Filter.FilterID
	}
	return c.Key
}

// FilterOnly reports whether the column exists only for filtering.
func (c Column[T]) FilterOnly() bool {
	return c.Filter != nil && c.Filter.FilterOnly
}

// Value resolves the raw cell value for row.
func (c Column[T]) Value(row T) (any, bool) {
	return c.Accessor.Resolve(row)
}

// Display returns the text shown for row in this column. Missing or empty
// values render as [Placeholder]; they never fail.
func (c Column[T]) Display(row T) string {
	raw, ok := c.Value(row)
	if c.Format != nil {
		return c.Format(raw, row)
	}
	if !ok || raw == nil {
		return Placeholder
	}
	if s := FormatValue(raw); s != "" {
		return s
	}
	return Placeholder
}

// WarningFor evaluates the column's warning function, if any.
func (c Column[T]) WarningFor(row T) *CellWarning {
	if c.Warning == nil {
		return nil
	}
	return c.Warning(row)
}

// Schema is an ordered, validated set of columns with unique keys.
type Schema[T any] struct {
	cols  []Column[T]
	index map[string]int
}

// NewSchema validates cols and returns a schema. Keys must be non-empty and
// unique. A column without an accessor reads the field named by its key.
func NewSchema[T any](cols ...Column[T]) (Schema[T], error) {
	if len(cols) == 0 {
		return Schema[T]{}, fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}

	s := Schema[T]{
		cols:  make([]Column[T], len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, col := range cols {
		if strings.TrimSpace(col.Key) == "" {
			return Schema[T]{}, &SchemaError{Reason: fmt.Sprintf("column %d has an empty key", i), Err: ErrInvalidSchema}
		}
		if _, exists := s.index[col.Key]; exists {
			return Schema[T]{}, &SchemaError{Key: col.Key, Err: ErrDuplicateColumn}
		}
		if col.Accessor.IsZero() {
			col.Accessor = Field[T](col.Key)
		}
		if col.Heading == "" {
			col.Heading = col.Key
		}
		s.cols[i] = col
		s.index[col.Key] = i
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Use it for package-level schema definitions.
func MustSchema[T any](cols ...Column[T]) Schema[T] {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(fmt.Sprintf("grid: %v", err))
	}
	return s
}

// Len returns the number of columns.
func (s Schema[T]) Len() int { return len(s.cols) }

// Columns returns a copy of the columns in schema order.
func (s Schema[T]) Columns() []Column[T] {
	return append([]Column[T](nil), s.cols...)
}

// Column returns the column with the given key.
func (s Schema[T]) Column(key string) (Column[T], bool) {
	i, ok := s.index[key]
	if !ok {
		return Column[T]{}, false
	}
	return s.cols[i], true
}

// Keys returns the column keys in schema order.
func (s Schema[T]) Keys() []string {
	keys := make([]string, len(s.cols))
	for i, c := range s.cols {
		keys[i] = c.Key
	}
	return keys
}

// lookupPath resolves a dot-separated path against maps and structs.
func lookupPath(row any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	cur := row
	for _, seg := range strings.Split(path, ".") {
		// Fast path for the common decoded-JSON / SQL row shape
		if m, ok := cur.(map[string]any); ok {
			v, found := m[seg]
			if !found {
				return nil, false
			}
			cur = v
			continue
		}

		v := reflect.ValueOf(cur)
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}

		switch v.Kind() {
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv.Interface()

		case reflect.Struct:
			fv, ok := structField(v, seg)
			if !ok {
				return nil, false
			}
			cur = fv.Interface()

		default:
			return nil, false
		}
	}
	return cur, true
}

// structField finds an exported field by json tag or case-insensitive name.
func structField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name || strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// FormatValue renders a raw value as plain text for display and export.
// Nil renders as the empty string.
func FormatValue(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val

	case bool:
		if val {
			return "Yes"
		}
		return "No"

	case float64:
		return formatFloat(val)

	case float32:
		return formatFloat(float64(val))

	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04")

	case *time.Time:
		if val == nil {
			return ""
		}
		return FormatValue(*val)

	case fmt.Stringer:
		return val.String()

	case []string:
		return strings.Join(val, ", ")

	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = FormatValue(p)
		}
		return strings.Join(parts, ", ")

	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatFloat prints whole numbers without decimals and everything else
// with two decimal places.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}
