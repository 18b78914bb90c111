// Package dataset describes the tables a host can browse: their column
// schema for the grid engine, and the SQL a row source needs to fetch them.
//
// Definitions are registered at init time (see the tables subpackage) and
// looked up by key, mirroring how handlers resolve a dataset from a URL.
package dataset

import (
	"fmt"

	"github.com/JonMunkholm/tableview/internal/grid"
)

// Row is one fetched record. Keys are field names; a dotted field name such
// as "department.name" is stored as a nested map so grid field paths resolve
// against it.
type Row = map[string]any

// Info identifies a dataset for navigation.
type Info struct {
	Key         string // Unique identifier: "users"
	Group       string // Navigation group: "Directory"
	Label       string // Display name: "Users"
	Description string
}

// Field is one selectable value of a dataset.
type Field struct {
	Name string        // Result key, dotted for nested values
	Expr string        // SQL expression producing the value
	Type grid.DataType // Drives operator choice and value decoding
}

// Seed is demo data inserted into an empty table.
type Seed struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Definition is everything needed to present and fetch one dataset.
type Definition struct {
	Info Info

	// From is the FROM clause body, joins included.
	From string

	// Fields are the values a query may select, sort and filter on. Sort
	// keys and filter keys of the schema must name one of them.
	Fields []Field

	// IDField names the field that identifies a row (default: "id").
	IDField string

	// DefaultOrder keeps paging stable when no sort is active.
	DefaultOrder string

	Schema grid.Schema[Row]

	// DDL creates the backing tables. Statements must run on both
	// PostgreSQL and SQLite.
	DDL   []string
	Seeds []Seed
}

// Field returns the field with the given name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the names of all fields in order.
func (d Definition) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// idField returns IDField, falling back to "id".
func (d Definition) idField() string {
	if d.IDField != "" {
		return d.IDField
	}
	return "id"
}

// Identity returns the row identity used by the grid selection.
func (d Definition) Identity() grid.IdentityFunc[Row] {
	key := d.idField()
	return func(row Row) any { return row[key] }
}

// NewTable builds a grid table for the dataset. The identity option comes
// first so callers can still override it.
func (d Definition) NewTable(opts ...grid.Option[Row]) (*grid.Table[Row], error) {
	all := append([]grid.Option[Row]{grid.WithIdentity(d.Identity())}, opts...)
	tbl, err := grid.New(d.Schema, all...)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", d.Info.Key, err)
	}
	return tbl, nil
}

// FieldFor maps a column key to the field a source sorts or filters on.
// Filter keys win over plain keys for filter lookups.
func (d Definition) FieldFor(columnKey string, forFilter bool) (Field, bool) {
	name := columnKey
	if col, ok := d.Schema.Column(columnKey); ok {
		if forFilter {
			name = col.FilterKey()
		} else {
			name = col.EffectiveSortKey()
		}
	}
	return d.Field(name)
}

// Validate checks the definition is internally consistent.
func (d Definition) Validate() error {
	if d.Info.Key == "" {
		return fmt.Errorf("dataset key is required")
	}
	if d.From == "" {
		return fmt.Errorf("dataset %s: from clause is required", d.Info.Key)
	}
	if d.Schema.Len() == 0 {
		return fmt.Errorf("dataset %s: schema has no columns", d.Info.Key)
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" || f.Expr == "" {
			return fmt.Errorf("dataset %s: field needs a name and an expression", d.Info.Key)
		}
		if seen[f.Name] {
			return fmt.Errorf("dataset %s: duplicate field %q", d.Info.Key, f.Name)
		}
		seen[f.Name] = true
	}
	if !seen[d.idField()] {
		return fmt.Errorf("dataset %s: id field %q is not selected", d.Info.Key, d.idField())
	}
	for _, col := range d.Schema.Columns() {
		if col.Sortable && !seen[col.EffectiveSortKey()] {
			return fmt.Errorf("dataset %s: sort key %q of column %q is not a field", d.Info.Key, col.EffectiveSortKey(), col.Key)
		}
		if col.Filter != nil && !seen[col.FilterKey()] {
			return fmt.Errorf("dataset %s: filter key %q of column %q is not a field", d.Info.Key, col.FilterKey(), col.Key)
		}
	}
	return nil
}
