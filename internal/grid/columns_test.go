package grid

import (
	"errors"
	"testing"
)

func TestNewSchema_Validation(t *testing.T) {
	if _, err := NewSchema[user](); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("empty schema error = %v, want ErrInvalidSchema", err)
	}
	if _, err := NewSchema(Column[user]{Key: " "}); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("blank key error = %v, want ErrInvalidSchema", err)
	}
	_, err := NewSchema(Column[user]{Key: "name"}, Column[user]{Key: "name"})
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("duplicate key error = %v, want ErrDuplicateColumn", err)
	}

	s, err := NewSchema(Column[user]{Key: "name"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	col, _ := s.Column("name")
	if col.Heading != "name" {
		t.Errorf("default Heading = %q, want name", col.Heading)
	}
	if path, ok := col.Accessor.Path(); !ok || path != "name" {
		t.Errorf("default accessor = (%q, %v), want field name", path, ok)
	}
}

func TestColumnRegistry_SeedsExplicitDefaults(t *testing.T) {
	tbl, _ := newTestTable(t)
	cols := tbl.Columns()

	want := map[string]bool{"name": true, "age": true, "department": true, "email": false, "role": false}
	for key, visible := range want {
		m, ok := cols.Meta(key)
		if !ok {
			t.Errorf("no meta seeded for %q", key)
			continue
		}
		if m.Visible != visible || m.IsDefault != visible {
			t.Errorf("meta %q = %+v, want visible=isDefault=%v", key, m, visible)
		}
	}
	if cols.Len() != 4 || cols.VisibleCount() != 3 {
		t.Errorf("VisibleCount/Len = %d/%d, want 3/4", cols.VisibleCount(), cols.Len())
	}
}

func TestColumnRegistry_ResetRestoresRecordedDefaults(t *testing.T) {
	tbl, _ := newTestTable(t)
	cols := tbl.Columns()

	// Scramble visibility, including making a default-visible column the default-hidden one
	_ = cols.Toggle("name")
	_ = cols.Toggle("email")
	hidden := false
	_ = cols.Update("age", MetaPatch{IsDefault: &hidden})

	cols.ResetToDefault()

	want := map[string]bool{"name": true, "age": false, "department": true, "email": false}
	for key, visible := range want {
		if cols.IsVisible(key) != visible {
			t.Errorf("after reset %q visible = %v, want %v", key, cols.IsVisible(key), visible)
		}
	}
}

func TestColumnRegistry_UnknownKey(t *testing.T) {
	tbl, _ := newTestTable(t)

	err := tbl.Columns().Toggle("emial")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("Toggle unknown error = %v, want ErrUnknownColumn", err)
	}
	var se *SchemaError
	if !errors.As(err, &se) || se.Suggestion != "email" {
		t.Errorf("suggestion = %+v, want email", se)
	}

	if !tbl.Columns().IsVisible("not-a-column") {
		t.Error("IsVisible(unknown) = false, want true")
	}
}

func TestColumn_Display(t *testing.T) {
	deptCol := Column[user]{Key: "department", Accessor: Field[user]("department.name")}
	age := Column[user]{Key: "age", Accessor: Field[user]("age"), Format: func(v any, u user) string {
		return u.Name + ":" + FormatValue(v)
	}}
	initials := Column[user]{Key: "initials", Accessor: Derived(func(u user) any { return u.Name[:1] })}
	missing := Column[user]{Key: "phone", Accessor: Field[user]("phone")}

	withDept := user{Name: "Ada", Age: 36, Dept: &dept{Name: "Cardiology"}}
	noDept := user{Name: "Linus", Age: 28}

	tests := []struct {
		name string
		col  Column[user]
		row  user
		want string
	}{
		{"nested field", deptCol, withDept, "Cardiology"},
		{"nil pointer degrades", deptCol, noDept, Placeholder},
		{"formatter gets row", age, withDept, "Ada:36"},
		{"derived", initials, noDept, "L"},
		{"missing field degrades", missing, withDept, Placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.col.Display(tt.row); got != tt.want {
				t.Errorf("Display = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "Yes"},
		{false, "No"},
		{float64(3), "3"},
		{3.14159, "3.14"},
		{42, "42"},
		{[]string{"a", "b"}, "a, b"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
