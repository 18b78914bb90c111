package grid

import (
	"io"
	"log/slog"
	"testing"
)

type dept struct {
	Name string `json:"name"`
}

type user struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
	Dept  *dept  `json:"department"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// userSchema has one hidden-by-default column and one filter-only column.
func userSchema(t *testing.T) Schema[user] {
	t.Helper()

	s, err := NewSchema(
		Column[user]{Key: "name", Heading: "Name", Sortable: true},
		Column[user]{Key: "age", Heading: "Age", Numeric: true, Sortable: true, SortKey: "age_years"},
		Column[user]{Key: "department", Heading: "Department", Accessor: Field[user]("department.name")},
		Column[user]{Key: "email", Heading: "Email", HiddenByDefault: true},
		Column[user]{Key: "role", Heading: "Role", Filter: &FilterDescriptor{LookupName: "roles", FilterOnly: true}},
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}
	return s
}

type recorder struct {
	sorts      []*SortState
	filters    [][]Filter
	pages      [][2]int
	selections [][]user
	reloads    []Query
}

func (r *recorder) callbacks() Callbacks[user] {
	return Callbacks[user]{
		OnSort:            func(s *SortState) { r.sorts = append(r.sorts, s) },
		OnFilter:          func(f []Filter) { r.filters = append(r.filters, f) },
		OnPageChange:      func(page, size int) { r.pages = append(r.pages, [2]int{page, size}) },
		OnSelectionChange: func(sel []user) { r.selections = append(r.selections, sel) },
		OnReload:          func(q Query) { r.reloads = append(r.reloads, q) },
	}
}

func (r *recorder) lastReload(t *testing.T) Query {
	t.Helper()
	if len(r.reloads) == 0 {
		t.Fatal("no reload recorded")
	}
	return r.reloads[len(r.reloads)-1]
}

func newTestTable(t *testing.T, opts ...Option[user]) (*Table[user], *recorder) {
	t.Helper()

	rec := &recorder{}
	all := append([]Option[user]{WithLogger[user](quietLogger()), WithCallbacks(rec.callbacks())}, opts...)
	tbl, err := New(userSchema(t), all...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tbl, rec
}

func sampleUsers() []user {
	return []user{
		{ID: 1, Name: "Ada", Age: 36, Email: "ada@example.com", Dept: &dept{Name: "Cardiology"}},
		{ID: 2, Name: "Grace", Age: 45, Email: "grace@example.com", Dept: &dept{Name: "Radiology"}},
		{ID: 3, Name: "Linus", Age: 28, Email: "linus@example.com"},
	}
}
