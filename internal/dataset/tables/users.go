package tables

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

func init() {
	registerUsers()
}

func registerUsers() {
	dataset.Register(dataset.Definition{
		Info: dataset.Info{
			Key:         "users",
			Group:       "Directory",
			Label:       "Users",
			Description: "Staff accounts with their department and role",
		},
		From: "users u LEFT JOIN departments d ON d.id = u.department_id",
		Fields: []dataset.Field{
			{Name: "id", Expr: "u.id", Type: grid.TypeNumber},
			{Name: "name", Expr: "u.name", Type: grid.TypeString},
			{Name: "email", Expr: "u.email", Type: grid.TypeString},
			{Name: "age_years", Expr: "u.age", Type: grid.TypeNumber},
			{Name: "salary", Expr: "u.salary", Type: grid.TypeNumber},
			{Name: "role", Expr: "u.role", Type: grid.TypeString},
			{Name: "department.name", Expr: "d.name", Type: grid.TypeString},
			{Name: "joined", Expr: "u.joined", Type: grid.TypeDate},
			{Name: "active", Expr: "u.active", Type: grid.TypeBoolean},
		},
		DefaultOrder: "u.id",
		Schema: grid.MustSchema(
			grid.Column[dataset.Row]{
				Key: "name", Heading: "Name", Sortable: true, Pinned: grid.PinLeft,
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "age", Heading: "Age", Numeric: true, Sortable: true, SortKey: "age_years",
				Accessor: grid.Field[dataset.Row]("age_years"),
				Filter:   &grid.FilterDescriptor{FilterID: "age_years"},
			},
			grid.Column[dataset.Row]{
				Key: "department", Heading: "Department", Sortable: true, SortKey: "department.name",
				Accessor: grid.Field[dataset.Row]("department.name"),
				Filter:   &grid.FilterDescriptor{FilterID: "department.name", LookupName: "departments"},
			},
			grid.Column[dataset.Row]{
				Key: "salary", Heading: "Salary", Numeric: true, Sortable: true,
				Format: func(v any, _ dataset.Row) string { return currency(v) },
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "joined", Heading: "Joined", Sortable: true,
				Format: func(v any, _ dataset.Row) string { return isoDate(v) },
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "status", Heading: "Status",
				Accessor: grid.Derived(func(row dataset.Row) any {
					if active, _ := row["active"].(bool); active {
						return "Active"
					}
					return "Inactive"
				}),
				Warning: func(row dataset.Row) *grid.CellWarning {
					if active, _ := row["active"].(bool); !active {
						return &grid.CellWarning{Message: "Account is disabled", Severity: grid.SeverityInfo}
					}
					return nil
				},
			},
			grid.Column[dataset.Row]{
				Key: "email", Heading: "Email", HiddenByDefault: true,
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "role", Heading: "Role",
				Filter: &grid.FilterDescriptor{LookupName: "roles", FilterOnly: true},
			},
		),
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT,
				age INTEGER,
				salary DOUBLE PRECISION,
				role TEXT,
				department_id INTEGER,
				joined TEXT,
				active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
		},
		Seeds: []dataset.Seed{{
			Table:   "users",
			Columns: []string{"id", "name", "email", "age", "salary", "role", "department_id", "joined", "active"},
			Rows:    userSeedRows(),
		}},
	})
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Margaret", "Alan", "Barbara", "Dennis", "Frances", "Ken"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Hamilton", "Turing", "Liskov", "Ritchie", "Allen", "Thompson"}
	roles      = []string{"admin", "clinician", "analyst", "viewer"}
)

// userSeedRows builds 47 deterministic users: enough for several pages at
// the default page size with a short last page.
func userSeedRows() [][]any {
	const count = 47
	base := time.Date(2018, time.January, 15, 0, 0, 0, 0, time.UTC)

	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		name := first + " " + last

		// Every seventh user has no department, exercising missing values.
		var dept any = (i % 5) + 1
		if i%7 == 6 {
			dept = nil
		}

		rows = append(rows, []any{
			i + 1,
			name,
			fmt.Sprintf("%s.%s%d@example.org", strings.ToLower(first), strings.ToLower(last), i+1),
			24 + (i*7)%40,
			52000.0 + float64((i*3719)%61000),
			roles[i%len(roles)],
			dept,
			base.AddDate(0, i*2, i%28).Format(time.DateOnly),
			i%9 != 4,
		})
	}
	return rows
}
