package tables

import (
	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

func init() {
	registerDepartments()
}

func registerDepartments() {
	dataset.Register(dataset.Definition{
		Info: dataset.Info{
			Key:         "departments",
			Group:       "Directory",
			Label:       "Departments",
			Description: "Departments with budget and current headcount",
		},
		From: "departments d",
		Fields: []dataset.Field{
			{Name: "id", Expr: "d.id", Type: grid.TypeNumber},
			{Name: "name", Expr: "d.name", Type: grid.TypeString},
			{Name: "location", Expr: "d.location", Type: grid.TypeString},
			{Name: "budget", Expr: "d.budget", Type: grid.TypeNumber},
			{Name: "headcount", Expr: "(SELECT COUNT(*) FROM users u WHERE u.department_id = d.id)", Type: grid.TypeNumber},
		},
		DefaultOrder: "d.id",
		Schema: grid.MustSchema(
			grid.Column[dataset.Row]{
				Key: "name", Heading: "Department", Sortable: true, Pinned: grid.PinLeft,
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "location", Heading: "Location", Sortable: true,
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "budget", Heading: "Budget", Numeric: true, Sortable: true,
				Format: func(v any, _ dataset.Row) string { return currency(v) },
				Filter: &grid.FilterDescriptor{},
			},
			grid.Column[dataset.Row]{
				Key: "headcount", Heading: "Headcount", Numeric: true, Sortable: true,
				Warning: func(row dataset.Row) *grid.CellWarning {
					if n, ok := toFloat(row["headcount"]); ok && n == 0 {
						return &grid.CellWarning{Message: "No staff assigned", Severity: grid.SeverityWarning}
					}
					return nil
				},
			},
		),
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS departments (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				location TEXT,
				budget DOUBLE PRECISION
			)`,
		},
		Seeds: []dataset.Seed{{
			Table:   "departments",
			Columns: []string{"id", "name", "location", "budget"},
			Rows: [][]any{
				{1, "Cardiology", "Building A", 1250000.0},
				{2, "Radiology", "Building B", 980000.0},
				{3, "Oncology", "Building A", 1675000.5},
				{4, "Pediatrics", "Building C", 720000.0},
				{5, "Neurology", "Building B", 1130000.0},
				{6, "Research", nil, 450000.0},
			},
		}},
	})
}
