package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

// Dialect covers the SQL differences between the supported databases.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// Like is the case-insensitive pattern operator.
	Like string
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		Like:        "ILIKE",
	}

	// SQLite's LIKE is case-insensitive for ASCII by default.
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		Like:        "LIKE",
	}
)

// WhereBuilder accumulates AND-ed conditions with positional arguments.
type WhereBuilder struct {
	dialect    Dialect
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder for d.
func NewWhereBuilder(d Dialect) *WhereBuilder {
	return &WhereBuilder{dialect: d, argIndex: 1}
}

// bind records value and returns its placeholder.
func (wb *WhereBuilder) bind(value any) string {
	p := wb.dialect.Placeholder(wb.argIndex)
	wb.args = append(wb.args, value)
	wb.argIndex++
	return p
}

// Add appends "expr = value". Empty string values are skipped.
func (wb *WhereBuilder) Add(expr string, value any) {
	if s, ok := value.(string); ok && s == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = %s", expr, wb.bind(value)))
}

// AddFilter appends the condition for one grid filter on field.
func (wb *WhereBuilder) AddFilter(field dataset.Field, f grid.Filter) error {
	arg := func(v grid.Value) any { return sqlArg(v, field.Type) }
	col := field.Expr

	var cond string
	switch f.Operator {
	case grid.OpEq:
		cond = fmt.Sprintf("%s = %s", col, wb.bind(arg(f.Value)))
	case grid.OpNeq:
		cond = fmt.Sprintf("(%s <> %s OR %s IS NULL)", col, wb.bind(arg(f.Value)), col)
	case grid.OpGt:
		cond = fmt.Sprintf("%s > %s", col, wb.bind(arg(f.Value)))
	case grid.OpGte:
		cond = fmt.Sprintf("%s >= %s", col, wb.bind(arg(f.Value)))
	case grid.OpLt:
		cond = fmt.Sprintf("%s < %s", col, wb.bind(arg(f.Value)))
	case grid.OpLte:
		cond = fmt.Sprintf("%s <= %s", col, wb.bind(arg(f.Value)))
	case grid.OpContains:
		cond = wb.like(col, "%"+escapeLike(f.Value.Text())+"%")
	case grid.OpStartsWith:
		cond = wb.like(col, escapeLike(f.Value.Text())+"%")
	case grid.OpEndsWith:
		cond = wb.like(col, "%"+escapeLike(f.Value.Text()))
	case grid.OpIn:
		items := f.Value.List()
		if len(items) == 0 {
			return filterError(f, "in requires a non-empty list")
		}
		placeholders := make([]string, len(items))
		for i, item := range items {
			placeholders[i] = wb.bind(arg(item))
		}
		cond = fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", "))
	case grid.OpBetween:
		lo, hi, ok := f.Value.Range()
		if !ok {
			return filterError(f, "between requires a range")
		}
		cond = fmt.Sprintf("%s BETWEEN %s AND %s", col, wb.bind(arg(lo)), wb.bind(arg(hi)))
	case grid.OpIsNull:
		cond = fmt.Sprintf("%s IS NULL", col)
	case grid.OpIsNotNull:
		cond = fmt.Sprintf("%s IS NOT NULL", col)
	default:
		return filterError(f, fmt.Sprintf("unsupported operator %q", f.Operator))
	}

	wb.conditions = append(wb.conditions, cond)
	return nil
}

func (wb *WhereBuilder) like(col, pattern string) string {
	return fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, wb.dialect.Like, wb.bind(pattern))
}

// NextArgIndex returns the index the next bound argument will take.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the WHERE clause (with a leading space) and its arguments.
// Both are empty when no conditions were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

func filterError(f grid.Filter, reason string) error {
	return &grid.FilterError{ID: f.ID, Column: f.ColumnID, Reason: reason, Err: grid.ErrInvalidFilter}
}

// escapeLike escapes LIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// sqlArg converts a filter operand to a driver argument. Dates are stored
// as ISO text, so time operands on date fields bind as YYYY-MM-DD.
func sqlArg(v grid.Value, t grid.DataType) any {
	if v.Kind() == grid.KindTime && t == grid.TypeDate {
		return v.Time().Format(time.DateOnly)
	}
	if v.Kind() == grid.KindNumber && t == grid.TypeNumber {
		if n := v.Number(); n == float64(int64(n)) {
			return int64(n)
		}
	}
	return v.Any()
}

// Statement is a built SQL statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// BuildQuery builds the count and page statements for q. A limit of zero
// or less selects every matching row (used for exports).
func BuildQuery(d Dialect, def dataset.Definition, q grid.Query, limit, offset int) (count, page Statement, err error) {
	wb := NewWhereBuilder(d)
	for _, f := range q.Filters {
		if f.Disabled {
			continue
		}
		field, ok := def.FieldFor(f.ColumnID, true)
		if !ok {
			return Statement{}, Statement{}, notQueryable(def, f.ColumnID, "not filterable")
		}
		if err := wb.AddFilter(field, f); err != nil {
			return Statement{}, Statement{}, err
		}
	}
	where, args := wb.Build()

	count = Statement{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s%s", def.From, where),
		Args: args,
	}

	order, err := orderBy(def, q.Sort)
	if err != nil {
		return Statement{}, Statement{}, err
	}

	selects := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		selects[i] = fmt.Sprintf("%s AS %s", f.Expr, quoteIdentifier(f.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s ORDER BY %s", strings.Join(selects, ", "), def.From, where, order)
	pageArgs := append([]any(nil), args...)
	if limit > 0 {
		idx := wb.NextArgIndex()
		fmt.Fprintf(&b, " LIMIT %s OFFSET %s", d.Placeholder(idx), d.Placeholder(idx+1))
		pageArgs = append(pageArgs, limit, offset)
	}
	page = Statement{SQL: b.String(), Args: pageArgs}
	return count, page, nil
}

// orderBy resolves the active sort to an ORDER BY list. The dataset's
// default order is always appended as a tiebreaker so pages stay stable.
func orderBy(def dataset.Definition, sort *grid.SortState) (string, error) {
	var parts []string
	if sort != nil {
		field, ok := def.Field(sort.Key())
		if !ok {
			field, ok = def.FieldFor(sort.ColumnID, false)
		}
		if !ok {
			return "", notQueryable(def, sort.ColumnID, "not sortable")
		}
		dir := "ASC"
		if sort.Direction == grid.Desc {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", field.Expr, dir))
	}

	fallback := def.DefaultOrder
	if fallback == "" {
		if f, ok := def.Field("id"); ok {
			fallback = f.Expr
		} else {
			fallback = def.Fields[0].Expr
		}
	}
	parts = append(parts, fallback+" ASC")
	return strings.Join(parts, ", "), nil
}

func notQueryable(def dataset.Definition, key, reason string) error {
	return &grid.SchemaError{Key: key, Reason: reason + " in dataset " + def.Info.Key, Err: grid.ErrUnknownColumn}
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
