package grid

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpIn         Operator = "in"
	OpBetween    Operator = "between"
	OpIsNull     Operator = "isNull"
	OpIsNotNull  Operator = "isNotNull"
)

var operatorLabels = map[Operator]string{
	OpEq:         "Equals",
	OpNeq:        "Not Equals",
	OpGt:         "Greater Than",
	OpGte:        "Greater Than or Equal",
	OpLt:         "Less Than",
	OpLte:        "Less Than or Equal",
	OpContains:   "Contains",
	OpStartsWith: "Starts With",
	OpEndsWith:   "Ends With",
	OpIn:         "Any Of",
	OpBetween:    "Between",
	OpIsNull:     "Is Empty",
	OpIsNotNull:  "Is Not Empty",
}

// Valid reports whether o is one of the thirteen supported operators.
func (o Operator) Valid() bool {
	_, ok := operatorLabels[o]
	return ok
}

// Label returns the display name of o.
func (o Operator) Label() string {
	if l, ok := operatorLabels[o]; ok {
		return l
	}
	return string(o)
}

// DataType is the broad type of a column, used to pick filter operators.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
)

// OperatorsFor returns the operators that make sense for a column type.
func OperatorsFor(t DataType) []Operator {
	base := []Operator{OpEq, OpNeq, OpIsNull, OpIsNotNull}

	switch t {
	case TypeString:
		return append(base, OpContains, OpStartsWith, OpEndsWith, OpIn)
	case TypeNumber:
		return append(base, OpGt, OpGte, OpLt, OpLte, OpBetween, OpIn)
	case TypeDate:
		return append(base, OpGt, OpGte, OpLt, OpLte, OpBetween)
	case TypeBoolean:
		return []Operator{OpEq, OpNeq}
	default:
		return base
	}
}

// Filter is one active filter intent. Evaluating it against data is the
// data source's job.
type Filter struct {
	ID        string   `json:"id"`
	ColumnID  string   `json:"columnId"`
	Operator  Operator `json:"operator"`
	Value     Value    `json:"value"`
	Label     string   `json:"label,omitempty"`
	Temporary bool     `json:"isTemporary,omitempty"` // Not meant to be persisted by the host
	Disabled  bool     `json:"disabled,omitempty"`
}

// FilterPatch is a partial update for a Filter. Nil fields are left as is.
type FilterPatch struct {
	ColumnID  *string
	Operator  *Operator
	Value     *Value
	Label     *string
	Temporary *bool
	Disabled  *bool
}

// apply returns f with patch merged in.
func (patch FilterPatch) apply(f Filter) Filter {
	if patch.ColumnID != nil {
		f.ColumnID = *patch.ColumnID
	}
	if patch.Operator != nil {
		f.Operator = *patch.Operator
	}
	if patch.Value != nil {
		f.Value = *patch.Value
	}
	if patch.Label != nil {
		f.Label = *patch.Label
	}
	if patch.Temporary != nil {
		f.Temporary = *patch.Temporary
	}
	if patch.Disabled != nil {
		f.Disabled = *patch.Disabled
	}
	return f
}

// validateFilter checks that f is complete and that its value fits its
// operator. A two-element list used with "between" is normalized to a range
// and a time used with a text operator goes back to text.
func validateFilter(f Filter) (Filter, error) {
	fail := func(reason string) (Filter, error) {
		return Filter{}, &FilterError{ID: f.ID, Column: f.ColumnID, Reason: reason, Err: ErrInvalidFilter}
	}

	if f.ColumnID == "" || f.Operator == "" || f.Value.IsZero() {
		return fail("filter requires columnId, operator, and value")
	}
	if !f.Operator.Valid() {
		return fail(fmt.Sprintf("unknown operator %q", f.Operator))
	}

	switch f.Operator {
	case OpIn:
		if f.Value.Kind() != KindList || len(f.Value.items) == 0 {
			return fail("operator in requires a non-empty list")
		}
	case OpBetween:
		if f.Value.Kind() == KindList && len(f.Value.items) == 2 {
			f.Value = RangeValue(f.Value.items[0], f.Value.items[1])
		}
		lo, hi, ok := f.Value.Range()
		if !ok || !lo.isScalar() || lo.Kind() != hi.Kind() {
			return fail("operator between requires a range of two values of the same kind")
		}
	case OpContains, OpStartsWith, OpEndsWith:
		if f.Value.Kind() == KindTime {
			f.Value = f.Value.asText()
		}
		if f.Value.Kind() != KindText {
			return fail(fmt.Sprintf("operator %s requires a text value", f.Operator))
		}
	case OpIsNull, OpIsNotNull:
		// The operand is ignored by sources; any value is accepted
	default:
		if !f.Value.isScalar() {
			return fail(fmt.Sprintf("operator %s requires a single value", f.Operator))
		}
	}
	return f, nil
}

// newFilterID returns a unique id prefixed with the column id.
func newFilterID(columnID string) string {
	return columnID + "-" + uuid.NewString()
}

// FilterBuilder constructs filters fluently:
//
//	f, err := grid.NewFilterBuilder().
//	    ForColumn("status").
//	    WithOperator(grid.OpEq).
//	    WithValue(grid.TextValue("active")).
//	    Build()
type FilterBuilder struct {
	f Filter
}

// NewFilterBuilder returns an empty builder.
func NewFilterBuilder() *FilterBuilder { return &FilterBuilder{} }

// ForColumn sets the column the filter applies to.
func (b *FilterBuilder) ForColumn(columnID string) *FilterBuilder {
	b.f.ColumnID = columnID
	return b
}

// WithOperator sets the comparison operator.
func (b *FilterBuilder) WithOperator(op Operator) *FilterBuilder {
	b.f.Operator = op
	return b
}

// WithValue sets the operand.
func (b *FilterBuilder) WithValue(v Value) *FilterBuilder {
	b.f.Value = v
	return b
}

// WithLabel sets the display label.
func (b *FilterBuilder) WithLabel(label string) *FilterBuilder {
	b.f.Label = label
	return b
}

// Temporary marks the filter as not-to-be-persisted.
func (b *FilterBuilder) Temporary() *FilterBuilder {
	b.f.Temporary = true
	return b
}

// Build validates and returns the filter with a fresh id. It fails with
// ErrInvalidFilter unless column, operator and value are all set.
func (b *FilterBuilder) Build() (Filter, error) {
	f, err := validateFilter(b.f)
	if err != nil {
		return Filter{}, err
	}
	f.ID = newFilterID(f.ColumnID)
	return f, nil
}

// Eq builds an equality filter.
func Eq(columnID string, v Value) (Filter, error) {
	return NewFilterBuilder().ForColumn(columnID).WithOperator(OpEq).WithValue(v).Build()
}

// Contains builds a text search filter.
func Contains(columnID, text string) (Filter, error) {
	return NewFilterBuilder().ForColumn(columnID).WithOperator(OpContains).WithValue(TextValue(text)).Build()
}

// InList builds a membership filter.
func InList(columnID string, values ...Value) (Filter, error) {
	return NewFilterBuilder().ForColumn(columnID).WithOperator(OpIn).WithValue(ListValue(values...)).Build()
}

// Between builds an inclusive range filter.
func Between(columnID string, lo, hi Value) (Filter, error) {
	return NewFilterBuilder().ForColumn(columnID).WithOperator(OpBetween).WithValue(RangeValue(lo, hi)).Build()
}

// FilterRequest is the wire form of one column's filter.
type FilterRequest struct {
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

// ToFilterRequest keys filters by column id. When two filters share a
// column the later one wins.
func ToFilterRequest(filters []Filter) map[string]FilterRequest {
	out := make(map[string]FilterRequest, len(filters))
	for _, f := range filters {
		out[f.ColumnID] = FilterRequest{Operator: f.Operator, Value: f.Value}
	}
	return out
}

// FilterList is the filter slice of a Table: an insertion-ordered list of
// filters with unique ids. Every mutation replaces the list wholesale.
type FilterList struct {
	bound   bool
	filters []Filter
	logger  *slog.Logger

	// onChange receives the full new list after every change.
	onChange func([]Filter)
}

func newFilterList(logger *slog.Logger, onChange func([]Filter)) *FilterList {
	return &FilterList{bound: true, logger: logger, onChange: onChange}
}

func (l *FilterList) mustBind() {
	if l == nil || !l.bound {
		panic(ErrUnbound)
	}
}

// Filters returns a copy of the list in insertion order.
func (l *FilterList) Filters() []Filter {
	l.mustBind()
	return append([]Filter(nil), l.filters...)
}

// Active returns the filters that are not disabled.
func (l *FilterList) Active() []Filter {
	l.mustBind()

	out := make([]Filter, 0, len(l.filters))
	for _, f := range l.filters {
		if !f.Disabled {
			out = append(out, f)
		}
	}
	return out
}

// HasActive reports whether any filter is enabled.
func (l *FilterList) HasActive() bool {
	return len(l.Active()) > 0
}

// Len returns the number of filters, disabled ones included.
func (l *FilterList) Len() int {
	l.mustBind()
	return len(l.filters)
}

// Get returns the filter with id.
func (l *FilterList) Get(id string) (Filter, bool) {
	l.mustBind()

	if i := l.indexOf(id); i >= 0 {
		return l.filters[i], true
	}
	return Filter{}, false
}

// Add appends f. A missing id is generated; a duplicate id is rejected.
func (l *FilterList) Add(f Filter) error {
	l.mustBind()

	f, err := validateFilter(f)
	if err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = newFilterID(f.ColumnID)
	}
	if l.indexOf(f.ID) >= 0 {
		return &FilterError{ID: f.ID, Column: f.ColumnID, Err: ErrDuplicateFilter}
	}

	next := make([]Filter, 0, len(l.filters)+1)
	next = append(next, l.filters...)
	next = append(next, f)
	l.replace(next, "filter added", "id", f.ID, "column", f.ColumnID, "operator", f.Operator)
	return nil
}

// Remove deletes the filter with id. Reports whether it existed.
func (l *FilterList) Remove(id string) bool {
	l.mustBind()

	i := l.indexOf(id)
	if i < 0 {
		return false
	}

	next := make([]Filter, 0, len(l.filters)-1)
	next = append(next, l.filters[:i]...)
	next = append(next, l.filters[i+1:]...)
	l.replace(next, "filter removed", "id", id)
	return true
}

// Update merges patch into the filter with id, keeping its position.
func (l *FilterList) Update(id string, patch FilterPatch) error {
	l.mustBind()

	i := l.indexOf(id)
	if i < 0 {
		return &FilterError{ID: id, Err: ErrFilterNotFound}
	}
	updated, err := validateFilter(patch.apply(l.filters[i]))
	if err != nil {
		return err
	}

	next := append([]Filter(nil), l.filters...)
	next[i] = updated
	l.replace(next, "filter updated", "id", id)
	return nil
}

// Clear removes every filter.
func (l *FilterList) Clear() {
	l.mustBind()

	if len(l.filters) == 0 {
		return
	}
	l.replace(nil, "filters cleared")
}

func (l *FilterList) indexOf(id string) int {
	for i, f := range l.filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (l *FilterList) replace(next []Filter, msg string, args ...any) {
	l.filters = next
	l.logger.Debug(msg, append(args, "count", len(next))...)
	if l.onChange != nil {
		l.onChange(l.Filters())
	}
}
