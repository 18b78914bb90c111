package grid

import "log/slog"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool { return d == Asc || d == Desc }

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortState is the single active sort of a table.
type SortState struct {
	ColumnID  string    `json:"columnId"`
	Direction Direction `json:"direction"`
	SortKey   string    `json:"sortKey,omitempty"` // Source field name, defaults to ColumnID
}

// Key returns the field name the source should order by.
func (s SortState) Key() string {
	if s.SortKey != "" {
		return s.SortKey
	}
	return s.ColumnID
}

// SortRequest is the wire form of a sort for data sources.
type SortRequest struct {
	SortBy    string    `json:"sortBy"`
	SortOrder Direction `json:"sortOrder"`
}

// ToSortRequest converts s to its wire form. A nil sort yields nil.
func ToSortRequest(s *SortState) *SortRequest {
	if s == nil {
		return nil
	}
	return &SortRequest{SortBy: s.Key(), SortOrder: s.Direction}
}

// Sorter is the sort slice of a Table. It only tracks intent; ordering rows
// is the data source's job.
type Sorter struct {
	bound   bool
	current *SortState
	logger  *slog.Logger

	// onChange receives the new state, or nil when the sort was cleared.
	onChange func(*SortState)
}

func newSorter(logger *slog.Logger, onChange func(*SortState)) *Sorter {
	return &Sorter{bound: true, logger: logger, onChange: onChange}
}

func (s *Sorter) mustBind() {
	if s == nil || !s.bound {
		panic(ErrUnbound)
	}
}

// Current returns a copy of the active sort, or nil when unsorted.
func (s *Sorter) Current() *SortState {
	s.mustBind()

	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Set replaces the active sort. Nil clears it. An invalid direction is
// normalized to ascending.
func (s *Sorter) Set(state *SortState) {
	s.mustBind()

	if state == nil {
		s.Clear()
		return
	}

	next := *state
	if !next.Direction.Valid() {
		next.Direction = Asc
	}
	s.current = &next
	s.logger.Debug("sort changed", "column", next.ColumnID, "direction", next.Direction)
	s.emit()
}

// Clear removes the active sort.
func (s *Sorter) Clear() {
	s.mustBind()

	s.current = nil
	s.logger.Debug("sort cleared")
	s.emit()
}

// Toggle applies a header activation on columnID. Non-sortable columns are
// ignored. Activating the active column flips its direction; any other
// column starts ascending. Reports whether the sort changed.
func (s *Sorter) Toggle(columnID string, sortable bool, sortKey string) bool {
	s.mustBind()

	if !sortable {
		return false
	}

	dir := Asc
	if s.current != nil && s.current.ColumnID == columnID {
		dir = s.current.Direction.Flip()
	}
	s.Set(&SortState{ColumnID: columnID, Direction: dir, SortKey: sortKey})
	return true
}

func (s *Sorter) emit() {
	if s.onChange != nil {
		s.onChange(s.Current())
	}
}
