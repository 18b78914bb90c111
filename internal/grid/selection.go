package grid

import (
	"fmt"
	"log/slog"
	"reflect"
)

// IdentityFunc maps a row to a stable comparison key. Two rows with equal
// keys are the same selection entry even when they are distinct objects.
// Keys that are not comparable (slices, maps, structs holding them) are
// compared by their type and printed value.
type IdentityFunc[T any] func(row T) any

// DefaultIdentity reads the row's "id" field (map key, json tag or
// exported field name).
func DefaultIdentity[T any]() IdentityFunc[T] {
	id := Field[T]("id")
	return func(row T) any {
		v, _ := id.Resolve(row)
		return v
	}
}

// Selection is the selection slice of a Table: an ordered list of rows
// deduplicated by identity.
type Selection[T any] struct {
	bound    bool
	identity IdentityFunc[T]
	items    []T
	keys     map[any]struct{}
	logger   *slog.Logger

	// onChange receives the full new selection after every change.
	onChange func([]T)
}

func newSelection[T any](identity IdentityFunc[T], logger *slog.Logger, onChange func([]T)) *Selection[T] {
	if identity == nil {
		identity = DefaultIdentity[T]()
	}
	return &Selection[T]{
		bound:    true,
		identity: identity,
		keys:     make(map[any]struct{}),
		logger:   logger,
		onChange: onChange,
	}
}

// key returns the map key for row's identity.
func (s *Selection[T]) key(row T) any {
	return identityKey(s.identity(row))
}

func identityKey(id any) any {
	if v := reflect.ValueOf(id); v.IsValid() && !v.Comparable() {
		return fmt.Sprintf("%T:%v", id, id)
	}
	return id
}

func (s *Selection[T]) mustBind() {
	if s == nil || !s.bound {
		panic(ErrUnbound)
	}
}

// Items returns a copy of the selected rows in selection order.
func (s *Selection[T]) Items() []T {
	s.mustBind()
	return append([]T(nil), s.items...)
}

// Count returns the number of selected rows.
func (s *Selection[T]) Count() int {
	s.mustBind()
	return len(s.items)
}

// HasSelection reports whether anything is selected.
func (s *Selection[T]) HasSelection() bool {
	return s.Count() > 0
}

// IsSelected reports whether a row with row's identity is selected.
func (s *Selection[T]) IsSelected(row T) bool {
	s.mustBind()

	_, ok := s.keys[s.key(row)]
	return ok
}

// Select adds row unless its identity is already selected.
func (s *Selection[T]) Select(row T) {
	s.mustBind()

	if s.IsSelected(row) {
		return
	}
	next := append(append([]T(nil), s.items...), row)
	s.replace(next, "row selected")
}

// Deselect removes the entry sharing row's identity.
func (s *Selection[T]) Deselect(row T) {
	s.mustBind()

	if !s.IsSelected(row) {
		return
	}
	key := s.key(row)
	next := make([]T, 0, len(s.items)-1)
	for _, item := range s.items {
		if s.key(item) != key {
			next = append(next, item)
		}
	}
	s.replace(next, "row deselected")
}

// Toggle selects row if unselected, otherwise deselects it.
func (s *Selection[T]) Toggle(row T) {
	if s.IsSelected(row) {
		s.Deselect(row)
		return
	}
	s.Select(row)
}

// SelectAll replaces the selection with exactly rows. It is absolute, not
// additive: rows selected before and absent from rows are dropped. Rows
// repeating an identity are collapsed to the first occurrence.
func (s *Selection[T]) SelectAll(rows []T) {
	s.mustBind()

	seen := make(map[any]struct{}, len(rows))
	next := make([]T, 0, len(rows))
	for _, row := range rows {
		key := s.key(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		next = append(next, row)
	}
	s.replace(next, "selection replaced")
}

// Clear empties the selection.
func (s *Selection[T]) Clear() {
	s.mustBind()

	if len(s.items) == 0 {
		return
	}
	s.replace(nil, "selection cleared")
}

func (s *Selection[T]) replace(next []T, msg string) {
	s.items = next
	s.keys = make(map[any]struct{}, len(next))
	for _, item := range next {
		s.keys[s.key(item)] = struct{}{}
	}

	s.logger.Debug(msg, "count", len(next))
	if s.onChange != nil {
		s.onChange(s.Items())
	}
}
