package grid

import "log/slog"

// ColumnMeta is the mutable runtime state of one column. It is kept apart
// from the immutable [Column] definition and keyed to it by Key.
type ColumnMeta struct {
	Key           string    `json:"key"`
	Visible       bool      `json:"visible"`
	IsDefault     bool      `json:"isDefault"`               // Visibility restored by ResetToDefault
	SortDirection Direction `json:"sortDirection,omitempty"` // Empty unless this is the active sort column
}

// MetaPatch is a partial update for a ColumnMeta. Nil fields are left as is.
type MetaPatch struct {
	Visible       *bool
	IsDefault     *bool
	SortDirection *Direction
}

// ColumnRegistry holds one ColumnMeta per schema column.
//
// Every meta is seeded eagerly when the owning Table is built, so a lookup
// for a known key never depends on absence-as-default.
type ColumnRegistry struct {
	bound      bool
	order      []string
	metas      map[string]*ColumnMeta
	filterOnly map[string]bool
	logger     *slog.Logger
}

// columnSeed carries the per-column inputs needed to seed a registry.
type columnSeed struct {
	key        string
	hidden     bool
	filterOnly bool
}

func newColumnRegistry(seeds []columnSeed, logger *slog.Logger) *ColumnRegistry {
	r := &ColumnRegistry{
		bound:      true,
		order:      make([]string, 0, len(seeds)),
		metas:      make(map[string]*ColumnMeta, len(seeds)),
		filterOnly: make(map[string]bool),
		logger:     logger,
	}
	for _, s := range seeds {
		visible := !s.hidden && !s.filterOnly
		r.order = append(r.order, s.key)
		r.metas[s.key] = &ColumnMeta{Key: s.key, Visible: visible, IsDefault: visible}
		if s.filterOnly {
			r.filterOnly[s.key] = true
		}
	}
	return r
}

func (r *ColumnRegistry) mustBind() {
	if r == nil || !r.bound {
		panic(ErrUnbound)
	}
}

// Update merges patch into the meta for key.
func (r *ColumnRegistry) Update(key string, patch MetaPatch) error {
	r.mustBind()

	m, ok := r.metas[key]
	if !ok {
		return unknownColumn(key, r.order)
	}
	if patch.Visible != nil {
		m.Visible = *patch.Visible
	}
	if patch.IsDefault != nil {
		m.IsDefault = *patch.IsDefault
	}
	if patch.SortDirection != nil {
		m.SortDirection = *patch.SortDirection
	}

	r.logger.Debug("column meta updated", "column", key, "visible", m.Visible, "is_default", m.IsDefault)
	return nil
}

// Toggle flips the visibility of key.
func (r *ColumnRegistry) Toggle(key string) error {
	r.mustBind()

	m, ok := r.metas[key]
	if !ok {
		return unknownColumn(key, r.order)
	}
	visible := !m.Visible
	return r.Update(key, MetaPatch{Visible: &visible})
}

// ResetToDefault restores every column's visibility to its recorded default.
func (r *ColumnRegistry) ResetToDefault() {
	r.mustBind()

	for _, key := range r.order {
		m := r.metas[key]
		m.Visible = m.IsDefault
	}
	r.logger.Debug("column visibility reset to default")
}

// Meta returns the meta for key.
func (r *ColumnRegistry) Meta(key string) (ColumnMeta, bool) {
	r.mustBind()

	m, ok := r.metas[key]
	if !ok {
		return ColumnMeta{}, false
	}
	return *m, true
}

// Metas returns a copy of all metas in schema order.
func (r *ColumnRegistry) Metas() []ColumnMeta {
	r.mustBind()

	out := make([]ColumnMeta, len(r.order))
	for i, key := range r.order {
		out[i] = *r.metas[key]
	}
	return out
}

// IsVisible reports whether key is visible. Unknown keys count as visible.
func (r *ColumnRegistry) IsVisible(key string) bool {
	r.mustBind()

	m, ok := r.metas[key]
	if !ok {
		return true
	}
	return m.Visible
}

// VisibleCount returns how many renderable columns are visible.
// Filter-only columns are not renderable and are never counted.
func (r *ColumnRegistry) VisibleCount() int {
	r.mustBind()

	n := 0
	for _, key := range r.order {
		if r.metas[key].Visible && !r.filterOnly[key] {
			n++
		}
	}
	return n
}

// Len returns the number of renderable columns.
func (r *ColumnRegistry) Len() int {
	r.mustBind()
	return len(r.order) - len(r.filterOnly)
}

// markSorted records dir on key and clears every other column's marker.
// An empty key clears all markers.
func (r *ColumnRegistry) markSorted(key string, dir Direction) {
	for _, k := range r.order {
		m := r.metas[k]
		if k == key {
			m.SortDirection = dir
		} else {
			m.SortDirection = ""
		}
	}
}
