package grid

import (
	"fmt"
	"log/slog"
)

// TabOwnership decides, once at construction, who holds the active index.
type TabOwnership int

const (
	// TabsSelfOwned: the strip commits the active index itself on Select.
	TabsSelfOwned TabOwnership = iota

	// TabsCallerOwned: Select only reports the request; the caller commits it
	// with SetActive, e.g. after a confirmation or a route change.
	TabsCallerOwned
)

func (o TabOwnership) String() string {
	if o == TabsCallerOwned {
		return "caller"
	}
	return "self"
}

// Tab is one entry of a tab strip.
type Tab struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Tabs is a tab strip with explicit ownership of the active index.
type Tabs struct {
	tabs      []Tab
	ownership TabOwnership
	active    int
	logger    *slog.Logger

	// onChange receives the requested index and tab.
	onChange func(index int, tab Tab)
}

// NewTabs builds a tab strip with initial as the active index.
func NewTabs(tabs []Tab, ownership TabOwnership, initial int, onChange func(index int, tab Tab)) (*Tabs, error) {
	if len(tabs) == 0 {
		return nil, fmt.Errorf("%w: no tabs", ErrInvalidTab)
	}
	if initial < 0 || initial >= len(tabs) {
		return nil, fmt.Errorf("%w: initial index %d of %d tabs", ErrInvalidTab, initial, len(tabs))
	}
	return &Tabs{
		tabs:      append([]Tab(nil), tabs...),
		ownership: ownership,
		active:    initial,
		logger:    slog.Default(),
		onChange:  onChange,
	}, nil
}

// Ownership returns who owns the active index.
func (t *Tabs) Ownership() TabOwnership { return t.ownership }

// Tabs returns a copy of the tabs.
func (t *Tabs) Tabs() []Tab { return append([]Tab(nil), t.tabs...) }

// Len returns the number of tabs.
func (t *Tabs) Len() int { return len(t.tabs) }

// Active returns the active index.
func (t *Tabs) Active() int { return t.active }

// ActiveTab returns the active tab.
func (t *Tabs) ActiveTab() Tab { return t.tabs[t.active] }

// Select handles a user activation of tab i. Selecting the active tab does
// nothing. A self-owned strip commits the index; a caller-owned one only
// reports the request.
func (t *Tabs) Select(i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	if i == t.active {
		return nil
	}

	if t.ownership == TabsSelfOwned {
		t.active = i
	}
	t.logger.Debug("tab selected", "index", i, "id", t.tabs[i].ID, "ownership", t.ownership)
	if t.onChange != nil {
		t.onChange(i, t.tabs[i])
	}
	return nil
}

// Next selects the following enabled tab, wrapping around.
func (t *Tabs) Next() error { return t.step(1) }

// Prev selects the preceding enabled tab, wrapping around.
func (t *Tabs) Prev() error { return t.step(-1) }

func (t *Tabs) step(dir int) error {
	n := len(t.tabs)
	for k := 1; k < n; k++ {
		i := ((t.active+dir*k)%n + n) % n
		if !t.tabs[i].Disabled {
			return t.Select(i)
		}
	}
	return nil
}

// SetActive commits the active index of a caller-owned strip. It fails
// with ErrTabOwnership on a self-owned strip.
func (t *Tabs) SetActive(i int) error {
	if t.ownership != TabsCallerOwned {
		return ErrTabOwnership
	}
	if i < 0 || i >= len(t.tabs) {
		return fmt.Errorf("%w: %d of %d tabs", ErrInvalidTab, i, len(t.tabs))
	}
	t.active = i
	return nil
}

func (t *Tabs) check(i int) error {
	if i < 0 || i >= len(t.tabs) {
		return fmt.Errorf("%w: %d of %d tabs", ErrInvalidTab, i, len(t.tabs))
	}
	if t.tabs[i].Disabled {
		return fmt.Errorf("%w: tab %q is disabled", ErrInvalidTab, t.tabs[i].ID)
	}
	return nil
}
