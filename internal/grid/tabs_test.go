package grid

import (
	"errors"
	"testing"
)

func testTabs() []Tab {
	return []Tab{
		{ID: "users", Label: "Users"},
		{ID: "archived", Label: "Archived", Disabled: true},
		{ID: "departments", Label: "Departments"},
	}
}

func TestTabs_SelfOwned(t *testing.T) {
	var requested []int
	tabs, err := NewTabs(testTabs(), TabsSelfOwned, 0, func(i int, _ Tab) { requested = append(requested, i) })
	if err != nil {
		t.Fatalf("NewTabs: %v", err)
	}

	if err := tabs.Select(2); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if tabs.Active() != 2 || tabs.ActiveTab().ID != "departments" {
		t.Errorf("Active = %d, want 2", tabs.Active())
	}

	// Selecting the active tab is a no-op
	_ = tabs.Select(2)
	if len(requested) != 1 {
		t.Errorf("callbacks = %d, want 1", len(requested))
	}

	if err := tabs.SetActive(0); !errors.Is(err, ErrTabOwnership) {
		t.Errorf("SetActive on self-owned error = %v, want ErrTabOwnership", err)
	}
}

func TestTabs_CallerOwned(t *testing.T) {
	var requested []int
	tabs, err := NewTabs(testTabs(), TabsCallerOwned, 0, func(i int, _ Tab) { requested = append(requested, i) })
	if err != nil {
		t.Fatalf("NewTabs: %v", err)
	}

	_ = tabs.Select(2)
	if tabs.Active() != 0 {
		t.Errorf("caller-owned Select moved the index to %d", tabs.Active())
	}
	if len(requested) != 1 || requested[0] != 2 {
		t.Errorf("requested = %v, want [2]", requested)
	}

	if err := tabs.SetActive(2); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if tabs.Active() != 2 {
		t.Errorf("Active = %d, want 2", tabs.Active())
	}
}

func TestTabs_InvalidAndDisabled(t *testing.T) {
	if _, err := NewTabs(nil, TabsSelfOwned, 0, nil); !errors.Is(err, ErrInvalidTab) {
		t.Errorf("NewTabs(nil) error = %v, want ErrInvalidTab", err)
	}
	if _, err := NewTabs(testTabs(), TabsSelfOwned, 3, nil); !errors.Is(err, ErrInvalidTab) {
		t.Errorf("NewTabs(initial=3) error = %v, want ErrInvalidTab", err)
	}

	tabs, _ := NewTabs(testTabs(), TabsSelfOwned, 0, nil)
	if err := tabs.Select(1); !errors.Is(err, ErrInvalidTab) {
		t.Errorf("Select(disabled) error = %v, want ErrInvalidTab", err)
	}
	if err := tabs.Select(-1); !errors.Is(err, ErrInvalidTab) {
		t.Errorf("Select(-1) error = %v, want ErrInvalidTab", err)
	}
}

func TestTabs_NextSkipsDisabled(t *testing.T) {
	tabs, _ := NewTabs(testTabs(), TabsSelfOwned, 0, nil)

	_ = tabs.Next()
	if tabs.Active() != 2 {
		t.Errorf("Next = %d, want 2", tabs.Active())
	}
	_ = tabs.Next()
	if tabs.Active() != 0 {
		t.Errorf("Next wraps to %d, want 0", tabs.Active())
	}
	_ = tabs.Prev()
	if tabs.Active() != 2 {
		t.Errorf("Prev wraps to %d, want 2", tabs.Active())
	}
}
