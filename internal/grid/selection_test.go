package grid

import "testing"

func TestSelection_IdentityNotReference(t *testing.T) {
	s := newSelection[user](nil, quietLogger(), nil)

	x := user{ID: 7, Name: "Ada"}
	xPrime := user{ID: 7, Name: "Ada (reloaded)"}

	s.Select(x)
	s.Select(xPrime)
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
	if !s.IsSelected(xPrime) {
		t.Error("IsSelected(x') = false, want true")
	}

	s.Deselect(xPrime)
	if s.HasSelection() {
		t.Error("Deselect by identity left a selection")
	}
}

func TestSelection_Toggle(t *testing.T) {
	var changes [][]user
	s := newSelection[user](nil, quietLogger(), func(sel []user) { changes = append(changes, sel) })
	u := user{ID: 1}

	s.Toggle(u)
	s.Toggle(u)
	if s.Count() != 0 {
		t.Errorf("Count after two toggles = %d, want 0", s.Count())
	}
	if len(changes) != 2 {
		t.Errorf("changes = %d, want 2", len(changes))
	}

	// Redundant operations do not notify
	s.Deselect(u)
	s.Clear()
	if len(changes) != 2 {
		t.Errorf("changes after no-ops = %d, want 2", len(changes))
	}
}

func TestSelection_SelectAllIsAbsolute(t *testing.T) {
	s := newSelection[user](nil, quietLogger(), nil)
	s.Select(user{ID: 99})

	page := []user{{ID: 1}, {ID: 2}, {ID: 1, Name: "dup"}}
	s.SelectAll(page)

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("Count = %d, want 2", len(items))
	}
	if s.IsSelected(user{ID: 99}) {
		t.Error("SelectAll kept a row from the previous selection")
	}
	if items[0].ID != 1 || items[0].Name != "" {
		t.Errorf("first item = %+v, want first occurrence of id 1", items[0])
	}
}

func TestSelection_CustomIdentity(t *testing.T) {
	byEmail := func(u user) any { return u.Email }
	s := newSelection(IdentityFunc[user](byEmail), quietLogger(), nil)

	s.Select(user{ID: 1, Email: "a@x"})
	s.Select(user{ID: 2, Email: "a@x"})
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}

func TestSelection_MapRows(t *testing.T) {
	s := newSelection[map[string]any](nil, quietLogger(), nil)
	s.Select(map[string]any{"id": "u-1", "name": "Ada"})

	if !s.IsSelected(map[string]any{"id": "u-1"}) {
		t.Error("map row with equal id not selected")
	}
}

func TestSelection_UncomparableIdentity(t *testing.T) {
	s := newSelection[map[string]any](nil, quietLogger(), nil)

	composite := map[string]any{"id": []any{"acme", 7}}
	s.Select(composite)
	s.Select(map[string]any{"id": []any{"acme", 8}})
	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}
	if !s.IsSelected(map[string]any{"id": []any{"acme", 7}, "name": "reloaded"}) {
		t.Error("row with an equal composite id not selected")
	}

	s.Toggle(map[string]any{"id": []any{"acme", 7}})
	if s.Count() != 1 {
		t.Errorf("Count after toggle = %d, want 1", s.Count())
	}

	s.SelectAll([]map[string]any{composite, composite})
	if s.Count() != 1 {
		t.Errorf("Count after SelectAll = %d, want 1", s.Count())
	}
}

func TestTable_ViewWithUncomparableIDs(t *testing.T) {
	schema := MustSchema(Column[map[string]any]{Key: "name", Heading: "Name"})
	tbl, err := New(schema, WithLogger[map[string]any](quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	rows := []map[string]any{
		{"id": []any{"acme", 1}, "name": "Ada"},
		{"id": []any{"acme", 2}, "name": "Grace"},
	}
	tbl.SetData(rows, len(rows))
	tbl.Selection().Select(rows[1])

	v := tbl.View()
	if len(v.Rows) != 2 || v.Rows[0].Selected || !v.Rows[1].Selected {
		t.Errorf("row selection flags wrong: %+v", v.Rows)
	}
	if tbl.AllSelected() {
		t.Error("AllSelected with one of two rows selected")
	}
}

func TestSelection_Unbound(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrUnbound {
			t.Errorf("recover() = %v, want ErrUnbound", r)
		}
	}()

	var s Selection[user]
	s.Count()
}
