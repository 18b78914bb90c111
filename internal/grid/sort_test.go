package grid

import "testing"

func TestSorter_ToggleCycle(t *testing.T) {
	var emitted []*SortState
	s := newSorter(quietLogger(), func(st *SortState) { emitted = append(emitted, st) })

	want := []Direction{Asc, Desc, Asc, Desc}
	for i, dir := range want {
		if !s.Toggle("name", true, "name") {
			t.Fatalf("click %d: Toggle returned false", i+1)
		}
		cur := s.Current()
		if cur == nil || cur.ColumnID != "name" || cur.Direction != dir {
			t.Errorf("click %d: Current = %+v, want name %s", i+1, cur, dir)
		}
	}
	if len(emitted) != len(want) {
		t.Errorf("emitted %d times, want %d", len(emitted), len(want))
	}
}

func TestSorter_OtherColumnStartsAscending(t *testing.T) {
	s := newSorter(quietLogger(), nil)

	s.Toggle("name", true, "")
	s.Toggle("name", true, "") // name desc
	s.Toggle("age", true, "age_years")

	cur := s.Current()
	if cur.ColumnID != "age" || cur.Direction != Asc {
		t.Errorf("Current = %+v, want age asc", cur)
	}
	if cur.Key() != "age_years" {
		t.Errorf("Key = %q, want age_years", cur.Key())
	}
}

func TestSorter_NonSortableIsNoop(t *testing.T) {
	calls := 0
	s := newSorter(quietLogger(), func(*SortState) { calls++ })
	s.Toggle("name", true, "")

	if s.Toggle("department", false, "") {
		t.Error("Toggle on non-sortable column returned true")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Current().ColumnID != "name" {
		t.Errorf("Current column = %q, want name", s.Current().ColumnID)
	}
}

func TestSorter_SetAndClear(t *testing.T) {
	var last *SortState
	cleared := false
	s := newSorter(quietLogger(), func(st *SortState) {
		last = st
		cleared = st == nil
	})

	s.Set(&SortState{ColumnID: "age", Direction: "sideways"})
	if last == nil || last.Direction != Asc {
		t.Errorf("invalid direction not normalized: %+v", last)
	}

	// Current returns a copy
	s.Current().Direction = Desc
	if s.Current().Direction != Asc {
		t.Error("mutating Current() leaked into the slice")
	}

	s.Clear()
	if !cleared || s.Current() != nil {
		t.Errorf("after Clear, Current = %+v, callback cleared = %v", s.Current(), cleared)
	}
}

func TestToSortRequest(t *testing.T) {
	if ToSortRequest(nil) != nil {
		t.Error("ToSortRequest(nil) != nil")
	}

	req := ToSortRequest(&SortState{ColumnID: "age", Direction: Desc})
	if req.SortBy != "age" || req.SortOrder != Desc {
		t.Errorf("ToSortRequest = %+v, want age desc", req)
	}

	req = ToSortRequest(&SortState{ColumnID: "age", Direction: Asc, SortKey: "age_years"})
	if req.SortBy != "age_years" {
		t.Errorf("SortBy = %q, want age_years", req.SortBy)
	}
}
