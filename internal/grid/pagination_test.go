package grid

import (
	"slices"
	"testing"
)

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{47, 20, 3},
		{100, 10, 10},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := CalculateTotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("CalculateTotalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestValidatePage_AlwaysInBounds(t *testing.T) {
	for totalPages := 0; totalPages <= 12; totalPages++ {
		for page := -3; page <= 15; page++ {
			got := ValidatePage(page, totalPages)
			if got < 1 || got > max(totalPages, 1) {
				t.Errorf("ValidatePage(%d, %d) = %d, want in [1, %d]", page, totalPages, got, max(totalPages, 1))
			}
		}
	}
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name                  string
		current, total, width int
		want                  []int
	}{
		{"no pages", 1, 0, 5, []int{}},
		{"fewer than window", 2, 3, 5, []int{1, 2, 3}},
		{"exactly window", 5, 5, 5, []int{1, 2, 3, 4, 5}},
		{"start", 1, 10, 5, []int{1, 2, 3, 4, 5}},
		{"centered", 5, 10, 5, []int{3, 4, 5, 6, 7}},
		{"shifts left near end", 9, 10, 5, []int{6, 7, 8, 9, 10}},
		{"last page", 10, 10, 5, []int{6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageNumbers(tt.current, tt.total, tt.width)
			if !slices.Equal(got, tt.want) {
				t.Errorf("PageNumbers(%d, %d, %d) = %v, want %v", tt.current, tt.total, tt.width, got, tt.want)
			}
		})
	}
}

func TestPageNumbers_WindowShape(t *testing.T) {
	for total := 1; total <= 15; total++ {
		for page := 1; page <= total; page++ {
			got := PageNumbers(page, total, PageWindow)
			if len(got) != min(total, PageWindow) {
				t.Fatalf("PageNumbers(%d, %d) length = %d, want %d", page, total, len(got), min(total, PageWindow))
			}
			for i, n := range got {
				if n < 1 || n > total {
					t.Errorf("PageNumbers(%d, %d) contains %d, out of bounds", page, total, n)
				}
				if i > 0 && n != got[i-1]+1 {
					t.Errorf("PageNumbers(%d, %d) = %v, not contiguous", page, total, got)
				}
			}
			if !slices.Contains(got, page) {
				t.Errorf("PageNumbers(%d, %d) = %v, missing current page", page, total, got)
			}
		}
	}
}

func TestPageRangeText(t *testing.T) {
	tests := []struct {
		page, pageSize, total int
		want                  string
	}{
		{1, 20, 0, "0 items"},
		{1, 20, 47, "1-20 of 47"},
		{2, 20, 47, "21-40 of 47"},
		{3, 20, 47, "41-47 of 47"},
		{1, 50, 7, "1-7 of 7"},
	}

	for _, tt := range tests {
		p := Pagination{Page: tt.page, PageSize: tt.pageSize, Total: tt.total}
		if got := PageRangeText(p); got != tt.want {
			t.Errorf("PageRangeText(page=%d, size=%d, total=%d) = %q, want %q", tt.page, tt.pageSize, tt.total, got, tt.want)
		}
	}
}

func TestPaginator_SetPageClampsAndEmitsOnChange(t *testing.T) {
	var calls [][2]int
	p := newPaginator(20, nil, quietLogger(), func(page, size int) {
		calls = append(calls, [2]int{page, size})
	})
	p.setTotal(47)

	p.SetPage(3)
	if p.Page() != 3 {
		t.Errorf("Page = %d, want 3", p.Page())
	}
	if got := p.PageRange(); got != "41-47 of 47" {
		t.Errorf("PageRange = %q, want %q", got, "41-47 of 47")
	}

	// Clamped to the page we are already on: no second callback
	p.SetPage(99)
	if p.Page() != 3 {
		t.Errorf("after SetPage(99), Page = %d, want 3", p.Page())
	}
	if len(calls) != 1 {
		t.Errorf("callbacks = %d, want 1", len(calls))
	}

	p.SetPage(-4)
	if p.Page() != 1 {
		t.Errorf("after SetPage(-4), Page = %d, want 1", p.Page())
	}
	if len(calls) != 2 || calls[1] != [2]int{1, 20} {
		t.Errorf("calls = %v, want second call (1, 20)", calls)
	}
}

func TestPaginator_SetPageSizeResetsPage(t *testing.T) {
	for _, size := range []int{10, 20, 50, 0, -1, 5000} {
		var last [2]int
		p := newPaginator(20, nil, quietLogger(), func(page, s int) { last = [2]int{page, s} })
		p.setTotal(1000)
		p.SetPage(4)

		p.SetPageSize(size)
		if p.Page() != 1 {
			t.Errorf("SetPageSize(%d): Page = %d, want 1", size, p.Page())
		}
		if p.PageSize() < 1 || p.PageSize() > MaxPageSize {
			t.Errorf("SetPageSize(%d): PageSize = %d, out of bounds", size, p.PageSize())
		}
		if last[0] != 1 || last[1] != p.PageSize() {
			t.Errorf("SetPageSize(%d): callback = %v, want (1, %d)", size, last, p.PageSize())
		}
	}
}

func TestPaginator_Navigation(t *testing.T) {
	p := newPaginator(10, nil, quietLogger(), nil)
	p.setTotal(35)

	if p.CanPrev() {
		t.Error("CanPrev on first page = true, want false")
	}
	p.LastPage()
	if p.Page() != 4 {
		t.Errorf("LastPage: Page = %d, want 4", p.Page())
	}
	if p.CanNext() {
		t.Error("CanNext on last page = true, want false")
	}
	p.NextPage()
	if p.Page() != 4 {
		t.Errorf("NextPage past end: Page = %d, want 4", p.Page())
	}
	p.PrevPage()
	if p.Page() != 3 {
		t.Errorf("PrevPage: Page = %d, want 3", p.Page())
	}
	p.FirstPage()
	if p.Page() != 1 {
		t.Errorf("FirstPage: Page = %d, want 1", p.Page())
	}
}

func TestPaginator_SetTotalClampsSilently(t *testing.T) {
	calls := 0
	p := newPaginator(10, nil, quietLogger(), func(int, int) { calls++ })
	p.setTotal(100)
	p.SetPage(8)
	calls = 0

	p.setTotal(25)
	if p.Page() != 3 {
		t.Errorf("Page after shrinking total = %d, want 3", p.Page())
	}
	if calls != 0 {
		t.Errorf("callbacks after setTotal = %d, want 0", calls)
	}

	p.setTotal(0)
	st := p.State()
	if st.Page != 1 || st.TotalPages != 0 || p.PageRange() != "0 items" {
		t.Errorf("empty state = %+v, range %q", st, p.PageRange())
	}
}

func TestPaginator_Unbound(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrUnbound {
			t.Errorf("recover() = %v, want ErrUnbound", r)
		}
	}()

	var p Paginator
	p.SetPage(2)
}
