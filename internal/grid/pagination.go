package grid

import (
	"fmt"
	"log/slog"
)

// Pagination defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000

	// PageWindow is the maximum number of page links shown at once.
	PageWindow = 5
)

// DefaultPageSizeOptions are offered when the host supplies none.
var DefaultPageSizeOptions = []int{10, 20, 50, 100}

// Pagination is a snapshot of the pagination slice.
type Pagination struct {
	Page            int   `json:"page"` // 1-based
	PageSize        int   `json:"pageSize"`
	Total           int   `json:"total"` // Authoritative count from the host
	TotalPages      int   `json:"totalPages"`
	PageSizeOptions []int `json:"pageSizeOptions,omitempty"`
	HasNext         bool  `json:"hasNext"`
	HasPrevious     bool  `json:"hasPrevious"`
}

// DefaultPagination returns the state of an empty table.
func DefaultPagination() Pagination {
	return Pagination{
		Page:            1,
		PageSize:        DefaultPageSize,
		PageSizeOptions: append([]int(nil), DefaultPageSizeOptions...),
	}
}

// Offset returns the number of rows before the current page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size, for LIMIT/OFFSET style sources.
func (p Pagination) Limit() int { return p.PageSize }

// CalculateTotalPages returns ceil(total/pageSize). Zero rows means zero pages.
func CalculateTotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ValidatePage clamps page into [1, max(totalPages, 1)].
func ValidatePage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		if totalPages < 1 {
			return 1
		}
		return totalPages
	}
	return page
}

// PageNumbers returns up to maxVisible contiguous page numbers around current.
// Near the last page the window shifts left so it stays full, which means it
// is not always centered on current.
func PageNumbers(current, totalPages, maxVisible int) []int {
	if totalPages <= 0 || maxVisible <= 0 {
		return []int{}
	}
	if totalPages <= maxVisible {
		return pageSeq(1, totalPages)
	}

	half := maxVisible / 2
	start := max(current-half, 1)
	end := min(start+maxVisible-1, totalPages)

	if end-start+1 < maxVisible {
		start = max(end-maxVisible+1, 1)
	}
	return pageSeq(start, end)
}

func pageSeq(start, end int) []int {
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}

// PageRangeText renders "start-end of total", or "0 items" for an empty table.
func PageRangeText(p Pagination) string {
	if p.Total <= 0 {
		return "0 items"
	}
	start := (p.Page-1)*p.PageSize + 1
	end := min(p.Page*p.PageSize, p.Total)
	return fmt.Sprintf("%d-%d of %d", start, end, p.Total)
}

// Paginator is the pagination slice of a Table.
//
// Out-of-range requests are clamped, never rejected.
type Paginator struct {
	bound    bool
	page     int
	pageSize int
	total    int
	options  []int
	logger   *slog.Logger

	// onChange is invoked after every user-driven page or page-size change.
	onChange func(page, pageSize int)
}

func newPaginator(pageSize int, options []int, logger *slog.Logger, onChange func(page, pageSize int)) *Paginator {
	if len(options) == 0 {
		options = DefaultPageSizeOptions
	}
	return &Paginator{
		bound:    true,
		page:     1,
		pageSize: clampPageSize(pageSize),
		options:  append([]int(nil), options...),
		logger:   logger,
		onChange: onChange,
	}
}

func (p *Paginator) mustBind() {
	if p == nil || !p.bound {
		panic(ErrUnbound)
	}
}

// clampPageSize maps any requested size into [1, MaxPageSize].
// Non-positive sizes fall back to DefaultPageSize.
func clampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// State returns a snapshot of the slice.
func (p *Paginator) State() Pagination {
	p.mustBind()

	totalPages := CalculateTotalPages(p.total, p.pageSize)
	return Pagination{
		Page:            p.page,
		PageSize:        p.pageSize,
		Total:           p.total,
		TotalPages:      totalPages,
		PageSizeOptions: append([]int(nil), p.options...),
		HasNext:         p.page < totalPages,
		HasPrevious:     p.page > 1,
	}
}

// Page returns the current 1-based page.
func (p *Paginator) Page() int {
	p.mustBind()
	return p.page
}

// PageSize returns the current page size.
func (p *Paginator) PageSize() int {
	p.mustBind()
	return p.pageSize
}

// TotalPages returns ceil(total/pageSize).
func (p *Paginator) TotalPages() int {
	p.mustBind()
	return CalculateTotalPages(p.total, p.pageSize)
}

// SetPage moves to page n, clamped to the valid range. The change callback
// fires only when the resulting page differs from the current one.
func (p *Paginator) SetPage(n int) {
	p.mustBind()

	target := ValidatePage(n, p.TotalPages())
	if target != n {
		p.logger.Warn("page out of range, clamped", "requested", n, "page", target, "total_pages", p.TotalPages())
	}
	if target == p.page {
		return
	}

	p.page = target
	p.logger.Debug("page changed", "page", p.page, "page_size", p.pageSize)
	p.emit()
}

// SetPageSize replaces the page size and always resets to page 1.
func (p *Paginator) SetPageSize(n int) {
	p.mustBind()

	size := clampPageSize(n)
	if size != n {
		p.logger.Warn("page size out of range, clamped", "requested", n, "page_size", size)
	}

	p.pageSize = size
	p.page = 1
	p.logger.Debug("page size changed", "page_size", p.pageSize)
	p.emit()
}

// NextPage advances one page.
func (p *Paginator) NextPage() { p.SetPage(p.Page() + 1) }

// PrevPage goes back one page.
func (p *Paginator) PrevPage() { p.SetPage(p.Page() - 1) }

// FirstPage jumps to page 1.
func (p *Paginator) FirstPage() { p.SetPage(1) }

// LastPage jumps to the last page.
func (p *Paginator) LastPage() { p.SetPage(p.TotalPages()) }

// CanNext reports whether a next page exists.
func (p *Paginator) CanNext() bool {
	p.mustBind()
	return p.page < p.TotalPages()
}

// CanPrev reports whether a previous page exists.
func (p *Paginator) CanPrev() bool {
	p.mustBind()
	return p.page > 1
}

// PageNumbers returns the page-link window for the current page.
func (p *Paginator) PageNumbers() []int {
	p.mustBind()
	return PageNumbers(p.page, p.TotalPages(), PageWindow)
}

// PageRange returns the human range text, e.g. "1-20 of 47".
func (p *Paginator) PageRange() string {
	return PageRangeText(p.State())
}

// setTotal records the host's authoritative row count. The page is clamped
// silently because this is a data update, not a user action.
func (p *Paginator) setTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.page = ValidatePage(p.page, p.TotalPages())
}

// reset moves back to page 1 without notifying. Used by the Table when
// another slice's change already triggers a reload.
func (p *Paginator) reset() {
	p.page = 1
}

func (p *Paginator) emit() {
	if p.onChange != nil {
		p.onChange(p.page, p.pageSize)
	}
}
