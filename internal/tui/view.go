package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/JonMunkholm/tableview/internal/dataset"
	"github.com/JonMunkholm/tableview/internal/grid"
)

const maxColumnWidth = 28

// View renders the screen.
func (m Model) View() string {
	ts := m.active()
	v := ts.table.View()

	sections := []string{m.renderTabs(), m.renderColumnBar(v)}

	switch v.State {
	case grid.ViewLoading:
		sections = append(sections, emptyStateStyle.Render("Loading "+ts.def.Info.Label+"..."))
	case grid.ViewEmpty:
		sections = append(sections, emptyStateStyle.Render(v.EmptyMessage))
	default:
		sections = append(sections, m.renderTable(v))
	}

	if chips := renderFilters(v.Filters); chips != "" {
		sections = append(sections, chips)
	}
	sections = append(sections, footerStyle.Render(renderFooter(v)))

	switch {
	case m.err != "":
		sections = append(sections, errorStyle.Render(m.err))
	case m.status != "":
		sections = append(sections, successStyle.Render(m.status))
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	tabs := m.tabs.Tabs()
	out := make([]string, len(tabs))
	for i, t := range tabs {
		if i == m.tabs.Active() {
			out[i] = activeTabStyle.Render(t.Label)
		} else {
			out[i] = tabStyle.Render(t.Label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...) + "\n"
}

// renderColumnBar lists every column with the focused one highlighted.
// Hidden columns stay listed so they can be shown again.
func (m Model) renderColumnBar(v grid.View[dataset.Row]) string {
	parts := make([]string, len(v.ColumnMenu))
	for i, c := range v.ColumnMenu {
		style := lipgloss.NewStyle().Foreground(colorMuted)
		switch {
		case i == m.column:
			style = focusedHeaderStyle
		case !c.Visible:
			style = hiddenColumnStyle
		}
		parts[i] = style.Render(c.Heading)
	}
	return fmt.Sprintf("Columns %d/%d: %s", v.VisibleColumns, v.TotalColumns, strings.Join(parts, " "))
}

func (m Model) renderTable(v grid.View[dataset.Row]) string {
	widths := columnWidths(v)
	focused, _ := m.focusedColumn()

	var b strings.Builder

	marker := "[ ] "
	if v.AllSelected {
		marker = "[x] "
	}
	cells := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		style := headerStyle
		if h.Key == focused.Key {
			style = focusedHeaderStyle
		}
		cells[i] = style.Render(pad(h.Heading+sortArrow(h.SortDirection), widths[i], h.Numeric))
	}
	b.WriteString(headerStyle.Render(marker) + strings.Join(cells, headerStyle.Render("  ")))
	b.WriteString("\n")

	for r, row := range v.Rows {
		marker := "[ ] "
		if row.Selected {
			marker = "[x] "
		}
		line := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			text := pad(c.Text, widths[i], c.Numeric)
			if c.Warning != nil && r != m.cursor {
				text = warningCellStyle.Render(text)
			}
			line[i] = text
		}

		style := rowStyle
		switch {
		case r == m.cursor:
			style = cursorRowStyle
		case row.Selected:
			style = selectedRowStyle
		}
		b.WriteString(style.Render(marker + strings.Join(line, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}

// columnWidths sizes each visible column to its widest cell, capped.
func columnWidths(v grid.View[dataset.Row]) []int {
	widths := make([]int, len(v.Headers))
	for i, h := range v.Headers {
		widths[i] = lipgloss.Width(h.Heading + sortArrow(h.SortDirection))
	}
	for _, row := range v.Rows {
		for i, c := range row.Cells {
			if w := lipgloss.Width(c.Text); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
	}
	return widths
}

// pad truncates s to w cells and pads it, right aligned for numbers.
func pad(s string, w int, numeric bool) string {
	s = truncate(s, w)
	gap := strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
	if numeric {
		return gap + s
	}
	return s + gap
}

func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		if out := string(runes[:n]) + "…"; lipgloss.Width(out) <= w {
			return out
		}
	}
	return "…"
}

func sortArrow(d grid.Direction) string {
	switch d {
	case grid.Asc:
		return " ▲"
	case grid.Desc:
		return " ▼"
	}
	return ""
}

func renderFilters(filters []grid.Filter) string {
	if len(filters) == 0 {
		return ""
	}
	chips := make([]string, 0, len(filters))
	for _, f := range filters {
		label := f.Label
		if label == "" {
			label = fmt.Sprintf("%s %s %s", f.ColumnID, f.Operator.Label(), f.Value.String())
		}
		if f.Disabled {
			label += " (off)"
		}
		chips = append(chips, filterChipStyle.Render(label))
	}
	return "Filters: " + strings.Join(chips, " ")
}

func renderFooter(v grid.View[dataset.Row]) string {
	p := v.Pagination
	parts := []string{v.PageRange}

	pages := make([]string, len(v.PageNumbers))
	for i, n := range v.PageNumbers {
		if n == p.Page {
			pages[i] = "[" + strconv.Itoa(n) + "]"
		} else {
			pages[i] = strconv.Itoa(n)
		}
	}
	if len(pages) > 0 {
		parts = append(parts, fmt.Sprintf("page %s of %s", strings.Join(pages, " "), humanize.Comma(int64(p.TotalPages))))
	}
	parts = append(parts, fmt.Sprintf("%d per page", p.PageSize))

	if v.Sort != nil {
		parts = append(parts, fmt.Sprintf("sorted by %s %s", v.Sort.ColumnID, v.Sort.Direction))
	}
	if v.HasSelection {
		parts = append(parts, humanize.Comma(int64(v.SelectionCount))+" selected")
	}
	if v.ExportBusy {
		parts = append(parts, "exporting...")
	}
	return strings.Join(parts, " · ")
}
