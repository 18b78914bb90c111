package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the table browser keybindings.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	FirstPage    key.Binding
	LastPage     key.Binding
	PrevColumn   key.Binding
	NextColumn   key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Sort         key.Binding
	ClearSort    key.Binding
	Select       key.Binding
	SelectAll    key.Binding
	ToggleColumn key.Binding
	ResetColumns key.Binding
	FilterValue  key.Binding
	ClearFilters key.Binding
	ExportCSV    key.Binding
	ExportExcel  key.Binding
	ExportPDF    key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "pgup", "h"),
			key.WithHelp("←/pgup", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "pgdown", "l"),
			key.WithHelp("→/pgdn", "next page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "last page"),
		),
		PrevColumn: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev col"),
		),
		NextColumn: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next col"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next dataset"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev dataset"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort col"),
		),
		ClearSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "clear sort"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select page"),
		),
		ToggleColumn: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "show/hide col"),
		),
		ResetColumns: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset cols"),
		),
		FilterValue: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter value"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "clear filters"),
		),
		ExportCSV: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "csv"),
		),
		ExportExcel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "excel"),
		),
		ExportPDF: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pdf"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.NextPage, k.Sort, k.Select, k.ExportCSV, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.FirstPage, k.LastPage},
		{k.PrevColumn, k.NextColumn, k.Sort, k.ClearSort, k.ToggleColumn, k.ResetColumns},
		{k.Select, k.SelectAll, k.FilterValue, k.ClearFilters},
		{k.NextTab, k.PrevTab, k.ExportCSV, k.ExportExcel, k.ExportPDF, k.Quit},
	}
}
