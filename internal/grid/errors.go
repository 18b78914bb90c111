package grid

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Configuration errors. Returned at construction time, never absorbed.
var (
	ErrInvalidSchema   = errors.New("invalid column schema")
	ErrDuplicateColumn = errors.New("duplicate column key")
	ErrUnknownColumn   = errors.New("unknown column key")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrDuplicateFilter = errors.New("duplicate filter id")
	ErrFilterNotFound  = errors.New("filter not found")
	ErrInvalidTab      = errors.New("invalid tab index")
	ErrTabOwnership    = errors.New("tab index is owned by the tab strip")
)

// Export errors.
var (
	ErrExportBusy        = errors.New("export already in progress")
	ErrExportUnavailable = errors.New("no export handler configured")
	ErrUnknownFormat     = errors.New("unknown export format")
)

// ErrUnbound is the panic value used when a slice is used without the Table
// that owns it. This is a programmer error and is not recoverable.
var ErrUnbound = errors.New("grid: slice used outside its owning Table (construct tables with grid.New)")

// maxSuggestDistance bounds how far a misspelled key may be from a known key
// before we stop offering it as a suggestion.
const maxSuggestDistance = 3

// SchemaError describes a problem with a specific column key.
type SchemaError struct {
	Key        string
	Reason     string
	Suggestion string // Closest known key, empty if none is close enough
	Err        error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// FilterError describes a filter that failed validation.
type FilterError struct {
	ID     string
	Column string
	Reason string
	Err    error
}

func (e *FilterError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.ID != "" {
		fmt.Fprintf(&b, " %q", e.ID)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " on column %q", e.Column)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *FilterError) Unwrap() error { return e.Err }

// unknownColumn builds an ErrUnknownColumn error with a suggestion drawn from known.
func unknownColumn(key string, known []string) error {
	return &SchemaError{
		Key:        key,
		Suggestion: suggest(key, known),
		Err:        ErrUnknownColumn,
	}
}

// suggest returns the candidate closest to key by edit distance.
// Ties are broken alphabetically so the result is stable.
func suggest(key string, candidates []string) string {
	if key == "" || len(candidates) == 0 {
		return ""
	}

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	best := ""
	bestDist := maxSuggestDistance + 1
	lower := strings.ToLower(key)
	for _, c := range sorted {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
