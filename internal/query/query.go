// Package query filters and sorts catalog rows in memory. Every call
// recomputes the result from the full input; nothing is cached or indexed.
package query

import (
	"slices"
	"sort"
	"strings"

	"artdesk/internal/catalog"
)

// BlankSentinel as an enumerated-column filter value matches empty cells.
const BlankSentinel = "(Blank)"

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sort is a single sort key. A nil *Sort means unsorted.
type Sort struct {
	Column    string
	Direction Direction
}

// Query is the full view state applied to a row collection.
type Query struct {
	Search  string
	Filters map[string]string
	// Enumerated columns filter by exact match on the trimmed cell.
	Enumerated map[string]bool
	Sort       *Sort
}

// NewEnumerated builds the enumerated column set from a list of names.
func NewEnumerated(columns ...string) map[string]bool {
	m := make(map[string]bool, len(columns))
	for _, c := range columns {
		m[c] = true
	}
	return m
}

// ActiveFilterCount counts non-empty column filters plus one for a search.
func (q Query) ActiveFilterCount() int {
	n := 0
	for _, v := range q.Filters {
		if v != "" {
			n++
		}
	}
	if q.Search != "" {
		n++
	}
	return n
}

// IsZero reports whether applying q would return the input unchanged.
func (q Query) IsZero() bool {
	return q.ActiveFilterCount() == 0 && q.Sort == nil
}

// Apply runs search, then column filters, then sort. The input slice is
// never reordered or modified.
func Apply(rows []catalog.Row, q Query) []catalog.Row {
	result := slices.Clone(rows)

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		result = slices.DeleteFunc(result, func(r catalog.Row) bool {
			return !matchesSearch(r, needle)
		})
	}

	for _, col := range filterOrder(q.Filters) {
		value := q.Filters[col]
		if value == "" {
			continue
		}
		var keep func(string) bool
		if q.Enumerated[col] {
			keep = exactMatcher(value)
		} else {
			keep = substringMatcher(value)
		}
		result = slices.DeleteFunc(result, func(r catalog.Row) bool {
			return !keep(r.Get(col))
		})
	}

	if q.Sort != nil {
		sortRows(result, *q.Sort)
	}
	return result
}

func matchesSearch(r catalog.Row, needle string) bool {
	for _, v := range r.Values() {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// filterOrder gives filters a deterministic order. Filters are ANDed, so
// the order only matters for reproducibility.
func filterOrder(filters map[string]string) []string {
	cols := make([]string, 0, len(filters))
	for c := range filters {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func exactMatcher(value string) func(string) bool {
	if value == BlankSentinel {
		return func(cell string) bool { return strings.TrimSpace(cell) == "" }
	}
	return func(cell string) bool { return strings.TrimSpace(cell) == value }
}

func substringMatcher(value string) func(string) bool {
	needle := strings.ToLower(value)
	return func(cell string) bool { return strings.Contains(strings.ToLower(cell), needle) }
}

func sortRows(rows []catalog.Row, s Sort) {
	slices.SortStableFunc(rows, func(a, b catalog.Row) int {
		c := strings.Compare(strings.ToLower(a.Get(s.Column)), strings.ToLower(b.Get(s.Column)))
		if s.Direction == Descending {
			return -c
		}
		return c
	})
}

// ToggleSort advances the sort state for a click on column: ascending, then
// descending, then unsorted. A click on any other column starts ascending.
func ToggleSort(current *Sort, column string) *Sort {
	if current == nil || current.Column != column {
		return &Sort{Column: column, Direction: Ascending}
	}
	if current.Direction == Ascending {
		return &Sort{Column: column, Direction: Descending}
	}
	return nil
}

// DistinctValues lists the distinct trimmed values of column in sorted
// order, with BlankSentinel first when any cell is empty.
func DistinctValues(rows []catalog.Row, column string) []string {
	seen := make(map[string]struct{})
	blank := false
	for _, r := range rows {
		v := strings.TrimSpace(r.Get(column))
		if v == "" {
			blank = true
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen)+1)
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	if blank {
		out = append([]string{BlankSentinel}, out...)
	}
	return out
}
