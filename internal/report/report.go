// Package report computes freshness and completion summaries over catalog
// rows.
package report

import (
	"math"
	"strconv"
	"strings"
	"time"

	"artdesk/internal/catalog"
)

const (
	RecentWindow   = 10 * 24 * time.Hour
	ExtendedWindow = 30 * 24 * time.Hour
	// MissingPreviewLimit caps the rows listed per incomplete field.
	MissingPreviewLimit = 50
)

// FieldKind says how a critical field is validated.
type FieldKind string

const (
	KindURL     FieldKind = "url"
	KindNumeric FieldKind = "numeric"
)

// CriticalField is a column that must be filled before an item is ready.
type CriticalField struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// CriticalFields are checked by both reports.
var CriticalFields = []CriticalField{
	{Name: "AW_Front", Kind: KindURL},
	{Name: "Spec_Sheet", Kind: KindURL},
	{Name: "Placement from Collar", Kind: KindNumeric},
}

// dateColumns are consulted in order for a row's creation date.
var dateColumns = []string{"Date Created", "Created Date", "Created"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

func IsURL(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.")
}

func IsNumeric(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (f CriticalField) Satisfied(row catalog.Row) bool {
	v := row.Get(f.Name)
	switch f.Kind {
	case KindURL:
		return IsURL(v)
	case KindNumeric:
		return IsNumeric(v)
	}
	return false
}

// Ready reports whether every critical field of row is filled.
func Ready(row catalog.Row) bool {
	for _, f := range CriticalFields {
		if !f.Satisfied(row) {
			return false
		}
	}
	return true
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// addedWithin reports whether the row was created or tagged new at or after
// cutoff. Rows tagged new in this session count regardless of date.
func addedWithin(row catalog.Row, cutoff time.Time) bool {
	for _, col := range dateColumns {
		if t, ok := parseDate(row.Get(col)); ok && !t.Before(cutoff) {
			return true
		}
	}
	if !row.AddedDate.IsZero() && !row.AddedDate.Before(cutoff) {
		return true
	}
	return row.IsNew
}

// NewlyAdded lists items added within the recent window.
type NewlyAdded struct {
	Items      []catalog.Row `json:"items"`
	Ready      int           `json:"ready"`
	NotReady   int           `json:"notReady"`
	Last30Days int           `json:"last30Days"`
}

func (n NewlyAdded) ReadyPercent() float64 {
	return percent(n.Ready, len(n.Items))
}

func (n NewlyAdded) NotReadyPercent() float64 {
	return percent(n.NotReady, len(n.Items))
}

func BuildNewlyAdded(rows []catalog.Row, now time.Time) NewlyAdded {
	recent := now.Add(-RecentWindow)
	extended := now.Add(-ExtendedWindow)

	var n NewlyAdded
	for _, r := range rows {
		if addedWithin(r, extended) {
			n.Last30Days++
		}
		if !addedWithin(r, recent) {
			continue
		}
		n.Items = append(n.Items, r)
		if Ready(r) {
			n.Ready++
		} else {
			n.NotReady++
		}
	}
	return n
}

// FieldStat is the completion of one critical field.
type FieldStat struct {
	Field          CriticalField `json:"field"`
	TotalRows      int           `json:"totalRows"`
	WithValue      int           `json:"withValue"`
	WithoutValue   int           `json:"withoutValue"`
	PercentWith    float64       `json:"percentWith"`
	PercentWithout float64       `json:"percentWithout"`
	// Missing holds at most MissingPreviewLimit rows lacking the field.
	Missing []catalog.Row `json:"missing"`
}

// Completion summarizes critical-field coverage across all rows.
type Completion struct {
	TotalRows      int         `json:"totalRows"`
	Fields         []FieldStat `json:"fields"`
	TotalCells     int         `json:"totalCells"`
	CellsWith      int         `json:"cellsWith"`
	CellsWithout   int         `json:"cellsWithout"`
	PercentWith    float64     `json:"percentWith"`
	PercentWithout float64     `json:"percentWithout"`
}

func BuildCompletion(rows []catalog.Row) Completion {
	c := Completion{
		TotalRows:  len(rows),
		TotalCells: len(rows) * len(CriticalFields),
	}
	for _, f := range CriticalFields {
		st := FieldStat{Field: f, TotalRows: len(rows)}
		for _, r := range rows {
			if f.Satisfied(r) {
				st.WithValue++
				continue
			}
			st.WithoutValue++
			if len(st.Missing) < MissingPreviewLimit {
				st.Missing = append(st.Missing, r)
			}
		}
		st.PercentWith = percent(st.WithValue, st.TotalRows)
		st.PercentWithout = percent(st.WithoutValue, st.TotalRows)
		c.CellsWith += st.WithValue
		c.CellsWithout += st.WithoutValue
		c.Fields = append(c.Fields, st)
	}
	c.PercentWith = percent(c.CellsWith, c.TotalCells)
	c.PercentWithout = percent(c.CellsWithout, c.TotalCells)
	return c
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
