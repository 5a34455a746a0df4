// Package catalog holds the artwork catalog model: rows parsed from CSV,
// the freshness tagging applied on each load, and the recipe and color
// lookup tables.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Reserved keys used when a row is encoded as a flat JSON object.
const (
	keyID        = "_id"
	keyIsNew     = "_isNew"
	keyAddedDate = "_addedDate"
)

// isoLayout matches the millisecond ISO-8601 form stored in saved blobs.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Row is one catalog record. Cells keep the column order they were created
// with. Rows are values: With returns a modified copy and never touches the
// receiver's cells.
//
// The keys "_id", "_isNew" and "_addedDate" hold ID, IsNew and AddedDate in
// the JSON form. A CSV column with one of these names is kept in memory but
// is not written by MarshalJSON, so its cells do not survive a save.
type Row struct {
	ID        int
	IsNew     bool
	AddedDate time.Time

	columns []string
	cells   map[string]string
}

// NewRow builds a row for the given header. Missing trailing values become
// empty strings and extra values are dropped. A repeated column name keeps
// its first position and its last value.
func NewRow(id int, columns, values []string) Row {
	r := Row{
		ID:      id,
		columns: make([]string, 0, len(columns)),
		cells:   make(map[string]string, len(columns)),
	}
	for i, col := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.set(col, v)
	}
	return r
}

func (r *Row) set(col, v string) {
	if r.cells == nil {
		r.cells = make(map[string]string)
	}
	if _, ok := r.cells[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.cells[col] = v
}

// Get returns the cell for col, or "" when the row has no such column.
func (r Row) Get(col string) string {
	return r.cells[col]
}

func (r Row) Has(col string) bool {
	_, ok := r.cells[col]
	return ok
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values returns the cells in column order.
func (r Row) Values() []string {
	out := make([]string, len(r.columns))
	for i, col := range r.columns {
		out[i] = r.cells[col]
	}
	return out
}

func (r Row) Clone() Row {
	out := r
	out.columns = make([]string, len(r.columns))
	copy(out.columns, r.columns)
	out.cells = make(map[string]string, len(r.cells))
	for k, v := range r.cells {
		out.cells[k] = v
	}
	return out
}

// With returns a copy of the row with col set to v. Unknown columns are
// appended.
func (r Row) With(col, v string) Row {
	out := r.Clone()
	out.set(col, v)
	return out
}

// MarshalJSON encodes the row as a flat object: "_id" first, then the cells
// in column order, then "_isNew" and "_addedDate" for new rows.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	fmt.Fprintf(&b, "%q:%d", keyID, r.ID)
	for _, col := range r.columns {
		if isReservedKey(col) {
			continue
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.cells[col])
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	if r.IsNew {
		fmt.Fprintf(&b, ",%q:true", keyIsNew)
		if !r.AddedDate.IsZero() {
			fmt.Fprintf(&b, ",%q:%q", keyAddedDate, r.AddedDate.UTC().Format(isoLayout))
		}
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON decodes a flat row object, keeping the key order of the
// input as the column order. Non-string cell values keep their JSON text.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row: expected object, got %v", tok)
	}

	*r = Row{cells: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("row: value for %q: %w", key, err)
		}
		switch key {
		case keyID:
			if err := json.Unmarshal(raw, &r.ID); err != nil {
				return fmt.Errorf("row: %s: %w", keyID, err)
			}
		case keyIsNew:
			if err := json.Unmarshal(raw, &r.IsNew); err != nil {
				return fmt.Errorf("row: %s: %w", keyIsNew, err)
			}
		case keyAddedDate:
			var s string
			if json.Unmarshal(raw, &s) == nil {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					r.AddedDate = t
				}
			}
		default:
			r.set(key, cellText(raw))
		}
	}
	_, err = dec.Token()
	return err
}

func cellText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	return string(trimmed)
}

func isReservedKey(k string) bool {
	return k == keyID || k == keyIsNew || k == keyAddedDate
}

// Table is a parsed sheet: the header and its rows.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnsOf derives the column list from the first row, skipping reserved
// keys. Rows restored from a saved blob carry no separate header.
func ColumnsOf(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0].columns))
	for _, c := range rows[0].columns {
		if isReservedKey(c) {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}
