package catalog

import (
	"strings"
)

// Parse reads CSV text into a table. The first line is the header; lines
// that are blank after trimming are skipped. Malformed input never fails:
// short rows are padded with empty cells and surplus values are dropped.
//
// A double quote toggles quoted mode and a comma separates fields only
// outside quotes. Inside a quoted field a doubled quote yields a literal
// quote. Fields never span lines.
func Parse(text string) Table {
	lines := splitLines(text)

	var t Table
	if strings.TrimSpace(lines[0]) != "" {
		t.Columns = decodeLine(lines[0])
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, NewRow(len(rows), t.Columns, decodeLine(line)))
	}
	t.Rows = rows
	return t
}

// splitLines drops a leading byte order mark and splits on "\n".
func splitLines(text string) []string {
	return strings.Split(strings.TrimPrefix(text, "\ufeff"), "\n")
}

func decodeLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// Serialize writes rows as CSV using the given column order. The header is
// the column list. A value is quoted when it contains a comma, a quote or a
// line break; embedded quotes are doubled. Cells a row lacks are written
// empty. Lines are joined by "\n" with no trailing newline.
func Serialize(rows []Row, columns []string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinFields(columns))
	vals := make([]string, len(columns))
	for _, r := range rows {
		for i, col := range columns {
			vals[i] = r.Get(col)
		}
		lines = append(lines, joinFields(vals))
	}
	return strings.Join(lines, "\n")
}

func joinFields(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteField(f))
	}
	return b.String()
}

func quoteField(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
