package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"artdesk/internal/catalog"
	"artdesk/internal/config"
	"artdesk/internal/query"
	"artdesk/internal/report"
)

const (
	maxCellWidth = 24
	minCellWidth = 4
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	newRowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("artdesk"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d of %d rows", len(m.rows), m.total)))
	if n := catalog.CountNew(m.rows); n > 0 {
		b.WriteString(newRowStyle.Render(fmt.Sprintf("  %d new", n)))
	}
	if m.sess.Pending() {
		b.WriteString(mutedStyle.Render("  saving..."))
	}
	b.WriteString("\n")
	b.WriteString(m.renderQuery())
	b.WriteString("\n\n")

	switch {
	case m.mode == modeReport:
		b.WriteString(m.renderReport())
	case m.total == 0:
		b.WriteString("No data loaded. Run `artdesk browse --file data.csv` or `--sheet <url>`.")
	case len(m.rows) == 0:
		b.WriteString("No rows match the current search and filters. Press 'c' to clear.")
	default:
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n---\n")
	if m.detail && m.mode != modeReport {
		b.WriteString(m.renderDetail())
		b.WriteString("\n")
	}
	switch m.mode {
	case modeSearch, modeAsk, modeFilter, modeEdit, modeRecipe, modeExportPath:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s/%s/%s move • %s search • %s ask • %s filter • %s clear • %s sort • %s edit • %s recipe • %s detail • %s export • %s reports • %s quit",
		k.Up, k.Down, k.Left, k.Right, k.Search, k.Ask, k.Filter, k.ClearFilter, k.Sort, k.Edit, k.Recipe, k.Detail, k.Export, k.Report, k.Quit)
}

func (m Model) renderQuery() string {
	var parts []string
	if m.q.Search != "" {
		parts = append(parts, fmt.Sprintf("search:%q", m.q.Search))
	}
	for _, col := range slices.Sorted(maps.Keys(m.q.Filters)) {
		if v := m.q.Filters[col]; v != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", col, v))
		}
	}
	if m.q.Sort != nil {
		parts = append(parts, fmt.Sprintf("sort:%s %s", m.q.Sort.Column, m.q.Sort.Direction))
	}
	if len(parts) == 0 {
		return mutedStyle.Render("no filters")
	}
	return strings.Join(parts, "  ")
}

// visibleColumns picks the window of columns that fits the terminal width
// and contains the column cursor.
func (m Model) visibleColumns(widths []int) (first, last int) {
	if len(widths) == 0 {
		return 0, 0
	}
	first = clampCursor(m.col, len(widths))
	used := widths[first]
	last = first + 1
	for last < len(widths) && used+widths[last]+2 <= m.width {
		used += widths[last] + 2
		last++
	}
	for first > 0 && used+widths[first-1]+2 <= m.width {
		first--
		used += widths[first] + 2
	}
	return first, last
}

// visibleRows picks the window of rows around the cursor.
func (m Model) visibleRows() (first, last int) {
	height := m.height - 10
	if m.detail {
		height -= 6
	}
	if height < 3 {
		height = 3
	}
	first = m.cursor - height/2
	if first+height > len(m.rows) {
		first = len(m.rows) - height
	}
	if first < 0 {
		first = 0
	}
	last = first + height
	if last > len(m.rows) {
		last = len(m.rows)
	}
	return first, last
}

func (m Model) columnWidths(first, last int) []int {
	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		w := lipgloss.Width(col)
		for _, r := range m.rows[first:last] {
			if cw := lipgloss.Width(r.Get(col)); cw > w {
				w = cw
			}
		}
		widths[i] = min(max(w, minCellWidth), maxCellWidth)
	}
	return widths
}

func (m Model) renderTable() string {
	rowFirst, rowLast := m.visibleRows()
	widths := m.columnWidths(rowFirst, rowLast)
	colFirst, colLast := m.visibleColumns(widths)

	var b strings.Builder
	b.WriteString("  ")
	for i := colFirst; i < colLast; i++ {
		name := m.columns[i]
		if m.q.Sort != nil && m.q.Sort.Column == name {
			if m.q.Sort.Direction == query.Ascending {
				name += " ^"
			} else {
				name += " v"
			}
		}
		b.WriteString(headerStyle.Render(pad(name, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	for ri := rowFirst; ri < rowLast; ri++ {
		r := m.rows[ri]
		cursor := "  "
		if ri == m.cursor {
			cursor = "> "
		}
		b.WriteString(cursor)
		for i := colFirst; i < colLast; i++ {
			cell := pad(r.Get(m.columns[i]), widths[i])
			switch {
			case ri == m.cursor && i == m.col:
				cell = selectedStyle.Render(cell)
			case r.IsNew:
				cell = newRowStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	row, ok := m.currentRow()
	if !ok {
		return "No row selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Row %d", row.ID))
	if row.IsNew {
		b.WriteString(newRowStyle.Render(" • new since " + row.AddedDate.Local().Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")
	colors := m.sess.Colors()
	for _, col := range m.columns {
		v := row.Get(col)
		b.WriteString(fmt.Sprintf("%-*s : %s", maxCellWidth, truncate(col, maxCellWidth), emptyPlaceholder(v)))
		if c, ok := catalog.FindColor(colors, v); ok && v != "" {
			b.WriteString(" " + lipgloss.NewStyle().Background(lipgloss.Color(c.Hex)).Render("  ") + mutedStyle.Render(" "+c.Hex))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderReport() string {
	var b strings.Builder
	rows := m.sess.Rows()
	switch m.report {
	case reportNewlyAdded:
		b.WriteString(titleStyle.Render("Newly Added") + mutedStyle.Render("  |  Missing Critical Data") + "\n\n")
		_ = report.WriteNewlyAdded(&b, report.BuildNewlyAdded(rows, m.now()))
	case reportMissingData:
		b.WriteString(mutedStyle.Render("Newly Added  |  ") + titleStyle.Render("Missing Critical Data") + "\n\n")
		_ = report.WriteCompletion(&b, report.BuildCompletion(rows))
	}
	return b.String()
}

func pad(v string, width int) string {
	v = truncate(v, width)
	if w := lipgloss.Width(v); w < width {
		v += strings.Repeat(" ", width-w)
	}
	return v
}

func truncate(v string, width int) string {
	v = strings.ReplaceAll(v, "\n", " ")
	if lipgloss.Width(v) <= width {
		return v
	}
	runes := []rune(v)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
