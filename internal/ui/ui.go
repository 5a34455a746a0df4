package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"artdesk/internal/catalog"
	"artdesk/internal/config"
	"artdesk/internal/query"
	"artdesk/internal/session"
)

type mode int

const (
	modeTable mode = iota
	modeSearch
	modeAsk
	modeFilter
	modeEdit
	modeRecipe
	modeExportChoice
	modeExportPath
	modeReport
)

type reportKind int

const (
	reportNewlyAdded reportKind = iota
	reportMissingData
)

// flushTimeout bounds the final save on quit.
const flushTimeout = 10 * time.Second

type tickMsg time.Time

type Model struct {
	sess      *session.Session
	cfg       config.Config
	q         query.Query
	rows      []catalog.Row
	total     int
	columns   []string
	cursor    int
	col       int
	mode      mode
	input     textinput.Model
	status    string
	detail    bool
	exportAll bool
	report    reportKind
	width     int
	height    int
	now       func() time.Time
}

func New(sess *session.Session, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = 40

	m := Model{
		sess:   sess,
		cfg:    cfg,
		q:      query.Query{Enumerated: query.NewEnumerated(cfg.Catalog.EnumeratedColumns...)},
		input:  ti,
		mode:   modeTable,
		status: "Press '/' to search, 'f' to filter, 's' to sort, 'e' to edit.",
		width:  120,
		height: 30,
		now:    time.Now,
	}
	m.refresh()
	return m
}

// Run browses sess until the user quits, then writes any pending saves.
func Run(sess *session.Session, cfg config.Config) error {
	program := tea.NewProgram(New(sess, cfg), tea.WithAltScreen())
	_, err := program.Run()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if ferr := sess.Flush(ctx); ferr != nil && err == nil {
		err = fmt.Errorf("save on exit: %w", ferr)
	}
	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) refresh() {
	all := m.sess.Rows()
	m.total = len(all)
	m.columns = m.sess.Columns()
	m.rows = query.Apply(all, m.q)
	m.cursor = clampCursor(m.cursor, len(m.rows))
	m.col = clampCursor(m.col, len(m.columns))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 10
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeTable:
		return m.updateTableMode(key)
	case modeReport:
		return m.updateReportMode(key)
	case modeExportChoice:
		return m.updateExportChoice(key)
	default:
		return m.updateInputMode(key, msg)
	}
}

func (m Model) currentRow() (catalog.Row, bool) {
	if len(m.rows) == 0 {
		return catalog.Row{}, false
	}
	return m.rows[clampCursor(m.cursor, len(m.rows))], true
}

func (m Model) currentColumn() string {
	if len(m.columns) == 0 {
		return ""
	}
	return m.columns[clampCursor(m.col, len(m.columns))]
}

func (m Model) startInput(md mode, value, placeholder, status string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	m.status = status
	return m, m.input.Focus()
}

func (m Model) updateTableMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.rows))
	case k.Right, "right":
		m.col = clampCursor(m.col+1, len(m.columns))
	case k.Left, "left":
		m.col = clampCursor(m.col-1, len(m.columns))
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = clampCursor(len(m.rows)-1, len(m.rows))
	case k.Sort:
		col := m.currentColumn()
		if col == "" {
			return m, nil
		}
		m.q.Sort = query.ToggleSort(m.q.Sort, col)
		m.refresh()
		if m.q.Sort == nil {
			m.status = "Sort cleared"
		} else {
			m.status = fmt.Sprintf("Sorted by %s (%s)", m.q.Sort.Column, m.q.Sort.Direction)
		}
	case k.Search:
		return m.startInput(modeSearch, m.q.Search, "search all columns", "Search: type and press Enter, Esc to cancel")
	case k.Ask:
		return m.startInput(modeAsk, "", "e.g. show items missing spec sheet", "Ask: describe what you are looking for")
	case k.Filter:
		col := m.currentColumn()
		if col == "" {
			return m, nil
		}
		status := fmt.Sprintf("Filter %s: empty value removes the filter", col)
		if m.q.Enumerated[col] {
			status = fmt.Sprintf("Filter %s: one of %s", col, choices(query.DistinctValues(m.sess.Rows(), col)))
		}
		return m.startInput(modeFilter, m.q.Filters[col], col, status)
	case k.ClearFilter:
		m.q.Search = ""
		m.q.Filters = nil
		m.refresh()
		m.status = "Filters cleared"
	case k.Edit:
		row, ok := m.currentRow()
		if !ok {
			m.status = "No rows"
			return m, nil
		}
		col := m.currentColumn()
		if col == m.recipeColumn() {
			return m.startRecipe(row)
		}
		return m.startInput(modeEdit, row.Get(col), col, fmt.Sprintf("Edit %s of row %d", col, row.ID))
	case k.Recipe:
		row, ok := m.currentRow()
		if !ok {
			m.status = "No rows"
			return m, nil
		}
		return m.startRecipe(row)
	case k.Detail:
		m.detail = !m.detail
	case k.Export:
		m.mode = modeExportChoice
		m.status = fmt.Sprintf("Export: (f)iltered %d rows or (a)ll %d rows? Esc to cancel", len(m.rows), m.total)
	case k.Report:
		m.mode = modeReport
		m.report = reportNewlyAdded
		m.status = "Reports: tab to switch, Esc to return"
	}
	return m, nil
}

func (m Model) recipeColumn() string {
	if m.cfg.Catalog.RecipeColumn != "" {
		return m.cfg.Catalog.RecipeColumn
	}
	return catalog.RecipeColumn
}

func (m Model) startRecipe(row catalog.Row) (tea.Model, tea.Cmd) {
	col := m.recipeColumn()
	silo := row.Get(m.cfg.Catalog.SiloColumn)
	status := fmt.Sprintf("Recipe for row %d: enter a slot letter (A-E) or a value", row.ID)
	if silo == "" {
		status = fmt.Sprintf("Recipe for row %d: no blank silo, value is stored as typed", row.ID)
	}
	return m.startInput(modeRecipe, row.Get(col), "A-E", status)
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeTable
		m.input.Blur()
		m.input.SetValue("")
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		value := m.input.Value()
		m.input.Blur()
		m.input.SetValue("")
		md := m.mode
		m.mode = modeTable
		return m.submit(md, value)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submit(md mode, value string) (tea.Model, tea.Cmd) {
	switch md {
	case modeSearch:
		m.q.Search = strings.TrimSpace(value)
		m.cursor = 0
		m.refresh()
		m.status = fmt.Sprintf("%d of %d rows", len(m.rows), m.total)
	case modeAsk:
		term := query.InterpretNaturalQuery(value)
		m.q.Search = term
		m.cursor = 0
		m.refresh()
		m.status = fmt.Sprintf("Searching for %q: %d of %d rows", term, len(m.rows), m.total)
	case modeFilter:
		col := m.currentColumn()
		value = strings.TrimSpace(value)
		if m.q.Filters == nil {
			m.q.Filters = map[string]string{}
		}
		if value == "" {
			delete(m.q.Filters, col)
		} else {
			m.q.Filters[col] = value
		}
		m.cursor = 0
		m.refresh()
		m.status = fmt.Sprintf("%d filters active: %d of %d rows", m.q.ActiveFilterCount(), len(m.rows), m.total)
	case modeEdit:
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		col := m.currentColumn()
		if err := m.sess.UpdateCell(row.ID, col, value); err != nil {
			m.status = fmt.Sprintf("edit failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = fmt.Sprintf("Updated %s", col)
	case modeRecipe:
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		stored, err := m.sess.EditRecipe(row.ID, m.recipeColumn(), slotLetter(value), value)
		if err != nil {
			m.status = fmt.Sprintf("recipe failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = fmt.Sprintf("Recipe set to %s", emptyPlaceholder(stored))
	case modeExportPath:
		path := strings.TrimSpace(value)
		if path == "" {
			path = DefaultExportName(m.now())
		}
		csv := m.sess.Export(m.q, m.exportAll)
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			m.status = fmt.Sprintf("export failed: %v", err)
			return m, nil
		}
		m.status = "Exported to " + path
	}
	return m, nil
}

// slotLetter returns v as a recipe slot letter, or "" if it is not one.
func slotLetter(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	for _, l := range catalog.SlotLetters {
		if v == l {
			return l
		}
	}
	return ""
}

// DefaultExportName is the file name offered for CSV exports.
func DefaultExportName(now time.Time) string {
	return "export-" + now.Format("2006-01-02") + ".csv"
}

func (m Model) updateExportChoice(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "f", "F":
		m.exportAll = false
	case "a", "A":
		m.exportAll = true
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeTable
		m.status = "Export cancelled"
		return m, nil
	default:
		return m, nil
	}
	return m.startInput(modeExportPath, DefaultExportName(m.now()), "file name", "Export to file: Enter to write")
}

func (m Model) updateReportMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case "tab", m.cfg.Keys.Right, m.cfg.Keys.Left, "right", "left":
		m.report = reportKind(wrapIndex(int(m.report)+1, 2))
	case m.cfg.Keys.Cancel, "esc", m.cfg.Keys.Report:
		m.mode = modeTable
		m.status = fmt.Sprintf("%d of %d rows", len(m.rows), m.total)
	}
	return m, nil
}

func choices(values []string) string {
	const max = 8
	if len(values) > max {
		return strings.Join(values[:max], ", ") + fmt.Sprintf(", ... (%d more)", len(values)-max)
	}
	return strings.Join(values, ", ")
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
