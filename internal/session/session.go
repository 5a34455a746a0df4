// Package session owns the working state of one operator: the loaded rows,
// the known-keys set from the previous load, and the recipe and color
// tables. Every mutation schedules a debounced save through the gateway.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"artdesk/internal/catalog"
	"artdesk/internal/gateway"
	"artdesk/internal/query"
)

var (
	ErrRowNotFound   = errors.New("row not found")
	ErrEntryNotFound = errors.New("entry not found")
)

// Table names used for save metrics and logs.
const (
	TableData    = "data"
	TableRecipes = "recipes"
	TableColors  = "colors"
)

// Gateway is the subset of the gateway client a session uses.
type Gateway interface {
	LoadData(ctx context.Context) ([]catalog.Row, error)
	SaveData(ctx context.Context, rows []catalog.Row) (gateway.SaveResult, error)
	LoadRecipes(ctx context.Context) ([]catalog.RecipeEntry, error)
	SaveRecipes(ctx context.Context, recipes []catalog.RecipeEntry) (gateway.SaveResult, error)
	LoadColors(ctx context.Context) ([]catalog.ColorEntry, error)
	SaveColors(ctx context.Context, colors []catalog.ColorEntry) (gateway.SaveResult, error)
}

type Options struct {
	KeyField   string
	SiloColumn string
	Debounce   time.Duration
	Logger     *zap.Logger
	// Now stamps newly seen rows. Defaults to time.Now.
	Now func() time.Time
}

type Session struct {
	gw     Gateway
	opts   Options
	logger *zap.Logger

	mu      sync.RWMutex
	known   catalog.KnownKeys
	columns []string
	rows    []catalog.Row
	recipes []catalog.RecipeEntry
	colors  []catalog.ColorEntry

	data        *Saver[[]catalog.Row]
	recipeSaver *Saver[[]catalog.RecipeEntry]
	colorSaver  *Saver[[]catalog.ColorEntry]
}

func New(gw Gateway, opts Options) *Session {
	if opts.KeyField == "" {
		opts.KeyField = catalog.DefaultKeyField
	}
	if opts.SiloColumn == "" {
		opts.SiloColumn = catalog.SiloColumn
	}
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		gw:     gw,
		opts:   opts,
		logger: logger,
		known:  catalog.KnownKeys{},
	}
	s.data = NewSaver(TableData, opts.Debounce, logger, func(ctx context.Context, rows []catalog.Row) error {
		_, err := gw.SaveData(ctx, rows)
		return err
	})
	s.recipeSaver = NewSaver(TableRecipes, opts.Debounce, logger, func(ctx context.Context, recipes []catalog.RecipeEntry) error {
		_, err := gw.SaveRecipes(ctx, recipes)
		return err
	})
	s.colorSaver = NewSaver(TableColors, opts.Debounce, logger, func(ctx context.Context, colors []catalog.ColorEntry) error {
		_, err := gw.SaveColors(ctx, colors)
		return err
	})
	return s
}

// LoadResult summarizes a CSV load.
type LoadResult struct {
	Rows int
	New  int
}

// LoadCSV parses text, tags rows against the keys of the previous load and
// replaces the working rows.
func (s *Session) LoadCSV(text string) LoadResult {
	return s.LoadTable(catalog.Parse(text))
}

func (s *Session) LoadTable(t catalog.Table) LoadResult {
	s.mu.Lock()
	tagged, next := catalog.Tag(t.Rows, s.known, s.opts.KeyField, s.opts.Now())
	s.known = next
	s.columns = slices.Clone(t.Columns)
	s.rows = tagged
	snap := slices.Clone(tagged)
	s.mu.Unlock()

	s.data.Schedule(snap)
	res := LoadResult{Rows: len(tagged), New: catalog.CountNew(tagged)}
	s.logger.Info("loaded rows", zap.Int("rows", res.Rows), zap.Int("new", res.New))
	return res
}

// Restore loads all three tables from the gateway concurrently. State is
// replaced only if every load succeeds.
func (s *Session) Restore(ctx context.Context) error {
	var (
		rows    []catalog.Row
		recipes []catalog.RecipeEntry
		colors  []catalog.ColorEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.gw.LoadData(gctx)
		return err
	})
	g.Go(func() (err error) {
		recipes, err = s.gw.LoadRecipes(gctx)
		return err
	})
	g.Go(func() (err error) {
		colors, err = s.gw.LoadColors(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("restore failed, keeping current state", zap.Error(err))
		return fmt.Errorf("restore: %w", err)
	}

	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.Get(s.opts.KeyField))
	}

	s.mu.Lock()
	s.rows = rows
	s.columns = catalog.ColumnsOf(rows)
	s.known = catalog.NewKnownKeys(keys...)
	s.recipes = recipes
	s.colors = colors
	s.mu.Unlock()

	s.logger.Info("restored session",
		zap.Int("rows", len(rows)),
		zap.Int("recipes", len(recipes)),
		zap.Int("colors", len(colors)),
	)
	return nil
}

func (s *Session) Rows() []catalog.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

func (s *Session) Columns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.columns)
}

func (s *Session) Row(id int) (catalog.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return catalog.Row{}, fmt.Errorf("row %d: %w", id, ErrRowNotFound)
	}
	return s.rows[i], nil
}

func (s *Session) indexOf(id int) int {
	return slices.IndexFunc(s.rows, func(r catalog.Row) bool { return r.ID == id })
}

// UpdateCell sets one cell of the row with the given id.
func (s *Session) UpdateCell(id int, column, value string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("row %d: %w", id, ErrRowNotFound)
	}
	s.rows[i] = s.rows[i].With(column, value)
	if !slices.Contains(s.columns, column) {
		s.columns = append(s.columns, column)
	}
	snap := slices.Clone(s.rows)
	s.mu.Unlock()

	s.data.Schedule(snap)
	return nil
}

// EditRecipe stores a recipe value in column. When the row has a blank silo
// and a slot letter is given the value is looked up in the recipe table;
// otherwise raw is stored as typed. It returns the stored value.
func (s *Session) EditRecipe(id int, column, letter, raw string) (string, error) {
	s.mu.RLock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.RUnlock()
		return "", fmt.Errorf("row %d: %w", id, ErrRowNotFound)
	}
	silo := s.rows[i].Get(s.opts.SiloColumn)
	value := raw
	if silo != "" && letter != "" {
		value = catalog.ResolveFor(silo, s.recipes, letter)
	}
	s.mu.RUnlock()

	return value, s.UpdateCell(id, column, value)
}

// Export renders rows as CSV: the rows matching q, or every row when all is
// set. The sort of q applies either way.
func (s *Session) Export(q query.Query, all bool) string {
	s.mu.RLock()
	rows, columns := slices.Clone(s.rows), slices.Clone(s.columns)
	s.mu.RUnlock()
	if all {
		q = query.Query{Sort: q.Sort}
	}
	if !q.IsZero() {
		rows = query.Apply(rows, q)
	}
	return catalog.Serialize(rows, columns)
}

func (s *Session) Recipes() []catalog.RecipeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recipes)
}

// ReplaceRecipes swaps in a whole recipe table, as from a CSV import.
func (s *Session) ReplaceRecipes(recipes []catalog.RecipeEntry) {
	s.mu.Lock()
	s.recipes = slices.Clone(recipes)
	snap := slices.Clone(s.recipes)
	s.mu.Unlock()
	s.recipeSaver.Schedule(snap)
}

// AddRecipe appends an empty entry and returns it.
func (s *Session) AddRecipe() catalog.RecipeEntry {
	e := catalog.NewRecipeEntry()
	s.mu.Lock()
	s.recipes = append(s.recipes, e)
	snap := slices.Clone(s.recipes)
	s.mu.Unlock()
	s.recipeSaver.Schedule(snap)
	return e
}

func (s *Session) UpdateRecipe(e catalog.RecipeEntry) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.recipes, func(r catalog.RecipeEntry) bool { return r.ID == e.ID })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("recipe %s: %w", e.ID, ErrEntryNotFound)
	}
	s.recipes[i] = e
	snap := slices.Clone(s.recipes)
	s.mu.Unlock()
	s.recipeSaver.Schedule(snap)
	return nil
}

func (s *Session) DeleteRecipe(id string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.recipes, func(r catalog.RecipeEntry) bool { return r.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("recipe %s: %w", id, ErrEntryNotFound)
	}
	s.recipes = slices.Delete(slices.Clone(s.recipes), i, i+1)
	snap := slices.Clone(s.recipes)
	s.mu.Unlock()
	s.recipeSaver.Schedule(snap)
	return nil
}

func (s *Session) Colors() []catalog.ColorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.colors)
}

func (s *Session) ReplaceColors(colors []catalog.ColorEntry) {
	s.mu.Lock()
	s.colors = slices.Clone(colors)
	snap := slices.Clone(s.colors)
	s.mu.Unlock()
	s.colorSaver.Schedule(snap)
}

func (s *Session) AddColor(name, hex string) catalog.ColorEntry {
	c := catalog.NewColorEntry()
	c.Name = name
	if hex != "" {
		c.Hex = hex
	}
	s.mu.Lock()
	s.colors = append(s.colors, c)
	snap := slices.Clone(s.colors)
	s.mu.Unlock()
	s.colorSaver.Schedule(snap)
	return c
}

func (s *Session) UpdateColor(c catalog.ColorEntry) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.colors, func(e catalog.ColorEntry) bool { return e.ID == c.ID })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("color %s: %w", c.ID, ErrEntryNotFound)
	}
	s.colors[i] = c
	snap := slices.Clone(s.colors)
	s.mu.Unlock()
	s.colorSaver.Schedule(snap)
	return nil
}

func (s *Session) DeleteColor(id string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.colors, func(e catalog.ColorEntry) bool { return e.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("color %s: %w", id, ErrEntryNotFound)
	}
	s.colors = slices.Delete(slices.Clone(s.colors), i, i+1)
	snap := slices.Clone(s.colors)
	s.mu.Unlock()
	s.colorSaver.Schedule(snap)
	return nil
}

// Pending reports whether any table has an unsaved change.
func (s *Session) Pending() bool {
	return s.data.Pending() || s.recipeSaver.Pending() || s.colorSaver.Pending()
}

// Flush writes every pending change now.
func (s *Session) Flush(ctx context.Context) error {
	return errors.Join(
		s.data.Flush(ctx),
		s.recipeSaver.Flush(ctx),
		s.colorSaver.Flush(ctx),
	)
}

// Close drops unsaved changes and stops the save timers. Call Flush first to
// keep them.
func (s *Session) Close() {
	s.data.Stop()
	s.recipeSaver.Stop()
	s.colorSaver.Stop()
}
