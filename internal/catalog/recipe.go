package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// SiloColumn is the row column joined against RecipeEntry.BlankSilo.
const SiloColumn = "Blank Silo"

// RecipeColumn is the row column that stores a resolved recipe value.
const RecipeColumn = "Recipe"

// SlotLetters lists the recipe slots in display order.
var SlotLetters = []string{"A", "B", "C", "D", "E"}

const recipeHeader = "Blank Silo,Material Type,A,B,C,D,E"

// RecipeEntry maps a blank silo to five recipe slot values.
type RecipeEntry struct {
	ID           string `json:"id"`
	BlankSilo    string `json:"blankSilo"`
	MaterialType string `json:"materialType"`
	A            string `json:"A"`
	B            string `json:"B"`
	C            string `json:"C"`
	D            string `json:"D"`
	E            string `json:"E"`
}

func NewRecipeEntry() RecipeEntry {
	return RecipeEntry{ID: uuid.NewString()}
}

// Slot returns the value stored under letter. ok is false for anything
// other than A through E.
func (e RecipeEntry) Slot(letter string) (value string, ok bool) {
	switch letter {
	case "A":
		return e.A, true
	case "B":
		return e.B, true
	case "C":
		return e.C, true
	case "D":
		return e.D, true
	case "E":
		return e.E, true
	default:
		return "", false
	}
}

// SetSlot stores v under letter. It reports false, leaving e unchanged, for
// anything other than A through E.
func (e *RecipeEntry) SetSlot(letter, v string) bool {
	switch letter {
	case "A":
		e.A = v
	case "B":
		e.B = v
	case "C":
		e.C = v
	case "D":
		e.D = v
	case "E":
		e.E = v
	default:
		return false
	}
	return true
}

// FindRecipe returns the first entry for silo.
func FindRecipe(recipes []RecipeEntry, silo string) (RecipeEntry, bool) {
	for _, e := range recipes {
		if e.BlankSilo == silo {
			return e, true
		}
	}
	return RecipeEntry{}, false
}

// Resolve looks up the recipe slot for the row's blank silo. It returns ""
// when no entry matches or the slot is not A through E.
func Resolve(row Row, recipes []RecipeEntry, slot string) string {
	return ResolveFor(row.Get(SiloColumn), recipes, slot)
}

// ResolveFor is Resolve with the silo value already extracted.
func ResolveFor(silo string, recipes []RecipeEntry, slot string) string {
	e, ok := FindRecipe(recipes, silo)
	if !ok {
		return ""
	}
	v, _ := e.Slot(slot)
	return v
}

// ParseRecipes reads a recipe CSV (Blank Silo, Material Type, A..E). The
// header line is skipped and every entry gets a fresh id.
func ParseRecipes(text string) []RecipeEntry {
	lines := splitLines(text)
	entries := make([]RecipeEntry, 0, len(lines))
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p := decodeLine(line)
		for len(p) < 7 {
			p = append(p, "")
		}
		entries = append(entries, RecipeEntry{
			ID:           uuid.NewString(),
			BlankSilo:    p[0],
			MaterialType: p[1],
			A:            p[2],
			B:            p[3],
			C:            p[4],
			D:            p[5],
			E:            p[6],
		})
	}
	return entries
}

func SerializeRecipes(entries []RecipeEntry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, recipeHeader)
	for _, e := range entries {
		lines = append(lines, joinFields([]string{e.BlankSilo, e.MaterialType, e.A, e.B, e.C, e.D, e.E}))
	}
	return strings.Join(lines, "\n")
}
