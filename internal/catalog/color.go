package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultHex is used for colors imported without a hex value.
const DefaultHex = "#000000"

const colorHeader = "Color Name,Hex Value"

// ColorEntry is a named display color.
type ColorEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

func NewColorEntry() ColorEntry {
	return ColorEntry{ID: uuid.NewString(), Hex: DefaultHex}
}

// FindColor returns the first color whose name matches, ignoring case.
func FindColor(colors []ColorEntry, name string) (ColorEntry, bool) {
	name = strings.TrimSpace(name)
	for _, c := range colors {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColorEntry{}, false
}

// ParseColors reads a "Color Name,Hex Value" CSV, skipping the header.
func ParseColors(text string) []ColorEntry {
	lines := splitLines(text)
	colors := make([]ColorEntry, 0, len(lines))
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p := decodeLine(line)
		c := NewColorEntry()
		c.Name = p[0]
		if len(p) > 1 && p[1] != "" {
			c.Hex = p[1]
		}
		colors = append(colors, c)
	}
	return colors
}

func SerializeColors(colors []ColorEntry) string {
	lines := make([]string, 0, len(colors)+1)
	lines = append(lines, colorHeader)
	for _, c := range colors {
		lines = append(lines, joinFields([]string{c.Name, c.Hex}))
	}
	return strings.Join(lines, "\n")
}
