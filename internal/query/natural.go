package query

import (
	"regexp"
	"strings"
)

type keyword struct {
	phrase string
	terms  []string
}

// naturalKeywords is matched in order; the first contributed term wins.
var naturalKeywords = []keyword{
	{"md approval", []string{"MD APPROVED", "approved", "pending"}},
	{"spec sheet", []string{"Spec_Sheet", "Spec_Sheet 2"}},
	{"missing", []string{"", "null", "n/a"}},
	{"active", []string{"MD Active", "active", "yes", "true"}},
	{"ready", []string{"Ready to Activate", "ready", "yes"}},
	{"plr", []string{"PLR", "PLR Type", "PLR Bin ID"}},
	{"hmg", []string{"HMG Print Note", "print note"}},
	{"shopify", []string{"Shopify Display Color"}},
	{"size", []string{"Size"}},
	{"color", []string{"Blank Color", "Shopify Display Color"}},
	{"production", []string{"Production Folder"}},
	{"recipe", []string{"Recipe"}},
	{"master graphic", []string{"Master Graphic"}},
	{"sku", []string{"SKU ID", "MD SKU"}},
	{"blank", []string{"BLANK ID", "Blank Color", "Blank Silo"}},
}

var quotedTerm = regexp.MustCompile(`"([^"]+)"`)

// InterpretNaturalQuery turns a plain-language request such as "find
// products with missing spec sheets" into a single search term. Known
// catalog phrases map to column names or values; otherwise a quoted string
// or the first word longer than three characters is used. The input is
// returned as-is when nothing better is found.
func InterpretNaturalQuery(natural string) string {
	lower := strings.ToLower(natural)
	negated := strings.Contains(lower, "missing") ||
		strings.Contains(lower, "without") ||
		strings.Contains(lower, "no ")

	var terms []string
	for _, k := range naturalKeywords {
		if !strings.Contains(lower, k.phrase) {
			continue
		}
		if negated {
			terms = append(terms, k.terms[0])
		} else {
			terms = append(terms, k.terms...)
		}
	}

	if len(terms) == 0 {
		if m := quotedTerm.FindStringSubmatch(natural); m != nil {
			terms = append(terms, m[1])
		} else {
			for _, w := range strings.Split(natural, " ") {
				if len(w) > 3 {
					terms = append(terms, w)
				}
			}
		}
	}

	if len(terms) > 0 && terms[0] != "" {
		return terms[0]
	}
	return natural
}
