package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpretNaturalQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Show me all items that need MD approval", "MD APPROVED"},
		{"Find products with missing spec sheets", "Spec_Sheet"},
		{"Show active items with PLR type", "MD Active"},
		{"Show products with HMG print notes", "HMG Print Note"},
		{`look for "Heather Grey" please`, "Heather Grey"},
		{"big red tees", "tees"},
		{"a b c", "a b c"},
		{"items missing", "items missing"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, InterpretNaturalQuery(tc.in))
		})
	}
}
