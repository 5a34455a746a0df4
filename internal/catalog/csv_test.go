package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCountsDataLinesAndSkipsBlanks(t *testing.T) {
	text := "Internal ID,Blank Silo,Color\n1,Cotton,Red\n\n   \n2,Wool,Blue\n3,Silk,Green\n"
	tbl := Parse(text)

	require.Equal(t, []string{"Internal ID", "Blank Silo", "Color"}, tbl.Columns)
	require.Len(t, tbl.Rows, 3)
	for i, r := range tbl.Rows {
		assert.Equal(t, i, r.ID)
		for _, col := range tbl.Columns {
			assert.True(t, r.Has(col), "row %d missing %q", i, col)
		}
	}
	assert.Equal(t, "Wool", tbl.Rows[1].Get("Blank Silo"))
	assert.Equal(t, "Green", tbl.Rows[2].Get("Color"))
}

func TestParsePadsShortRowsAndDropsExtras(t *testing.T) {
	tbl := Parse("a,b,c\n1\n1,2,3,4,5")

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0].Values())
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[1].Values())
}

func TestParseQuotedFields(t *testing.T) {
	tbl := Parse(`"Internal ID","Display Name",Notes` + "\n" +
		`7,"Tee, Heavyweight",  spaced  ` + "\r\n" +
		`8,"He said ""hi""",x`)

	require.Equal(t, []string{"Internal ID", "Display Name", "Notes"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Tee, Heavyweight", tbl.Rows[0].Get("Display Name"))
	assert.Equal(t, "spaced", tbl.Rows[0].Get("Notes"))
	assert.Equal(t, `He said "hi"`, tbl.Rows[1].Get("Display Name"))
}

func TestParseUnbalancedQuoteDegrades(t *testing.T) {
	tbl := Parse("a,b\n\"open,still open\n")

	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "open,still open", tbl.Rows[0].Get("a"))
	assert.Equal(t, "", tbl.Rows[0].Get("b"))
}

func TestParseEmptyInput(t *testing.T) {
	tbl := Parse("")
	assert.Empty(t, tbl.Columns)
	assert.Empty(t, tbl.Rows)

	tbl = Parse("\ufeffa,b\n1,2")
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
}

func TestSerializeQuotesWhenNeeded(t *testing.T) {
	cols := []string{"id", "name", "note"}
	rows := []Row{
		NewRow(0, cols, []string{"1", "Tee, Black", `say "x"`}),
		NewRow(1, cols, []string{"2", "Hoodie", ""}),
	}

	out := Serialize(rows, cols)
	assert.Equal(t, "id,name,note\n1,\"Tee, Black\",\"say \"\"x\"\"\"\n2,Hoodie,", out)
}

func TestSerializeMissingColumnIsEmpty(t *testing.T) {
	row := NewRow(0, []string{"a"}, []string{"1"})
	assert.Equal(t, "a,b\n1,", Serialize([]Row{row}, []string{"a", "b"}))
}

func TestParseSerializeIdentity(t *testing.T) {
	text := "Internal ID,Blank Silo,Recipe\n1,Cotton,Blue\n2,Wool,\n3,Silk,Red"
	tbl := Parse(text)
	assert.Equal(t, text, Serialize(tbl.Rows, tbl.Columns))

	again := Parse(Serialize(tbl.Rows, tbl.Columns))
	assert.Equal(t, tbl.Columns, again.Columns)
	for i := range tbl.Rows {
		assert.Equal(t, tbl.Rows[i].Values(), again.Rows[i].Values())
	}
}

func TestEscapedQuotesRoundTrip(t *testing.T) {
	cols := []string{"name"}
	rows := []Row{NewRow(0, cols, []string{`12" vinyl, "deluxe"`})}

	back := Parse(Serialize(rows, cols))
	require.Len(t, back.Rows, 1)
	assert.Equal(t, `12" vinyl, "deluxe"`, back.Rows[0].Get("name"))
}
