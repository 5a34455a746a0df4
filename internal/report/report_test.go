package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artdesk/internal/catalog"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)

func rowsFrom(t *testing.T, text string) []catalog.Row {
	t.Helper()
	return catalog.Parse(text).Rows
}

func TestValueChecks(t *testing.T) {
	assert.True(t, IsURL(" HTTPS://x"))
	assert.True(t, IsURL("www.example.com"))
	assert.False(t, IsURL("ftp://x"))
	assert.False(t, IsURL(""))

	assert.True(t, IsNumeric("2.5"))
	assert.True(t, IsNumeric(" -3 "))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("abc"))
	assert.False(t, IsNumeric("Inf"))
}

func TestBuildNewlyAdded(t *testing.T) {
	rows := rowsFrom(t, `Internal ID,Date Created,AW_Front,Spec_Sheet,Placement from Collar
1,2026-10-15,https://a,https://s,3
2,2026-10-01,https://a,https://s,3
3,2026-08-01,,,
4,,,,
5,10/16/2026,www.a,,2`)
	rows[3].IsNew = true

	n := BuildNewlyAdded(rows, now)

	require.Len(t, n.Items, 3)
	assert.Equal(t, "1", n.Items[0].Get("Internal ID"))
	assert.Equal(t, "4", n.Items[1].Get("Internal ID"))
	assert.Equal(t, "5", n.Items[2].Get("Internal ID"))
	assert.Equal(t, 1, n.Ready)
	assert.Equal(t, 2, n.NotReady)
	assert.Equal(t, 4, n.Last30Days)
	assert.InDelta(t, 33.3, n.ReadyPercent(), 0.1)
}

func TestBuildNewlyAddedUsesTaggedDate(t *testing.T) {
	rows := rowsFrom(t, "Internal ID\n1\n2")
	rows[0].AddedDate = now.Add(-48 * time.Hour)

	n := BuildNewlyAdded(rows, now)
	require.Len(t, n.Items, 1)
	assert.Equal(t, 0, n.Items[0].ID)
}

func TestBuildCompletion(t *testing.T) {
	rows := rowsFrom(t, `Internal ID,AW_Front,Spec_Sheet,Placement from Collar
1,https://a,https://s,3
2,,https://s,x
3,https://a,,`)

	c := BuildCompletion(rows)

	assert.Equal(t, 3, c.TotalRows)
	assert.Equal(t, 9, c.TotalCells)
	assert.Equal(t, 5, c.CellsWith)
	assert.Equal(t, 4, c.CellsWithout)
	require.Len(t, c.Fields, 3)

	front := c.Fields[0]
	assert.Equal(t, "AW_Front", front.Field.Name)
	assert.Equal(t, 2, front.WithValue)
	require.Len(t, front.Missing, 1)
	assert.Equal(t, "2", front.Missing[0].Get("Internal ID"))

	placement := c.Fields[2]
	assert.Equal(t, 1, placement.WithValue)
	assert.InDelta(t, 66.7, placement.PercentWithout, 0.1)
}

func TestCompletionCapsMissingPreview(t *testing.T) {
	var b strings.Builder
	b.WriteString("Internal ID,AW_Front")
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "\n%d,", i)
	}
	c := BuildCompletion(rowsFrom(t, b.String()))

	assert.Equal(t, 60, c.Fields[0].WithoutValue)
	assert.Len(t, c.Fields[0].Missing, MissingPreviewLimit)

	var out bytes.Buffer
	require.NoError(t, WriteCompletion(&out, c))
	assert.Contains(t, out.String(), "Showing first 50 of 60 rows")
}

func TestCompletionEmpty(t *testing.T) {
	c := BuildCompletion(nil)
	assert.Zero(t, c.PercentWith)
	assert.Zero(t, c.TotalCells)
}

func TestCompletionMarksAbsentColumn(t *testing.T) {
	rows := rowsFrom(t, "Internal ID,AW_Front\n1,\n2,notaurl")
	c := BuildCompletion(rows)

	var out bytes.Buffer
	require.NoError(t, WriteCompletion(&out, c))
	assert.Contains(t, out.String(), "(empty)")
	assert.Contains(t, out.String(), "notaurl")
	assert.Contains(t, out.String(), "(no column)", "Spec_Sheet is not in the sheet at all")
}
