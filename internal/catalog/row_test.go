package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowWithLeavesOriginal(t *testing.T) {
	r := NewRow(3, []string{"a", "b"}, []string{"1", "2"})
	edited := r.With("b", "9").With("c", "new")

	assert.Equal(t, "2", r.Get("b"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, []string{"a", "b", "c"}, edited.Columns())
	assert.Equal(t, []string{"1", "9", "new"}, edited.Values())
	assert.Equal(t, 3, edited.ID)
}

func TestRowJSONKeepsColumnOrder(t *testing.T) {
	added := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	r := NewRow(2, []string{"Zeta", "Alpha", "Mid"}, []string{"z", "a", "m"})
	r.IsNew = true
	r.AddedDate = added

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":2,"Zeta":"z","Alpha":"a","Mid":"m","_isNew":true,"_addedDate":"2026-03-04T05:06:07.000Z"}`, string(data))

	var back Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, back.Columns())
	assert.Equal(t, 2, back.ID)
	assert.True(t, back.IsNew)
	assert.True(t, added.Equal(back.AddedDate))
}

func TestRowJSONNonStringCells(t *testing.T) {
	var rows []Row
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":0,"Qty":12,"Flag":true,"Note":null,"Name":"x"}]`), &rows))

	require.Len(t, rows, 1)
	assert.Equal(t, "12", rows[0].Get("Qty"))
	assert.Equal(t, "true", rows[0].Get("Flag"))
	assert.Equal(t, "", rows[0].Get("Note"))
	assert.Equal(t, []string{"Qty", "Flag", "Note", "Name"}, ColumnsOf(rows))
}

func TestRowJSONRejectsMalformedIsNew(t *testing.T) {
	var r Row
	err := json.Unmarshal([]byte(`{"_id":1,"Name":"x","_isNew":"yes"}`), &r)
	assert.ErrorContains(t, err, "_isNew")

	require.NoError(t, json.Unmarshal([]byte(`{"_id":1,"_isNew":true}`), &r))
	assert.True(t, r.IsNew)
}

func TestRowJSONSkipsReservedColumns(t *testing.T) {
	r := NewRow(4, []string{"_isNew", "Name"}, []string{"yes", "x"})
	assert.Equal(t, "yes", r.Get("_isNew"))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"_id":4,"Name":"x"}`, string(data))
}
