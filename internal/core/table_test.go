package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_FitsRows(t *testing.T) {
	tbl := NewTable([]string{"A", "B", "C"}, [][]string{
		{"1"},
		{"1", "2", "3", "4"},
	})

	assert.Equal(t, []string{"1", "", ""}, tbl.Row(0))
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Row(1))
}

func TestTable_NilIsEmpty(t *testing.T) {
	var tbl *Table

	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, []string{}, tbl.Columns())
	assert.False(t, tbl.HasColumn("CPT"))
	assert.Equal(t, []string{}, ColumnsOf(tbl))
	assert.Equal(t, []string{}, DistinctValuesOf(tbl, "CPT"))
}

func TestTable_ColumnsAreCopied(t *testing.T) {
	tbl := registry()
	cols := tbl.Columns()
	cols[0] = "changed"

	assert.Equal(t, "CASEID", tbl.Columns()[0])
}

func TestTable_WherePreservesOrder(t *testing.T) {
	tbl := registry()
	males := tbl.Where(func(row []string) bool { return row[3] == "male" })

	assert.Equal(t, []string{"1", "4", "6", "7"}, column(males, "CASEID"))
	assert.Equal(t, tbl.Columns(), males.Columns())
	assert.Equal(t, 8, tbl.Len(), "source table must be unchanged")
}

func TestTable_Project(t *testing.T) {
	tbl := registry()

	proj, err := tbl.Project([]string{"CPT", "CASEID"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CPT", "CASEID"}, proj.Columns())
	assert.Equal(t, []string{"44140", "1"}, proj.Row(0))

	_, err = tbl.Project([]string{"CPT", "MISSING"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), `"MISSING"`)
}

func TestTable_Head(t *testing.T) {
	tbl := registry()

	assert.Equal(t, 3, tbl.Head(3).Len())
	assert.Equal(t, 8, tbl.Head(100).Len())
	assert.Equal(t, 8, tbl.Head(-1).Len())
}

func TestDistinctValuesOf(t *testing.T) {
	tbl := registry()

	assert.Equal(t,
		[]string{"General Surgery", "Orthopedics", "Vascular"},
		DistinctValuesOf(tbl, "SURGSPEC"),
		"first appearance order",
	)
	assert.NotContains(t, DistinctValuesOf(tbl, "AGE"), "", "blank cells are not offered")
	assert.Equal(t, []string{}, DistinctValuesOf(tbl, "NOPE"))
}

func TestTable_Records(t *testing.T) {
	tbl := registry()
	recs := tbl.Records()
	recs[0][0] = "changed"

	assert.Equal(t, "1", tbl.Row(0)[0])
}
