package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeChunks_FileOrderThenChunkOrder(t *testing.T) {
	a := []*Chunk{
		{Columns: []string{"ID"}, Rows: [][]string{{"a1"}, {"a2"}}},
		{Columns: []string{"ID"}, Rows: [][]string{{"a3"}}},
	}
	b := []*Chunk{{Columns: []string{"ID"}, Rows: [][]string{{"b1"}}}}
	c := []*Chunk{{Columns: []string{"ID"}, Rows: [][]string{{"c1"}, {"c2"}}}}

	merged := MergeChunks(a, b, c)

	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "c1", "c2"}, column(merged, "ID"))
}

func TestMergeChunks_ColumnUnion(t *testing.T) {
	first := []*Chunk{{
		Columns: []string{"CPT", "SEX"},
		Rows:    [][]string{{"44140", "male"}},
	}}
	second := []*Chunk{{
		Columns: []string{"AGE", "CPT"},
		Rows:    [][]string{{"70", "27447"}},
	}}

	merged := MergeChunks(first, second)

	assert.Equal(t, []string{"CPT", "SEX", "AGE"}, merged.Columns())
	assert.Equal(t, []string{"44140", "male", ""}, merged.Row(0))
	assert.Equal(t, []string{"27447", "", "70"}, merged.Row(1))
}

func TestMergeChunks_NoDedupNoCoercion(t *testing.T) {
	chunk := []*Chunk{{
		Columns: []string{"CPT"},
		Rows:    [][]string{{"00940"}, {"00940"}, {"1e3"}},
	}}

	merged := MergeChunks(chunk, chunk)

	assert.Equal(t, []string{"00940", "00940", "1e3", "00940", "00940", "1e3"}, column(merged, "CPT"))
}

func TestMergeChunks_HeaderOnlyFileContributesColumns(t *testing.T) {
	empty := []*Chunk{{Columns: []string{"CPT", "EXTRA"}, Rows: [][]string{}}}
	data := []*Chunk{{Columns: []string{"CPT"}, Rows: [][]string{{"1"}}}}

	merged := MergeChunks(empty, data)

	assert.Equal(t, []string{"CPT", "EXTRA"}, merged.Columns())
	assert.Equal(t, 1, merged.Len())
}

func TestMergeChunks_Nothing(t *testing.T) {
	merged := MergeChunks()

	assert.Equal(t, 0, merged.Len())
	assert.Equal(t, []string{}, merged.Columns())
}

func TestNewColumns(t *testing.T) {
	assert.Equal(t, []string{"C"}, NewColumns([]string{"A", "B"}, []string{"B", "C"}))
	assert.Empty(t, NewColumns([]string{"A"}, []string{"A"}))
}
