package core

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilteredFilename(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		want  string
	}{
		{"two codes", []string{"12345", "67890"}, "12345_67890_NSQIP_Filtered_CPT_Codes.csv"},
		{"one code", []string{"00940"}, "00940_NSQIP_Filtered_CPT_Codes.csv"},
		{"empty selection", nil, "_NSQIP_Filtered_CPT_Codes.csv"},
		{"empty slice", []string{}, "_NSQIP_Filtered_CPT_Codes.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilteredFilename(tt.codes))
		})
	}
}

func TestEncodeCSV(t *testing.T) {
	tbl := NewTable([]string{"CPT", "NOTE", "SEX"}, [][]string{
		{"00940", "has, comma", "female"},
		{"44140", `has "quotes"`, "male"},
	})

	data, err := EncodeCSV(tbl, []string{"SEX", "CPT"})
	require.NoError(t, err)
	assert.Equal(t, "SEX,CPT\nfemale,00940\nmale,44140\n", string(data))

	data, err = EncodeCSV(tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, "CPT,NOTE,SEX\n00940,\"has, comma\",female\n44140,\"has \"\"quotes\"\"\",male\n", string(data))

	_, err = EncodeCSV(tbl, []string{"AGE"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestEncodeCSV_EmptySubsetKeepsHeader(t *testing.T) {
	subset := nsqipPipeline(nil, nil).Apply(registry())

	data, err := EncodeCSV(subset, nil)
	require.NoError(t, err)
	assert.Equal(t, "CASEID,SURGSPEC,CPT,SEX,AGE\n", string(data))
}

func TestEncodeCSV_SingleColumnBlankCells(t *testing.T) {
	tbl := NewTable([]string{"CPT", "AGE"}, [][]string{{"44140", "54"}, {"27447", ""}, {"35301", "70"}})

	data, err := EncodeCSV(tbl, []string{"AGE"})
	require.NoError(t, err)
	assert.Equal(t, "AGE\n54\n\"\"\n70\n", string(data))

	data, err = EncodeCSV(tbl, []string{"CPT", "AGE"})
	require.NoError(t, err)
	assert.Equal(t, "CPT,AGE\n44140,54\n27447,\n35301,70\n", string(data), "wider rows need no quoting")
}

func TestPayload_DataURI(t *testing.T) {
	p := Payload{Filename: "x.csv", Data: []byte("A\n1\n")}

	uri := p.DataURI()
	require.True(t, strings.HasPrefix(uri, "data:file/csv;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:file/csv;base64,"))
	require.NoError(t, err)
	assert.Equal(t, p.Data, decoded)
}

func TestExportFiltered(t *testing.T) {
	subset := nsqipPipeline([]string{"General Surgery"}, []string{"44140", "00940"}).Apply(registry())

	p, err := ExportFiltered(subset, []string{"44140", "00940"})
	require.NoError(t, err)
	assert.Equal(t, "44140_00940_NSQIP_Filtered_CPT_Codes.csv", p.Filename)
	assert.Equal(t, 4, strings.Count(string(p.Data), "\n"), "header plus three rows")
}

func TestSaveTo(t *testing.T) {
	dir := t.TempDir()
	p := Payload{Filename: "44140_NSQIP_Filtered_CPT_Codes.csv", Data: []byte("CPT\n44140\n")}

	path, err := SaveTo(dir, p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, p.Filename), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p.Data, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSaveTo_Failures(t *testing.T) {
	p := Payload{Filename: "x.csv", Data: []byte("A\n")}
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name     string
		dir      string
		wantCode string
	}{
		{"blank path", "  ", "EXP001"},
		{"missing folder", filepath.Join(t.TempDir(), "nope"), "EXP003"},
		{"path is a file", file, "EXP003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SaveTo(tt.dir, p)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, MapError(err).Code)
		})
	}
}

func TestSaveTo_LeavesSubsetUntouched(t *testing.T) {
	subset := nsqipPipeline([]string{"Orthopedics"}, []string{"27447"}).Apply(registry())
	before := subset.Records()

	p, err := ExportFiltered(subset, []string{"27447"})
	require.NoError(t, err)
	_, err = SaveTo(filepath.Join(t.TempDir(), "missing"), p)
	require.Error(t, err)
	_, err = SaveTo(t.TempDir(), p)
	require.NoError(t, err)

	assert.Equal(t, before, subset.Records())
	assert.Equal(t, len(before), subset.Len())
}
