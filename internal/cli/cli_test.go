package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryCSV = "CASEID,SURGSPEC,CPT,SEX,AGE\n" +
	"1,General Surgery,44970,male,54\n" +
	"2,General Surgery,47562,female,61\n" +
	"3,Orthopedics,27447,female,70\n" +
	"4,Vascular,35301,male,66\n"

// executeCommand runs the CLI with the given args and captures both
// stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

func writeRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.csv")
	require.NoError(t, os.WriteFile(path, []byte(registryCSV), 0o644))
	return path
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"columns", "filter", "describe", "figure"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}
	for _, flag := range []string{"--log-level", "--chunk-size", "--specialty-column", "--code-column"} {
		assert.Contains(t, stdout, flag)
	}
}

func TestRootCommand_UsageErrors(t *testing.T) {
	path := writeRegistry(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nonexistent"}},
		{"bad log format", []string{"--log-format", "xml", "columns", path}},
		{"same filter columns", []string{"--code-column", "SURGSPEC", "columns", path}},
		{"bad file size", []string{"--max-file-size", "lots", "columns", path}},
		{"unknown figure", []string{"figure", "5", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := executeCommand(tt.args...)
			require.Error(t, err)
			requireExitCode(t, err, 2)
			assert.Empty(t, stderr, "cobra should not print errors itself")
		})
	}
}

func TestColumns(t *testing.T) {
	path := writeRegistry(t)

	stdout, stderr, err := executeCommand("columns", "--rows", path)
	require.NoError(t, err)
	assert.Equal(t, "CASEID\nSURGSPEC\nCPT\nSEX\nAGE\n", stdout)
	assert.Contains(t, stderr, "4 rows, 5 columns")
}

func TestColumns_MergesFiles(t *testing.T) {
	path := writeRegistry(t)
	extra := filepath.Join(t.TempDir(), "extra.txt")
	require.NoError(t, os.WriteFile(extra, []byte("CPT\tOPTIME\n44970\t95\n"), 0o644))

	stdout, _, err := executeCommand("columns", path, extra)
	require.NoError(t, err)
	assert.Equal(t, "CASEID\nSURGSPEC\nCPT\nSEX\nAGE\nOPTIME\n", stdout)
}

func TestColumns_MissingFile(t *testing.T) {
	_, _, err := executeCommand("columns", filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "read failures use the default exit code")
}

func TestFilter_CascadingSelection(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("filter", path, "-s", "General Surgery", "-c", "44970")
	require.NoError(t, err)
	assert.Equal(t, "CASEID,SURGSPEC,CPT,SEX,AGE\n1,General Surgery,44970,male,54\n", stdout)
}

func TestFilter_CodeOutsideSpecialtyIsDropped(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("filter", path, "-s", "Orthopedics", "-c", "44970")
	require.NoError(t, err)
	assert.Equal(t, "CASEID,SURGSPEC,CPT,SEX,AGE\n", stdout)
}

func TestFilter_EmptySelectionKeepsNoRows(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("filter", path)
	require.NoError(t, err)
	assert.Equal(t, "CASEID,SURGSPEC,CPT,SEX,AGE\n", stdout)
}

func TestFilter_Columns(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("filter", path, "--all", "--column", "CPT", "--column", "AGE")
	require.NoError(t, err)
	assert.Equal(t, "CPT,AGE\n44970,54\n47562,61\n27447,70\n35301,66\n", stdout)
}

func TestFilter_OutputDir(t *testing.T) {
	path := writeRegistry(t)
	dir := t.TempDir()

	stdout, _, err := executeCommand("filter", path, "-s", "General Surgery", "-c", "47562", "-c", "44970", "-o", dir)
	require.NoError(t, err)

	saved := strings.TrimSpace(stdout)
	assert.Equal(t, dir, filepath.Dir(saved))
	assert.True(t, strings.HasSuffix(saved, "_NSQIP_Filtered_CPT_Codes.csv"))

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"), "header plus two rows")
}

func TestFilter_OutputDirMissing(t *testing.T) {
	path := writeRegistry(t)

	_, _, err := executeCommand("filter", path, "--all", "-o", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export failed")
}

func TestDescribe_JSON(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("describe", path, "--all", "--json")
	require.NoError(t, err)

	var report describeReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, []string{"registry.csv"}, report.Files)
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 4, report.Subset)
	assert.Len(t, report.Summary.Columns, 5)

	var age, sex bool
	for _, c := range report.Summary.Columns {
		switch c.Column {
		case "AGE":
			age = true
			require.NotNil(t, c.Numeric)
			assert.InDelta(t, 62.75, c.Numeric.Mean, 1e-9)
			assert.InDelta(t, 54, c.Numeric.Min, 1e-9)
			assert.InDelta(t, 70, c.Numeric.Max, 1e-9)
		case "SEX":
			sex = true
			require.NotNil(t, c.Text)
			assert.Equal(t, 2, c.Text.Unique)
		}
	}
	assert.True(t, age && sex)
	require.Len(t, report.SexCounts, 2)
	assert.Equal(t, 2, report.SexCounts[0].Count)
}

func TestDescribe_Text(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("describe", path, "-s", "General Surgery", "-c", "44970", "-c", "47562")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 of 4 rows selected")
	assert.Contains(t, stdout, "AGE")
	assert.Contains(t, stdout, "57.5000")
	assert.Contains(t, stdout, "SEX Counts")
}

func TestFigure_PNG(t *testing.T) {
	path := writeRegistry(t)
	out := filepath.Join(t.TempDir(), "age.png")

	stdout, _, err := executeCommand("figure", "3", path, "--all", "--hist-y", "AGE",
		"--width", "640", "--height", "400", "-o", out)
	require.NoError(t, err)
	assert.Equal(t, out+"\n", stdout)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestFigure_Data(t *testing.T) {
	path := writeRegistry(t)

	stdout, _, err := executeCommand("figure", "2", path, "--all", "--pie", "SEX", "--data")
	require.NoError(t, err)
	assert.Equal(t, "Labels,Counts\nmale,2\nfemale,2\n", stdout)
}

func TestFigure_DataSaved(t *testing.T) {
	path := writeRegistry(t)
	dir := t.TempDir()

	stdout, _, err := executeCommand("figure", "4", path, "--all", "--hist-x", "AGE", "--data", "-o", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Figure_4_AGE_histogram_data.csv")+"\n", stdout)
}

func TestFigure_EmptySelection(t *testing.T) {
	path := writeRegistry(t)

	_, _, err := executeCommand("figure", "2", path, "-o", filepath.Join(t.TempDir(), "pie.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no values to plot")
}
