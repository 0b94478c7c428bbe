package core

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilteredSuffix is appended to the joined code selection to name the
// filtered-rows download.
const FilteredSuffix = "_NSQIP_Filtered_CPT_Codes.csv"

// ErrColumnNotFound is returned when a projection names a column the table
// does not have.
var ErrColumnNotFound = errors.New("column not found")

// Payload is a named block of comma-delimited text ready for download.
type Payload struct {
	Filename string
	Data     []byte
}

// DataURI encodes the payload as an inline base64 link target.
func (p Payload) DataURI() string {
	return "data:file/csv;base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// EncodeCSV serializes the named columns of t, in the order given, as
// comma-delimited text with a header row. A nil or empty column list
// exports every column. In a one-column export a blank cell is written as
// "" so the row survives a reload.
func EncodeCSV(t *Table, columns []string) ([]byte, error) {
	if len(columns) == 0 {
		columns = t.Columns()
	}
	proj, err := t.Project(columns)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(proj.Columns()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < proj.Len(); i++ {
		row := proj.Row(i)
		if len(row) == 1 && row[0] == "" {
			// A lone empty field would be written as a blank line, which
			// readers skip.
			w.Flush()
			buf.WriteString(`""` + "\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FilteredFilename names the filtered-rows download after the active code
// selection. An empty selection yields the bare suffix.
func FilteredFilename(codes []string) string {
	return strings.Join(codes, "_") + FilteredSuffix
}

// ExportFiltered encodes every column of the working subset under the
// filename derived from the code selection.
func ExportFiltered(subset *Table, codes []string) (Payload, error) {
	data, err := EncodeCSV(subset, nil)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Filename: FilteredFilename(codes), Data: data}, nil
}

// SaveTo writes the payload into dir under its own filename and returns the
// full path written. The payload is written to a temporary file first and
// renamed into place so a failed write never leaves a truncated export.
func SaveTo(dir string, p Payload) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("export failed: no destination path")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("export failed: %s is not a directory", dir)
	}

	dest := filepath.Join(dir, filepath.Base(p.Filename))
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export failed: %w", err)
	}
	if _, err := tmp.Write(p.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	return dest, nil
}
