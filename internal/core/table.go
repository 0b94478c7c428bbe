package core

import "fmt"

// Chunk is a bounded run of rows read from one file, in read order.
// Every row has exactly len(Columns) cells; all cells are text.
type Chunk struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows in the chunk.
func (c *Chunk) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Rows)
}

// Table is an ordered, text-typed table. Rows are never mutated after the
// table is built, so filtered views share row storage with their source.
// A nil *Table behaves as an empty table with no columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table from column names and rows. Rows shorter than the
// column list are padded with empty cells; longer rows are truncated.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for _, row := range rows {
		t.rows = append(t.rows, fitRow(row, len(t.columns)))
	}
	return t
}

// fitRow returns row resized to width, copying only when needed.
func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	if t == nil {
		return []string{}
	}
	return append([]string{}, t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row. The slice must not be modified.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// ColumnIndex returns the position of a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table has a column with this name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Column returns every value of a column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	values := make([]string, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[idx]
	}
	return values, true
}

// Where returns the rows for which keep is true, in their original order.
func (t *Table) Where(keep func(row []string) bool) *Table {
	if t == nil {
		return NewTable(nil, nil)
	}
	out := &Table{columns: t.columns, index: t.index}
	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return NewTable(nil, nil)
	}
	if n < 0 || n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{columns: t.columns, index: t.index, rows: t.rows[:n]}
}

// Project returns a table holding only the named columns, in the order given.
// A column may be requested more than once.
func (t *Table) Project(columns []string) (*Table, error) {
	positions := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		positions[i] = idx
	}

	rows := make([][]string, t.Len())
	for r := range rows {
		src := t.rows[r]
		dst := make([]string, len(positions))
		for i, p := range positions {
			dst[i] = src[p]
		}
		rows[r] = dst
	}
	return NewTable(columns, rows), nil
}

// Records returns the rows as a fresh slice of copies, suitable for callers
// that need to own the data.
func (t *Table) Records() [][]string {
	out := make([][]string, t.Len())
	for i := range out {
		out[i] = append([]string(nil), t.rows[i]...)
	}
	return out
}

// ColumnsOf lists the column names of a table in order. An empty or nil
// table yields an empty, non-nil list so selectors can render an empty state.
func ColumnsOf(t *Table) []string {
	return t.Columns()
}

// DistinctValuesOf returns the distinct non-blank values of a column in order
// of first appearance. Blank cells are missing values and are never offered.
// Unknown columns yield an empty list.
func DistinctValuesOf(t *Table, column string) []string {
	idx, ok := t.ColumnIndex(column)
	if !ok {
		return []string{}
	}
	seen := make(map[string]struct{})
	values := []string{}
	for _, row := range t.rows {
		v := row[idx]
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
