package formats

import "github.com/JonMunkholm/nsqipdash/internal/core"

// chunker groups rows into fixed-size chunks. Every row it emits has exactly
// len(columns) cells.
type chunker struct {
	names   *headerNamer
	columns []string
	size    int
	chunks  []*core.Chunk
	current *core.Chunk
}

func newChunker(header []string, size int) *chunker {
	if size <= 0 {
		size = core.DefaultChunkSize
	}
	names := newHeaderNamer()
	return &chunker{
		names:   names,
		columns: names.all(header),
		size:    size,
	}
}

// add appends a row, padding short rows with empty cells.
func (c *chunker) add(row []string) {
	if c.current == nil {
		c.current = &core.Chunk{
			Columns: c.columns,
			Rows:    make([][]string, 0, min(c.size, 1024)),
		}
	}
	if len(row) < len(c.columns) {
		padded := make([]string, len(c.columns))
		copy(padded, row)
		row = padded
	}
	c.current.Rows = append(c.current.Rows, row)
	if len(c.current.Rows) >= c.size {
		c.chunks = append(c.chunks, c.current)
		c.current = nil
	}
}

// widen grows the column list to n with generated names. Rows already in
// the open chunk are padded to the new width; closed chunks keep their
// narrower layout and are aligned by name at merge time.
func (c *chunker) widen(n int) {
	if n <= len(c.columns) {
		return
	}
	columns := append([]string(nil), c.columns...)
	for len(columns) < n {
		columns = append(columns, c.names.name(""))
	}
	c.columns = columns

	if c.current != nil {
		c.current.Columns = columns
		for i, row := range c.current.Rows {
			padded := make([]string, n)
			copy(padded, row)
			c.current.Rows[i] = padded
		}
	}
}

// finish closes the open chunk and returns every chunk in read order.
// A file with a header and no rows yields one empty chunk so its columns
// still reach the merged table.
func (c *chunker) finish() []*core.Chunk {
	if c.current != nil && len(c.current.Rows) > 0 {
		c.chunks = append(c.chunks, c.current)
	}
	c.current = nil
	if len(c.chunks) == 0 {
		c.chunks = append(c.chunks, &core.Chunk{Columns: c.columns, Rows: [][]string{}})
	}
	return c.chunks
}
