package core

// MergeChunks concatenates per-file chunk sequences into one table.
//
// Files are taken in the order given and chunks within a file in read order.
// The merged column set is the union of all column names in first-seen order;
// a chunk that lacks a column contributes empty cells for it. Column name is
// the only join key: nothing is deduplicated, coerced, or sorted.
func MergeChunks(files ...[]*Chunk) *Table {
	var columns []string
	position := make(map[string]int)
	total := 0

	for _, chunks := range files {
		for _, c := range chunks {
			if c == nil {
				continue
			}
			total += len(c.Rows)
			for _, name := range c.Columns {
				if _, ok := position[name]; ok {
					continue
				}
				position[name] = len(columns)
				columns = append(columns, name)
			}
		}
	}

	rows := make([][]string, 0, total)
	for _, chunks := range files {
		for _, c := range chunks {
			if c == nil {
				continue
			}
			rows = appendAligned(rows, c, position, len(columns))
		}
	}

	return NewTable(columns, rows)
}

// appendAligned copies a chunk's rows into the merged column layout.
func appendAligned(dst [][]string, c *Chunk, position map[string]int, width int) [][]string {
	targets := make([]int, len(c.Columns))
	aligned := len(c.Columns) == width
	for i, name := range c.Columns {
		targets[i] = position[name]
		if targets[i] != i {
			aligned = false
		}
	}

	for _, row := range c.Rows {
		if aligned {
			dst = append(dst, row)
			continue
		}
		out := make([]string, width)
		for i, cell := range row {
			if i < len(targets) {
				out[targets[i]] = cell
			}
		}
		dst = append(dst, out)
	}
	return dst
}

// NewColumns returns the columns of next that are not present in known.
func NewColumns(known, next []string) []string {
	seen := make(map[string]struct{}, len(known))
	for _, c := range known {
		seen[c] = struct{}{}
	}
	var added []string
	for _, c := range next {
		if _, ok := seen[c]; !ok {
			added = append(added, c)
		}
	}
	return added
}
