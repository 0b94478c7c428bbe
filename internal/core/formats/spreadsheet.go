package formats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// LastColumn is the right-most spreadsheet column read; cells past it are
// ignored.
const LastColumn = "JP"

// MaxColumns is the number of columns from A through LastColumn.
var MaxColumns = mustColumnNumber(LastColumn)

func mustColumnNumber(name string) int {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		panic(err)
	}
	return n
}

// ReadSpreadsheet parses the first sheet of an xlsx workbook. Only columns
// A through JP are read and every cell is taken as its displayed text.
// Rows that are entirely blank are skipped.
func ReadSpreadsheet(ctx context.Context, r io.Reader, opts core.ReadOptions) ([]*core.Chunk, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("open workbook: no sheets found")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var c *chunker
	for n := 1; rows.Next(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %s row %d: %w", sheet, n, err)
		}
		if len(cells) > MaxColumns {
			cells = cells[:MaxColumns]
		}
		if isBlankRow(cells) {
			continue
		}

		if c == nil {
			c = newChunker(cells, opts.ChunkSize)
			continue
		}
		c.widen(len(cells))
		c.add(cells)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	if c == nil {
		return nil, core.ErrEmptyFile
	}
	return c.finish(), nil
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
