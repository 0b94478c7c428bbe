package formats

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// sniffSize bounds how much of a file is inspected to pick a delimiter.
const sniffSize = 64 << 10

// delimiterCandidates are tried in order; earlier entries win ties.
var delimiterCandidates = []rune{',', ';', '|', '\t'}

// SniffDelimiter picks the delimiter of a delimited text sample from its
// first line, ignoring quoted text. Any unquoted comma makes it comma;
// otherwise the most frequent of the other candidates wins, and comma is
// the default when none occurs.
func SniffDelimiter(sample []byte) rune {
	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false

scan:
	for _, r := range string(sample) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == '\n' || r == '\r':
			break scan
		default:
			counts[r]++
		}
	}

	if counts[','] > 0 {
		return ','
	}
	best, bestCount := ',', 0
	for _, c := range delimiterCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// ReadCSV parses comma-style delimited text as UTF-8 with an optional BOM.
// The delimiter is sniffed from the header line.
func ReadCSV(ctx context.Context, r io.Reader, opts core.ReadOptions) ([]*core.Chunk, error) {
	decoded := bufio.NewReaderSize(decode(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), sniffSize)
	sample, err := decoded.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return readDelimited(ctx, decoded, SniffDelimiter(sample), opts)
}

// ReadTabLatin1 parses tab-delimited text in ISO-8859-1. It is the reader
// for every extension no other format claims.
func ReadTabLatin1(ctx context.Context, r io.Reader, opts core.ReadOptions) ([]*core.Chunk, error) {
	return readDelimited(ctx, decode(r, charmap.ISO8859_1.NewDecoder()), '\t', opts)
}

func decode(r io.Reader, t transform.Transformer) io.Reader {
	return transform.NewReader(r, t)
}

// readDelimited reads a header row followed by data rows. Rows with more
// fields than the header are rejected; shorter rows are padded.
func readDelimited(ctx context.Context, r io.Reader, delim rune, opts core.ReadOptions) ([]*core.Chunk, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	c := newChunker(header, opts.ChunkSize)
	for n := 1; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("invalid csv: line %d has %d fields, header has %d", line, len(record), len(header))
		}
		c.add(record)
	}

	return c.finish(), nil
}
