package core

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// The core package has no readers of its own; tests register a minimal
// pipe-separated format so the loader can be exercised without the
// formats package.
func init() {
	RegisterFormat(Format{
		Name:       "test-pipe",
		Extensions: []string{".pipe"},
		Read:       readPipe,
	})
}

func readPipe(ctx context.Context, r io.Reader, opts ReadOptions) ([]*Chunk, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, ErrEmptyFile
	}
	columns := strings.Split(sc.Text(), "|")

	size := opts.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []*Chunk
	current := &Chunk{Columns: columns}
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current.Rows = append(current.Rows, strings.Split(sc.Text(), "|"))
		if len(current.Rows) == size {
			chunks = append(chunks, current)
			current = &Chunk{Columns: columns}
		}
	}
	if len(current.Rows) > 0 || len(chunks) == 0 {
		chunks = append(chunks, current)
	}
	return chunks, sc.Err()
}

// registry is a small NSQIP-like table used across tests.
func registry() *Table {
	return NewTable(
		[]string{"CASEID", "SURGSPEC", "CPT", "SEX", "AGE"},
		[][]string{
			{"1", "General Surgery", "44140", "male", "64"},
			{"2", "Orthopedics", "27447", "female", "71"},
			{"3", "General Surgery", "47562", "female", "38"},
			{"4", "Vascular", "35301", "male", "69"},
			{"5", "Orthopedics", "27130", "female", "80"},
			{"6", "General Surgery", "44140", "male", ""},
			{"7", "Orthopedics", "27447", "male", "55"},
			{"8", "General Surgery", "00940", "female", "29"},
		},
	)
}

func column(t *Table, name string) []string {
	values, _ := t.Column(name)
	return values
}
