package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// DefaultChunkSize is the number of rows read per chunk.
const DefaultChunkSize = 10000

// DefaultMaxFileSize bounds a single upload after decompression.
const DefaultMaxFileSize = 100 << 20

var (
	ErrNoFiles      = errors.New("no file provided")
	ErrEmptyFile    = errors.New("empty file")
	ErrFileTooLarge = errors.New("file too large")
	ErrNoFormat     = errors.New("unsupported file format")
)

// RawFile is an uploaded file body with the name it was uploaded under.
// The extension of Name selects the reader.
type RawFile struct {
	Name string
	Data []byte
}

// Ext returns the lower-cased extension of the file, ignoring any
// compression suffix (".csv.gz" -> ".csv").
func (f RawFile) Ext() string {
	_, inner := DetectCompression(f.Name, nil)
	return strings.ToLower(filepath.Ext(inner))
}

// Loader turns raw files into chunks and merges them into a table.
type Loader struct {
	ChunkSize   int
	MaxFileSize int64
}

// NewLoader creates a loader. Zero values select the defaults.
func NewLoader(chunkSize int, maxFileSize int64) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Loader{ChunkSize: chunkSize, MaxFileSize: maxFileSize}
}

// Load parses one file into chunks in read order. Compressed bodies are
// inflated first and the inner extension selects the reader. Any failure
// aborts the whole file.
func (l *Loader) Load(ctx context.Context, f RawFile) ([]*Chunk, error) {
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrEmptyFile)
	}
	if l.MaxFileSize > 0 && int64(len(f.Data)) > l.MaxFileSize {
		return nil, fmt.Errorf("%s: %w: %d bytes exceeds %d", f.Name, ErrFileTooLarge, len(f.Data), l.MaxFileSize)
	}

	compression, inner := DetectCompression(f.Name, f.Data)
	data, err := Decompress(compression, f.Data, l.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrEmptyFile)
	}

	ext := strings.ToLower(filepath.Ext(inner))
	format, ok := FormatFor(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", f.Name, ErrNoFormat, ext)
	}

	chunks, err := format.Read(ctx, bytes.NewReader(data), ReadOptions{ChunkSize: l.ChunkSize})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	rows := 0
	for _, c := range chunks {
		rows += c.Len()
	}
	slog.Debug("file loaded",
		"file", f.Name,
		"format", format.Name,
		"compression", compression.String(),
		"chunks", len(chunks),
		"rows", rows,
	)
	return chunks, nil
}

// LoadAll loads every file in upload order and merges the result. It fails
// on the first file that cannot be read; no partial table is returned.
func (l *Loader) LoadAll(ctx context.Context, files []RawFile) (*Table, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	perFile := make([][]*Chunk, 0, len(files))
	var known []string
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, err := l.Load(ctx, f)
		if err != nil {
			return nil, err
		}
		perFile = append(perFile, chunks)

		for _, c := range chunks {
			added := NewColumns(known, c.Columns)
			if i > 0 && len(added) > 0 {
				slog.Debug("file adds columns to merged table",
					"file", f.Name,
					"columns", added,
				)
			}
			known = append(known, added...)
		}
	}

	return MergeChunks(perFile...), nil
}
