package core

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// ReadOptions carries the knobs shared by every format reader.
type ReadOptions struct {
	ChunkSize int // Rows per chunk (default: DefaultChunkSize)
}

// ReadFunc parses one file body into chunks of text-typed rows.
type ReadFunc func(ctx context.Context, r io.Reader, opts ReadOptions) ([]*Chunk, error)

// Format describes a readable file type.
type Format struct {
	Name       string
	Extensions []string // Lower-case, with leading dot
	Fallback   bool     // Used for any extension no other format claims
	Read       ReadFunc
}

var (
	formats   = make(map[string]Format) // by extension
	fallback  *Format
	formatsMu sync.RWMutex
)

// RegisterFormat adds a format reader to the registry.
// Panics if an extension is already claimed or a second fallback is registered.
func RegisterFormat(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if f.Read == nil {
		panic(fmt.Sprintf("format %s has no reader", f.Name))
	}
	for _, ext := range f.Extensions {
		ext = strings.ToLower(ext)
		if existing, ok := formats[ext]; ok {
			panic(fmt.Sprintf("extension %s already registered by %s", ext, existing.Name))
		}
		formats[ext] = f
	}
	if f.Fallback {
		if fallback != nil {
			panic(fmt.Sprintf("fallback format already registered: %s", fallback.Name))
		}
		fb := f
		fallback = &fb
	}
}

// FormatFor returns the reader for an extension, or the fallback format
// when no reader claims it. Returns false only if nothing can read it.
func FormatFor(ext string) (Format, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	if f, ok := formats[strings.ToLower(ext)]; ok {
		return f, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return Format{}, false
}

// claimed reports whether a format registered ext itself. The fallback
// does not count.
func claimed(ext string) bool {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	_, ok := formats[strings.ToLower(ext)]
	return ok
}

// Formats returns all registered formats sorted by name.
func Formats() []Format {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	seen := make(map[string]bool)
	var result []Format
	for _, f := range formats {
		if !seen[f.Name] {
			seen[f.Name] = true
			result = append(result, f)
		}
	}
	if fallback != nil && !seen[fallback.Name] {
		result = append(result, *fallback)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// AcceptedExtensions lists every extension claimed by a registered format.
func AcceptedExtensions() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ClearFormats removes all registered formats.
// Primarily useful for testing.
func ClearFormats() {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats = make(map[string]Format)
	fallback = nil
}
