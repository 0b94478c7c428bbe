package core

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func pipeFile(name string, rows int) RawFile {
	var b strings.Builder
	b.WriteString("ID|CPT\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "%s-%d|%05d\n", name, i, i)
	}
	return RawFile{Name: name + ".pipe", Data: []byte(b.String())}
}

func TestRawFile_Ext(t *testing.T) {
	tests := map[string]string{
		"data.XLSX":       ".xlsx",
		"data.csv":        ".csv",
		"data.csv.gz":     ".csv",
		"export.txt.xz":   ".txt",
		"noext":           "",
		"archive.tar.bz2": ".tar",
	}
	for name, want := range tests {
		assert.Equal(t, want, RawFile{Name: name}.Ext(), name)
	}
}

func TestLoader_ChunksFile(t *testing.T) {
	l := NewLoader(4, 0)

	chunks, err := l.Load(context.Background(), pipeFile("a", 10))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 4, chunks[0].Len())
	assert.Equal(t, 4, chunks[1].Len())
	assert.Equal(t, 2, chunks[2].Len())
}

func TestLoader_ChunkingDoesNotChangeTable(t *testing.T) {
	f := pipeFile("a", 25)

	small, err := NewLoader(3, 0).LoadAll(context.Background(), []RawFile{f})
	require.NoError(t, err)
	whole, err := NewLoader(1000, 0).LoadAll(context.Background(), []RawFile{f})
	require.NoError(t, err)

	assert.Equal(t, whole.Columns(), small.Columns())
	assert.Equal(t, whole.Records(), small.Records())
}

func TestLoader_UploadOrder(t *testing.T) {
	table, err := NewLoader(2, 0).LoadAll(context.Background(), []RawFile{
		pipeFile("A", 3), pipeFile("B", 2), pipeFile("C", 3),
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"A-1", "A-2", "A-3", "B-1", "B-2", "C-1", "C-2", "C-3"},
		column(table, "ID"),
	)
	assert.Equal(t, "00001", table.Row(0)[1], "codes stay text")
}

func TestLoader_Errors(t *testing.T) {
	l := NewLoader(0, 64)

	tests := []struct {
		name    string
		files   []RawFile
		wantErr error
	}{
		{"no files", nil, ErrNoFiles},
		{"empty body", []RawFile{{Name: "a.pipe"}}, ErrEmptyFile},
		{"too large", []RawFile{{Name: "a.pipe", Data: bytes.Repeat([]byte("x"), 65)}}, ErrFileTooLarge},
		{"second file fails", []RawFile{pipeFile("ok", 1), {Name: "b.pipe"}}, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := l.LoadAll(context.Background(), tt.files)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, table)
		})
	}
}

func TestLoader_ErrorNamesFile(t *testing.T) {
	_, err := NewLoader(0, 0).Load(context.Background(), RawFile{Name: "visits.pipe"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "visits.pipe")
}

func TestLoader_UnknownExtensionWithoutFallback(t *testing.T) {
	_, err := NewLoader(0, 0).Load(context.Background(), RawFile{Name: "a.unknown", Data: []byte("A\n1\n")})

	if _, ok := FormatFor(".unknown"); ok {
		t.Skip("a fallback format is registered")
	}
	assert.ErrorIs(t, err, ErrNoFormat)
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(0, 0).LoadAll(ctx, []RawFile{pipeFile("a", 1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLoader_CompressedUploads(t *testing.T) {
	plain := pipeFile("a", 5)
	want, err := NewLoader(0, 0).LoadAll(context.Background(), []RawFile{plain})
	require.NoError(t, err)

	tests := []struct {
		name string
		file RawFile
	}{
		{"gzip by extension", RawFile{Name: "a.pipe.gz", Data: gzipBytes(t, plain.Data)}},
		{"xz by extension", RawFile{Name: "a.pipe.xz", Data: xzBytes(t, plain.Data)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLoader(0, 0).LoadAll(context.Background(), []RawFile{tt.file})
			require.NoError(t, err)
			assert.Equal(t, want.Records(), got.Records())
		})
	}
}

func TestLoader_CorruptCompressedUpload(t *testing.T) {
	data := gzipBytes(t, pipeFile("a", 50).Data)
	truncated := RawFile{Name: "a.pipe.gz", Data: data[:len(data)/2]}

	_, err := NewLoader(0, 0).Load(context.Background(), truncated)
	require.Error(t, err)
	assert.Equal(t, "FILE007", MapError(err).Code)
}

func TestDecompress_Limit(t *testing.T) {
	data := gzipBytes(t, bytes.Repeat([]byte("a"), 1000))

	_, err := Decompress(CompressionGzip, data, 100)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	out, err := Decompress(CompressionGzip, data, 1000)
	require.NoError(t, err)
	assert.Len(t, out, 1000)
}

func TestDetectCompression(t *testing.T) {
	c, inner := DetectCompression("a.csv.bz2", nil)
	assert.Equal(t, CompressionBzip2, c)
	assert.Equal(t, "a.csv", inner)

	c, inner = DetectCompression("a.csv", []byte("CPT\n"))
	assert.Equal(t, CompressionNone, c)
	assert.Equal(t, "a.csv", inner)
	assert.Equal(t, "none", c.String())
}

func TestDetectCompression_MagicBytes(t *testing.T) {
	gz := gzipBytes(t, []byte("CPT\n"))

	tests := []struct {
		name string
		file string
		data []byte
		want Compression
	}{
		{"gzip without extension", "export", gz, CompressionGzip},
		{"bzip2 on unclaimed extension", "export.bin", []byte("BZh91AY&SY"), CompressionBzip2},
		{"xz on unclaimed extension", "export.dat", xzBytes(t, []byte("CPT\n")), CompressionXZ},
		{"claimed extension is never sniffed", "export.pipe", gz, CompressionNone},
		{"bzip2 lookalike header", "export.PIPE", []byte("BZh|CPT\n1|44140\n"), CompressionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, inner := DetectCompression(tt.file, tt.data)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.file, inner)
		})
	}
}

func TestLoader_TextHeaderLikeMagicBytes(t *testing.T) {
	file := RawFile{Name: "bzh.pipe", Data: []byte("BZh|CPT\n1|44140\n2|27447\n")}

	table, err := NewLoader(0, 0).LoadAll(context.Background(), []RawFile{file})
	require.NoError(t, err)
	assert.Equal(t, []string{"BZh", "CPT"}, table.Columns())
	assert.Equal(t, [][]string{{"1", "44140"}, {"2", "27447"}}, table.Records())
}
