package core

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression identifies a compressed wrapper around an uploaded file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var compressionExtensions = map[string]Compression{
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression reports how data is compressed. A compression extension
// on name wins. Otherwise the leading magic bytes decide, but only when no
// registered format claims the extension of name: a text file named .csv
// whose header starts with "BZh" is still text. The returned name has the
// compression extension removed.
func DetectCompression(name string, data []byte) (Compression, string) {
	lower := strings.ToLower(name)
	for ext, c := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			return c, name[:len(name)-len(ext)]
		}
	}
	if claimed(filepath.Ext(lower)) {
		return CompressionNone, name
	}

	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip, name
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2, name
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ, name
	}
	return CompressionNone, name
}

// Decompress inflates data. Unlike a best-effort viewer, a truncated or
// corrupt stream is an error: uploads are all-or-nothing.
func Decompress(c Compression, data []byte, limit int64) ([]byte, error) {
	var r io.Reader
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompress gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case CompressionBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompress xz: %w", err)
		}
		r = xr
	default:
		return nil, fmt.Errorf("unsupported compression: %v", c)
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", c, err)
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes after %s decompression", ErrFileTooLarge, limit, c)
	}
	return buf.Bytes(), nil
}
