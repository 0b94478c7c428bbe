// Package formats registers the file readers used by the loader.
//
// Import it for its side effects:
//
//	import _ "github.com/JonMunkholm/nsqipdash/internal/core/formats"
//
// Three readers are registered:
//
//   - .xlsx: first sheet, columns A through JP, displayed cell text
//   - .csv: UTF-8 (BOM tolerated), delimiter sniffed from the header line
//   - anything else: tab-delimited ISO-8859-1 text
//
// Every reader emits chunks of at most ReadOptions.ChunkSize rows with
// normalized, unique column names. No cell is ever converted from text.
package formats
