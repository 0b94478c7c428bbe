// Package core provides the business logic of the NSQIP registry dashboard.
//
// It holds all domain logic independent of any UI or transport layer and is
// used unchanged by the web handlers, the CLI and the tests.
//
// # Architecture
//
// Data flows in one direction:
//
//	RawFile -> Loader -> []*Chunk -> MergeChunks -> *Table -> Pipeline -> Working Subset
//
// and from the Working Subset to the export, the descriptive statistics
// and the figure data.
//
//   - Formats: Readers are registered per extension with [RegisterFormat].
//     The formats subpackage registers the xlsx, csv and tab-delimited
//     readers; import it for its side effects.
//   - Loader: Peels gzip, bzip2 and xz wrappers, dispatches on the inner
//     extension and returns chunks of at most [DefaultChunkSize] rows.
//   - Merger: Unions columns by name in first-seen order. A cell is never
//     converted from text, so codes such as "00940" keep their zeros.
//   - Pipeline: Cascading [Selection]s. The options of each stage are the
//     distinct values left by the stages before it. An empty selection
//     keeps no rows.
//   - Session: One user's table, selections and figure pickers. Sessions
//     never share tables.
//   - Service: The entry point tying the loader, the session store and the
//     upload limiter together.
//
// # Uploads
//
// An upload is all-or-nothing. Every file is parsed before the session is
// touched; if any file fails the previous table and selections remain.
// Parsing holds a slot of the [UploadLimiter] so a burst of large uploads
// cannot exhaust memory.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, encoding, format, compression)
//   - VAL001-VAL004: Validation errors (columns, figures, requests)
//   - UPL001-UPL003: Upload errors (cancelled, busy, timeout)
//   - EXP001-EXP004: Export errors (destination, permissions)
//   - SES001-SES002: Session errors (expired, nothing uploaded)
package core
