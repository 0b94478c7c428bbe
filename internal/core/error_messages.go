// Error codes reference
//
// Every error shown to a dashboard user carries a code that can be quoted
// when reporting a problem. Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large             Patterns: "file too large"
//	FILE002 - Invalid delimited text     Patterns: "invalid csv"
//	FILE003 - Encoding error             Patterns: "encoding error"
//	FILE004 - No file                    Patterns: "no file provided"
//	FILE005 - Empty file                 Patterns: "empty file"
//	FILE006 - Unreadable workbook        Patterns: "open workbook", "read sheet"
//	FILE007 - Corrupt compressed file    Patterns: "decompress"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Column not found            Patterns: "column not found"
//	VAL002 - Unknown figure              Patterns: "unknown figure"
//	VAL003 - Invalid request             Patterns: "invalid request"
//	VAL004 - Empty figure                Patterns: "no values to plot"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Request cancelled           Patterns: "context canceled"
//	UPL002 - System busy                 Patterns: "too many uploads"
//	UPL003 - Request timeout             Patterns: "context deadline exceeded"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - No destination              Patterns: "no destination path"
//	EXP002 - Permission denied           Patterns: "permission denied"
//	EXP003 - Folder missing              Patterns: "no such file or directory", "not a directory"
//	EXP004 - Save failed                 Patterns: "export failed"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired             Patterns: "session not found"
//	SES002 - Nothing uploaded            Patterns: "no data loaded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Returned when nothing matches; the technical error is in the logs.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

func pattern(p, message, action, code string) errorPattern {
	return errorPattern{pattern: p, msg: UserMessage{Message: message, Action: action, Code: code}}
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: the first matching pattern wins.
var errorPatterns = []errorPattern{
	// File errors
	pattern("file too large", "File exceeds the maximum upload size",
		"Split the export into smaller files or compress it", "FILE001"),
	pattern("invalid csv", "File is not valid delimited text",
		"Check that every row has no more fields than the header", "FILE002"),
	pattern("encoding error", "File contains characters that could not be read",
		"Save the file as UTF-8, or as .txt for Latin-1 text", "FILE003"),
	pattern("no file provided", "No file was selected",
		"Select one or more .xlsx, .csv or .txt files", "FILE004"),
	pattern("empty file", "The uploaded file is empty",
		"Upload a file with a header row and data", "FILE005"),
	pattern("open workbook", "The spreadsheet could not be opened",
		"Re-save the workbook as .xlsx and try again", "FILE006"),
	pattern("read sheet", "The spreadsheet could not be read",
		"Re-save the workbook as .xlsx and try again", "FILE006"),
	pattern("decompress", "The compressed file is corrupt or truncated",
		"Compress the file again and re-upload it", "FILE007"),

	// Validation errors
	pattern("column not found", "Column not found in the uploaded data",
		"Pick a column from the list", "VAL001"),
	pattern("unknown figure", "Unknown figure",
		"Choose figure 1, 2, 3 or 4", "VAL002"),
	pattern("invalid request", "The request was not valid",
		"Check the form values and try again", "VAL003"),
	pattern("no values to plot", "Nothing to plot for the current selection",
		"Select more rows or pick a column with values", "VAL004"),

	// Upload errors
	pattern("context canceled", "Request was cancelled",
		"Please try again", "UPL001"),
	pattern("too many uploads", "System is busy processing other uploads",
		"Please wait a moment and try again", "UPL002"),
	pattern("context deadline exceeded", "Request timed out",
		"Try uploading fewer or smaller files", "UPL003"),

	// Export errors
	pattern("no destination path", "No folder was given for the export",
		"Enter the folder to save into", "EXP001"),
	pattern("permission denied", "The export folder is not writable",
		"Choose a folder you can write to", "EXP002"),
	pattern("no such file or directory", "The export folder does not exist",
		"Check the folder path", "EXP003"),
	pattern("not a directory", "The export path is not a folder",
		"Check the folder path", "EXP003"),
	pattern("export failed", "The export could not be saved",
		"Use the download link instead, or try another folder", "EXP004"),

	// Session errors
	pattern("session not found", "Your session has expired",
		"Upload your files again", "SES001"),
	pattern("no data loaded", "No data has been uploaded yet",
		"Upload one or more files first", "SES002"),

	// Rate limiting
	pattern("rate limit", "Too many requests",
		"Please wait a moment before trying again", "RATE001"),
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("upload.csv: %w", ErrEmptyFile)
//	msg := MapError(err)
//	// msg.Code == "FILE005"
//	// msg.Message == "The uploaded file is empty"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The uploaded file is empty (Code: FILE005). Upload a file with a header row and data"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// Error returns the user message; Unwrap returns the technical error.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
