// Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Users can quote the code to support staff for faster
// diagnosis.
//
// # CSV Syntax Errors (CSV001-CSV099)
//
//	CSV001 - Unterminated quote: A quoted field never closes
//	         Patterns: "unterminated quoted field"
//
//	CSV002 - Bare quote: A double quote appears inside an unquoted field
//	         Patterns: "bare \" in non-quoted field"
//
//	CSV003 - Trailing text: Characters follow a closing quote
//	         Patterns: "extraneous text after quoted field"
//
//	CSV004 - Bare carriage return: A CR is not followed by LF
//	         Patterns: "carriage return not followed by line feed"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large         Patterns: "file too large", "request body too large"
//	FILE002 - Unreadable file        Patterns: "read csv"
//	FILE003 - Input not found        Patterns: "no such file"
//	FILE004 - No file                Patterns: "no file provided"
//	FILE005 - Empty file             Patterns: "empty input"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Write failed            Patterns: "write output"
//	EXP002 - Unknown format          Patterns: "unsupported output format"
//
// # Analysis Errors (ANL001-ANL099)
//
//	ANL001 - System busy             Patterns: "too many concurrent analyses"
//	ANL002 - Run not found           Patterns: "run not found"
//	ANL003 - Cancelled               Patterns: "context canceled"
//
// # History Database Errors (DB004-DB099)
//
//	DB004 - Connection refused       Patterns: "connection refused"
//	DB005 - Connection reset         Patterns: "connection reset"
//	DB006 - Timeout                  Patterns: "timeout", "deadline exceeded"
//	DB007 - History disabled         Patterns: "history is not configured"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited           Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check application logs for the
// original technical error.
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so specific patterns come before general ones.

package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// CSV syntax
	{
		pattern: "unterminated quoted field",
		msg: UserMessage{
			Message: "A quoted field is never closed",
			Action:  "Add the missing closing double quote at the reported line",
			Code:    "CSV001",
		},
	},
	{
		pattern: `bare " in non-quoted field`,
		msg: UserMessage{
			Message: "A double quote appears inside an unquoted field",
			Action:  "Wrap the whole field in quotes and double any inner quotes",
			Code:    "CSV002",
		},
	},
	{
		pattern: "extraneous text after quoted field",
		msg: UserMessage{
			Message: "Text follows a closing quote",
			Action:  "Move the text inside the quotes or add the missing comma",
			Code:    "CSV003",
		},
	},
	{
		pattern: "carriage return not followed by line feed",
		msg: UserMessage{
			Message: "The file uses bare carriage returns as line breaks",
			Action:  "Save the file with LF or CRLF line endings",
			Code:    "CSV004",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "read csv",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file is accessible and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "Input file not found",
			Action:  "Check the path and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to analyze",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty input",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Please provide a CSV file with a header row",
			Code:    "FILE005",
		},
	},

	// Export
	{
		pattern: "write output",
		msg: UserMessage{
			Message: "The results could not be written",
			Action:  "Check the output path is writable",
			Code:    "EXP001",
		},
	},
	{
		pattern: "unsupported output format",
		msg: UserMessage{
			Message: "Unknown output format",
			Action:  "Use json or xlsx",
			Code:    "EXP002",
		},
	},

	// Analysis
	{
		pattern: "too many concurrent analyses",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "ANL001",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Analysis run not found",
			Action:  "Check the run ID or list recent runs",
			Code:    "ANL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "ANL003",
		},
	},

	// History database
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "history is not configured",
		msg: UserMessage{
			Message: "Run history is not enabled",
			Action:  "Set DATABASE_URL to record runs",
			Code:    "DB007",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first case-insensitive pattern match, or the ERR000
// fallback.
//
// Example:
//
//	err := fmt.Errorf("parse: %w", csv.ErrBareQuote)
//	msg := MapError(err)
//	// msg.Code == "CSV002"
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
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
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
