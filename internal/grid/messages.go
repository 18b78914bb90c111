package grid

// User-facing error codes
//
// Codes are grouped by category so support staff can tell at a glance which
// layer produced an error:
//
//	GRID001 - Unknown column            GRID002 - Invalid column schema
//	GRID003 - Duplicate column key      GRID004 - Invalid tab
//	FLT001  - Invalid filter            FLT002  - Duplicate filter id
//	FLT003  - Filter not found
//	EXP001  - Export already running    EXP002  - Export not configured
//	EXP003  - Unknown export format     EXP004  - Export slots exhausted
//	REQ001  - Malformed request
//	SRC001  - Data source unreachable   SRC002  - Data source timeout
//	SRC003  - Request cancelled         SRC004  - Unknown dataset
//	ERR000  - Unknown error
//
// Engine errors are matched with errors.Is. Errors coming back from data
// sources are matched case-insensitively on their text; the first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is a user-friendly description of an error.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrUnknownColumn, UserMessage{"Unknown column", "Check the column name and try again", "GRID001"}},
	{ErrInvalidSchema, UserMessage{"The table configuration is invalid", "Contact support", "GRID002"}},
	{ErrDuplicateColumn, UserMessage{"The table configuration has a duplicate column", "Contact support", "GRID003"}},
	{ErrInvalidTab, UserMessage{"That tab is not available", "Pick another tab", "GRID004"}},
	{ErrInvalidFilter, UserMessage{"The filter is incomplete or invalid", "Choose a column, an operator, and a value", "FLT001"}},
	{ErrDuplicateFilter, UserMessage{"This filter already exists", "Edit the existing filter instead", "FLT002"}},
	{ErrFilterNotFound, UserMessage{"Filter not found", "Refresh the page and try again", "FLT003"}},
	{ErrExportBusy, UserMessage{"An export is already in progress", "Wait for it to finish and try again", "EXP001"}},
	{ErrExportUnavailable, UserMessage{"Export is not available for this table", "Contact support", "EXP002"}},
	{ErrUnknownFormat, UserMessage{"Unsupported export format", "Use CSV, Excel, or PDF", "EXP003"}},
}

type textPattern struct {
	pattern string
	msg     UserMessage
}

var textPatterns = []textPattern{
	{"connection refused", UserMessage{"Unable to reach the data source", "Please try again in a few moments", "SRC001"}},
	{"connection reset", UserMessage{"The data source connection was interrupted", "Please try again", "SRC001"}},
	{"context deadline exceeded", UserMessage{"Loading data timed out", "Narrow your filters or try again later", "SRC002"}},
	{"timeout", UserMessage{"Loading data timed out", "Narrow your filters or try again later", "SRC002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "SRC003"}},
	{"unknown dataset", UserMessage{"Unknown table", "Verify the table name is correct", "SRC004"}},
	{"too many concurrent exports", UserMessage{"The server is busy with other exports", "Please try again in a moment", "EXP004"}},
	{"invalid request", UserMessage{"The request could not be understood", "Check the submitted values and try again", "REQ001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err into a user-facing message. Nil maps to the zero
// UserMessage; anything unrecognized maps to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			msg := sm.msg
			var se *SchemaError
			if errors.As(err, &se) && se.Suggestion != "" {
				msg.Action = fmt.Sprintf("Did you mean %q?", se.Suggestion)
			}
			return msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, tp := range textPatterns {
		if strings.Contains(text, tp.pattern) {
			return tp.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
