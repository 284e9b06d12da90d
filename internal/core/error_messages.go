package core

// # Error Codes Reference
//
// This file maps pipeline errors to short notices for the chat user who ran
// the report command. Each notice carries a code so a report in chat can be
// matched to the log line that caused it.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Sheet unreachable: the sheet host could not be contacted
//	         Action: Try again in a few minutes
//	SRC002 - Sheet not found: the published URL returned 404
//	         Action: Check that the sheet is still published to the web
//	SRC003 - Sheet not shared: the published URL returned 401 or 403
//	         Action: Publish the sheet as CSV or fix its sharing settings
//	SRC004 - Sheet host error: the host answered with another status
//	         Action: Try again later
//	SRC005 - Sheet timeout: the download did not finish in time
//	         Action: Try again later
//	SRC006 - Sheet too large: the export exceeds the size limit
//	         Action: Reduce the sheet or raise SHEET_MAX_BYTES
//
// # Data Errors (CSV001-CSV099)
//
//	CSV001 - Unreadable sheet: the export is not valid CSV
//	         Action: Check the sheet for stray quotes
//
// # Delivery Errors (DLV001-DLV099)
//
//	DLV001 - Channel not found: the report channel could not be resolved
//	         Action: Check CHANNEL_ID and the bot's channel permissions
//	DLV002 - Post failed: a report page could not be posted
//	         Action: Check the bot's permission to send embeds
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Cancelled: the bot is shutting down
//	REQ002 - Timed out: the request took too long
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the logs for the cycle id

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/depotbot/internal/sheet"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnreachable = UserMessage{"The portfolio sheet could not be reached", "Try again in a few minutes", "SRC001"}
	msgNotFound    = UserMessage{"The portfolio sheet was not found", "Check that the sheet is still published to the web", "SRC002"}
	msgForbidden   = UserMessage{"The portfolio sheet is not shared", "Publish the sheet as CSV or fix its sharing settings", "SRC003"}
	msgUpstream    = UserMessage{"The sheet host returned an error", "Try again later", "SRC004"}
	msgTimeout     = UserMessage{"The portfolio sheet took too long to download", "Try again later", "SRC005"}
	msgTooLarge    = UserMessage{"The portfolio sheet is too large", "Reduce the sheet or raise SHEET_MAX_BYTES", "SRC006"}
	msgBadCSV      = UserMessage{"The portfolio sheet could not be read", "Check the sheet for stray quotes", "CSV001"}
	msgNoChannel   = UserMessage{"The report channel could not be found", "Check CHANNEL_ID and the bot's channel permissions", "DLV001"}
	msgPostFailed  = UserMessage{"The report could not be posted", "Check the bot's permission to send embeds", "DLV002"}
	msgCancelled   = UserMessage{"The request was cancelled", "Try again once the bot is back", "REQ001"}
	msgDeadline    = UserMessage{"The request timed out", "Try again later", "REQ002"}
	msgUnknown     = UserMessage{"An unexpected error occurred", "Check the bot logs", "ERR000"}
)

// errorPattern is a substring fallback for errors that lost their type on
// the way up.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"connection refused", msgUnreachable},
	{"no such host", msgUnreachable},
	{"timeout", msgTimeout},
	{"quoted-field", msgBadCSV},
}

// MapError converts an error to a user message. Typed errors are matched
// first, then message patterns; nil maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fe *sheet.FetchError
	if errors.As(err, &fe) {
		return fetchMessage(fe)
	}

	var de *DeliveryError
	switch {
	case errors.Is(err, ErrChannelUnresolved):
		return msgNoChannel
	case errors.As(err, &de):
		return msgPostFailed
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgDeadline
	}

	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return msgBadCSV
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return msgUnknown
}

func fetchMessage(fe *sheet.FetchError) UserMessage {
	switch {
	case errors.Is(fe, sheet.ErrTooLarge):
		return msgTooLarge
	case fe.Timeout():
		return msgTimeout
	case fe.StatusCode == http.StatusNotFound:
		return msgNotFound
	case fe.StatusCode == http.StatusUnauthorized, fe.StatusCode == http.StatusForbidden:
		return msgForbidden
	case fe.StatusCode != 0:
		return msgUpstream
	case errors.Is(fe, context.Canceled):
		return msgCancelled
	default:
		return msgUnreachable
	}
}

// FormatNotice renders m as a single chat line.
func FormatNotice(m UserMessage) string {
	return fmt.Sprintf("⚠️ %s. %s. (%s)", m.Message, m.Action, m.Code)
}
