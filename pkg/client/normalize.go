package client

import (
	"context"
	"errors"
	"net"
	"regexp"
)

// User-safe messages produced by Normalize. Raw backend internals (stack
// traces, SQL fragments, driver errors) never reach these strings.
const (
	MsgTimeout      = "The request timed out. Please try again."
	MsgOffline      = "Unable to reach the store. Please check your internet connection."
	MsgBadRequest   = "The request could not be processed. Please check your input and try again."
	MsgUnauthorized = "Please log in to continue."
	MsgForbidden    = "Access denied. You do not have permission to perform this action."
	MsgNotFound     = "The requested item could not be found."
	MsgTooMany      = "Too many requests. Please wait a moment and try again."
	MsgServer       = "Something went wrong on our end. Please try again in a few minutes."
	MsgUnavailable  = "The store is temporarily unavailable. Please try again shortly."
	MsgGeneric      = "Something went wrong. Please try again."
)

// statusMessages maps known HTTP status codes to fixed user-safe messages.
var statusMessages = map[int]string{
	400: MsgBadRequest,
	401: MsgUnauthorized,
	403: MsgForbidden,
	404: MsgNotFound,
	408: MsgTimeout,
	429: MsgTooMany,
	500: MsgServer,
	502: MsgUnavailable,
	503: MsgUnavailable,
	504: MsgUnavailable,
}

// technicalPatterns is the deny-list of backend message shapes that must
// never be shown to a user. A match falls back to the fixed status message.
var technicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)stack\s*trace`),
	regexp.MustCompile(`(?i)traceback`),
	regexp.MustCompile(`(?i)\bsql\b`),
	regexp.MustCompile(`(?i)syntax error`),
	regexp.MustCompile(`(?i)(null|nil) pointer`),
	regexp.MustCompile(`(?i)undefined is not`),
	regexp.MustCompile(`(?i)cannot read propert`),
	regexp.MustCompile(`(?i)exception`),
	regexp.MustCompile(`(?i)internal server`),
	regexp.MustCompile(`(?i)upload failed`),
	regexp.MustCompile(`(?i)econn[a-z]*`),
	regexp.MustCompile(`(?i)timed?\s*out at`),
	regexp.MustCompile(`at .+\.(js|go|ts):\d+`),
	regexp.MustCompile(`/(usr|var|home|srv)/\S+`),
}

// Normalize maps any error from the HTTP layer to a single human-readable
// message string.
//
// Priority order:
//  1. No response received: timeout message for deadline-style failures,
//     generic offline message otherwise.
//  2. A backend-supplied message is preferred, unless it matches the
//     technical deny-list.
//  3. The fixed message for known status codes, else a catch-all.
func Normalize(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		// Raw transport errors (no *APIError wrapper).
		if isTimeout(err) {
			return MsgTimeout
		}
		return MsgOffline
	}

	if apiErr.Class == ErrorClassNetwork || apiErr.StatusCode == 0 {
		if isTimeout(apiErr.Err) {
			return MsgTimeout
		}
		return MsgOffline
	}

	if apiErr.Message != "" && !isTechnical(apiErr.Message) {
		return apiErr.Message
	}

	if msg, ok := statusMessages[apiErr.StatusCode]; ok {
		return msg
	}
	return MsgGeneric
}

// isTechnical reports whether a backend message matches the deny-list.
func isTechnical(message string) bool {
	for _, pattern := range technicalPatterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}

// isTimeout distinguishes timeout-class network failures from generic
// connectivity loss.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
