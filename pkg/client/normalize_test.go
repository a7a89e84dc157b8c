package client

import (
	"context"
	"errors"
	"testing"
)

// timeoutError mimics a net.Error with Timeout() true, like the error a
// cancelled dial or an aborted connection produces.
type timeoutError struct{}

func (timeoutError) Error() string   { return "request aborted: timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestNormalize_NetworkErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "no_response_with_timeout",
			err:      &APIError{Class: ErrorClassNetwork, Err: timeoutError{}},
			expected: MsgTimeout,
		},
		{
			name:     "no_response_with_deadline",
			err:      &APIError{Class: ErrorClassNetwork, Err: context.DeadlineExceeded},
			expected: MsgTimeout,
		},
		{
			name:     "no_response_generic",
			err:      &APIError{Class: ErrorClassNetwork, Err: errors.New("connection refused")},
			expected: MsgOffline,
		},
		{
			name:     "raw_transport_error",
			err:      errors.New("dial tcp: connection refused"),
			expected: MsgOffline,
		},
		{
			name:     "raw_deadline",
			err:      context.DeadlineExceeded,
			expected: MsgTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.err); got != tt.expected {
				t.Errorf("Normalize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalize_StatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{400, MsgBadRequest},
		{401, MsgUnauthorized},
		{403, MsgForbidden},
		{404, MsgNotFound},
		{408, MsgTimeout},
		{429, MsgTooMany},
		{500, MsgServer},
		{502, MsgUnavailable},
		{503, MsgUnavailable},
		{504, MsgUnavailable},
	}

	for _, tt := range tests {
		err := &APIError{StatusCode: tt.status, Class: classify(tt.status)}
		if got := Normalize(err); got != tt.expected {
			t.Errorf("Normalize(status %d) = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestNormalize_DenyListSuppressesBackendMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		status   int
		expected string
	}{
		{
			name:     "upload_failure_suppressed",
			message:  "Upload failed, please try again",
			status:   500,
			expected: MsgServer,
		},
		{
			name:     "sql_fragment_suppressed",
			message:  "SQL error near SELECT * FROM orders",
			status:   500,
			expected: MsgServer,
		},
		{
			name:     "stack_trace_suppressed",
			message:  "TypeError: Cannot read properties of undefined at handler (/srv/app/index.js:42)",
			status:   500,
			expected: MsgServer,
		},
		{
			name:     "null_pointer_suppressed",
			message:  "null pointer dereference in order service",
			status:   500,
			expected: MsgServer,
		},
		{
			name:     "safe_message_passes_through",
			message:  "This coupon has expired",
			status:   422,
			expected: "This coupon has expired",
		},
		{
			name:     "unknown_status_without_message_catch_all",
			message:  "",
			status:   418,
			expected: MsgGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &APIError{
				StatusCode: tt.status,
				Class:      classify(tt.status),
				Message:    tt.message,
			}
			if got := Normalize(err); got != tt.expected {
				t.Errorf("Normalize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalize_ForbiddenWithoutBody(t *testing.T) {
	err := &APIError{StatusCode: 403, Class: ErrorClassClient}
	if got := Normalize(err); got != MsgForbidden {
		t.Errorf("Normalize(403) = %q, want %q", got, MsgForbidden)
	}
}

func TestNormalize_WrappedAPIError(t *testing.T) {
	// Normalize must see through retry-exhaustion wrapping.
	inner := &APIError{StatusCode: 503, Class: ErrorClassServer}
	wrapped := errors.Join(ErrRetryExhausted, inner)
	if got := Normalize(wrapped); got != MsgUnavailable {
		t.Errorf("Normalize(wrapped) = %q, want %q", got, MsgUnavailable)
	}
}

func TestNormalize_Nil(t *testing.T) {
	if got := Normalize(nil); got != "" {
		t.Errorf("Normalize(nil) = %q, want empty", got)
	}
}
