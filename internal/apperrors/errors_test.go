// Package apperrors tests verify the error taxonomy types, their Error()
// messages, Is() matching semantics and compatibility with errors.Is()/errors.As()
// including through fmt.Errorf wrapping.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTransientNetworkError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *TransientNetworkError
		expected string
	}{
		{
			name:     "with status",
			err:      &TransientNetworkError{Provider: "assrt", Op: "search", StatusCode: 503, Attempts: 3},
			expected: "assrt search: transient failure after 3 attempt(s) (status 503)",
		},
		{
			name:     "with cause",
			err:      &TransientNetworkError{Provider: "opensubtitles", Op: "download", Attempts: 2, Err: context.DeadlineExceeded},
			expected: "opensubtitles download: transient failure after 2 attempt(s): context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTransientNetworkError_UnwrapAndIs(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("wrapped: %w", &TransientNetworkError{Provider: "assrt", Op: "detail", Err: context.DeadlineExceeded})

	if !errors.Is(err, &TransientNetworkError{}) {
		t.Error("errors.Is should match TransientNetworkError through wrapping")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is should reach the underlying cause")
	}
	if errors.Is(err, &TerminalClientError{}) {
		t.Error("TransientNetworkError must not match TerminalClientError")
	}
}

func TestTerminalClientError(t *testing.T) {
	t.Parallel()
	err := &TerminalClientError{Provider: "assrt", Op: "download", StatusCode: 404}
	if got := err.Error(); got != "assrt download: terminal failure (status 404)" {
		t.Errorf("Error() = %q", got)
	}

	var target *TerminalClientError
	if !errors.As(fmt.Errorf("x: %w", err), &target) || target.StatusCode != 404 {
		t.Error("errors.As should recover the TerminalClientError")
	}
}

func TestNoEligibleCandidateError(t *testing.T) {
	t.Parallel()
	cause := errors.New("assrt search failed")
	err := &NoEligibleCandidateError{Title: "Up", Searched: 4, Err: cause}

	if !strings.Contains(err.Error(), `"Up"`) || !strings.Contains(err.Error(), "4 search results") {
		t.Errorf("Unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the search failure")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match NoEligibleCandidateError")
	}
}

func TestAllCandidatesExhaustedError(t *testing.T) {
	t.Parallel()
	first := &TerminalClientError{Provider: "assrt", Op: "download", StatusCode: 404}
	second := &TransientNetworkError{Provider: "assrt", Op: "download", StatusCode: 503, Attempts: 3}
	err := fmt.Errorf("acquire: %w", &AllCandidatesExhaustedError{Title: "Up", Attempted: 2, Errs: []error{first, second}})

	if !errors.Is(err, &AllCandidatesExhaustedError{}) {
		t.Error("errors.Is should match AllCandidatesExhaustedError")
	}
	if !errors.Is(err, &TerminalClientError{}) || !errors.Is(err, &TransientNetworkError{}) {
		t.Error("errors.Is should reach the per-candidate failures")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match AllCandidatesExhaustedError")
	}
	if IsNotFound(first) {
		t.Error("IsNotFound must not match a plain client error")
	}
}
