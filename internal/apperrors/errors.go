package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// TransientNetworkError is returned when a provider call kept failing with a retryable
// condition (timeout, connection failure, 5xx, 429) until the attempt budget ran out.
type TransientNetworkError struct {
	Provider   string
	Op         string
	URL        string
	StatusCode int // 0 when the request never produced a response
	Attempts   int
	Err        error
}

// Error implements the error interface.
func (e *TransientNetworkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: transient failure after %d attempt(s)", e.Provider, e.Op, e.Attempts)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the last underlying failure.
func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *TransientNetworkError) Is(target error) bool {
	_, ok := target.(*TransientNetworkError)
	return ok
}

// TerminalClientError is returned for conditions that are never retried:
// HTTP 4xx other than 429, malformed response bodies, oversized payloads.
type TerminalClientError struct {
	Provider   string
	Op         string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TerminalClientError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: terminal failure", e.Provider, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying failure.
func (e *TerminalClientError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *TerminalClientError) Is(target error) bool {
	_, ok := target.(*TerminalClientError)
	return ok
}

// NoEligibleCandidateError is returned when ranking left nothing to download.
type NoEligibleCandidateError struct {
	Title    string
	Searched int   // number of raw search results before ranking
	Err      error // joined provider search failures, if any
}

// Error implements the error interface.
func (e *NoEligibleCandidateError) Error() string {
	msg := fmt.Sprintf("no eligible subtitle candidate for %q (%d search results)", e.Title, e.Searched)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the provider search failures, if any.
func (e *NoEligibleCandidateError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *NoEligibleCandidateError) Is(target error) bool {
	_, ok := target.(*NoEligibleCandidateError)
	return ok
}

// AllCandidatesExhaustedError is returned when every ranked candidate failed to download.
type AllCandidatesExhaustedError struct {
	Title     string
	Attempted int
	Errs      []error
}

// Error implements the error interface.
func (e *AllCandidatesExhaustedError) Error() string {
	msg := fmt.Sprintf("all %d subtitle candidate(s) for %q failed", e.Attempted, e.Title)
	if len(e.Errs) > 0 {
		msg += ": " + errors.Join(e.Errs...).Error()
	}
	return msg
}

// Unwrap exposes the per-candidate failures to errors.Is/As.
func (e *AllCandidatesExhaustedError) Unwrap() []error {
	return e.Errs
}

// Is allows for error checking with errors.Is().
func (e *AllCandidatesExhaustedError) Is(target error) bool {
	_, ok := target.(*AllCandidatesExhaustedError)
	return ok
}

// IsNotFound reports whether err is one of the "no subtitle found" outcomes.
func IsNotFound(err error) bool {
	return errors.Is(err, &NoEligibleCandidateError{}) || errors.Is(err, &AllCandidatesExhaustedError{})
}
