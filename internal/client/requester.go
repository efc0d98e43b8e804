package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/rs/zerolog"

	"github.com/subseek/subseek/internal/apperrors"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/metrics"
)

// Request describes one provider call. Body is replayed on every attempt.
type Request struct {
	Op     string // search, detail, download
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read provider response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// FinalURL is the URL after redirects.
	FinalURL string
}

// RetryPolicy bounds the retry loop of a Requester.
type RetryPolicy struct {
	MaxAttempts int
	BackoffUnit time.Duration
}

// RetryPolicyFromConfig reads the attempt budget and backoff step from the host configuration.
func RetryPolicyFromConfig(cfg *config.Config) RetryPolicy {
	return RetryPolicy{MaxAttempts: cfg.RetryAttempts(), BackoffUnit: cfg.BackoffUnit()}
}

// Requester executes provider calls with a bounded, linearly backed-off
// retry loop. Transport failures, 5xx and 429 are retried; any other 4xx
// is returned immediately as a TerminalClientError.
type Requester struct {
	Provider   string
	HTTPClient *http.Client
	Retry      RetryPolicy
	// MaxBodyBytes caps how much of a response is read. Zero means no limit.
	MaxBodyBytes int64
	// Throttled reports provider-specific rate limiting signalled inside a 200 body.
	Throttled func(*Response) bool
}

// Do runs req until it succeeds, fails terminally or the attempt budget is spent.
// The returned error is always a TransientNetworkError or a TerminalClientError.
func (r *Requester) Do(ctx context.Context, req Request) (*Response, error) {
	logger := config.GetLogger().With().
		Str("provider", r.Provider).
		Str("op", req.Op).
		Logger()

	maxAttempts := r.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempts := 0
	policy := retrypolicy.NewBuilder[*Response]().
		HandleIf(func(resp *Response, err error) bool {
			// A cancelled caller is never retried.
			return ctx.Err() == nil && r.isTransient(resp, err)
		}).
		WithMaxAttempts(maxAttempts).
		WithDelayFunc(func(failsafe.ExecutionAttempt[*Response]) time.Duration {
			return time.Duration(attempts) * r.Retry.BackoffUnit
		}).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[*Response]) {
			metrics.ProviderRetriesTotal.WithLabelValues(r.Provider, req.Op).Inc()
			logRetry(logger, attempts, e.LastError())
		}).
		Build()

	resp, err := failsafe.With(policy).WithContext(ctx).Get(func() (*Response, error) {
		attempts++
		return r.attempt(ctx, req)
	})

	if err == nil && resp == nil {
		err = context.Cause(ctx)
		if err == nil {
			err = errors.New("no response")
		}
	}
	return r.translate(req, attempts, resp, err)
}

func logRetry(logger zerolog.Logger, attempt int, err error) {
	event := logger.Warn().Int("attempt", attempt)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Provider call failed, retrying")
}

func (r *Requester) attempt(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &apperrors.TerminalClientError{Provider: r.Provider, Op: req.Op, URL: req.URL, Err: err}
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	httpResp, err := r.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	reader := io.Reader(httpResp.Body)
	if r.MaxBodyBytes > 0 {
		reader = io.LimitReader(httpResp.Body, r.MaxBodyBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if r.MaxBodyBytes > 0 && int64(len(data)) > r.MaxBodyBytes {
		return nil, &apperrors.TerminalClientError{
			Provider:   r.Provider,
			Op:         req.Op,
			URL:        req.URL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("response exceeds %d bytes", r.MaxBodyBytes),
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		FinalURL:   httpResp.Request.URL.String(),
	}, nil
}

func (r *Requester) isTransient(resp *Response, err error) bool {
	if err != nil {
		var terminal *apperrors.TerminalClientError
		return !errors.As(err, &terminal)
	}
	if resp == nil {
		return false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true
	}
	return resp.StatusCode < 300 && r.Throttled != nil && r.Throttled(resp)
}

func (r *Requester) translate(req Request, attempts int, resp *Response, err error) (*Response, error) {
	if err != nil {
		var terminal *apperrors.TerminalClientError
		if errors.As(err, &terminal) {
			r.record(req.Op, "terminal")
			return nil, terminal
		}
		r.record(req.Op, "transient")
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, &apperrors.TransientNetworkError{
			Provider: r.Provider, Op: req.Op, URL: req.URL, StatusCode: status, Attempts: attempts, Err: err,
		}
	}

	if r.isTransient(resp, nil) {
		r.record(req.Op, "transient")
		return nil, &apperrors.TransientNetworkError{
			Provider: r.Provider, Op: req.Op, URL: req.URL, StatusCode: resp.StatusCode, Attempts: attempts,
		}
	}

	if resp.StatusCode >= 300 {
		r.record(req.Op, "terminal")
		return nil, &apperrors.TerminalClientError{
			Provider: r.Provider, Op: req.Op, URL: req.URL, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	r.record(req.Op, "success")
	return resp, nil
}

func (r *Requester) record(op, outcome string) {
	metrics.ProviderRequestsTotal.WithLabelValues(r.Provider, op, outcome).Inc()
}
