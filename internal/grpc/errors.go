package grpc

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/subseek/subseek/internal/apperrors"
)

// ErrorDomain is the ErrorInfo domain attached to failed calls.
const ErrorDomain = "subseek"

// Error reasons carried in ErrorInfo.
const (
	ReasonNoEligibleCandidate    = "NO_ELIGIBLE_CANDIDATE"
	ReasonAllCandidatesExhausted = "ALL_CANDIDATES_EXHAUSTED"
	ReasonProviderUnavailable    = "PROVIDER_UNAVAILABLE"
	ReasonProviderRejected       = "PROVIDER_REJECTED"
)

// toStatus maps an acquisition failure to a gRPC status. Missing subtitles
// are NotFound; provider outages are Unavailable and reported to Sentry
// along with anything unexpected.
func toStatus(ctx context.Context, method string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return status.FromContextError(ctxErr).Err()
	}

	var (
		code   codes.Code
		reason string
		report bool
	)
	var noEligible *apperrors.NoEligibleCandidateError
	var exhausted *apperrors.AllCandidatesExhaustedError
	switch {
	case errors.As(err, &noEligible):
		code, reason = codes.NotFound, ReasonNoEligibleCandidate
	case errors.As(err, &exhausted):
		code, reason = codes.NotFound, ReasonAllCandidatesExhausted
	case errors.Is(err, &apperrors.TransientNetworkError{}):
		code, reason, report = codes.Unavailable, ReasonProviderUnavailable, true
	case errors.Is(err, &apperrors.TerminalClientError{}):
		code, reason, report = codes.FailedPrecondition, ReasonProviderRejected, true
	default:
		code, report = codes.Internal, true
	}

	if report {
		reportError(method, err)
	}

	st := status.New(code, err.Error())
	if reason == "" {
		return st.Err()
	}
	withInfo, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: ErrorDomain,
		Metadata: map[string]string{
			"method": method,
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// reportError sends err to Sentry; it is a no-op when Sentry was never initialised.
func reportError(method string, err error) {
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("grpc.method", method)
		hub.CaptureException(err)
	})
}
