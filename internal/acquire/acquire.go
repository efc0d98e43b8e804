// Package acquire drives one subtitle acquisition: search every provider,
// rank the candidates and download them in order until one yields text.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/subseek/subseek/internal/apperrors"
	"github.com/subseek/subseek/internal/charset"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/metrics"
	"github.com/subseek/subseek/internal/models"
	"github.com/subseek/subseek/internal/parser"
	"github.com/subseek/subseek/internal/provider"
	"github.com/subseek/subseek/internal/ranker"
	"github.com/subseek/subseek/internal/services"
)

var (
	errNoDownloadURL = errors.New("no usable download url")
	errEmptyText     = errors.New("downloaded subtitle decoded to empty text")
)

// Acquirer finds, downloads and parses the best subtitle for a title.
type Acquirer interface {
	Acquire(ctx context.Context, q models.SearchQuery) (*models.Track, error)
}

// Orchestrator is the default Acquirer. It holds no per-call state, so one
// instance serves concurrent acquisitions.
type Orchestrator struct {
	providers []provider.Provider
	unpacker  services.SubtitleUnpacker
}

// New creates an orchestrator over providers in preference order.
func New(providers []provider.Provider, unpacker services.SubtitleUnpacker) *Orchestrator {
	if unpacker == nil {
		unpacker = services.NewSubtitleUnpacker(0)
	}
	return &Orchestrator{providers: providers, unpacker: unpacker}
}

// Acquire returns the first ranked candidate that downloads and decodes to
// non-empty text. Failures are a NoEligibleCandidateError when ranking left
// nothing, an AllCandidatesExhaustedError when every download failed, or a
// TransientNetworkError wrapping the context error when ctx is done.
func (o *Orchestrator) Acquire(ctx context.Context, q models.SearchQuery) (*models.Track, error) {
	logger := config.GetLogger().With().
		Str("acquisition_id", uuid.NewString()).
		Str("title", q.Title).
		Int64("tmdbId", q.TMDBID).
		Logger()

	logger.Info().Int("providers", len(o.providers)).Msg("Starting subtitle acquisition")
	started := time.Now()

	candidates, searchErrs := o.searchAll(ctx, logger, q)
	if err := ctx.Err(); err != nil {
		return nil, o.cancelled(logger, started, err)
	}

	ranked := ranker.Rank(candidates)
	logger.Info().
		Int("results", len(candidates)).
		Int("eligible", len(ranked)).
		Msg("Ranked subtitle candidates")

	if len(ranked) == 0 {
		recordOutcome("no_candidate", started)
		return nil, &apperrors.NoEligibleCandidateError{
			Title:    q.Title,
			Searched: len(candidates),
			Err:      errors.Join(searchErrs...),
		}
	}

	byID := make(map[string]provider.Provider, len(o.providers))
	for _, p := range o.providers {
		byID[p.ID()] = p
	}

	var attemptErrs []error
	for i, rc := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, o.cancelled(logger, started, err)
		}

		candidateLogger := logger.With().
			Int("rank", i+1).
			Str("provider", rc.Candidate.ProviderID).
			Str("candidate", rc.Candidate.RemoteID).
			Str("language", rc.Priority.String()).
			Logger()

		p, ok := byID[rc.Candidate.ProviderID]
		if !ok {
			attemptErrs = append(attemptErrs, fmt.Errorf("%s/%s: unknown provider", rc.Candidate.ProviderID, rc.Candidate.RemoteID))
			continue
		}

		track, err := o.attempt(ctx, candidateLogger, p, rc)
		if err != nil {
			metrics.SubtitleDownloadsTotal.WithLabelValues(p.ID(), "error").Inc()
			candidateLogger.Warn().Err(err).Msg("Candidate failed, trying next")
			attemptErrs = append(attemptErrs, fmt.Errorf("%s/%s: %w", p.ID(), rc.Candidate.RemoteID, err))
			continue
		}

		metrics.SubtitleDownloadsTotal.WithLabelValues(p.ID(), "success").Inc()
		recordOutcome("success", started)
		candidateLogger.Info().
			Str("format", track.Format.String()).
			Str("encoding", track.Encoding).
			Int("cues", len(track.Cues)).
			Bool("degraded", track.Degraded).
			Msg("Subtitle acquired")
		return track, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, o.cancelled(logger, started, err)
	}

	recordOutcome("exhausted", started)
	return nil, &apperrors.AllCandidatesExhaustedError{
		Title:     q.Title,
		Attempted: len(ranked),
		Errs:      attemptErrs,
	}
}

// searchAll queries providers in order. A failing provider counts as zero results.
func (o *Orchestrator) searchAll(ctx context.Context, logger zerolog.Logger, q models.SearchQuery) ([]models.SubtitleCandidate, []error) {
	var (
		all  []models.SubtitleCandidate
		errs []error
	)
	for _, p := range o.providers {
		if ctx.Err() != nil {
			break
		}
		found, err := search(ctx, p, q)
		if err != nil {
			logger.Warn().Err(err).Str("provider", p.ID()).Msg("Provider search failed")
			errs = append(errs, err)
			continue
		}
		logger.Debug().Str("provider", p.ID()).Int("results", len(found)).Msg("Provider search completed")
		all = append(all, found...)
	}
	return all, errs
}

// search prefers an identifier search and falls back to the title only when it finds nothing.
func search(ctx context.Context, p provider.Provider, q models.SearchQuery) ([]models.SubtitleCandidate, error) {
	if !q.HasExternalID() || !p.SupportsIDSearch() {
		return p.Search(ctx, models.SearchQuery{Title: q.Title})
	}

	found, err := p.Search(ctx, q)
	if err != nil || len(found) > 0 {
		return found, err
	}
	return p.Search(ctx, models.SearchQuery{Title: q.Title})
}

func (o *Orchestrator) attempt(ctx context.Context, logger zerolog.Logger, p provider.Provider, rc models.RankedCandidate) (*models.Track, error) {
	detail, err := p.Detail(ctx, rc.Candidate.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("detail: %w", err)
	}

	target, ok := services.SelectDownloadTarget(detail, rc.Priority)
	if !ok {
		return nil, errNoDownloadURL
	}
	logger.Debug().Str("url", target.URL).Str("fileName", target.FileName).Msg("Downloading candidate")

	downloaded, err := p.Download(ctx, target.URL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if downloaded.FileName == "" {
		downloaded.FileName = firstNonEmpty(target.FileName, detail.FileName)
	}
	if downloaded.ProviderHintFormat == "" {
		downloaded.ProviderHintFormat = firstNonEmpty(rc.Candidate.FormatHint, detail.FormatHint)
	}

	unpacked, err := o.unpacker.Unpack(downloaded, rc.Priority)
	if err != nil {
		return nil, err
	}

	decoded := charset.Decode(unpacked.Content)
	if strings.TrimSpace(decoded.Text) == "" {
		return nil, errEmptyText
	}

	track := parser.ClassifyAndParse(decoded, unpacked.FileName, services.FormatHint(unpacked))
	track.ProviderID = p.ID()
	track.CandidateID = rc.Candidate.RemoteID
	priority := rc.Priority
	track.Language = &priority
	track.LanguageTag = priority.Tag().String()
	return &track, nil
}

func (o *Orchestrator) cancelled(logger zerolog.Logger, started time.Time, err error) error {
	recordOutcome("cancelled", started)
	logger.Info().Err(err).Msg("Subtitle acquisition cancelled")
	return &apperrors.TransientNetworkError{Provider: "acquire", Op: "acquire", Err: err}
}

func recordOutcome(outcome string, started time.Time) {
	metrics.AcquisitionsTotal.WithLabelValues(outcome).Inc()
	metrics.AcquisitionDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
