// Package provider defines the capability every subtitle source exposes and
// builds the configured set of providers.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/subseek/subseek/internal/client"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/models"
	"github.com/subseek/subseek/internal/provider/assrt"
	"github.com/subseek/subseek/internal/provider/opensubtitles"
)

// Provider is one subtitle source. Errors returned by its methods are
// apperrors.TransientNetworkError or apperrors.TerminalClientError.
type Provider interface {
	ID() string
	// SupportsIDSearch reports whether Search honours SearchQuery.TMDBID.
	SupportsIDSearch() bool
	Search(ctx context.Context, q models.SearchQuery) ([]models.SubtitleCandidate, error)
	Detail(ctx context.Context, remoteID string) (*models.SubtitleDetail, error)
	Download(ctx context.Context, url string) (*models.DownloadedSubtitle, error)
}

var (
	_ Provider = (*assrt.Client)(nil)
	_ Provider = (*opensubtitles.Client)(nil)
)

// FromConfig builds the enabled providers in preference order (assrt first).
// A provider that is enabled but misconfigured is skipped with a warning;
// an error is returned only when no provider is left.
func FromConfig(cfg *config.Config) ([]Provider, error) {
	logger := config.GetLogger()
	retry := client.RetryPolicyFromConfig(cfg)

	newRequester := func(insecureTLS bool) *client.Requester {
		return &client.Requester{
			HTTPClient:   client.NewHTTPClient(client.TransportOptionsFromConfig(cfg, insecureTLS)),
			Retry:        retry,
			MaxBodyBytes: cfg.DownloadLimit(),
		}
	}

	var (
		providers []Provider
		errs      []error
	)

	if a := cfg.Providers.Assrt; a.Enabled {
		p, err := assrt.New(assrt.Config{
			BaseURL:        a.BaseURL,
			Token:          a.Token,
			MinQueryLength: a.MinQueryLength,
			Requester:      newRequester(a.InsecureTLS),
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			if a.Token == "" {
				logger.Warn().Str("provider", assrt.ProviderID).Msg("No API token configured, requests will likely be rejected")
			}
			providers = append(providers, p)
		}
	}

	if o := cfg.Providers.OpenSubtitles; o.Enabled {
		p, err := opensubtitles.New(opensubtitles.Config{
			BaseURL:        o.BaseURL,
			APIKey:         o.APIKey,
			UserToken:      o.UserToken,
			Languages:      o.Languages,
			MinQueryLength: o.MinQueryLength,
			Requester:      newRequester(o.InsecureTLS),
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			providers = append(providers, p)
		}
	}

	for _, err := range errs {
		logger.Warn().Err(err).Msg("Skipping misconfigured provider")
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no subtitle provider available: %w", errors.Join(append(errs, errors.New("all providers disabled"))...))
	}

	ids := make([]string, 0, len(providers))
	for _, p := range providers {
		ids = append(ids, p.ID())
	}
	logger.Info().Strs("providers", ids).Msg("Subtitle providers configured")
	return providers, nil
}
