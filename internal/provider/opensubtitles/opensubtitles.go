// Package opensubtitles implements the OpenSubtitles REST API.
package opensubtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/subseek/subseek/internal/apperrors"
	"github.com/subseek/subseek/internal/client"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/models"
)

// ProviderID identifies OpenSubtitles in candidates, metrics and logs.
const ProviderID = "opensubtitles"

const (
	defaultBaseURL        = "https://api.opensubtitles.com/api/v1"
	defaultMinQueryLength = 2
)

var defaultLanguages = []string{"zh-cn", "zh-tw", "ze", "en"}

type Config struct {
	BaseURL        string
	APIKey         string
	UserToken      string
	Languages      []string
	MinQueryLength int
	Requester      *client.Requester
}

type Client struct {
	baseURL        *url.URL
	apiKey         string
	userToken      string
	languages      []string
	minQueryLength int
	requester      *client.Requester
}

// New creates an OpenSubtitles client. An API key is required by the service.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("opensubtitles: api key is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse base url: %w", err)
	}
	if cfg.Requester == nil {
		return nil, fmt.Errorf("opensubtitles: requester is required")
	}

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = defaultLanguages
	}
	minLen := cfg.MinQueryLength
	if minLen <= 0 {
		minLen = defaultMinQueryLength
	}

	requester := *cfg.Requester
	requester.Provider = ProviderID

	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		userToken:      strings.TrimSpace(cfg.UserToken),
		languages:      languages,
		minQueryLength: minLen,
		requester:      &requester,
	}, nil
}

func (c *Client) ID() string {
	return ProviderID
}

// SupportsIDSearch is true: OpenSubtitles accepts TMDB ids.
func (c *Client) SupportsIDSearch() bool {
	return true
}

// Search looks subtitles up by TMDB id when one is given, otherwise by title.
// Free-text queries shorter than the minimum length return no candidates.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.SubtitleCandidate, error) {
	logger := config.GetLogger()

	params := url.Values{}
	if q.HasExternalID() {
		params.Set("tmdb_id", strconv.FormatInt(q.TMDBID, 10))
	} else {
		title := strings.TrimSpace(q.Title)
		if utf8.RuneCountInString(title) < c.minQueryLength {
			logger.Debug().Str("provider", ProviderID).Str("query", title).Msg("Query too short, skipping search")
			return nil, nil
		}
		params.Set("query", title)
	}
	params.Set("languages", strings.Join(c.languages, ","))
	params.Set("order_by", "upload_date")
	params.Set("order_direction", "desc")

	endpoint := c.baseURL.JoinPath("subtitles")
	endpoint.RawQuery = params.Encode()

	resp, err := c.requester.Do(ctx, client.Request{
		Op:     "search",
		Method: http.MethodGet,
		URL:    endpoint.String(),
		Header: c.headers(),
	})
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, c.malformed("search", endpoint.String(), resp.StatusCode, err)
	}

	candidates := make([]models.SubtitleCandidate, 0, len(payload.Data))
	for _, entry := range payload.Data {
		candidate, ok := entry.toCandidate()
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	logger.Debug().
		Str("provider", ProviderID).
		Int64("tmdbId", q.TMDBID).
		Str("query", q.Title).
		Int("results", len(candidates)).
		Msg("Search completed")
	return candidates, nil
}

// Detail negotiates a download link for a file id.
func (c *Client) Detail(ctx context.Context, remoteID string) (*models.SubtitleDetail, error) {
	fileID, err := strconv.ParseInt(remoteID, 10, 64)
	if err != nil || fileID <= 0 {
		return nil, &apperrors.TerminalClientError{
			Provider: ProviderID, Op: "detail", Err: fmt.Errorf("invalid file id %q", remoteID),
		}
	}

	body, err := json.Marshal(map[string]any{"file_id": fileID})
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: encode download request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("download")
	header := c.headers()
	header.Set("Content-Type", "application/json")

	resp, err := c.requester.Do(ctx, client.Request{
		Op:     "detail",
		Method: http.MethodPost,
		URL:    endpoint.String(),
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var info downloadResponse
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, c.malformed("detail", endpoint.String(), resp.StatusCode, err)
	}
	if info.Link == "" {
		return nil, c.malformed("detail", endpoint.String(), resp.StatusCode, fmt.Errorf("response missing link"))
	}

	link, err := endpoint.Parse(info.Link)
	if err != nil {
		return nil, c.malformed("detail", endpoint.String(), resp.StatusCode, err)
	}

	return &models.SubtitleDetail{
		PrimaryURL: link.String(),
		FileName:   info.FileName,
	}, nil
}

// Download fetches the file behind a negotiated link. The link is pre-signed, so no API headers are sent.
func (c *Client) Download(ctx context.Context, rawURL string) (*models.DownloadedSubtitle, error) {
	return c.requester.Download(ctx, rawURL, nil)
}

func (c *Client) headers() http.Header {
	header := http.Header{}
	header.Set("Api-Key", c.apiKey)
	header.Set("Accept", "application/json")
	if c.userToken != "" {
		header.Set("Authorization", "Bearer "+c.userToken)
	}
	return header
}

func (c *Client) malformed(op, rawURL string, status int, err error) error {
	return &apperrors.TerminalClientError{
		Provider: ProviderID, Op: op, URL: rawURL, StatusCode: status,
		Err: fmt.Errorf("malformed response: %w", err),
	}
}
