// Package assrt implements the assrt.net subtitle search API.
package assrt

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

// ProviderID identifies assrt in candidates, metrics and logs.
const ProviderID = "assrt"

const (
	defaultBaseURL        = "https://api.assrt.net/v1"
	defaultMinQueryLength = 3
	defaultResultCount    = 15

	// statusRateLimited is the body status assrt returns instead of HTTP 429.
	statusRateLimited = 30900
)

// Config holds the client settings. Requester carries the transport and retry policy.
type Config struct {
	BaseURL        string
	Token          string
	MinQueryLength int
	ResultCount    int
	Requester      *client.Requester
}

// Client talks to the assrt API.
type Client struct {
	baseURL        *url.URL
	token          string
	minQueryLength int
	resultCount    int
	requester      *client.Requester
}

// New creates an assrt client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("assrt: parse base url: %w", err)
	}
	if cfg.Requester == nil {
		return nil, fmt.Errorf("assrt: requester is required")
	}

	minLen := cfg.MinQueryLength
	if minLen <= 0 {
		minLen = defaultMinQueryLength
	}
	count := cfg.ResultCount
	if count <= 0 {
		count = defaultResultCount
	}

	requester := *cfg.Requester
	requester.Provider = ProviderID
	requester.Throttled = isRateLimited

	return &Client{
		baseURL:        baseURL,
		token:          cfg.Token,
		minQueryLength: minLen,
		resultCount:    count,
		requester:      &requester,
	}, nil
}

func (c *Client) ID() string {
	return ProviderID
}

// SupportsIDSearch is false: assrt only searches by free text.
func (c *Client) SupportsIDSearch() bool {
	return false
}

// Search queries assrt by title. Queries shorter than the minimum length
// return no candidates without contacting the API.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.SubtitleCandidate, error) {
	logger := config.GetLogger()
	title := strings.TrimSpace(q.Title)
	if utf8.RuneCountInString(title) < c.minQueryLength {
		logger.Debug().Str("provider", ProviderID).Str("query", title).Msg("Query too short, skipping search")
		return nil, nil
	}

	params := url.Values{}
	params.Set("token", c.token)
	params.Set("q", title)
	params.Set("cnt", strconv.Itoa(c.resultCount))
	params.Set("pos", "0")
	params.Set("is_file", "0")
	params.Set("no_muxer", "1")

	var payload searchResponse
	if err := c.getJSON(ctx, "search", "sub/search", params, &payload); err != nil {
		return nil, err
	}

	candidates := make([]models.SubtitleCandidate, 0, len(payload.Sub.Subs))
	for _, sub := range payload.Sub.Subs {
		candidates = append(candidates, sub.toCandidate())
	}

	logger.Debug().Str("provider", ProviderID).Str("query", title).Int("results", len(candidates)).Msg("Search completed")
	return candidates, nil
}

// Detail returns the download location and the server-side file list of a subtitle.
func (c *Client) Detail(ctx context.Context, remoteID string) (*models.SubtitleDetail, error) {
	params := url.Values{}
	params.Set("token", c.token)
	params.Set("id", remoteID)

	var payload detailResponse
	if err := c.getJSON(ctx, "detail", "sub/detail", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Sub.Subs) == 0 {
		return nil, &apperrors.TerminalClientError{
			Provider: ProviderID, Op: "detail", Err: fmt.Errorf("subtitle %s not found", remoteID),
		}
	}

	sub := payload.Sub.Subs[0]
	detail := &models.SubtitleDetail{
		PrimaryURL: sub.URL,
		FileName:   sub.FileName,
		FormatHint: sub.SubType,
	}
	for _, f := range sub.FileList {
		detail.AlternateFiles = append(detail.AlternateFiles, models.AlternateFile{
			URL:      f.URL,
			FileName: f.Name,
			Size:     f.Size,
		})
	}
	return detail, nil
}

// Download fetches a subtitle file or archive.
func (c *Client) Download(ctx context.Context, rawURL string) (*models.DownloadedSubtitle, error) {
	return c.requester.Download(ctx, rawURL, nil)
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, params url.Values, out statusCarrier) error {
	u := c.baseURL.JoinPath(endpoint)
	u.RawQuery = params.Encode()

	resp, err := c.requester.Do(ctx, client.Request{
		Op:     op,
		Method: http.MethodGet,
		URL:    u.String(),
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &apperrors.TerminalClientError{
			Provider: ProviderID, Op: op, URL: redact(u), StatusCode: resp.StatusCode,
			Err: fmt.Errorf("decode response: %w", err),
		}
	}
	if status := out.status(); status != 0 {
		return &apperrors.TerminalClientError{
			Provider: ProviderID, Op: op, URL: redact(u), StatusCode: resp.StatusCode,
			Err: fmt.Errorf("api status %d", status),
		}
	}
	return nil
}

// redact drops the token from URLs that end up in errors and logs.
func redact(u *url.URL) string {
	clean := *u
	q := clean.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		clean.RawQuery = q.Encode()
	}
	return clean.String()
}

func isRateLimited(resp *client.Response) bool {
	var envelope struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return false
	}
	return envelope.Status == statusRateLimited
}
