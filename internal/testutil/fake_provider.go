package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/subseek/subseek/internal/apperrors"
	"github.com/subseek/subseek/internal/models"
)

// FakeProvider is an in-memory provider. Results and failures are keyed by
// remote id or URL; every call is recorded.
type FakeProvider struct {
	Name      string
	IDSearch  bool
	Results   []models.SubtitleCandidate
	IDResults []models.SubtitleCandidate
	SearchErr error
	Details   map[string]*models.SubtitleDetail
	Files     map[string]*models.DownloadedSubtitle

	mu        sync.Mutex
	searches  []models.SearchQuery
	details   []string
	downloads []string
}

func (f *FakeProvider) ID() string {
	return f.Name
}

func (f *FakeProvider) SupportsIDSearch() bool {
	return f.IDSearch
}

func (f *FakeProvider) Search(ctx context.Context, q models.SearchQuery) ([]models.SubtitleCandidate, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	if q.HasExternalID() {
		return f.IDResults, nil
	}
	return f.Results, nil
}

func (f *FakeProvider) Detail(ctx context.Context, remoteID string) (*models.SubtitleDetail, error) {
	f.mu.Lock()
	f.details = append(f.details, remoteID)
	f.mu.Unlock()

	if detail, ok := f.Details[remoteID]; ok {
		return detail, nil
	}
	return nil, &apperrors.TerminalClientError{Provider: f.Name, Op: "detail", StatusCode: 404, Err: fmt.Errorf("unknown id %s", remoteID)}
}

func (f *FakeProvider) Download(ctx context.Context, url string) (*models.DownloadedSubtitle, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, url)
	f.mu.Unlock()

	if file, ok := f.Files[url]; ok {
		clone := *file
		return &clone, nil
	}
	return nil, &apperrors.TerminalClientError{Provider: f.Name, Op: "download", URL: url, StatusCode: 404, Err: fmt.Errorf("dead link")}
}

// Searches returns the queries received so far.
func (f *FakeProvider) Searches() []models.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SearchQuery(nil), f.searches...)
}

// DetailCalls returns the remote ids looked up so far.
func (f *FakeProvider) DetailCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.details...)
}

// Downloads returns the URLs fetched so far.
func (f *FakeProvider) Downloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.downloads...)
}
