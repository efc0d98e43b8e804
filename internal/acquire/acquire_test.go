package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/subseek/subseek/internal/apperrors"
	"github.com/subseek/subseek/internal/client"
	"github.com/subseek/subseek/internal/models"
	"github.com/subseek/subseek/internal/provider"
	"github.com/subseek/subseek/internal/provider/assrt"
	"github.com/subseek/subseek/internal/services"
	"github.com/subseek/subseek/internal/testutil"
)

var twoCues = []testutil.CueOptions{
	{StartMs: 1000, EndMs: 2500, Text: "你好"},
	{StartMs: 3000, EndMs: 4200, Text: "再见"},
}

func candidate(providerID, id, label, uploaded string) models.SubtitleCandidate {
	return models.SubtitleCandidate{ProviderID: providerID, RemoteID: id, LanguageLabel: label, RecencyKey: uploaded}
}

func primary(url, name string) *models.SubtitleDetail {
	return &models.SubtitleDetail{PrimaryURL: url, FileName: name}
}

func srtFile(text string) *models.DownloadedSubtitle {
	return &models.DownloadedSubtitle{Content: []byte(text)}
}

func TestAcquire_SkipsDeadCandidate(t *testing.T) {
	t.Parallel()
	p := &testutil.FakeProvider{
		Name: "fake",
		Results: []models.SubtitleCandidate{
			candidate("fake", "3", "英文", "2024-01-01 00:00:00"),
			candidate("fake", "1", "简体", "2024-03-01 00:00:00"),
			candidate("fake", "2", "简体", "2024-02-01 00:00:00"),
		},
		Details: map[string]*models.SubtitleDetail{
			"1": primary("http://files/1.srt", "1.srt"),
			"2": primary("http://files/2.srt", "2.srt"),
			"3": primary("http://files/3.srt", "3.srt"),
		},
		Files: map[string]*models.DownloadedSubtitle{
			"http://files/2.srt": srtFile(testutil.GenerateSRT(twoCues)),
			"http://files/3.srt": srtFile(testutil.GenerateSRT(twoCues)),
		},
	}

	track, err := New([]provider.Provider{p}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if track.CandidateID != "2" {
		t.Errorf("Expected candidate 2, got %q", track.CandidateID)
	}
	if track.ProviderID != "fake" {
		t.Errorf("Expected provider fake, got %q", track.ProviderID)
	}
	if track.Format != models.FormatSrt {
		t.Errorf("Expected srt, got %s", track.Format)
	}
	if len(track.Cues) != 2 || track.Cues[0].Text != "你好" {
		t.Errorf("Unexpected cues: %+v", track.Cues)
	}
	if track.Language == nil || *track.Language != models.SimplifiedChinese {
		t.Errorf("Expected simplified-chinese language, got %v", track.Language)
	}
	if track.LanguageTag != "zh-Hans" {
		t.Errorf("Expected language tag zh-Hans, got %q", track.LanguageTag)
	}
	if track.FileName != "2.srt" {
		t.Errorf("Expected file name 2.srt, got %q", track.FileName)
	}

	downloads := p.Downloads()
	want := []string{"http://files/1.srt", "http://files/2.srt"}
	if strings.Join(downloads, ",") != strings.Join(want, ",") {
		t.Errorf("Downloads = %v, want %v", downloads, want)
	}
	for _, id := range p.DetailCalls() {
		if id == "3" {
			t.Error("Candidate 3 should never be attempted")
		}
	}
}

func TestAcquire_NoEligibleCandidate(t *testing.T) {
	t.Parallel()
	p := &testutil.FakeProvider{
		Name: "fake",
		Results: []models.SubtitleCandidate{
			candidate("fake", "1", "Deutsch", "2024-01-01"),
			candidate("fake", "2", "Français", "2024-01-02"),
			{ProviderID: "fake", RemoteID: "3", LanguageLabel: "简体", FormatHint: "sup"},
		},
	}

	_, err := New([]provider.Provider{p}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})

	var noEligible *apperrors.NoEligibleCandidateError
	if !errors.As(err, &noEligible) {
		t.Fatalf("Expected NoEligibleCandidateError, got %v", err)
	}
	if noEligible.Searched != 3 {
		t.Errorf("Expected 3 searched results, got %d", noEligible.Searched)
	}
	if !apperrors.IsNotFound(err) {
		t.Error("Expected IsNotFound to hold")
	}
	if len(p.DetailCalls()) != 0 || len(p.Downloads()) != 0 {
		t.Errorf("Expected no detail or download calls, got %v / %v", p.DetailCalls(), p.Downloads())
	}
}

func TestAcquire_AllCandidatesExhausted(t *testing.T) {
	t.Parallel()
	p := &testutil.FakeProvider{
		Name: "fake",
		Results: []models.SubtitleCandidate{
			candidate("fake", "1", "简体", "2024-01-01"),
			candidate("fake", "2", "繁體", "2024-01-01"),
			candidate("fake", "3", "English", "2024-01-01"),
		},
		Details: map[string]*models.SubtitleDetail{
			"1": primary("http://files/1.srt", "1.srt"),
			"2": {}, // no URL at all
		},
		Files: map[string]*models.DownloadedSubtitle{
			"http://files/1.srt": srtFile("   \r\n\r\n"),
		},
	}

	_, err := New([]provider.Provider{p}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})

	var exhausted *apperrors.AllCandidatesExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected AllCandidatesExhaustedError, got %v", err)
	}
	if exhausted.Attempted != 3 || len(exhausted.Errs) != 3 {
		t.Errorf("Expected 3 attempts and errors, got %d / %d", exhausted.Attempted, len(exhausted.Errs))
	}
	if !errors.Is(err, errEmptyText) {
		t.Error("Expected the empty text failure to be reported")
	}
	if !errors.Is(err, errNoDownloadURL) {
		t.Error("Expected the missing URL failure to be reported")
	}
	if !errors.Is(err, &apperrors.TerminalClientError{}) {
		t.Error("Expected the unknown detail failure to be reported")
	}
}

func TestAcquire_ProviderOrderAndSearchFailure(t *testing.T) {
	t.Parallel()
	broken := &testutil.FakeProvider{
		Name:      "broken",
		SearchErr: &apperrors.TransientNetworkError{Provider: "broken", Op: "search", Attempts: 3},
	}
	working := &testutil.FakeProvider{
		Name:    "working",
		Results: []models.SubtitleCandidate{candidate("working", "7", "简体", "2024-01-01")},
		Details: map[string]*models.SubtitleDetail{"7": primary("http://files/7.vtt", "7.vtt")},
		Files: map[string]*models.DownloadedSubtitle{
			"http://files/7.vtt": srtFile(testutil.GenerateVTT(twoCues)),
		},
	}

	track, err := New([]provider.Provider{broken, working}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if track.ProviderID != "working" || track.Format != models.FormatVtt {
		t.Errorf("Unexpected track: provider %q format %s", track.ProviderID, track.Format)
	}
	if len(broken.Searches()) != 1 {
		t.Errorf("Expected the failing provider to be searched once, got %d", len(broken.Searches()))
	}
}

func TestAcquire_SearchFailuresJoinedWhenNothingFound(t *testing.T) {
	t.Parallel()
	searchErr := &apperrors.TransientNetworkError{Provider: "broken", Op: "search", Attempts: 3}
	broken := &testutil.FakeProvider{Name: "broken", SearchErr: searchErr}

	_, err := New([]provider.Provider{broken}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})

	if !errors.Is(err, &apperrors.NoEligibleCandidateError{}) {
		t.Fatalf("Expected NoEligibleCandidateError, got %v", err)
	}
	if !errors.Is(err, &apperrors.TransientNetworkError{}) {
		t.Error("Expected the search failure to be wrapped")
	}
}

func TestAcquire_IDSearchFallsBackToTitle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		idSearch    bool
		idResults   []models.SubtitleCandidate
		wantQueries []models.SearchQuery
	}{
		{
			name:     "id search finds results",
			idSearch: true,
			idResults: []models.SubtitleCandidate{
				candidate("fake", "1", "简体", "2024-01-01"),
			},
			wantQueries: []models.SearchQuery{{Title: "Some Movie", TMDBID: 42}},
		},
		{
			name:     "id search empty",
			idSearch: true,
			wantQueries: []models.SearchQuery{
				{Title: "Some Movie", TMDBID: 42},
				{Title: "Some Movie"},
			},
		},
		{
			name:        "provider without id search",
			idSearch:    false,
			wantQueries: []models.SearchQuery{{Title: "Some Movie"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &testutil.FakeProvider{
				Name:      "fake",
				IDSearch:  tt.idSearch,
				IDResults: tt.idResults,
				Results:   []models.SubtitleCandidate{candidate("fake", "1", "简体", "2024-01-01")},
				Details:   map[string]*models.SubtitleDetail{"1": primary("http://files/1.srt", "1.srt")},
				Files: map[string]*models.DownloadedSubtitle{
					"http://files/1.srt": srtFile(testutil.GenerateSRT(twoCues)),
				},
			}

			if _, err := New([]provider.Provider{p}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie", TMDBID: 42}); err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}

			got := p.Searches()
			if len(got) != len(tt.wantQueries) {
				t.Fatalf("Searches = %+v, want %+v", got, tt.wantQueries)
			}
			for i := range got {
				if got[i] != tt.wantQueries[i] {
					t.Errorf("Search %d = %+v, want %+v", i, got[i], tt.wantQueries[i])
				}
			}
		})
	}
}

func TestAcquire_UnpacksArchiveAndDecodesGBK(t *testing.T) {
	t.Parallel()
	gbk, err := testutil.EncodeGBK(testutil.GenerateSRT(twoCues))
	if err != nil {
		t.Fatalf("EncodeGBK failed: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string][]byte{
		"readme.txt":         []byte("ignore me"),
		"Some.Movie.eng.srt": []byte(testutil.GenerateSRT([]testutil.CueOptions{{StartMs: 0, EndMs: 1000, Text: "Hello"}})),
		"Some.Movie.chs.srt": gbk,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create failed: %v", err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("zip write failed: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close failed: %v", err)
	}

	p := &testutil.FakeProvider{
		Name:    "fake",
		Results: []models.SubtitleCandidate{candidate("fake", "1", "简体", "2024-01-01")},
		Details: map[string]*models.SubtitleDetail{"1": primary("http://files/1.zip", "pack.zip")},
		Files: map[string]*models.DownloadedSubtitle{
			"http://files/1.zip": {Content: buf.Bytes(), FileName: "pack.zip"},
		},
	}

	track, err := New([]provider.Provider{p}, services.NewSubtitleUnpacker(1<<20)).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if track.FileName != "Some.Movie.chs.srt" {
		t.Errorf("Expected the simplified entry, got %q", track.FileName)
	}
	if track.Encoding != "gb18030" {
		t.Errorf("Expected gb18030, got %q", track.Encoding)
	}
	if len(track.Cues) != 2 || track.Cues[1].Text != "再见" {
		t.Errorf("Unexpected cues: %+v", track.Cues)
	}
}

func TestAcquire_ContentTypeHintsFormat(t *testing.T) {
	t.Parallel()
	p := &testutil.FakeProvider{
		Name:    "fake",
		Results: []models.SubtitleCandidate{candidate("fake", "1", "英文", "2024-01-01")},
		Details: map[string]*models.SubtitleDetail{"1": {PrimaryURL: "http://files/1"}},
		Files: map[string]*models.DownloadedSubtitle{
			"http://files/1": {
				Content:     []byte("00:00:01.000 --> 00:00:02.500\nHello\n"),
				ContentType: "text/vtt; charset=utf-8",
			},
		},
	}

	track, err := New([]provider.Provider{p}, services.NewSubtitleUnpacker(1<<20)).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if track.Format != models.FormatVtt || track.Degraded {
		t.Errorf("Expected non-degraded vtt from the content type, got %s (degraded=%v)", track.Format, track.Degraded)
	}
	if track.LanguageTag != "en" {
		t.Errorf("Expected language tag en, got %q", track.LanguageTag)
	}
	if len(track.Cues) != 1 || track.Cues[0].StartMs != 1000 || track.Cues[0].EndMs != 2500 {
		t.Errorf("Unexpected cues: %+v", track.Cues)
	}
}

func TestAcquire_CancelledContext(t *testing.T) {
	t.Parallel()
	p := &testutil.FakeProvider{
		Name:    "fake",
		Results: []models.SubtitleCandidate{candidate("fake", "1", "简体", "2024-01-01")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New([]provider.Provider{p}, nil).Acquire(ctx, models.SearchQuery{Title: "Some Movie"})
	if !errors.Is(err, &apperrors.TransientNetworkError{}) {
		t.Fatalf("Expected TransientNetworkError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled to be wrapped, got %v", err)
	}
	if apperrors.IsNotFound(err) {
		t.Error("Cancellation must not look like a missing subtitle")
	}
	if len(p.Downloads()) != 0 {
		t.Errorf("Expected no downloads, got %v", p.Downloads())
	}
}

func TestAcquire_AssrtEndToEnd(t *testing.T) {
	t.Parallel()
	srv := testutil.NewAssrtServer([]testutil.AssrtSubtitle{
		{
			ID: 100, Title: "Some Movie", LangDesc: "英文", UploadTime: "2024-05-01 10:00:00",
			SubType: "srt", FileName: "en.srt",
			Content: []byte(testutil.GenerateSRT([]testutil.CueOptions{{StartMs: 0, EndMs: 1000, Text: "Hello"}})),
		},
		{
			ID: 200, Title: "Some Movie", LangDesc: "双语", UploadTime: "2024-04-01 10:00:00",
			SubType: "ass", FileName: "dead.ass", // no content: the primary link 404s
			LangList: map[string]bool{"langdou": true, "langchs": true},
		},
		{
			ID: 300, Title: "Some Movie", LangDesc: "简英", UploadTime: "2024-01-01 10:00:00",
			SubType: "ass", FileName: "pack.rar",
			LangList: map[string]bool{"langdou": true, "langchs": true, "langeng": true},
			Files: []testutil.AssrtFile{
				{Name: "Some.Movie.chs&eng.ass", Content: []byte(testutil.GenerateASS(twoCues))},
			},
		},
	})
	defer srv.Close()

	p, err := assrt.New(assrt.Config{
		BaseURL: srv.URL,
		Token:   "token",
		Requester: &client.Requester{
			HTTPClient: &http.Client{Timeout: 5 * time.Second},
			Retry:      client.RetryPolicy{MaxAttempts: 2, BackoffUnit: time.Millisecond},
		},
	})
	if err != nil {
		t.Fatalf("assrt.New failed: %v", err)
	}

	track, err := New([]provider.Provider{p}, nil).Acquire(context.Background(), models.SearchQuery{Title: "Some Movie"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if track.CandidateID != "300" {
		t.Errorf("Expected candidate 300 after the dead 200, got %q", track.CandidateID)
	}
	if track.Format != models.FormatAssSsa {
		t.Errorf("Expected ass, got %s", track.Format)
	}
	if track.FileName != "Some.Movie.chs&eng.ass" {
		t.Errorf("Expected the alternate file name, got %q", track.FileName)
	}
	if len(track.Cues) != 2 || track.Cues[0].Text != "你好" {
		t.Errorf("Unexpected cues: %+v", track.Cues)
	}
	for _, path := range srv.Requests() {
		if strings.Contains(path, "/100/") {
			t.Errorf("Lower ranked candidate 100 should not be downloaded: %s", path)
		}
	}
}
