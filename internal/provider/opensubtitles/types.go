package opensubtitles

import (
	"strconv"

	"github.com/subseek/subseek/internal/models"
)

type searchResponse struct {
	Data []searchEntry `json:"data"`
	Meta struct {
		Total int `json:"total_count"`
	} `json:"meta"`
}

type searchEntry struct {
	ID         string           `json:"id"`
	Attributes searchAttributes `json:"attributes"`
}

type searchAttributes struct {
	Language       string `json:"language"`
	Release        string `json:"release"`
	Format         string `json:"format"`
	DownloadCount  int    `json:"download_count"`
	UploadDate     string `json:"upload_date"`
	FeatureDetails struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
	} `json:"feature_details"`
	Files []struct {
		FileID   int64  `json:"file_id"`
		FileName string `json:"file_name"`
	} `json:"files"`
}

// toCandidate maps a search entry; entries without a downloadable file are dropped.
func (e searchEntry) toCandidate() (models.SubtitleCandidate, bool) {
	attrs := e.Attributes
	if len(attrs.Files) == 0 || attrs.Files[0].FileID == 0 {
		return models.SubtitleCandidate{}, false
	}
	file := attrs.Files[0]

	title := attrs.FeatureDetails.Title
	if title == "" {
		title = attrs.Release
	}

	return models.SubtitleCandidate{
		ProviderID:    ProviderID,
		RemoteID:      strconv.FormatInt(file.FileID, 10),
		LanguageLabel: attrs.Language,
		RecencyKey:    attrs.UploadDate,
		FormatHint:    attrs.Format,
		Title:         title,
		RawFields: map[string]string{
			"subtitle_id":    e.ID,
			"release":        attrs.Release,
			"download_count": strconv.Itoa(attrs.DownloadCount),
			"file_name":      file.FileName,
		},
	}, true
}

type downloadResponse struct {
	Link      string `json:"link"`
	FileName  string `json:"file_name"`
	Requests  int    `json:"requests"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}
