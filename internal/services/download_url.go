package services

import (
	"github.com/subseek/subseek/internal/models"
)

// DownloadTarget is the resolved location of one candidate's subtitle.
type DownloadTarget struct {
	URL      string
	FileName string
}

// SelectDownloadTarget picks what to download for a candidate. Alternate
// files with a supported extension win over the primary URL; among them
// one named for the candidate's language tier is preferred, then the first.
// ok is false when the detail offers no usable URL at all.
func SelectDownloadTarget(detail *models.SubtitleDetail, priority models.LanguagePriority) (DownloadTarget, bool) {
	if detail == nil {
		return DownloadTarget{}, false
	}

	var first *models.AlternateFile
	for i := range detail.AlternateFiles {
		f := &detail.AlternateFiles[i]
		if f.URL == "" || !IsSubtitleFile(f.FileName) {
			continue
		}
		if HasLanguageMarker(f.FileName, priority) {
			return DownloadTarget{URL: f.URL, FileName: f.FileName}, true
		}
		if first == nil {
			first = f
		}
	}
	if first != nil {
		return DownloadTarget{URL: first.URL, FileName: first.FileName}, true
	}

	if detail.PrimaryURL == "" {
		return DownloadTarget{}, false
	}
	return DownloadTarget{URL: detail.PrimaryURL, FileName: detail.FileName}, true
}
