package services

import (
	"github.com/subseek/subseek/internal/models"
)

// SubtitleUnpacker replaces archive payloads with the subtitle file they contain.
type SubtitleUnpacker interface {
	// Unpack returns sub unchanged when it is not an archive.
	Unpack(sub *models.DownloadedSubtitle, priority models.LanguagePriority) (*models.DownloadedSubtitle, error)
}
