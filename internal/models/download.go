package models

// AlternateFile is one entry of a provider's per-subtitle file list (archives expanded server-side).
type AlternateFile struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     string `json:"size,omitempty"`
}

// SubtitleDetail is the result of a provider detail lookup.
type SubtitleDetail struct {
	PrimaryURL     string          `json:"primaryUrl"`
	FileName       string          `json:"fileName,omitempty"`
	FormatHint     string          `json:"formatHint,omitempty"`
	AlternateFiles []AlternateFile `json:"alternateFiles,omitempty"`
}

// DownloadedSubtitle holds the raw bytes of one acquisition attempt.
type DownloadedSubtitle struct {
	Content            []byte
	ProviderHintFormat string // empty when the provider gave none
	FileName           string // empty when unknown
	ContentType        string
}
