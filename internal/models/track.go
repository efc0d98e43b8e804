package models

// Track is a decoded, classified and parsed subtitle.
type Track struct {
	Format   DetectedFormat `json:"format"`
	Cues     []Cue          `json:"cues"`
	Text     string         `json:"text,omitempty"`
	Encoding string         `json:"encoding"`
	// Degraded is set when encoding or format detection fell back to a default.
	Degraded bool `json:"degraded"`

	ProviderID  string            `json:"providerId,omitempty"`
	CandidateID string            `json:"candidateId,omitempty"`
	FileName    string            `json:"fileName,omitempty"`
	Language    *LanguagePriority `json:"language,omitempty"`
	LanguageTag string            `json:"languageTag,omitempty"` // BCP 47, e.g. "zh-Hans"
}
