package models

// LanguageFlags are the structured per-language booleans some providers attach to a result.
type LanguageFlags struct {
	Bilingual   bool `json:"bilingual"`
	Simplified  bool `json:"simplified"`
	Traditional bool `json:"traditional"`
	English     bool `json:"english"`
}

// Any reports whether the provider set at least one flag.
func (f LanguageFlags) Any() bool {
	return f.Bilingual || f.Simplified || f.Traditional || f.English
}

// SubtitleCandidate is one provider search result, prior to download.
type SubtitleCandidate struct {
	ProviderID    string            `json:"providerId"`
	RemoteID      string            `json:"remoteId"`
	LanguageLabel string            `json:"languageLabel"`
	LanguageFlags *LanguageFlags    `json:"languageFlags,omitempty"` // nil when the provider has none
	RecencyKey    string            `json:"recencyKey"`              // upload time as supplied by the provider
	FormatHint    string            `json:"formatHint,omitempty"`    // advisory only
	Title         string            `json:"title,omitempty"`
	RawFields     map[string]string `json:"rawFields,omitempty"`
}

// RankedCandidate pairs a candidate with its detected language tier.
type RankedCandidate struct {
	Candidate SubtitleCandidate `json:"candidate"`
	Priority  LanguagePriority  `json:"priority"`
}

// SearchQuery is what the orchestrator asks each provider for.
type SearchQuery struct {
	Title string `json:"title"`
	// TMDBID is an external metadata id; zero when unknown.
	TMDBID int64 `json:"tmdbId,omitempty"`
}

// HasExternalID reports whether an identifier search is possible.
func (q SearchQuery) HasExternalID() bool {
	return q.TMDBID > 0
}
