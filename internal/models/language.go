package models

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguagePriority ranks subtitle languages; lower values are preferred.
type LanguagePriority int

const (
	SimplifiedBilingual LanguagePriority = iota
	SimplifiedChinese
	TraditionalBilingual
	TraditionalChinese
	English
)

// LanguagePriorities lists every tier in preference order.
var LanguagePriorities = []LanguagePriority{
	SimplifiedBilingual,
	SimplifiedChinese,
	TraditionalBilingual,
	TraditionalChinese,
	English,
}

// String returns the string representation of the priority
func (p LanguagePriority) String() string {
	switch p {
	case SimplifiedBilingual:
		return "simplified-bilingual"
	case SimplifiedChinese:
		return "simplified-chinese"
	case TraditionalBilingual:
		return "traditional-bilingual"
	case TraditionalChinese:
		return "traditional-chinese"
	case English:
		return "english"
	default:
		return "unknown"
	}
}

// Tag returns the BCP 47 tag of the subtitle's primary language.
func (p LanguagePriority) Tag() language.Tag {
	switch p {
	case SimplifiedBilingual, SimplifiedChinese:
		return language.SimplifiedChinese
	case TraditionalBilingual, TraditionalChinese:
		return language.TraditionalChinese
	case English:
		return language.English
	default:
		return language.Und
	}
}

// Bilingual reports whether the tier carries an English track next to the Chinese one.
func (p LanguagePriority) Bilingual() bool {
	return p == SimplifiedBilingual || p == TraditionalBilingual
}

// ParseLanguagePriority converts the String form back to a LanguagePriority
func ParseLanguagePriority(value string) (LanguagePriority, bool) {
	for _, p := range LanguagePriorities {
		if strings.EqualFold(value, p.String()) {
			return p, true
		}
	}
	return English, false
}

// MarshalJSON implements json.Marshaler interface
func (p LanguagePriority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler interface
func (p *LanguagePriority) UnmarshalJSON(data []byte) error {
	*p, _ = ParseLanguagePriority(strings.Trim(string(data), `"`))
	return nil
}
