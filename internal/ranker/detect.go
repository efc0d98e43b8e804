package ranker

import (
	"strings"

	"github.com/subseek/subseek/internal/models"
)

var (
	simplifiedWords  = []string{"简", "chs", "simplified", "zh-cn", "zh-hans", "zh-sg", "gb"}
	traditionalWords = []string{"繁", "cht", "traditional", "zh-tw", "zh-hant", "zh-hk", "big5"}
	englishWords     = []string{"英", "eng", "english"}
	bilingualWords   = []string{"双语", "雙語", "中英", "bilingual", "dual"}
	chineseWords     = []string{"中文", "汉语", "國語", "chinese", "chi", "zho"}

	// exactCodes are short language codes only trusted as the whole label.
	exactCodes = map[string]models.LanguagePriority{
		"ze": models.SimplifiedBilingual,
		"zh": models.SimplifiedChinese,
		"cn": models.SimplifiedChinese,
		"tw": models.TraditionalChinese,
		"hk": models.TraditionalChinese,
		"en": models.English,
	}
)

type labelTraits struct {
	simplified, traditional, english, bilingual, chinese bool
}

func traitsOf(label string) labelTraits {
	return labelTraits{
		simplified:  containsAny(label, simplifiedWords),
		traditional: containsAny(label, traditionalWords),
		english:     containsAny(label, englishWords),
		bilingual:   containsAny(label, bilingualWords),
		chinese:     containsAny(label, chineseWords),
	}
}

// tiers are tried in priority order; the first that matches wins.
var tiers = []struct {
	priority models.LanguagePriority
	match    func(labelTraits) bool
}{
	{models.SimplifiedBilingual, func(t labelTraits) bool {
		return t.simplified && t.english || t.bilingual && !t.traditional
	}},
	{models.SimplifiedChinese, func(t labelTraits) bool {
		return t.simplified || t.chinese && !t.traditional
	}},
	{models.TraditionalBilingual, func(t labelTraits) bool {
		return t.traditional && (t.english || t.bilingual)
	}},
	{models.TraditionalChinese, func(t labelTraits) bool {
		return t.traditional
	}},
	{models.English, func(t labelTraits) bool {
		return t.english
	}},
}

// Detect classifies a candidate's language. Structured flags win when the
// provider set any; the bilingual flag dominates the single-language ones.
// Otherwise the free-text label is matched tier by tier.
func Detect(label string, flags *models.LanguageFlags) (models.LanguagePriority, bool) {
	if flags != nil && flags.Any() {
		switch {
		case flags.Bilingual && flags.Traditional && !flags.Simplified:
			return models.TraditionalBilingual, true
		case flags.Bilingual:
			return models.SimplifiedBilingual, true
		case flags.Simplified:
			return models.SimplifiedChinese, true
		case flags.Traditional:
			return models.TraditionalChinese, true
		case flags.English:
			return models.English, true
		}
	}

	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return 0, false
	}
	if p, ok := exactCodes[label]; ok {
		return p, true
	}

	traits := traitsOf(label)
	for _, tier := range tiers {
		if tier.match(traits) {
			return tier.priority, true
		}
	}
	return 0, false
}

// containsAny matches CJK keywords anywhere in s. ASCII keywords must stand
// alone between non-alphanumeric bytes, so "chi" does not match "machine".
func containsAny(s string, words []string) bool {
	for _, w := range words {
		if isASCII(w) {
			if containsToken(s, w) {
				return true
			}
			continue
		}
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func containsToken(s, token string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if (start == 0 || !isAlnum(s[start-1])) && (end == len(s) || !isAlnum(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
