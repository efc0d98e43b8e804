package services

import (
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

// subtitleExtensions are the text subtitle formats the parsers understand.
var subtitleExtensions = map[string]struct{}{
	".ass":  {},
	".ssa":  {},
	".srt":  {},
	".vtt":  {},
	".ttml": {},
	".dfxp": {},
	".xml":  {},
}

// languageMarkers are file name fragments that identify a language tier.
// Bilingual tiers fall back to their single-language markers.
var languageMarkers = map[models.LanguagePriority][]string{
	models.SimplifiedBilingual:  {"简英", "中英", "双语", "chs&eng", "chs+eng", "chs_eng", "chs.eng", "chs-eng", "sc&en"},
	models.SimplifiedChinese:    {"简体", "简中", "简", "chs", "sc", "zh-cn", "zh-hans", "gb"},
	models.TraditionalBilingual: {"繁英", "cht&eng", "cht+eng", "cht_eng", "cht.eng", "cht-eng", "tc&en"},
	models.TraditionalChinese:   {"繁体", "繁中", "繁", "cht", "tc", "zh-tw", "zh-hant", "big5"},
	models.English:              {"英文", "英语", "eng", "en", "english"},
}

var asciiMarkerRe = regexp.MustCompile(`^[a-z0-9&+_.\-]+$`)

// IsSubtitleFile reports whether name has a supported text subtitle extension.
func IsSubtitleFile(name string) bool {
	_, ok := subtitleExtensions[strings.ToLower(path.Ext(normalizeName(name)))]
	return ok
}

// HasLanguageMarker reports whether a file name carries a marker of the given tier.
// ASCII markers must stand alone between separators, so "en" does not match "scene".
func HasLanguageMarker(name string, priority models.LanguagePriority) bool {
	lower := strings.ToLower(path.Base(normalizeName(name)))
	markers := languageMarkers[priority]
	if priority.Bilingual() {
		// Each bilingual tier is followed by its single-language tier.
		markers = append(markers[:len(markers):len(markers)], languageMarkers[priority+1]...)
	}

	for _, marker := range markers {
		if asciiMarkerRe.MatchString(marker) {
			if containsToken(lower, marker) {
				return true
			}
			continue
		}
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func containsToken(name, token string) bool {
	for from := 0; ; {
		i := strings.Index(name[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if (start == 0 || !isASCIIAlnum(name[start-1])) && (end == len(name) || !isASCIIAlnum(name[end])) {
			return true
		}
		from = start + 1
	}
}

func isASCIIAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func normalizeName(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// FormatHint returns the provider's format hint, or the subtitle media type
// of the payload's Content-Type when the provider gave none.
func FormatHint(sub *models.DownloadedSubtitle) string {
	if sub.ProviderHintFormat != "" {
		return sub.ProviderHintFormat
	}
	mediaType, _, err := mime.ParseMediaType(sub.ContentType)
	if err != nil {
		return ""
	}
	if _, ok := models.ParseFormat(mediaType); !ok {
		return ""
	}
	return mediaType
}

// getContentTypeFromFilename derives a MIME type from a subtitle file extension.
func getContentTypeFromFilename(filename string) string {
	switch strings.ToLower(path.Ext(normalizeName(filename))) {
	case ".srt":
		return "application/x-subrip"
	case ".ass", ".ssa":
		return "text/x-ssa"
	case ".vtt":
		return "text/vtt"
	case ".ttml", ".dfxp":
		return "application/ttml+xml"
	case ".xml":
		return "application/xml"
	case ".zip":
		return "application/zip"
	case ".rar":
		return "application/vnd.rar"
	default:
		return "application/octet-stream"
	}
}
