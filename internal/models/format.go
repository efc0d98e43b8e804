package models

import "strings"

// DetectedFormat is the subtitle grammar a text buffer was classified as.
type DetectedFormat int

const (
	FormatSrt DetectedFormat = iota
	FormatVtt
	FormatAssSsa
	FormatTtml
)

// String returns the canonical short name of the format
func (f DetectedFormat) String() string {
	switch f {
	case FormatVtt:
		return "vtt"
	case FormatAssSsa:
		return "ass"
	case FormatTtml:
		return "ttml"
	default:
		return "srt"
	}
}

// ParseFormat maps a format name, extension or provider hint to a DetectedFormat.
// The boolean is false when the value names none of the supported text formats.
func ParseFormat(value string) (DetectedFormat, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, ".")
	switch v {
	case "srt", "subrip", "application/x-subrip":
		return FormatSrt, true
	case "vtt", "webvtt", "text/vtt":
		return FormatVtt, true
	case "ass", "ssa", "ass/ssa", "assa", "application/x-ass", "text/x-ssa":
		return FormatAssSsa, true
	case "ttml", "dfxp", "application/ttml+xml":
		return FormatTtml, true
	default:
		return FormatSrt, false
	}
}

// MarshalJSON implements json.Marshaler interface
func (f DetectedFormat) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler interface
func (f *DetectedFormat) UnmarshalJSON(data []byte) error {
	*f, _ = ParseFormat(strings.Trim(string(data), `"`))
	return nil
}
