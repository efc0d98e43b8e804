package parser

import (
	"github.com/subseek/subseek/internal/charset"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/format"
	"github.com/subseek/subseek/internal/metrics"
	"github.com/subseek/subseek/internal/models"
)

// Parser converts subtitle text of one grammar into cues sorted by start time.
// Malformed blocks are skipped; a parser never fails as a whole.
type Parser interface {
	Parse(text string) []models.Cue
}

// For returns the parser for the given format.
func For(f models.DetectedFormat) Parser {
	switch f {
	case models.FormatVtt:
		return VTTParser{}
	case models.FormatAssSsa:
		return ASSParser{}
	case models.FormatTtml:
		return TTMLParser{}
	default:
		return SRTParser{}
	}
}

// Parse parses text with the parser for f.
func Parse(f models.DetectedFormat, text string) []models.Cue {
	return For(f).Parse(text)
}

// DecodeAndParse runs raw subtitle bytes through encoding detection, format
// classification and parsing. It is the entry point for subtitles obtained
// outside the provider pipeline, such as local sidecar files.
func DecodeAndParse(content []byte, fileName, hint string) models.Track {
	decoded := charset.Decode(content)
	return ClassifyAndParse(decoded, fileName, hint)
}

// ClassifyAndParse classifies already decoded text and parses it.
func ClassifyAndParse(decoded charset.Result, fileName, hint string) models.Track {
	logger := config.GetLogger()

	if decoded.Degraded {
		metrics.DegradedDecodesTotal.WithLabelValues("encoding").Inc()
		logger.Warn().
			Str("fileName", fileName).
			Str("encoding", decoded.Encoding).
			Msg("No confident encoding match, using lossy UTF-8")
	}

	classified := format.Classify(format.Input{Text: decoded.Text, FileName: fileName, Hint: hint})
	if classified.Degraded() {
		metrics.DegradedDecodesTotal.WithLabelValues("format").Inc()
		logger.Warn().
			Str("fileName", fileName).
			Str("hint", hint).
			Msg("No format signal matched, assuming SRT")
	}

	cues := Parse(classified.Format, decoded.Text)

	logger.Debug().
		Str("format", classified.Format.String()).
		Str("source", string(classified.Source)).
		Str("encoding", decoded.Encoding).
		Int("cues", len(cues)).
		Msg("Parsed subtitle")

	return models.Track{
		Format:   classified.Format,
		Cues:     cues,
		Text:     decoded.Text,
		Encoding: decoded.Encoding,
		Degraded: decoded.Degraded || classified.Degraded(),
		FileName: fileName,
	}
}
