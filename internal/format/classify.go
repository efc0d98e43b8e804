// Package format decides which subtitle grammar a decoded text uses.
//
// Signals are consulted in a fixed order of trust: the content itself, then the
// file name extension, then the provider's format hint, then SRT structure.
// The first rule that matches wins; SRT is the terminal default.
package format

import (
	"path"
	"regexp"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

// Source names the rule that produced a classification.
type Source string

const (
	SourceContent   Source = "content"
	SourceExtension Source = "extension"
	SourceHint      Source = "hint"
	SourceStructure Source = "structure"
	SourceDefault   Source = "default"
)

// Input bundles the signals available for one subtitle.
type Input struct {
	Text     string
	FileName string // optional
	Hint     string // optional, provider supplied and unreliable
}

// Result is a classification together with the rule that decided it.
type Result struct {
	Format models.DetectedFormat
	Source Source
}

// Degraded reports whether classification fell through to the terminal default.
func (r Result) Degraded() bool {
	return r.Source == SourceDefault
}

type rule struct {
	source Source
	match  func(in Input) (models.DetectedFormat, bool)
}

var (
	assSectionRe = regexp.MustCompile(`(?i)\[(Script Info|V4\+? Styles)\]`)
	assFormatRe  = regexp.MustCompile(`(?m)^\s*Format:`)
	assDialogRe  = regexp.MustCompile(`(?m)^\s*Dialogue:`)
	srtLeadRe    = regexp.MustCompile(`^\d+\s*\n\s*\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->`)
)

// rules are evaluated in order; see the package comment.
var rules = []rule{
	{SourceContent, matchVTT},
	{SourceContent, matchASS},
	{SourceContent, matchTTML},
	{SourceExtension, matchExtension},
	{SourceHint, matchHint},
	{SourceStructure, matchSRTStructure},
}

// Classify never fails; content that matches no rule is treated as SRT.
func Classify(in Input) Result {
	for _, r := range rules {
		if f, ok := r.match(in); ok {
			return Result{Format: f, Source: r.source}
		}
	}
	return Result{Format: models.FormatSrt, Source: SourceDefault}
}

func leading(text string) string {
	return strings.TrimLeft(strings.TrimPrefix(text, "\uFEFF"), " \t\r\n")
}

func matchVTT(in Input) (models.DetectedFormat, bool) {
	return models.FormatVtt, strings.HasPrefix(leading(in.Text), "WEBVTT")
}

func matchASS(in Input) (models.DetectedFormat, bool) {
	if assSectionRe.MatchString(in.Text) {
		return models.FormatAssSsa, true
	}
	return models.FormatAssSsa, assDialogRe.MatchString(in.Text) && assFormatRe.MatchString(in.Text)
}

// matchTTML accepts XML content only when it mentions ttml; other XML is left to later rules.
func matchTTML(in Input) (models.DetectedFormat, bool) {
	head := strings.ToLower(leading(in.Text))
	if !strings.HasPrefix(head, "<?xml") && !strings.HasPrefix(head, "<tt") {
		return models.FormatTtml, false
	}
	return models.FormatTtml, strings.Contains(head, "ttml")
}

func matchExtension(in Input) (models.DetectedFormat, bool) {
	if in.FileName == "" {
		return models.FormatSrt, false
	}
	ext := path.Ext(strings.ReplaceAll(in.FileName, `\`, "/"))
	if ext == "" {
		return models.FormatSrt, false
	}
	return models.ParseFormat(ext)
}

func matchHint(in Input) (models.DetectedFormat, bool) {
	if in.Hint == "" {
		return models.FormatSrt, false
	}
	return models.ParseFormat(in.Hint)
}

func matchSRTStructure(in Input) (models.DetectedFormat, bool) {
	text := strings.ReplaceAll(leading(in.Text), "\r\n", "\n")
	return models.FormatSrt, srtLeadRe.MatchString(text)
}
