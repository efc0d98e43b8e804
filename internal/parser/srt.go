package parser

import (
	"strings"

	"github.com/subseek/subseek/internal/models"
)

// SRTParser parses SubRip text.
//
// A block is accepted when it has at least three non-blank lines and its
// second line is a timing line. The first line (the sequence number) is
// never validated, so renumbered or unnumbered-but-padded files still parse.
type SRTParser struct{}

func (SRTParser) Parse(text string) []models.Cue {
	var cues []models.Cue

	for _, block := range splitBlocks(normalizeNewlines(text)) {
		lines := nonBlankLines(block)
		if len(lines) < 3 || !strings.Contains(lines[1], "-->") {
			continue
		}

		startRaw, endRaw, ok := splitTiming(lines[1])
		if !ok {
			continue
		}

		body := cleanMarkup(strings.Join(lines[2:], "\n"))
		if body == "" {
			continue
		}

		cues = append(cues, newCue(parseClock(startRaw), parseClock(endRaw), body))
	}

	models.SortCues(cues)
	return cues
}

// cleanMarkup removes HTML-style tags and ASS override blocks that some SRT
// files carry, then trims every line.
func cleanMarkup(text string) string {
	text = htmlTagRe.ReplaceAllString(text, "")
	text = overrideTagRe.ReplaceAllString(text, "")
	return joinCleanLines(strings.Split(text, "\n"))
}
