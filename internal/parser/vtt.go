package parser

import (
	"html"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

// VTTParser parses WebVTT text. Everything before the first timing line
// (the WEBVTT header, NOTE and STYLE blocks) is ignored.
type VTTParser struct{}

func (VTTParser) Parse(text string) []models.Cue {
	text = normalizeNewlines(text)

	lines := strings.Split(text, "\n")
	first := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}

	var cues []models.Cue
	for _, block := range splitBlocks(strings.Join(lines[first:], "\n")) {
		blockLines := nonBlankLines(block)

		// The timing line may be preceded by an optional cue identifier.
		timing := -1
		for i, line := range blockLines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			continue
		}

		startRaw, endRaw, ok := splitTiming(blockLines[timing])
		if !ok {
			continue
		}

		body := htmlTagRe.ReplaceAllString(strings.Join(blockLines[timing+1:], "\n"), "")
		body = joinCleanLines(strings.Split(html.UnescapeString(body), "\n"))
		if body == "" {
			continue
		}

		cues = append(cues, newCue(parseClock(startRaw), parseClock(endRaw), body))
	}

	models.SortCues(cues)
	return cues
}
