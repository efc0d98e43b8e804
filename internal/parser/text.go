package parser

import (
	"regexp"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

var (
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
	overrideTagRe = regexp.MustCompile(`\{\\[^}]*\}`)
	blankLineRe   = regexp.MustCompile(`\n[ \t]*\n`)
)

// normalizeNewlines converts CRLF and CR line endings to LF and drops a leading BOM.
func normalizeNewlines(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// splitBlocks splits text into blank-line separated blocks.
func splitBlocks(text string) []string {
	return blankLineRe.Split(strings.TrimSpace(text), -1)
}

// nonBlankLines returns the lines of block that contain more than whitespace, right-trimmed.
func nonBlankLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// joinCleanLines trims every line, drops empty ones and joins the rest with "\n".
func joinCleanLines(lines []string) string {
	kept := lines[:0:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// newCue builds a cue, clamping the end so it never precedes the start.
func newCue(start, end uint64, text string) models.Cue {
	if end < start {
		end = start
	}
	return models.Cue{StartMs: start, EndMs: end, Text: text}
}
