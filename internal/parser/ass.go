package parser

import (
	"regexp"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

var (
	// assDrawingRe matches an override block that switches drawing mode on,
	// together with the vector payload that follows it up to the next block.
	assDrawingRe  = regexp.MustCompile(`\{[^}]*\\p[1-9][^}]*\}[^{]*`)
	assOverrideRe = regexp.MustCompile(`\{[^}]*\}`)

	// assEscapeRe strips override tags written outside braces. Longer names
	// come first so "\fscx" is not consumed as "\fs" plus a stray "cx".
	assEscapeRe = regexp.MustCompile(
		`\\(?:` +
			`fscx|fscy|fsp|fs|fn|frx|fry|frz|fr|fax|fay|fe|` +
			`bord|xbord|ybord|shad|xshad|yshad|blur|be|` +
			`clip|iclip|pos|move|org|fade|fad|pbo|` +
			`[1-4]?c|[1-4]a|alpha|an|a|t|` +
			`kf|ko|k|K|q|r|p|i|b|u|s` +
			`)(?:\([^)]*\)|&H[0-9A-Fa-f]+&?|[-\d.]+)?`,
	)
)

type assSection int

const (
	assOutsideEvents assSection = iota
	assInsideEvents
)

// ASSParser parses Advanced SubStation Alpha and SubStation Alpha scripts.
// Only Dialogue lines from the [Events] section are turned into cues; the
// field layout is taken from that section's Format line.
type ASSParser struct{}

func (ASSParser) Parse(text string) []models.Cue {
	var (
		cues    []models.Cue
		state   = assOutsideEvents
		fields  []string
		startIx = -1
		endIx   = -1
		textIx  = -1
	)

	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if strings.EqualFold(line, "[Events]") {
				state = assInsideEvents
			} else {
				state = assOutsideEvents
			}
			continue
		}
		if state != assInsideEvents {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "format":
			fields = strings.Split(value, ",")
			startIx, endIx, textIx = -1, -1, -1
			for i, name := range fields {
				switch strings.ToLower(strings.TrimSpace(name)) {
				case "start":
					startIx = i
				case "end":
					endIx = i
				case "text":
					textIx = i
				}
			}
		case "dialogue":
			if len(fields) == 0 || startIx < 0 || endIx < 0 || textIx < 0 {
				continue
			}
			// Text is the last field and may itself contain commas.
			values := strings.SplitN(value, ",", len(fields))
			if len(values) < len(fields) {
				continue
			}

			body := cleanASSText(values[textIx])
			if body == "" {
				continue
			}
			cues = append(cues, newCue(
				parseClock(values[startIx]),
				parseClock(values[endIx]),
				body,
			))
		}
	}

	models.SortCues(cues)
	return cues
}

// cleanASSText converts ASS line breaks and removes drawing payloads,
// override blocks and bare override tags.
func cleanASSText(text string) string {
	text = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ").Replace(text)
	text = assDrawingRe.ReplaceAllString(text, "")
	text = assOverrideRe.ReplaceAllString(text, "")
	text = assEscapeRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
