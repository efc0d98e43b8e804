package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

var (
	ttmlOpenRe      = regexp.MustCompile(`<(?:\w+:)?p\b([^>]*?)\s*(/?)>`)
	ttmlCloseRe     = regexp.MustCompile(`</(?:\w+:)?p\s*>`)
	ttmlBreakRe     = regexp.MustCompile(`<(?:\w+:)?br\s*/?>`)
	ttmlSpaceRe     = regexp.MustCompile(`\s+`)

	ttmlBeginRe = regexp.MustCompile(`\bbegin\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	ttmlEndRe   = regexp.MustCompile(`\bend\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	ttmlDurRe   = regexp.MustCompile(`\bdur\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	xmlEntities = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
)

// TTMLParser parses TTML/DFXP documents. Each <p> element with timing
// attributes becomes a cue; a dur attribute is used when end is absent.
// Self-closing paragraphs carry no text and are skipped.
type TTMLParser struct{}

func (TTMLParser) Parse(text string) []models.Cue {
	var cues []models.Cue

	for _, p := range ttmlParagraphs(text) {
		attrs, inner := p.attrs, p.inner

		beginRaw, hasBegin := ttmlAttr(ttmlBeginRe, attrs)
		if !hasBegin {
			continue
		}
		start := parseTTMLTime(beginRaw)

		var end uint64
		if endRaw, ok := ttmlAttr(ttmlEndRe, attrs); ok {
			end = parseTTMLTime(endRaw)
		} else if durRaw, ok := ttmlAttr(ttmlDurRe, attrs); ok {
			end = start + parseTTMLTime(durRaw)
		}

		body := ttmlText(inner)
		if body == "" {
			continue
		}
		cues = append(cues, newCue(start, end, body))
	}

	models.SortCues(cues)
	return cues
}

type ttmlParagraph struct {
	attrs, inner string
}

// ttmlParagraphs pairs each opening <p> with the next closing tag.
func ttmlParagraphs(text string) []ttmlParagraph {
	var paragraphs []ttmlParagraph
	for pos := 0; pos < len(text); {
		open := ttmlOpenRe.FindStringSubmatchIndex(text[pos:])
		if open == nil {
			break
		}
		attrs := text[pos+open[2] : pos+open[3]]
		bodyStart := pos + open[1]
		if open[5] > open[4] {
			pos = bodyStart
			continue
		}
		closing := ttmlCloseRe.FindStringIndex(text[bodyStart:])
		if closing == nil {
			break
		}
		paragraphs = append(paragraphs, ttmlParagraph{
			attrs: attrs,
			inner: text[bodyStart : bodyStart+closing[0]],
		})
		pos = bodyStart + closing[1]
	}
	return paragraphs
}

func ttmlAttr(re *regexp.Regexp, attrs string) (string, bool) {
	m := re.FindStringSubmatch(attrs)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

func ttmlText(inner string) string {
	inner = ttmlSpaceRe.ReplaceAllString(inner, " ")
	inner = ttmlBreakRe.ReplaceAllString(inner, "\n")
	inner = htmlTagRe.ReplaceAllString(inner, "")
	inner = xmlEntities.Replace(inner)
	return joinCleanLines(strings.Split(inner, "\n"))
}

// parseTTMLTime accepts clock values ("00:00:10.500", "00:00:10:12" is read
// without the frame part), offsets in seconds ("10.5s", "10.5") and
// milliseconds ("10500ms"). Anything else yields 0.
func parseTTMLTime(value string) uint64 {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return 0
	case strings.Contains(value, ":"):
		parts := strings.Split(value, ":")
		if len(parts) == 4 {
			value = strings.Join(parts[:3], ":")
		}
		return parseClock(value)
	case strings.HasSuffix(value, "ms"):
		return secondsToMillis(strings.TrimSuffix(value, "ms"), 1)
	case strings.HasSuffix(value, "s"):
		return secondsToMillis(strings.TrimSuffix(value, "s"), 1000)
	default:
		return secondsToMillis(value, 1000)
	}
}

func secondsToMillis(value string, scale float64) uint64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return 0
	}
	return uint64(f*scale + 0.5)
}
