// Package ranker orders subtitle candidates by language preference and recency.
package ranker

import (
	"slices"
	"strings"
	"time"

	"github.com/subseek/subseek/internal/models"
)

// imageFormats are bitmap subtitle formats the parsers cannot read.
var imageFormats = map[string]struct{}{
	"sup":    {},
	"idx":    {},
	"sub":    {},
	"vobsub": {},
	"pgs":    {},
}

var recencyLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102150405",
}

// Rank drops candidates without a detectable language or with a bitmap
// format hint, then sorts by language tier and, within a tier, newest first.
// Ties keep the providers' order.
func Rank(candidates []models.SubtitleCandidate) []models.RankedCandidate {
	type keyed struct {
		models.RankedCandidate
		recency string
	}

	eligible := make([]keyed, 0, len(candidates))
	for _, c := range candidates {
		if isImageFormat(c.FormatHint) {
			continue
		}
		priority, ok := Detect(c.LanguageLabel, c.LanguageFlags)
		if !ok {
			continue
		}
		eligible = append(eligible, keyed{
			RankedCandidate: models.RankedCandidate{Candidate: c, Priority: priority},
			recency:         NormalizeRecency(c.RecencyKey),
		})
	}

	slices.SortStableFunc(eligible, func(a, b keyed) int {
		if a.Priority != b.Priority {
			return int(a.Priority) - int(b.Priority)
		}
		return strings.Compare(b.recency, a.recency)
	})

	ranked := make([]models.RankedCandidate, len(eligible))
	for i, k := range eligible {
		ranked[i] = k.RankedCandidate
	}
	return ranked
}

// NormalizeRecency turns a provider timestamp into a lexically sortable
// "YYYYMMDDhhmmss" string in UTC. Unknown layouts normalize to "", which
// sorts after every parsed timestamp.
func NormalizeRecency(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range recencyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("20060102150405")
		}
	}
	return ""
}

func isImageFormat(hint string) bool {
	_, ok := imageFormats[strings.ToLower(strings.TrimSpace(hint))]
	return ok
}
