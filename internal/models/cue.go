package models

import "slices"

// Cue is one timed text unit of a subtitle track.
// StartMs <= EndMs and Text is plain text without markup; lines are joined with "\n".
type Cue struct {
	StartMs uint64 `json:"startMs"`
	EndMs   uint64 `json:"endMs"`
	Text    string `json:"text"`
}

// SortCues orders cues by start time. Ties keep their original order.
func SortCues(cues []Cue) {
	slices.SortStableFunc(cues, func(a, b Cue) int {
		switch {
		case a.StartMs < b.StartMs:
			return -1
		case a.StartMs > b.StartMs:
			return 1
		default:
			return 0
		}
	})
}
