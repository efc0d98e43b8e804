package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/subseek/subseek/internal/models"
)

const (
	outputJSON = "json"
	outputSRT  = "srt"
)

func validateOutput(format string) error {
	switch format {
	case outputJSON, outputSRT:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want json or srt)", format)
	}
}

func writeTrack(w io.Writer, track *models.Track, format string) error {
	if format == outputSRT {
		return writeSRT(w, track.Cues)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(track)
}

// writeSRT renders cues as SubRip regardless of the source format.
func writeSRT(w io.Writer, cues []models.Cue) error {
	for i, c := range cues {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", i+1, srtClock(c.StartMs), srtClock(c.EndMs), c.Text); err != nil {
			return err
		}
	}
	return nil
}

func srtClock(ms uint64) string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}
