package testutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// CueOptions describes one cue of a generated subtitle fixture.
type CueOptions struct {
	StartMs uint64
	EndMs   uint64
	Text    string // lines separated by "\n"
}

// GenerateSRT renders cues as a SubRip file with CRLF line endings.
func GenerateSRT(cues []CueOptions) string {
	var sb strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&sb, "%d\r\n%s --> %s\r\n%s\r\n\r\n",
			i+1, clock(c.StartMs, ","), clock(c.EndMs, ","), strings.ReplaceAll(c.Text, "\n", "\r\n"))
	}
	return sb.String()
}

// GenerateVTT renders cues as a WebVTT file.
func GenerateVTT(cues []CueOptions) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, c := range cues {
		fmt.Fprintf(&sb, "%s --> %s\n%s\n\n", clock(c.StartMs, "."), clock(c.EndMs, "."), c.Text)
	}
	return sb.String()
}

// GenerateASS renders cues as an ASS script with a standard [Events] section.
func GenerateASS(cues []CueOptions) string {
	var sb strings.Builder
	sb.WriteString("[Script Info]\nScriptType: v4.00+\n\n")
	sb.WriteString("[V4+ Styles]\nFormat: Name, Fontname, Fontsize\nStyle: Default,Arial,20\n\n")
	sb.WriteString("[Events]\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range cues {
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			assClock(c.StartMs), assClock(c.EndMs), strings.ReplaceAll(c.Text, "\n", `\N`))
	}
	return sb.String()
}

// GenerateTTML renders cues as a TTML document with offset-time attributes.
func GenerateTTML(cues []CueOptions) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	sb.WriteString(`<tt xmlns="http://www.w3.org/ns/ttml"><body><div>` + "\n")
	for _, c := range cues {
		fmt.Fprintf(&sb, `<p begin="%.3fs" end="%.3fs">%s</p>`+"\n",
			float64(c.StartMs)/1000, float64(c.EndMs)/1000, strings.ReplaceAll(c.Text, "\n", "<br/>"))
	}
	sb.WriteString("</div></body></tt>\n")
	return sb.String()
}

// EncodeGBK encodes text as GBK, the usual encoding of simplified Chinese subtitle files.
func EncodeGBK(text string) ([]byte, error) {
	return simplifiedchinese.GBK.NewEncoder().Bytes([]byte(text))
}

// EncodeBig5 encodes text as Big5.
func EncodeBig5(text string) ([]byte, error) {
	return traditionalchinese.Big5.NewEncoder().Bytes([]byte(text))
}

func clock(ms uint64, sep string) string {
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", ms/3600000, ms/60000%60, ms/1000%60, sep, ms%1000)
}

func assClock(ms uint64) string {
	return fmt.Sprintf("%d:%02d:%02d.%02d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000/10)
}
