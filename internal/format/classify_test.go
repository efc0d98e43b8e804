package format

import (
	"testing"

	"github.com/subseek/subseek/internal/models"
)

const (
	srtSample  = "1\r\n00:00:01,000 --> 00:00:02,000\r\nHello\r\n"
	vttSample  = "WEBVTT\n\n00:01.000 --> 00:02.000\nHello\n"
	assSample  = "[Script Info]\nScriptType: v4.00+\n\n[Events]\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hello\n"
	ttmlSample = `<?xml version="1.0" encoding="utf-8"?><tt xmlns="http://www.w3.org/ns/ttml"><body><div><p begin="1s" end="2s">Hello</p></div></body></tt>`
)

func TestClassify_ContentFingerprintIsSufficient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want models.DetectedFormat
	}{
		{"srt", srtSample, models.FormatSrt},
		{"vtt", vttSample, models.FormatVtt},
		{"vtt with bom", "\uFEFF" + vttSample, models.FormatVtt},
		{"ass", assSample, models.FormatAssSsa},
		{"ass without header", "Format: Layer, Start, End, Text\nDialogue: 0,0:00:01.00,0:00:02.00,Hi\n", models.FormatAssSsa},
		{"ttml", ttmlSample, models.FormatTtml},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(Input{Text: tt.text})
			if got.Format != tt.want {
				t.Errorf("Classify() = %v, want %v", got.Format, tt.want)
			}
			if got.Degraded() {
				t.Errorf("Expected a confident classification, got source %s", got.Source)
			}
		})
	}
}

func TestClassify_ContentBeatsNameAndHint(t *testing.T) {
	t.Parallel()
	got := Classify(Input{Text: assSample, FileName: "movie.srt", Hint: "srt"})
	if got.Format != models.FormatAssSsa || got.Source != SourceContent {
		t.Errorf("Expected content to win, got %+v", got)
	}
}

func TestClassify_ExtensionBeforeHint(t *testing.T) {
	t.Parallel()
	got := Classify(Input{Text: "garbled", FileName: `C:\subs\movie.chs.ass`, Hint: "vtt"})
	if got.Format != models.FormatAssSsa || got.Source != SourceExtension {
		t.Errorf("Expected extension to decide, got %+v", got)
	}
}

func TestClassify_UnknownExtensionFallsToHint(t *testing.T) {
	t.Parallel()
	got := Classify(Input{Text: "garbled", FileName: "movie.txt", Hint: "WebVTT"})
	if got.Format != models.FormatVtt || got.Source != SourceHint {
		t.Errorf("Expected hint to decide, got %+v", got)
	}
}

func TestClassify_GenericXMLIsNotTTML(t *testing.T) {
	t.Parallel()
	got := Classify(Input{Text: `<?xml version="1.0"?><root/>`})
	if got.Format != models.FormatSrt || !got.Degraded() {
		t.Errorf("Expected default SRT for non-TTML XML, got %+v", got)
	}
}

func TestClassify_GenericXMLExtensionIsNotTTML(t *testing.T) {
	t.Parallel()
	got := Classify(Input{Text: `<?xml version="1.0"?><root/>`, FileName: "movie.xml"})
	if got.Format != models.FormatSrt || got.Source != SourceDefault {
		t.Errorf("Expected .xml extension to be ignored, got %+v", got)
	}

	got = Classify(Input{Text: ttmlSample, FileName: "movie.xml"})
	if got.Format != models.FormatTtml || got.Source != SourceContent {
		t.Errorf("Expected TTML content in an .xml file to classify by content, got %+v", got)
	}
}

func TestClassify_DefaultIsSrt(t *testing.T) {
	t.Parallel()
	got := Classify(Input{Text: "nothing to see"})
	if got.Format != models.FormatSrt || got.Source != SourceDefault {
		t.Errorf("Expected SRT default, got %+v", got)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()
	for _, text := range []string{srtSample, vttSample, assSample, ttmlSample} {
		first := Classify(Input{Text: text})
		second := Classify(Input{Text: text})
		if first != second {
			t.Errorf("Classification changed between runs: %+v vs %+v", first, second)
		}
	}
}
