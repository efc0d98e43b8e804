// Package charset turns raw subtitle bytes into text. Subtitles from Chinese
// providers are frequently GBK or Big5 encoded and rarely declare it, so the
// encoding is found by trial: each candidate decoding is accepted only when it
// is free of replacement characters and contains recognisable subtitle markup.
package charset

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

const (
	replacementChar = "\uFFFD"
	byteOrderMark   = "\uFEFF"
)

// Result is the outcome of Decode.
type Result struct {
	Text     string
	Encoding string
	// Degraded is set when no candidate matched and the text is a lossy UTF-8 rendering.
	Degraded bool
}

type candidate struct {
	name string
	enc  encoding.Encoding // nil means UTF-8
}

// candidates are tried in order after any BOM-declared encoding.
var candidates = []candidate{
	{name: "utf-8"},
	{name: "gb18030", enc: simplifiedchinese.GB18030},
	{name: "big5", enc: traditionalchinese.Big5},
	{name: "utf-16le", enc: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{name: "utf-16be", enc: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// fingerprints recognise text that is very likely real subtitle markup.
var fingerprints = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?[,.]\d{1,3}\s*-->`),
	regexp.MustCompile(`(?m)^\s*WEBVTT`),
	regexp.MustCompile(`(?i)\[Script Info\]`),
	regexp.MustCompile(`(?m)^\s*Dialogue:`),
	regexp.MustCompile(`(?i)<tt[\s>]`),
}

// LooksLikeSubtitle reports whether text carries at least one subtitle fingerprint.
func LooksLikeSubtitle(text string) bool {
	for _, re := range fingerprints {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Decode converts content to a string. It never fails: when no candidate
// encoding produces clean, subtitle-looking text the bytes are decoded as
// UTF-8 with invalid sequences replaced and the result is marked Degraded.
func Decode(content []byte) Result {
	for _, c := range ordered(content) {
		text, ok := tryDecode(content, c)
		if !ok {
			continue
		}
		if LooksLikeSubtitle(text) {
			return Result{Text: text, Encoding: c.name}
		}
	}

	return Result{
		Text:     strings.TrimPrefix(strings.ToValidUTF8(string(content), replacementChar), byteOrderMark),
		Encoding: "utf-8",
		Degraded: true,
	}
}

// ordered puts an encoding declared by a byte order mark in front of the fixed list.
func ordered(content []byte) []candidate {
	enc, name, certain := charset.DetermineEncoding(content, "")
	if !certain || enc == nil {
		return candidates
	}
	list := make([]candidate, 0, len(candidates)+1)
	if name == "utf-8" {
		list = append(list, candidate{name: name})
	} else {
		list = append(list, candidate{name: name, enc: enc})
	}
	return append(list, candidates...)
}

func tryDecode(content []byte, c candidate) (string, bool) {
	if c.enc == nil {
		if !utf8.Valid(content) {
			return "", false
		}
		return strings.TrimPrefix(string(content), byteOrderMark), true
	}

	decoded, err := c.enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", false
	}
	if bytes.Contains(decoded, []byte(replacementChar)) {
		return "", false
	}
	return strings.TrimPrefix(string(decoded), byteOrderMark), true
}
