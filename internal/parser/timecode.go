package parser

import (
	"strconv"
	"strings"
)

// parseClock converts "HH:MM:SS.fff" or "MM:SS.fff" to milliseconds. Both
// "," and "." are accepted as the fraction separator.
// The fraction is read as a decimal fraction of a second, so "5" is 500ms,
// "50" (ASS centiseconds) is 500ms and "500" is 500ms. Any malformed value yields 0.
func parseClock(value string) uint64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	secPart := parts[len(parts)-1]
	frac := ""
	if i := strings.IndexAny(secPart, ",."); i >= 0 {
		secPart, frac = secPart[:i], secPart[i+1:]
	}

	var hours, minutes uint64
	var ok bool
	if len(parts) == 3 {
		if hours, ok = parseUint(parts[0]); !ok {
			return 0
		}
		if minutes, ok = parseUint(parts[1]); !ok {
			return 0
		}
	} else if minutes, ok = parseUint(parts[0]); !ok {
		return 0
	}

	seconds, ok := parseUint(secPart)
	if !ok {
		return 0
	}
	millis, ok := parseFraction(frac)
	if !ok {
		return 0
	}

	return ((hours*60+minutes)*60+seconds)*1000 + millis
}

// parseFraction reads up to three digits of a decimal fraction as milliseconds.
func parseFraction(frac string) (uint64, bool) {
	if frac == "" {
		return 0, true
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	frac += strings.Repeat("0", 3-len(frac))
	return parseUint(frac)
}

func parseUint(s string) (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return v, err == nil
}

// splitTiming splits "A --> B [settings]" into its start and end fields.
func splitTiming(line string) (string, string, bool) {
	start, rest, found := strings.Cut(line, "-->")
	if !found {
		return "", "", false
	}
	end := strings.TrimSpace(rest)
	if i := strings.IndexAny(end, " \t"); i >= 0 {
		end = end[:i]
	}
	return strings.TrimSpace(start), end, true
}
