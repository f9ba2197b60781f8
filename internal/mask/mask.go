// Package mask re-derives the display text of a timecode entry field as the
// user types, inserting each format's punctuation and moving the cursor
// with it. Masking never validates; values are decoded on submit.
package mask

import (
	"strings"
	"unicode"

	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

var placeholders = map[timecode.Format]string{
	timecode.FormatSMPTE:  "00:00:00:00",
	timecode.FormatSRT:    "00:00:00,000",
	timecode.FormatDLP:    "00:00:00:000",
	timecode.FormatFFmpeg: "00:00:00.00",
	timecode.FormatFCPX:   "0/1s",
	timecode.FormatFrame:  "0",
	timecode.FormatTime:   "0.0",
}

// Placeholder returns the empty-field hint for a format.
func Placeholder(f timecode.Format) string {
	if p, ok := placeholders[f]; ok {
		return p
	}
	return placeholders[timecode.FormatSMPTE]
}

// clockRule describes a digit-grouped clock mask.
type clockRule struct {
	maxDigits int
	// lastSep is the separator before the sub-second field.
	lastSep rune
	// eagerColons emits the hour and minute colons as soon as their group is
	// full rather than only once the next digit arrives.
	eagerColons bool
}

func ruleFor(f timecode.Format, rate timecode.Rate) (clockRule, bool) {
	switch f {
	case timecode.FormatSMPTE:
		digits := 8
		switch {
		case rate.Num >= 1000*rate.Den:
			digits = 10
		case rate.Num >= 100*rate.Den:
			digits = 9
		}
		return clockRule{maxDigits: digits, lastSep: ':'}, true
	case timecode.FormatSRT:
		return clockRule{maxDigits: 9, lastSep: ',', eagerColons: true}, true
	case timecode.FormatDLP:
		return clockRule{maxDigits: 9, lastSep: ':'}, true
	case timecode.FormatFFmpeg:
		return clockRule{maxDigits: 8, lastSep: '.', eagerColons: true}, true
	}
	return clockRule{}, false
}

// Apply reformats text for format f and returns it with the new cursor
// position. cursor and the result count runes.
func Apply(f timecode.Format, rate timecode.Rate, text string, cursor int) (string, int) {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	if rule, ok := ruleFor(f, rate); ok {
		return applyClock(rule, runes, cursor)
	}

	var out string
	switch f {
	case timecode.FormatFCPX:
		out = keep(runes, func(_ int, r rune) bool { return isDigit(r) || r == '/' || r == 's' })
	case timecode.FormatFrame:
		out = keep(runes, func(_ int, r rune) bool { return isDigit(r) })
	case timecode.FormatTime:
		seenDot := false
		out = keep(runes, func(i int, r rune) bool {
			switch {
			case isDigit(r):
				return true
			case r == '.' && !seenDot:
				seenDot = true
				return true
			case r == '-' && i == 0:
				return true
			}
			return false
		})
	default:
		return text, cursor
	}
	return out, min(cursor, len([]rune(out)))
}

func applyClock(rule clockRule, runes []rune, cursor int) (string, int) {
	digits := digitsOf(runes)
	if len(digits) > rule.maxDigits {
		digits = digits[:rule.maxDigits]
	}

	var b strings.Builder
	for i, d := range digits {
		b.WriteRune(d)
		last := i == len(digits)-1
		switch i {
		case 1, 3:
			if rule.eagerColons || !last {
				b.WriteRune(':')
			}
		case 5:
			if !last {
				b.WriteRune(rule.lastSep)
			}
		}
	}
	out := b.String()

	// The cursor follows the n-th digit and every separator before it. A
	// trailing eager colon stays after the cursor.
	n := len(digitsOf(runes[:cursor]))
	pos := n
	for _, boundary := range []int{2, 4, 6} {
		if n > boundary {
			pos++
		}
	}
	return out, min(pos, len([]rune(out)))
}

func digitsOf(runes []rune) []rune {
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if isDigit(r) {
			out = append(out, r)
		}
	}
	return out
}

func keep(runes []rune, allow func(i int, r rune) bool) string {
	var b strings.Builder
	for i, r := range runes {
		if allow(i, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsDigit(r)
}
