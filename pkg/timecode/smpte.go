package timecode

import (
	"strconv"
	"strings"
)

type smpteCodec struct{}

func (smpteCodec) Format() Format { return FormatSMPTE }

func (smpteCodec) Decode(input string, rate Rate, opts Options) (int64, error) {
	tok, err := tokenize(FormatSMPTE, input)
	if err != nil {
		return 0, err
	}
	if len(tok.values) != 4 {
		return 0, parseErr(FormatSMPTE, input, "input", "has "+strconv.Itoa(len(tok.values))+" fields, want 4")
	}
	if tok.seps[0] != ':' || tok.seps[1] != ':' {
		return 0, parseErr(FormatSMPTE, input, "separator", `must be ":" between hours, minutes and seconds`)
	}
	switch tok.seps[2] {
	case ':':
	case ';':
		if !opts.DropFrame && opts.Strict {
			return 0, parseErr(FormatSMPTE, input, "separator", `";" is only valid for drop-frame timecode`)
		}
	default:
		return 0, parseErr(FormatSMPTE, input, "separator", `must be ":" or ";" before frames`)
	}

	h, m, s, err := hms(FormatSMPTE, input, tok.values, opts.Strict)
	if err != nil {
		return 0, err
	}
	f, perr := strconv.ParseInt(tok.values[3], 10, 64)
	if perr != nil {
		return 0, parseErr(FormatSMPTE, input, "frames", "is not a number")
	}

	nominal := rate.Nominal()
	if opts.Strict && f >= nominal {
		return 0, parseErr(FormatSMPTE, input, "frames", "must be below "+strconv.FormatInt(nominal, 10))
	}

	total, ok := clockTotal(h, m, s, nominal, f)
	if !ok {
		return 0, parseErr(FormatSMPTE, input, "hours", "is out of range")
	}
	if !opts.DropFrame {
		return total, nil
	}

	h, m, s, f = splitClock(total, nominal)
	if isDroppedLabel(m, s, f, nominal) {
		if opts.Strict {
			return 0, parseErr(FormatSMPTE, input, "frames", "is a dropped drop-frame label")
		}
		f = dropPerMinute(nominal)
	}
	frames, ok := framesFromLabel(h, m, s, f, nominal)
	if !ok {
		return 0, parseErr(FormatSMPTE, input, "hours", "is out of range")
	}
	return frames, nil
}

func (smpteCodec) Encode(t Timecode) string {
	nominal := t.rate.Nominal()
	label := t.frames
	sep := ":"
	if t.dropFrame {
		label = labelFromFrames(t.frames, nominal)
		sep = ";"
	}
	h, m, s, f := splitClock(label, nominal)

	var b strings.Builder
	b.WriteString(pad(h, 2))
	b.WriteByte(':')
	b.WriteString(pad(m, 2))
	b.WriteByte(':')
	b.WriteString(pad(s, 2))
	b.WriteString(sep)
	b.WriteString(pad(f, frameDigits(t.rate)))
	return b.String()
}

// frameDigits is the width of the SMPTE frame field: two digits below 100
// fps, three below 1000 and four beyond.
func frameDigits(r Rate) int {
	switch {
	case r.Num/r.Den < 100:
		return 2
	case r.Num/r.Den < 1000:
		return 3
	default:
		return 4
	}
}
