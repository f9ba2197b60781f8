package timecode

import (
	"math/big"
	"strconv"
	"strings"
)

// msCodec handles the millisecond clock formats, SRT (HH:MM:SS,mmm) and DLP
// (HH:MM:SS:sss). They differ only in the last separator.
type msCodec struct {
	format Format
	sep    byte
}

var (
	srtCodec = msCodec{format: FormatSRT, sep: ','}
	dlpCodec = msCodec{format: FormatDLP, sep: ':'}
)

func (c msCodec) Format() Format { return c.format }

func (c msCodec) Decode(input string, rate Rate, opts Options) (int64, error) {
	tok, err := tokenize(c.format, input)
	if err != nil {
		return 0, err
	}
	if err := expectSeps(c.format, input, tok.seps, "::"+string(c.sep)); err != nil {
		return 0, err
	}
	h, m, s, err := hms(c.format, input, tok.values, opts.Strict)
	if err != nil {
		return 0, err
	}
	msField := tok.values[3]
	if opts.Strict && len(msField) != 3 {
		return 0, parseErr(c.format, input, "milliseconds", "must have 3 digits")
	}
	// A short field is a fraction of a second, so ",5" is 500 ms. Longer
	// fields are a millisecond count and carry into the seconds.
	if n := len(msField); n > 0 && n < 3 {
		msField += strings.Repeat("0", 3-n)
	}
	ms, perr := strconv.ParseInt(msField, 10, 64)
	if perr != nil {
		return 0, parseErr(c.format, input, "milliseconds", "is not a number")
	}

	total, ok := clockTotal(h, m, s, 1000, ms)
	if !ok {
		return 0, parseErr(c.format, input, "hours", "is out of range")
	}
	frames, ok := framesOf(total, rate, 1000)
	if !ok {
		return 0, parseErr(c.format, input, "hours", "is out of range")
	}
	return frames, nil
}

func (c msCodec) Encode(t Timecode) string {
	ms, ok := unitsOf(t.frames, t.rate, 1000)
	if !ok {
		ms = 1<<63 - 1
	}
	h, m, s, sub := splitClock(ms, 1000)
	return pad(h, 2) + ":" + pad(m, 2) + ":" + pad(s, 2) + string(c.sep) + pad(sub, 3)
}

// ffmpegCodec handles HH:MM:SS.xx. Output has centisecond precision; input
// accepts any number of fractional digits, or none.
type ffmpegCodec struct{}

func (ffmpegCodec) Format() Format { return FormatFFmpeg }

func (ffmpegCodec) Decode(input string, rate Rate, opts Options) (int64, error) {
	tok, err := tokenize(FormatFFmpeg, input)
	if err != nil {
		return 0, err
	}
	frac := ""
	switch len(tok.seps) {
	case 2:
		err = expectSeps(FormatFFmpeg, input, tok.seps, "::")
	case 3:
		err = expectSeps(FormatFFmpeg, input, tok.seps, "::.")
		frac = tok.values[3]
	default:
		err = parseErr(FormatFFmpeg, input, "input", "must look like HH:MM:SS.xx")
	}
	if err != nil {
		return 0, err
	}
	h, m, s, err := hms(FormatFFmpeg, input, tok.values, opts.Strict)
	if err != nil {
		return 0, err
	}

	secs, ok := clockTotal(h, m, s, 1, 0)
	if !ok {
		return 0, parseErr(FormatFFmpeg, input, "hours", "is out of range")
	}
	frames, ok := decimalFrames(secs, frac, rate)
	if !ok {
		return 0, parseErr(FormatFFmpeg, input, "hours", "is out of range")
	}
	return frames, nil
}

func (ffmpegCodec) Encode(t Timecode) string {
	cs, ok := unitsOf(t.frames, t.rate, 100)
	if !ok {
		cs = 1<<63 - 1
	}
	h, m, s, sub := splitClock(cs, 100)
	return pad(h, 2) + ":" + pad(m, 2) + ":" + pad(s, 2) + "." + pad(sub, 2)
}

// decimalFrames converts whole seconds plus a string of fractional digits to
// the nearest frame.
func decimalFrames(whole int64, frac string, rate Rate) (int64, bool) {
	unit := pow10(len(frac))
	n := new(big.Int).Mul(big.NewInt(whole), unit)
	if frac != "" {
		f, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return 0, false
		}
		n.Add(n, f)
	}
	n.Mul(n, big.NewInt(rate.Num))
	d := new(big.Int).Mul(unit, big.NewInt(rate.Den))
	return roundQuo(n, d)
}

// formatDecimal renders units/10^digits with trailing zeros trimmed, keeping
// at least one fractional digit.
func formatDecimal(units int64, digits int) string {
	div := int64(1)
	for i := 0; i < digits; i++ {
		div *= 10
	}
	frac := strings.TrimRight(pad(units%div, digits), "0")
	if frac == "" {
		frac = "0"
	}
	return strconv.FormatInt(units/div, 10) + "." + frac
}
