package timecode

import (
	"math/big"
	"strconv"
	"strings"
)

// fcpxCodec handles rational seconds such as "1001/30000s".
type fcpxCodec struct{}

func (fcpxCodec) Format() Format { return FormatFCPX }

func (fcpxCodec) Decode(input string, rate Rate, opts Options) (int64, error) {
	body, hasSuffix := strings.CutSuffix(input, "s")
	if !hasSuffix && opts.Strict {
		return 0, parseErr(FormatFCPX, input, "suffix", `must be "s"`)
	}
	numText, denText, hasDen := strings.Cut(body, "/")
	if !isDigits(numText) {
		return 0, parseErr(FormatFCPX, input, "numerator", "is not a number")
	}
	num, ok := new(big.Int).SetString(numText, 10)
	if !ok {
		return 0, parseErr(FormatFCPX, input, "numerator", "is not a number")
	}
	den := big.NewInt(1)
	if hasDen {
		if !isDigits(denText) {
			return 0, parseErr(FormatFCPX, input, "denominator", "is not a number")
		}
		den.SetString(denText, 10)
		if den.Sign() == 0 {
			return 0, parseErr(FormatFCPX, input, "denominator", "must not be zero")
		}
	}

	n := num.Mul(num, big.NewInt(rate.Num))
	d := den.Mul(den, big.NewInt(rate.Den))
	frames, ok := roundQuo(n, d)
	if !ok {
		return 0, parseErr(FormatFCPX, input, "numerator", "is out of range")
	}
	return frames, nil
}

func (fcpxCodec) Encode(t Timecode) string {
	n := new(big.Int).Mul(big.NewInt(t.frames), big.NewInt(t.rate.Den))
	d := big.NewInt(t.rate.Num)
	if n.Sign() == 0 {
		return "0/1s"
	}
	g := new(big.Int).GCD(nil, nil, n, d)
	n.Quo(n, g)
	d.Quo(d, g)
	return n.String() + "/" + d.String() + "s"
}

type frameCodec struct{}

func (frameCodec) Format() Format { return FormatFrame }

func (frameCodec) Decode(input string, _ Rate, _ Options) (int64, error) {
	if strings.HasPrefix(input, "-") {
		return 0, parseErr(FormatFrame, input, "frames", "must not be negative")
	}
	if !isDigits(input) {
		return 0, parseErr(FormatFrame, input, "frames", "is not a number")
	}
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return 0, parseErr(FormatFrame, input, "frames", "is out of range")
	}
	return n, nil
}

func (frameCodec) Encode(t Timecode) string {
	return strconv.FormatInt(t.frames, 10)
}

// timeCodec handles decimal seconds. Output keeps up to six fractional digits.
type timeCodec struct{}

func (timeCodec) Format() Format { return FormatTime }

func (timeCodec) Decode(input string, rate Rate, _ Options) (int64, error) {
	if strings.HasPrefix(input, "-") {
		return 0, parseErr(FormatTime, input, "seconds", "must not be negative")
	}
	whole, frac, hasDot := strings.Cut(input, ".")
	if whole == "" && frac == "" {
		return 0, parseErr(FormatTime, input, "seconds", "has no digits")
	}
	if whole == "" && hasDot {
		whole = "0"
	}
	if !isDigits(whole) || (hasDot && frac != "" && !isDigits(frac)) {
		return 0, parseErr(FormatTime, input, "seconds", "is not a number")
	}
	secs, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, parseErr(FormatTime, input, "seconds", "is out of range")
	}
	frames, ok := decimalFrames(secs, frac, rate)
	if !ok {
		return 0, parseErr(FormatTime, input, "seconds", "is out of range")
	}
	return frames, nil
}

func (timeCodec) Encode(t Timecode) string {
	micros, ok := unitsOf(t.frames, t.rate, 1_000_000)
	if !ok {
		micros = 1<<63 - 1
	}
	return formatDecimal(micros, 6)
}
