package timecode

import (
	"fmt"
	"strings"
)

// Format names an external timecode representation.
type Format string

const (
	FormatSMPTE  Format = "smpte"  // HH:MM:SS:FF, HH:MM:SS;FF when drop-frame
	FormatSRT    Format = "srt"    // HH:MM:SS,mmm
	FormatDLP    Format = "dlp"    // HH:MM:SS:sss
	FormatFFmpeg Format = "ffmpeg" // HH:MM:SS.xx
	FormatFCPX   Format = "fcpx"   // num/dens
	FormatFrame  Format = "frame"  // frame count
	FormatTime   Format = "time"   // decimal seconds
)

// Options control decoding.
type Options struct {
	// DropFrame selects drop-frame SMPTE labels. It is only valid at
	// drop-frame eligible rates.
	DropFrame bool
	// Strict rejects out-of-range fields instead of carrying them into the
	// next larger unit.
	Strict bool
}

// Codec converts between a format's text and a frame count.
type Codec interface {
	Format() Format
	// Decode returns the frame count for input at rate. Input is trimmed and
	// non-empty when Decode is called.
	Decode(input string, rate Rate, opts Options) (int64, error)
	// Encode renders t. It never fails for a value built by this package.
	Encode(t Timecode) string
}

var codecs = map[Format]Codec{
	FormatSMPTE:  smpteCodec{},
	FormatSRT:    srtCodec,
	FormatDLP:    dlpCodec,
	FormatFFmpeg: ffmpegCodec{},
	FormatFCPX:   fcpxCodec{},
	FormatFrame:  frameCodec{},
	FormatTime:   timeCodec{},
}

// displayOrder is the order the converter lists its outputs in.
var displayOrder = []Format{
	FormatFrame,
	FormatTime,
	FormatSMPTE,
	FormatSRT,
	FormatDLP,
	FormatFFmpeg,
	FormatFCPX,
}

// Formats returns every supported format in display order.
func Formats() []Format {
	out := make([]Format, len(displayOrder))
	copy(out, displayOrder)
	return out
}

// ParseFormat resolves a format tag, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := codecs[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// CodecFor returns the codec registered for f.
func CodecFor(f Format) (Codec, error) {
	c, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	return c, nil
}

// Label returns the human readable name of the format.
func (f Format) Label() string {
	switch f {
	case FormatSMPTE:
		return "SMPTE"
	case FormatSRT:
		return "SRT"
	case FormatDLP:
		return "DLP"
	case FormatFFmpeg:
		return "FFmpeg"
	case FormatFCPX:
		return "FCPX"
	case FormatFrame:
		return "Frame"
	case FormatTime:
		return "Time"
	}
	return string(f)
}

// Parse decodes input in format f at rate.
func Parse(input string, f Format, rate Rate, opts Options) (Timecode, error) {
	c, err := CodecFor(f)
	if err != nil {
		return Timecode{}, err
	}
	if !rate.Valid() {
		return Timecode{}, fmt.Errorf("%w: %d/%d", ErrInvalidRate, rate.Num, rate.Den)
	}
	if opts.DropFrame && !IsDropFrameEligible(rate) {
		return Timecode{}, &InvalidDropFrameError{Rate: rate}
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Timecode{}, parseErr(f, input, "input", "is empty")
	}

	frames, err := c.Decode(trimmed, rate, opts)
	if err != nil {
		return Timecode{}, err
	}
	return Timecode{frames: frames, rate: rate, dropFrame: opts.DropFrame}, nil
}

// Encode renders t in format f.
func (t Timecode) Encode(f Format) (string, error) {
	c, err := CodecFor(f)
	if err != nil {
		return "", err
	}
	return c.Encode(t), nil
}

// SMPTE returns HH:MM:SS:FF, or HH:MM:SS;FF for drop-frame values.
func (t Timecode) SMPTE() string { return smpteCodec{}.Encode(t) }

// SRT returns HH:MM:SS,mmm.
func (t Timecode) SRT() string { return srtCodec.Encode(t) }

// DLP returns HH:MM:SS:sss.
func (t Timecode) DLP() string { return dlpCodec.Encode(t) }

// FFmpeg returns HH:MM:SS.xx.
func (t Timecode) FFmpeg() string { return ffmpegCodec{}.Encode(t) }

// FCPX returns the exact rational seconds as num/dens.
func (t Timecode) FCPX() string { return fcpxCodec{}.Encode(t) }

// Conversion is one rendered format.
type Conversion struct {
	Format Format `json:"format"`
	Value  string `json:"value"`
}

// ConvertAll renders t in every format, in display order.
func ConvertAll(t Timecode) []Conversion {
	out := make([]Conversion, 0, len(displayOrder))
	for _, f := range displayOrder {
		out = append(out, Conversion{Format: f, Value: codecs[f].Encode(t)})
	}
	return out
}
