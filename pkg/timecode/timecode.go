// Package timecode represents positions in audio/video media as a frame
// count at an exact frame rate, and converts them to and from SMPTE, SRT, DLP,
// FFmpeg, FCPX, frame-count and decimal-second notation.
//
// Values are immutable. Every operation returns a new Timecode and none of
// them perform I/O, so values can be shared freely between goroutines.
package timecode

import (
	"fmt"
	"math/big"
	"time"
)

// Timecode is a non-negative frame count at a frame rate, optionally counted
// with drop-frame labels. The zero value is not usable; construct values with
// New, Parse or the sample bridge.
type Timecode struct {
	frames    int64
	rate      Rate
	dropFrame bool
}

// New creates a timecode at the given frame count.
func New(frames int64, rate Rate, dropFrame bool) (Timecode, error) {
	if !rate.Valid() {
		return Timecode{}, fmt.Errorf("%w: %d/%d", ErrInvalidRate, rate.Num, rate.Den)
	}
	if dropFrame && !IsDropFrameEligible(rate) {
		return Timecode{}, &InvalidDropFrameError{Rate: rate}
	}
	if frames < 0 {
		return Timecode{}, fmt.Errorf("%w: %d", ErrNegativeFrames, frames)
	}
	return Timecode{frames: frames, rate: rate, dropFrame: dropFrame}, nil
}

// Frames returns the canonical frame count.
func (t Timecode) Frames() int64 { return t.frames }

// Rate returns the frame rate.
func (t Timecode) Rate() Rate { return t.rate }

// DropFrame reports whether SMPTE labels use drop-frame counting.
func (t Timecode) DropFrame() bool { return t.dropFrame }

// Seconds returns the real elapsed time in seconds.
func (t Timecode) Seconds() float64 {
	if !t.rate.Valid() {
		return 0
	}
	return float64(t.frames) * float64(t.rate.Den) / float64(t.rate.Num)
}

// Duration returns the real elapsed time rounded to the nanosecond.
func (t Timecode) Duration() time.Duration {
	if !t.rate.Valid() {
		return 0
	}
	n := new(big.Int).Mul(big.NewInt(t.frames), big.NewInt(t.rate.Den))
	n.Mul(n, big.NewInt(int64(time.Second)))
	d, ok := roundQuo(n, big.NewInt(t.rate.Num))
	if !ok {
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(d)
}

// Equal reports whether both values have the same count, rate and counting.
func (t Timecode) Equal(o Timecode) bool {
	return t.frames == o.frames && t.rate == o.rate && t.dropFrame == o.dropFrame
}

// String returns the SMPTE representation.
func (t Timecode) String() string {
	return smpteCodec{}.Encode(t)
}

func (t Timecode) with(frames int64) Timecode {
	return Timecode{frames: frames, rate: t.rate, dropFrame: t.dropFrame}
}
