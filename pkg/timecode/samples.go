package timecode

import (
	"fmt"
	"math/big"
)

// SamplesToTimecode converts an audio sample offset to the nearest frame at
// rate, rounding half up.
func SamplesToTimecode(samples, sampleRate int64, rate Rate, dropFrame bool) (Timecode, error) {
	if samples < 0 {
		return Timecode{}, fmt.Errorf("%w: %d", ErrNegativeSamples, samples)
	}
	if sampleRate <= 0 {
		return Timecode{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if !rate.Valid() {
		return Timecode{}, fmt.Errorf("%w: %d/%d", ErrInvalidRate, rate.Num, rate.Den)
	}

	n := new(big.Int).Mul(big.NewInt(samples), big.NewInt(rate.Num))
	d := new(big.Int).Mul(big.NewInt(sampleRate), big.NewInt(rate.Den))
	frames, ok := roundQuo(n, d)
	if !ok {
		return Timecode{}, ErrOverflow
	}
	return New(frames, rate, dropFrame)
}

// TimecodeToSamples converts t to the nearest audio sample offset at
// sampleRate, rounding half up.
func TimecodeToSamples(t Timecode, sampleRate int64) (int64, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if !t.rate.Valid() {
		return 0, fmt.Errorf("%w: %d/%d", ErrInvalidRate, t.rate.Num, t.rate.Den)
	}

	n := new(big.Int).Mul(big.NewInt(t.frames), big.NewInt(t.rate.Den))
	n.Mul(n, big.NewInt(sampleRate))
	samples, ok := roundQuo(n, big.NewInt(t.rate.Num))
	if !ok {
		return 0, ErrOverflow
	}
	return samples, nil
}

// OffsetSamples moves a sample offset by a number of frames: the sample count
// is converted to a timecode at rate, offset, and converted back. The result
// floors at zero.
func OffsetSamples(samples, sampleRate int64, rate Rate, offsetFrames int64) (int64, Result, error) {
	tc, err := SamplesToTimecode(samples, sampleRate, rate, false)
	if err != nil {
		return 0, Result{}, err
	}
	res, err := tc.Offset(offsetFrames)
	if err != nil {
		return 0, Result{}, err
	}
	out, err := TimecodeToSamples(res.Timecode, sampleRate)
	if err != nil {
		return 0, Result{}, err
	}
	return out, res, nil
}
