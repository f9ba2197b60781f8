package timecode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRate is returned for a zero, negative or malformed frame rate.
	ErrInvalidRate = errors.New("timecode: invalid frame rate")
	// ErrUnknownFormat is returned for a format tag with no registered codec.
	ErrUnknownFormat = errors.New("timecode: unknown format")
	// ErrNegativeFrames is returned when a value is constructed below zero.
	ErrNegativeFrames = errors.New("timecode: negative frame count")
	// ErrNegativeSamples is returned for a sample offset below zero.
	ErrNegativeSamples = errors.New("timecode: negative sample count")
	// ErrInvalidSampleRate is returned for a sample rate that is not positive.
	ErrInvalidSampleRate = errors.New("timecode: invalid sample rate")
	// ErrOverflow is returned when a result does not fit in a frame count.
	ErrOverflow = errors.New("timecode: frame count overflow")
	// ErrUnknownOperation is returned for an operation other than add or subtract.
	ErrUnknownOperation = errors.New("timecode: unknown operation")
)

// ParseError describes textual input that could not be decoded in a format.
type ParseError struct {
	Format Format
	Input  string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timecode: cannot parse %q as %s: %s %s", e.Input, e.Format, e.Field, e.Reason)
}

// IncompatibleRateError is returned when two values with different frame
// rates or drop-frame flags are combined.
type IncompatibleRateError struct {
	A, B         Rate
	ADrop, BDrop bool
}

func (e *IncompatibleRateError) Error() string {
	return fmt.Sprintf("timecode: incompatible operands %s (%s) and %s (%s)",
		e.A, dropLabel(e.ADrop), e.B, dropLabel(e.BDrop))
}

// InvalidDropFrameError is returned when drop-frame counting is requested at
// a rate that has no drop-frame convention.
type InvalidDropFrameError struct {
	Rate Rate
}

func (e *InvalidDropFrameError) Error() string {
	return fmt.Sprintf("timecode: drop-frame is not defined at %s fps", e.Rate)
}

// RangeError reports a result that fell below zero. When it comes from
// Result.Warning the value has already been clamped to zero.
type RangeError struct {
	Operation string
	Frames    int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("timecode: %s result of %d frames is negative, clamped to zero", e.Operation, e.Frames)
}

func dropLabel(drop bool) string {
	if drop {
		return "DF"
	}
	return "NDF"
}

func parseErr(f Format, input, field, reason string) *ParseError {
	return &ParseError{Format: f, Input: input, Field: field, Reason: reason}
}
