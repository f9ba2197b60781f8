package timecode

import (
	"fmt"
	"math"
	"strings"
)

// Operation is a binary timecode operation.
type Operation string

const (
	OpAdd      Operation = "+"
	OpSubtract Operation = "-"
)

// ParseOperation accepts "+", "add", "-", "−", "sub" and "subtract".
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add":
		return OpAdd, nil
	case "-", "−", "sub", "subtract":
		return OpSubtract, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Symbol returns the display symbol, "+" or "−".
func (o Operation) Symbol() string {
	if o == OpSubtract {
		return "−"
	}
	return "+"
}

// Name returns "add" or "subtract".
func (o Operation) Name() string {
	if o == OpSubtract {
		return "subtract"
	}
	return "add"
}

// Result is the outcome of an operation that floors at zero. When Clamped is
// set, Timecode is zero and Unclamped holds the negative count it replaced.
type Result struct {
	Timecode  Timecode
	Clamped   bool
	Unclamped int64
	op        string
}

// Warning returns a *RangeError describing the clamp, or nil.
func (r Result) Warning() error {
	if !r.Clamped {
		return nil
	}
	return &RangeError{Operation: r.op, Frames: r.Unclamped}
}

func compatible(a, b Timecode) error {
	if a.rate != b.rate || a.dropFrame != b.dropFrame {
		return &IncompatibleRateError{A: a.rate, B: b.rate, ADrop: a.dropFrame, BDrop: b.dropFrame}
	}
	return nil
}

// Add returns a+b.
func Add(a, b Timecode) (Timecode, error) {
	if err := compatible(a, b); err != nil {
		return Timecode{}, err
	}
	if a.frames > math.MaxInt64-b.frames {
		return Timecode{}, ErrOverflow
	}
	return a.with(a.frames + b.frames), nil
}

// Sub returns a-b, clamped to zero.
func Sub(a, b Timecode) (Result, error) {
	if err := compatible(a, b); err != nil {
		return Result{}, err
	}
	return floor(a, a.frames-b.frames, "subtract"), nil
}

// Calculate applies op to a and b. Addition never clamps.
func Calculate(a, b Timecode, op Operation) (Result, error) {
	switch op {
	case OpAdd:
		sum, err := Add(a, b)
		if err != nil {
			return Result{}, err
		}
		return Result{Timecode: sum, op: op.Name()}, nil
	case OpSubtract:
		return Sub(a, b)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
}

// Offset shifts t by a signed number of frames, clamped to zero.
func (t Timecode) Offset(frames int64) (Result, error) {
	if frames > 0 && t.frames > math.MaxInt64-frames {
		return Result{}, ErrOverflow
	}
	return floor(t, t.frames+frames, "offset"), nil
}

func floor(base Timecode, n int64, op string) Result {
	if n < 0 {
		return Result{Timecode: base.with(0), Clamped: true, Unclamped: n, op: op}
	}
	return Result{Timecode: base.with(n), op: op}
}
