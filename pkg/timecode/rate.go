package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRate is the ceiling applied to custom frame rates entered by users.
const MaxRate = 1000

// Rate is a frame rate expressed as a reduced rational number of frames per
// second.
type Rate struct {
	Num int64 // Numerator
	Den int64 // Denominator
}

// Common frame rates
var (
	Rate24 = Rate{Num: 24, Den: 1}
	Rate25 = Rate{Num: 25, Den: 1}
	Rate30 = Rate{Num: 30, Den: 1}
	Rate48 = Rate{Num: 48, Den: 1}
	Rate50 = Rate{Num: 50, Den: 1}
	Rate60 = Rate{Num: 60, Den: 1}

	// NTSC frame rates
	Rate23_976 = Rate{Num: 24000, Den: 1001}
	Rate29_97  = Rate{Num: 30000, Den: 1001}
	Rate47_952 = Rate{Num: 48000, Den: 1001}
	Rate59_94  = Rate{Num: 60000, Den: 1001}
	Rate119_88 = Rate{Num: 120000, Den: 1001}
)

// ntscNames maps the exact NTSC rationals to their conventional spelling.
var ntscNames = map[Rate]string{
	Rate23_976: "23.976",
	Rate29_97:  "29.97",
	Rate47_952: "47.952",
	Rate59_94:  "59.94",
	Rate119_88: "119.88",
}

// ntscAliases maps decimal spellings of NTSC rates (as reduced rationals) to
// the exact rate they stand for.
var ntscAliases = map[Rate]Rate{
	{Num: 2997, Den: 125}: Rate23_976, // 23.976
	{Num: 1199, Den: 50}:  Rate23_976, // 23.98
	{Num: 2997, Den: 100}: Rate29_97,  // 29.97
	{Num: 5994, Den: 125}: Rate47_952, // 47.952
	{Num: 959, Den: 20}:   Rate47_952, // 47.95
	{Num: 2997, Den: 50}:  Rate59_94,  // 59.94
	{Num: 2997, Den: 25}:  Rate119_88, // 119.88
}

// NewRate returns the reduced rate num/den.
func NewRate(num, den int64) (Rate, error) {
	if num <= 0 || den <= 0 {
		return Rate{}, fmt.Errorf("%w: %d/%d", ErrInvalidRate, num, den)
	}
	g := gcd(num, den)
	return Rate{Num: num / g, Den: den / g}, nil
}

// ParseRate parses "24", "29.97" or "30000/1001". Decimal spellings of NTSC
// rates resolve to the exact N*1000/1001 rational.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rate{}, fmt.Errorf("%w: empty", ErrInvalidRate)
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseInt(num, 10, 64)
		d, err2 := strconv.ParseInt(den, 10, 64)
		if err1 != nil || err2 != nil {
			return Rate{}, fmt.Errorf("%w: %q", ErrInvalidRate, s)
		}
		return NewRate(n, d)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 9 || !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	num, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	den := int64(1)
	for range frac {
		den *= 10
	}
	r, err := NewRate(num, den)
	if err != nil {
		return Rate{}, err
	}
	if exact, ok := ntscAliases[r]; ok {
		return exact, nil
	}
	return r, nil
}

// MustParseRate is like ParseRate but panics on error.
func MustParseRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ValidateCustomRate checks a user-entered rate against the UI ceiling.
func ValidateCustomRate(r Rate) error {
	if !r.Valid() {
		return ErrInvalidRate
	}
	if q := r.Num / r.Den; q > MaxRate || (q == MaxRate && r.Num%r.Den != 0) {
		return fmt.Errorf("%w: %s exceeds %d fps", ErrInvalidRate, r, MaxRate)
	}
	return nil
}

// Valid reports whether r is a usable positive rate.
func (r Rate) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Float64 returns the floating point representation
func (r Rate) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Nominal returns the integer timecode base: the rate rounded half up, at
// least 1. 29.97 counts on a base of 30.
func (r Rate) Nominal() int64 {
	if !r.Valid() {
		return 1
	}
	n, rem := r.Num/r.Den, r.Num%r.Den
	if rem >= r.Den-rem {
		n++
	}
	if n < 1 {
		return 1
	}
	return n
}

// DropFrameEligible reports whether r has a drop-frame counting convention.
func (r Rate) DropFrameEligible() bool {
	return IsDropFrameEligible(r)
}

// IsDropFrameEligible reports whether drop-frame counting is defined at r.
// Eligibility is an explicit set of rationals, never a float comparison.
func IsDropFrameEligible(r Rate) bool {
	if _, ok := ntscNames[r]; ok {
		return true
	}
	_, ok := ntscAliases[r]
	return ok
}

// String renders the rate the way it is usually written: "24", "29.97",
// "12.5" or "num/den" when there is no short decimal form.
func (r Rate) String() string {
	if name, ok := ntscNames[r]; ok {
		return name
	}
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	if s, ok := decimalString(r); ok {
		return s
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rate) UnmarshalText(text []byte) error {
	parsed, err := ParseRate(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalJSON accepts both a JSON string and a bare JSON number.
func (r *Rate) UnmarshalJSON(data []byte) error {
	return r.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// SupportedRates returns the rates offered by the tools, in display order.
func SupportedRates() []Rate {
	return []Rate{Rate23_976, Rate24, Rate25, Rate29_97, Rate30, Rate48, Rate50, Rate59_94, Rate60}
}

// decimalString renders r exactly with at most nine fractional digits when
// such a form exists.
func decimalString(r Rate) (string, bool) {
	unit := int64(1)
	for k := 1; k <= 9; k++ {
		unit *= 10
		if unit%r.Den != 0 {
			continue
		}
		whole, rem := r.Num/r.Den, r.Num%r.Den
		frac := strconv.FormatInt(rem*(unit/r.Den), 10)
		frac = strings.Repeat("0", k-len(frac)) + frac
		return strconv.FormatInt(whole, 10) + "." + strings.TrimRight(frac, "0"), true
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
