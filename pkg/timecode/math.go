package timecode

import "math/big"

// unitsOf returns frames at r expressed in 1/unit seconds, rounded half up.
// Products are formed in big.Int; false means the quotient overflows int64.
func unitsOf(frames int64, r Rate, unit int64) (int64, bool) {
	n := new(big.Int).Mul(big.NewInt(frames), big.NewInt(r.Den))
	n.Mul(n, big.NewInt(unit))
	return roundQuo(n, big.NewInt(r.Num))
}

// framesOf returns a count of 1/unit seconds as frames at r, rounded half up.
func framesOf(units int64, r Rate, unit int64) (int64, bool) {
	n := new(big.Int).Mul(big.NewInt(units), big.NewInt(r.Num))
	d := new(big.Int).Mul(big.NewInt(r.Den), big.NewInt(unit))
	return roundQuo(n, d)
}

// roundQuo returns n/d rounded half up for n >= 0 and d > 0.
func roundQuo(n, d *big.Int) (int64, bool) {
	num := new(big.Int).Lsh(n, 1)
	num.Add(num, d)
	den := new(big.Int).Lsh(d, 1)
	q := num.Quo(num, den)
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}

// clockTotal composes hours, minutes and seconds into a count of units,
// where unit is the number of sub-second units per second.
func clockTotal(h, m, s, unit, sub int64) (int64, bool) {
	t := big.NewInt(h)
	t.Mul(t, big.NewInt(60))
	t.Add(t, big.NewInt(m))
	t.Mul(t, big.NewInt(60))
	t.Add(t, big.NewInt(s))
	t.Mul(t, big.NewInt(unit))
	t.Add(t, big.NewInt(sub))
	if !t.IsInt64() {
		return 0, false
	}
	return t.Int64(), true
}

// splitClock returns a count of units split into h, m, s and remainder.
func splitClock(total, unit int64) (h, m, s, sub int64) {
	sub = total % unit
	secs := total / unit
	s = secs % 60
	m = (secs / 60) % 60
	h = secs / 3600
	return h, m, s, sub
}

func pow10(k int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(k)), nil)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
