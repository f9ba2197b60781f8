package timecode

import (
	"strconv"
)

// clockFields is a tokenized clock string: runs of digits and the single
// separator characters between them.
type clockFields struct {
	values []string
	seps   []byte
}

// tokenize splits input on non-digit characters. Empty fields, doubled
// separators and leading or trailing separators are rejected.
func tokenize(f Format, input string) (clockFields, error) {
	var out clockFields
	start := 0
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if i == start {
			return out, parseErr(f, input, "separator", "is malformed at position "+strconv.Itoa(i))
		}
		out.values = append(out.values, input[start:i])
		out.seps = append(out.seps, c)
		start = i + 1
	}
	if start == len(input) {
		return out, parseErr(f, input, "input", "ends with a separator")
	}
	out.values = append(out.values, input[start:])
	return out, nil
}

// hms parses the hours, minutes and seconds fields shared by every clock
// format. Strict mode rejects minutes and seconds of 60 or more.
func hms(f Format, input string, fields []string, strict bool) (h, m, s int64, err error) {
	names := [3]string{"hours", "minutes", "seconds"}
	var vals [3]int64
	for i := 0; i < 3; i++ {
		v, perr := strconv.ParseInt(fields[i], 10, 64)
		if perr != nil {
			return 0, 0, 0, parseErr(f, input, names[i], "is not a number")
		}
		vals[i] = v
	}
	if strict {
		if vals[1] >= 60 {
			return 0, 0, 0, parseErr(f, input, "minutes", "must be below 60")
		}
		if vals[2] >= 60 {
			return 0, 0, 0, parseErr(f, input, "seconds", "must be below 60")
		}
	}
	return vals[0], vals[1], vals[2], nil
}

func expectSeps(f Format, input string, got []byte, want string) error {
	if len(got) != len(want) {
		return parseErr(f, input, "input", "has "+strconv.Itoa(len(got)+1)+" fields, want "+strconv.Itoa(len(want)+1))
	}
	for i := range got {
		if got[i] != want[i] {
			return parseErr(f, input, "separator", "must be "+strconv.Quote(string(want[i]))+" at field "+strconv.Itoa(i+2))
		}
	}
	return nil
}

func pad(v int64, width int) string {
	s := strconv.FormatInt(v, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
