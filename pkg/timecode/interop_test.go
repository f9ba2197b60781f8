package timecode

import (
	"testing"

	cbstc "github.com/cbsinteractive/pkg/timecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Float-seconds parsers are exact enough at integer rates to agree with the
// rational frame count.
func TestParse_AgreesWithRangeSeconds(t *testing.T) {
	tests := []struct {
		input string
		rate  Rate
		fps   float64
	}{
		{"00:00:00:00", Rate25, 25},
		{"01:02:03:12", Rate25, 25},
		{"00:10:00:23", Rate24, 24},
		{"23:59:59:29", Rate30, 30},
		{"00:00:01:49", Rate50, 50},
		{"12:00:00:59", Rate60, 60},
	}

	for _, tt := range tests {
		t.Run(tt.rate.String()+"/"+tt.input, func(t *testing.T) {
			tc, err := Parse(tt.input, FormatSMPTE, tt.rate, Options{})
			require.NoError(t, err)

			r, err := cbstc.Parse(tt.input, tt.fps)
			require.NoError(t, err)

			assert.InDelta(t, r[1], tc.Seconds(), 1e-6)
		})
	}
}

func TestEncode_WholeSecondsMatchRangeTimecode(t *testing.T) {
	for _, secs := range []int64{0, 59, 3600, 86399} {
		tc := mustNew(t, secs*25, Rate25, false)
		text, err := tc.Encode(FormatSMPTE)
		require.NoError(t, err)

		r := cbstc.Range{0, float64(secs)}
		assert.Equal(t, r.Timecode(25), text)
	}
}
