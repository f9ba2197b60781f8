package timecode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rate
		wantErr bool
	}{
		{"integer", "24", Rate24, false},
		{"padded", " 25 ", Rate25, false},
		{"ntsc decimal", "29.97", Rate29_97, false},
		{"ntsc short spelling", "23.98", Rate23_976, false},
		{"ntsc long spelling", "23.976", Rate23_976, false},
		{"ntsc 59.94", "59.94", Rate59_94, false},
		{"fraction", "30000/1001", Rate29_97, false},
		{"fraction reduced", "48/2", Rate24, false},
		{"plain decimal", "12.5", Rate{Num: 25, Den: 2}, false},
		{"leading dot", ".5", Rate{Num: 1, Den: 2}, false},
		{"zero", "0", Rate{}, true},
		{"negative", "-24", Rate{}, true},
		{"zero denominator", "1/0", Rate{}, true},
		{"garbage", "fast", Rate{}, true},
		{"empty", "", Rate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRate_String(t *testing.T) {
	tests := []struct {
		rate     Rate
		expected string
	}{
		{Rate24, "24"},
		{Rate29_97, "29.97"},
		{Rate23_976, "23.976"},
		{Rate119_88, "119.88"},
		{Rate{Num: 25, Den: 2}, "12.5"},
		{Rate{Num: 1, Den: 4}, "0.25"},
		{Rate{Num: 1, Den: 3}, "1/3"},
		{Rate{Num: 9_000_000_000_000_000_001, Den: 2}, "4500000000000000000.5"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rate.String())
		})
	}
}

func TestRate_Nominal(t *testing.T) {
	assert.Equal(t, int64(24), Rate23_976.Nominal())
	assert.Equal(t, int64(30), Rate29_97.Nominal())
	assert.Equal(t, int64(60), Rate59_94.Nominal())
	assert.Equal(t, int64(25), Rate25.Nominal())
	assert.Equal(t, int64(13), Rate{Num: 25, Den: 2}.Nominal(), "half rounds up")
	assert.Equal(t, int64(1), Rate{Num: 1, Den: 3}.Nominal(), "never below one")
	assert.Equal(t, int64(9_000_000_000_000_000_000), Rate{Num: 9_000_000_000_000_000_000, Den: 1}.Nominal())
	assert.Equal(t, int64(1), Rate{Num: 1, Den: 9_000_000_000_000_000_000}.Nominal())
}

func TestIsDropFrameEligible(t *testing.T) {
	eligible := []Rate{Rate23_976, Rate29_97, Rate47_952, Rate59_94, Rate119_88, {Num: 2997, Den: 100}}
	for _, r := range eligible {
		assert.True(t, IsDropFrameEligible(r), r.String())
	}

	ineligible := []Rate{Rate24, Rate25, Rate30, Rate50, Rate60, {Num: 25, Den: 2}}
	for _, r := range ineligible {
		assert.False(t, r.DropFrameEligible(), r.String())
	}
}

func TestValidateCustomRate(t *testing.T) {
	assert.NoError(t, ValidateCustomRate(Rate{Num: 1000, Den: 1}))
	assert.NoError(t, ValidateCustomRate(Rate{Num: 1, Den: 2}))
	assert.ErrorIs(t, ValidateCustomRate(Rate{Num: 1001, Den: 1}), ErrInvalidRate)
	assert.ErrorIs(t, ValidateCustomRate(Rate{Num: 2001, Den: 2}), ErrInvalidRate)
	assert.ErrorIs(t, ValidateCustomRate(Rate{}), ErrInvalidRate)
	assert.NoError(t, ValidateCustomRate(Rate{Num: 1, Den: 10_000_000_000_000_000}))
	assert.ErrorIs(t, ValidateCustomRate(Rate{Num: 9_000_000_000_000_000_000, Den: 7}), ErrInvalidRate)
}

func TestRate_JSON(t *testing.T) {
	type payload struct {
		Rate Rate `json:"rate"`
	}

	data, err := json.Marshal(payload{Rate: Rate29_97})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":"29.97"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"rate":25}`), &p))
	assert.Equal(t, Rate25, p.Rate)

	require.NoError(t, json.Unmarshal([]byte(`{"rate":"30000/1001"}`), &p))
	assert.Equal(t, Rate29_97, p.Rate)

	assert.Error(t, json.Unmarshal([]byte(`{"rate":"nope"}`), &p))
}

func TestSupportedRates(t *testing.T) {
	rates := SupportedRates()
	require.Len(t, rates, 9)
	assert.Equal(t, Rate23_976, rates[0])
	assert.Equal(t, Rate60, rates[len(rates)-1])
}
