package mask

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

type masked struct {
	Text   string
	Cursor int
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		format timecode.Format
		rate   timecode.Rate
		text   string
		cursor int
		want   masked
	}{
		{"smpte single digit", timecode.FormatSMPTE, timecode.Rate25, "1", 1, masked{"1", 1}},
		{"smpte waits for next group", timecode.FormatSMPTE, timecode.Rate25, "12", 2, masked{"12", 2}},
		{"smpte inserts colon", timecode.FormatSMPTE, timecode.Rate25, "123", 3, masked{"12:3", 4}},
		{"smpte full", timecode.FormatSMPTE, timecode.Rate25, "12345678", 8, masked{"12:34:56:78", 11}},
		{"smpte truncates", timecode.FormatSMPTE, timecode.Rate25, "12:34:56:789", 12, masked{"12:34:56:78", 11}},
		{"smpte three digit frames", timecode.FormatSMPTE, timecode.Rate{Num: 120, Den: 1}, "123456789", 9, masked{"12:34:56:789", 12}},
		{"smpte four digit frames", timecode.FormatSMPTE, timecode.Rate{Num: 1000, Den: 1}, "1234567890", 10, masked{"12:34:56:7890", 13}},
		{"smpte drops letters", timecode.FormatSMPTE, timecode.Rate25, "1a2", 3, masked{"12", 2}},
		{"smpte cursor mid text", timecode.FormatSMPTE, timecode.Rate25, "1234", 1, masked{"12:34", 1}},
		{"smpte cursor after two groups", timecode.FormatSMPTE, timecode.Rate25, "123456789", 5, masked{"12:34:56:78", 7}},
		{"smpte cursor after separator moves before it", timecode.FormatSMPTE, timecode.Rate25, "12:34:56", 6, masked{"12:34:56", 5}},
		{"srt cursor mid text", timecode.FormatSRT, timecode.Rate24, "12:34:56,789", 4, masked{"12:34:56,789", 4}},
		{"srt eager colon", timecode.FormatSRT, timecode.Rate24, "12", 2, masked{"12:", 2}},
		{"srt second colon", timecode.FormatSRT, timecode.Rate24, "1234", 4, masked{"12:34:", 5}},
		{"srt comma waits", timecode.FormatSRT, timecode.Rate24, "123456", 6, masked{"12:34:56", 8}},
		{"srt full", timecode.FormatSRT, timecode.Rate24, "123456789", 9, masked{"12:34:56,789", 12}},
		{"dlp full", timecode.FormatDLP, timecode.Rate24, "123456789", 9, masked{"12:34:56:789", 12}},
		{"ffmpeg full", timecode.FormatFFmpeg, timecode.Rate24, "12345678", 8, masked{"12:34:56.78", 11}},
		{"ffmpeg truncates", timecode.FormatFFmpeg, timecode.Rate24, "123456789", 9, masked{"12:34:56.78", 11}},
		{"fcpx keeps slash and suffix", timecode.FormatFCPX, timecode.Rate24, "1001/30000s x", 13, masked{"1001/30000s", 11}},
		{"frame digits only", timecode.FormatFrame, timecode.Rate24, "12a3", 4, masked{"123", 3}},
		{"time single dot", timecode.FormatTime, timecode.Rate24, "-1.5.2", 6, masked{"-1.52", 5}},
		{"time minus only first", timecode.FormatTime, timecode.Rate24, "1-2", 3, masked{"12", 2}},
		{"negative cursor", timecode.FormatFrame, timecode.Rate24, "12", -3, masked{"12", 0}},
		{"unknown format untouched", timecode.Format("edl"), timecode.Rate24, "a:b", 2, masked{"a:b", 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cursor := Apply(tt.format, tt.rate, tt.text, tt.cursor)
			if diff := cmp.Diff(tt.want, masked{text, cursor}); diff != "" {
				t.Errorf("Apply(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	for _, f := range timecode.Formats() {
		text, cursor := Apply(f, timecode.Rate25, "0123456789", 10)
		again, againCursor := Apply(f, timecode.Rate25, text, cursor)
		if diff := cmp.Diff(masked{text, cursor}, masked{again, againCursor}); diff != "" {
			t.Errorf("%s: second pass changed the field (-first +second):\n%s", f, diff)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	got := map[timecode.Format]string{}
	for _, f := range timecode.Formats() {
		got[f] = Placeholder(f)
	}
	want := map[timecode.Format]string{
		timecode.FormatFrame:  "0",
		timecode.FormatTime:   "0.0",
		timecode.FormatSMPTE:  "00:00:00:00",
		timecode.FormatSRT:    "00:00:00,000",
		timecode.FormatDLP:    "00:00:00:000",
		timecode.FormatFFmpeg: "00:00:00.00",
		timecode.FormatFCPX:   "0/1s",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("placeholders mismatch (-want +got):\n%s", diff)
	}

	if got := Placeholder(timecode.Format("edl")); got != "00:00:00:00" {
		t.Errorf("Placeholder(edl) = %q, want SMPTE default", got)
	}
}
