package timecode

// dropPerMinute returns the number of frame labels skipped at the start of
// each minute not divisible by ten: nominal/15 rounded, 2 at 29.97 and 4 at
// 59.94.
func dropPerMinute(nominal int64) int64 {
	return (2*nominal + 15) / 30
}

// labelFromFrames converts a linear frame count to a nominal label count,
// re-inserting the labels drop-frame counting skips.
func labelFromFrames(frames, nominal int64) int64 {
	d := dropPerMinute(nominal)
	perMinute := nominal*60 - d
	perTen := nominal*600 - 9*d

	tens := frames / perTen
	rem := frames % perTen
	label := frames + 9*d*tens
	if rem > d {
		label += d * ((rem - d) / perMinute)
	}
	return label
}

// framesFromLabel converts hours, minutes, seconds and frame fields of a
// drop-frame label to a linear frame count. The fields must be normalized.
func framesFromLabel(h, m, s, f, nominal int64) (int64, bool) {
	label, ok := clockTotal(h, m, s, nominal, f)
	if !ok {
		return 0, false
	}
	minutes := h*60 + m
	return label - dropPerMinute(nominal)*(minutes-minutes/10), true
}

// isDroppedLabel reports whether the label is one drop-frame counting skips.
func isDroppedLabel(m, s, f, nominal int64) bool {
	return s == 0 && m%10 != 0 && f < dropPerMinute(nominal)
}
