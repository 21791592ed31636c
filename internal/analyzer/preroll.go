package analyzer

// PrerollStart picks when the camera should start moving toward a click.
//
// A pointer still moving fast at the click gets no lead-in. A pointer that
// slowed below the threshold inside the lookahead window starts the move at
// the first such crossing. Otherwise the move starts at the first sample of
// the window. The result never exceeds clickTS.
func (v *Velocity) PrerollStart(clickTS, maxLookaheadMs int64, threshold float64) int64 {
	in := v.Window(max(clickTS-max(maxLookaheadMs, 1), 0), clickTS)
	if len(in) == 0 {
		return clickTS
	}
	threshold = max(threshold, 0)
	if in[len(in)-1].Speed > threshold {
		return clickTS
	}
	for i := 1; i < len(in); i++ {
		if in[i-1].Speed > threshold && in[i].Speed <= threshold {
			return min(in[i].TS, clickTS)
		}
	}
	return min(in[0].TS, clickTS)
}
