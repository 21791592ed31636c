package analyzer

import (
	"github.com/ivlev/autocam/internal/events"
)

// FocusClicks extracts every click in timestamp order.
func FocusClicks(evs []events.InputEvent) []FocusClick {
	var out []FocusClick
	for _, e := range events.Sorted(evs) {
		if e.Kind == events.KindClick {
			out = append(out, focusClick(e))
		}
	}
	return out
}

// CtrlClicks extracts the clicks made while a Control key was held.
func CtrlClicks(evs []events.InputEvent) []FocusClick {
	var out []FocusClick
	held := map[string]bool{}
	for _, e := range events.Sorted(evs) {
		switch e.Kind {
		case events.KindKeyDown:
			if events.IsControlKey(e.KeyCode) {
				held[e.KeyCode] = true
			}
		case events.KindKeyUp:
			delete(held, e.KeyCode)
		case events.KindClick:
			if len(held) > 0 {
				out = append(out, focusClick(e))
			}
		}
	}
	return out
}

func focusClick(e events.InputEvent) FocusClick {
	c := FocusClick{TS: e.TS, X: e.X, Y: e.Y}
	if b, ok := e.Bounds(); ok {
		r := pixelRect(b)
		c.Bounds = &r
	}
	return c
}

// GateByActivationWindow keeps a click when at least minClicks clicks
// (itself included) fall inside the trailing window ending at it. A kept
// click also pulls in its predecessor when the two are at most rapidGapMs
// apart. Clicks must be sorted by timestamp.
func GateByActivationWindow(clicks []FocusClick, windowMs int64, minClicks int, rapidGapMs int64) []FocusClick {
	minClicks = max(minClicks, 1)
	if len(clicks) < minClicks {
		return nil
	}
	windowMs = max(windowMs, 1)
	rapidGapMs = max(rapidGapMs, 1)

	selected := make([]bool, len(clicks))
	for i, c := range clicks {
		windowStart := max(c.TS-windowMs, 0)
		left := i
		for left > 0 && clicks[left-1].TS >= windowStart {
			left--
		}
		if i+1-left < minClicks {
			continue
		}
		selected[i] = true
		if i > 0 && c.TS-clicks[i-1].TS <= rapidGapMs {
			selected[i-1] = true
		}
	}

	var out []FocusClick
	for i, c := range clicks {
		if selected[i] {
			out = append(out, c)
		}
	}
	return out
}

// ClusterClicks merges consecutive clicks whose gap to the running cluster
// end is at most gapMs. Clicks must be sorted by timestamp.
func ClusterClicks(clicks []FocusClick, gapMs int64) []FocusCluster {
	if len(clicks) == 0 {
		return nil
	}

	var (
		out        []FocusCluster
		cur        FocusCluster
		sumX, sumY float64
	)
	start := func(c FocusClick) {
		cur = FocusCluster{
			StartTS: c.TS, EndTS: c.TS,
			AnchorX: c.X, AnchorY: c.Y,
			ClickCount: 1,
		}
		if c.Bounds != nil {
			b := *c.Bounds
			cur.Bounds = &b
		}
		sumX, sumY = c.X, c.Y
	}
	flush := func() {
		cur.AvgX = sumX / float64(cur.ClickCount)
		cur.AvgY = sumY / float64(cur.ClickCount)
		out = append(out, cur)
	}

	start(clicks[0])
	for _, c := range clicks[1:] {
		if c.TS-cur.EndTS > gapMs {
			flush()
			start(c)
			continue
		}
		cur.EndTS = c.TS
		cur.ClickCount++
		sumX += c.X
		sumY += c.Y
		cur.AnchorX, cur.AnchorY = c.X, c.Y
		switch {
		case cur.Bounds != nil && c.Bounds != nil:
			u := cur.Bounds.Union(*c.Bounds)
			cur.Bounds = &u
		case c.Bounds != nil:
			b := *c.Bounds
			cur.Bounds = &b
		}
	}
	flush()
	return out
}
