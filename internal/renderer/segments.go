package renderer

import (
	"sort"

	"github.com/ivlev/autocam/internal/project"
	"github.com/ivlev/autocam/internal/spring"
)

// RuntimeSegment is a persisted zoom segment prepared for export: clamped to
// the project, with normalised target points pinned at both ends.
type RuntimeSegment struct {
	StartTS, EndTS int64
	BaseRect       project.NormalizedRect
	TargetPoints   []project.TargetPoint
	Spring         spring.Params
}

// RuntimeSegments prepares the project's segments in start order. Segments
// that end up empty after clamping are skipped.
func RuntimeSegments(p *project.Project) []RuntimeSegment {
	segs := make([]project.ZoomSegment, len(p.Timeline.ZoomSegments))
	copy(segs, p.Timeline.ZoomSegments)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].StartTS < segs[j].StartTS })

	var out []RuntimeSegment
	for _, seg := range segs {
		start := min(seg.StartTS, p.DurationMs)
		end := min(seg.EndTS, p.DurationMs)
		if end <= start {
			continue
		}
		base := seg.InitialRect.Normalize()
		points := seg.TargetPoints
		if len(points) == 0 {
			points = legacyPanTargets(seg, base)
		}
		out = append(out, RuntimeSegment{
			StartTS:      start,
			EndTS:        end,
			BaseRect:     base,
			TargetPoints: normalizeTargetPoints(points, start, end, base),
			Spring:       seg.Spring.Sanitize(),
		})
	}
	return out
}

// normalizeTargetPoints clamps points into [start, end], sorts them, keeps
// the last point per timestamp and pins the first and last rect at the
// segment bounds.
func normalizeTargetPoints(points []project.TargetPoint, start, end int64, fallback project.NormalizedRect) []project.TargetPoint {
	norm := make([]project.TargetPoint, 0, len(points)+2)
	for _, p := range points {
		norm = append(norm, project.TargetPoint{
			TS:   max(start, min(p.TS, end)),
			Rect: p.Rect.Normalize(),
		})
	}
	sort.SliceStable(norm, func(i, j int) bool { return norm[i].TS < norm[j].TS })

	dedup := norm[:0]
	for _, p := range norm {
		if n := len(dedup); n > 0 && dedup[n-1].TS == p.TS {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}

	if len(dedup) == 0 {
		return []project.TargetPoint{{TS: start, Rect: fallback}, {TS: end, Rect: fallback}}
	}
	if dedup[0].TS > start {
		dedup = append([]project.TargetPoint{{TS: start, Rect: dedup[0].Rect}}, dedup...)
	}
	if last := dedup[len(dedup)-1]; last.TS < end {
		dedup = append(dedup, project.TargetPoint{TS: end, Rect: last.Rect})
	}
	return dedup
}

// legacyPanTargets converts an offset trajectory into target points by
// shifting the base rect.
func legacyPanTargets(seg project.ZoomSegment, base project.NormalizedRect) []project.TargetPoint {
	pan := make([]project.PanKeyframe, len(seg.PanTrajectory))
	copy(pan, seg.PanTrajectory)
	sort.SliceStable(pan, func(i, j int) bool { return pan[i].TS < pan[j].TS })

	if len(pan) == 0 {
		return []project.TargetPoint{{TS: seg.StartTS, Rect: base}, {TS: seg.EndTS, Rect: base}}
	}

	dx, dy := panOffsetAt(pan, seg.StartTS)
	points := []project.TargetPoint{{TS: seg.StartTS, Rect: base.Offset(dx, dy)}}
	for _, k := range pan {
		if k.TS < seg.StartTS || k.TS > seg.EndTS {
			continue
		}
		points = append(points, project.TargetPoint{TS: k.TS, Rect: base.Offset(k.OffsetX, k.OffsetY)})
	}
	dx, dy = panOffsetAt(pan, seg.EndTS)
	return append(points, project.TargetPoint{TS: seg.EndTS, Rect: base.Offset(dx, dy)})
}

// panOffsetAt interpolates a sorted trajectory linearly. Before the first
// keyframe there is no offset; after the last one it holds.
func panOffsetAt(pan []project.PanKeyframe, ts int64) (float64, float64) {
	if len(pan) == 0 || ts <= pan[0].TS {
		return 0, 0
	}
	last := pan[len(pan)-1]
	if ts >= last.TS {
		return last.OffsetX, last.OffsetY
	}
	for i := 1; i < len(pan); i++ {
		left, right := pan[i-1], pan[i]
		if ts < left.TS || ts > right.TS {
			continue
		}
		span := right.TS - left.TS
		if span == 0 {
			return right.OffsetX, right.OffsetY
		}
		t := float64(ts-left.TS) / float64(span)
		return left.OffsetX + (right.OffsetX-left.OffsetX)*t, left.OffsetY + (right.OffsetY-left.OffsetY)*t
	}
	return last.OffsetX, last.OffsetY
}

// activeSegment returns the last segment covering ts.
func activeSegment(segs []RuntimeSegment, ts int64) (RuntimeSegment, bool) {
	for i := len(segs) - 1; i >= 0; i-- {
		if ts >= segs[i].StartTS && ts < segs[i].EndTS {
			return segs[i], true
		}
	}
	return RuntimeSegment{}, false
}

// TargetRectAt is the rect of the last target point at or before ts.
func (s RuntimeSegment) TargetRectAt(ts int64) project.NormalizedRect {
	if len(s.TargetPoints) == 0 {
		return s.BaseRect
	}
	for i := len(s.TargetPoints) - 1; i >= 0; i-- {
		if ts >= s.TargetPoints[i].TS {
			return s.TargetPoints[i].Rect
		}
	}
	return s.TargetPoints[0].Rect
}
