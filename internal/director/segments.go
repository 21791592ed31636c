package director

import (
	"fmt"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/project"
)

// ExtractSegments turns every maximal locked run of samples into a zoom
// segment. Segment ids are auto-1, auto-2, ... in time order.
func ExtractSegments(samples []CameraSample, geo Geometry, cfg config.SmartCameraConfig) []project.ZoomSegment {
	var out []project.ZoomSegment
	start := -1
	for i, s := range samples {
		switch {
		case IsLocked(s.State) && start < 0:
			start = i
		case !IsLocked(s.State) && start >= 0:
			out = append(out, lockedSegment(samples[start:i], geo, cfg))
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, lockedSegment(samples[start:], geo, cfg))
	}

	for i := range out {
		out[i].ID = fmt.Sprintf("auto-%d", i+1)
	}
	return out
}

func lockedSegment(run []CameraSample, geo Geometry, cfg config.SmartCameraConfig) project.ZoomSegment {
	if len(run) == 0 {
		panic("director: empty locked run")
	}
	first, last := run[0], run[len(run)-1]
	step := max(cfg.SegmentTargetSampleMs, cfg.FixedDtMs, 1)

	var points []project.TargetPoint
	var lastPointTS int64
	for i, s := range run {
		if i == 0 || i == len(run)-1 || s.TS-lastPointTS >= step {
			points = append(points, project.TargetPoint{
				TS:   s.TS,
				Rect: geo.Rect(s.TargetCenterX, s.TargetCenterY, s.TargetZoom),
			})
			lastPointTS = s.TS
		}
	}

	return project.ZoomSegment{
		StartTS:      first.TS,
		EndTS:        max(last.TS, first.TS+1),
		InitialRect:  geo.Rect(first.CenterX, first.CenterY, first.Zoom),
		TargetPoints: points,
		Spring:       cfg.Spring.Sanitize(),
		Mode:         project.ModeFollowCursor,
		Trigger:      project.TriggerAutoClick,
		IsAuto:       true,
	}
}
