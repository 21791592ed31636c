package renderer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/project"
	"github.com/ivlev/autocam/internal/spring"
)

const (
	// MaxStatesForAnalyticExpr bounds the number of spring states rendered
	// in closed form. Larger tracks are sampled instead.
	MaxStatesForAnalyticExpr = 64
	// MaxPointsForExpr bounds the points of a sampled piecewise track.
	MaxPointsForExpr = 480
	// FallbackSampleRateHz is the rate sampled tracks are evaluated at.
	FallbackSampleRateHz = 20
)

// DefaultExportSpring drives the camera between segments.
func DefaultExportSpring() spring.Params {
	return spring.Params{Mass: 1, Stiffness: 170, Damping: 26}
}

// AxisSegment is one axis of a camera state: where the spring starts, how
// fast it is moving and where it is heading.
type AxisSegment struct {
	Start    float64
	Velocity float64
	Target   float64
}

// CameraState is the camera over a frame window [StartFrame, EndFrame).
type CameraState struct {
	StartFrame float64
	EndFrame   float64
	Spring     spring.Params
	Zoom       AxisSegment
	OffsetX    AxisSegment
	OffsetY    AxisSegment
}

// Axis selects one camera value.
type Axis int

const (
	AxisZoom Axis = iota
	AxisOffsetX
	AxisOffsetY
)

func (a Axis) of(st CameraState) AxisSegment {
	switch a {
	case AxisOffsetX:
		return st.OffsetX
	case AxisOffsetY:
		return st.OffsetY
	default:
		return st.Zoom
	}
}

// MapTime maps a project timestamp onto the source timeline.
func MapTime(ts, fromDurationMs, toDurationMs int64) int64 {
	if fromDurationMs <= 0 || toDurationMs <= 0 {
		return 0
	}
	mapped := int64(math.Round(float64(ts) / float64(fromDurationMs) * float64(toDurationMs)))
	return max(0, min(mapped, toDurationMs))
}

func durations(p *project.Project, params config.ExportParams) (projectMs, sourceMs int64) {
	projectMs = params.ProjectDurationMs
	if projectMs <= 0 {
		projectMs = p.DurationMs
	}
	sourceMs = params.SourceDurationMs
	if sourceMs <= 0 {
		sourceMs = projectMs
	}
	return projectMs, sourceMs
}

// Anchors are the timestamps at which the camera may change target: the
// project bounds, every segment bound and every target point.
func Anchors(segs []RuntimeSegment, projectDurationMs int64) []int64 {
	anchors := []int64{0, projectDurationMs}
	for _, s := range segs {
		anchors = append(anchors, s.StartTS, s.EndTS)
		for _, p := range s.TargetPoints {
			anchors = append(anchors, p.TS)
		}
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i] < anchors[j] })

	out := anchors[:0]
	for i, a := range anchors {
		if i > 0 && a == out[len(out)-1] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// BuildCameraStates walks the anchors of a project and chains one spring
// state per window, each starting from where the previous one left off.
func BuildCameraStates(p *project.Project, params config.ExportParams) []CameraState {
	projectMs, sourceMs := durations(p, params)
	fps := math.Max(float64(params.FPS), 1)
	sw, sh := float64(params.SourceWidth), float64(params.SourceHeight)

	segs := RuntimeSegments(p)
	defaultCamera := RectToCamera(project.FullFrame(), sw, sh)
	zoom := spring.State{Value: defaultCamera.Zoom}
	offsetX := spring.State{Value: defaultCamera.OffsetX}
	offsetY := spring.State{Value: defaultCamera.OffsetY}

	anchors := Anchors(segs, projectMs)
	var states []CameraState
	for i := 1; i < len(anchors); i++ {
		startTS, endTS := anchors[i-1], anchors[i]
		if endTS <= startTS {
			continue
		}

		target, sp := defaultCamera, DefaultExportSpring()
		if seg, ok := activeSegment(segs, startTS); ok {
			target = RectToCamera(seg.TargetRectAt(startTS), sw, sh)
			sp = seg.Spring
		}

		startMs := MapTime(startTS, projectMs, sourceMs)
		endMs := MapTime(endTS, projectMs, sourceMs)
		if endMs <= startMs {
			continue
		}
		startFrame := float64(startMs) / 1000 * fps
		endFrame := float64(endMs) / 1000 * fps

		states = append(states, CameraState{
			StartFrame: startFrame,
			EndFrame:   endFrame,
			Spring:     sp,
			Zoom:       AxisSegment{Start: zoom.Value, Velocity: zoom.Velocity, Target: target.Zoom},
			OffsetX:    AxisSegment{Start: offsetX.Value, Velocity: offsetX.Velocity, Target: target.OffsetX},
			OffsetY:    AxisSegment{Start: offsetY.Value, Velocity: offsetY.Velocity, Target: target.OffsetY},
		})

		dt := (endFrame - startFrame) / fps
		zoom = spring.Evaluate(zoom, target.Zoom, sp, dt)
		offsetX = spring.Evaluate(offsetX, target.OffsetX, sp, dt)
		offsetY = spring.Evaluate(offsetY, target.OffsetY, sp, dt)
	}
	return states
}

// ValueExpr renders one axis as an ffmpeg expression. Up to
// MaxStatesForAnalyticExpr states it is a flat sum of closed-form spring
// terms in the frame number n; beyond that it is a sampled piecewise linear
// track in the time t.
func ValueExpr(states []CameraState, axis Axis, defaultValue, fps float64) string {
	ordered := make([]CameraState, len(states))
	copy(ordered, states)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartFrame != ordered[j].StartFrame {
			return ordered[i].StartFrame < ordered[j].StartFrame
		}
		return ordered[i].EndFrame < ordered[j].EndFrame
	})
	fps = math.Max(fps, 1)

	if len(ordered) > MaxStatesForAnalyticExpr {
		points := Decimate(sampleValuePoints(ordered, axis, defaultValue, fps), MaxPointsForExpr)
		var lastTS int64
		if len(points) > 0 {
			lastTS = points[len(points)-1].TS
		}
		return PiecewiseTrackExpr(points, lastTS)
	}

	def := spring.FormatFloat(defaultValue)
	terms := make([]string, 0, len(ordered)+1)
	terms = append(terms, def)
	for _, st := range ordered {
		a := axis.of(st)
		start := spring.FormatFloat(st.StartFrame)
		elapsed := fmt.Sprintf("max(0,(n-%s)/%s)", start, spring.FormatFloat(fps))
		value := spring.ValueExpr(elapsed, spring.State{Value: a.Start, Velocity: a.Velocity}, a.Target, st.Spring)
		terms = append(terms, fmt.Sprintf("if(gte(n,%s)*lt(n,%s),(%s)-(%s),0)",
			start, spring.FormatFloat(st.EndFrame), value, def))
	}
	return strings.Join(terms, "+")
}

// TimedValue is one sample of a piecewise track.
type TimedValue struct {
	TS    int64 // milliseconds
	Value float64
}

func sampleValuePoints(states []CameraState, axis Axis, defaultValue, fps float64) []TimedValue {
	if len(states) == 0 {
		return []TimedValue{{TS: 0, Value: defaultValue}}
	}

	var maxEnd float64
	for _, st := range states {
		maxEnd = math.Max(maxEnd, st.EndFrame)
	}
	maxFrame := math.Max(math.Ceil(maxEnd), 1)
	step := math.Max(fps/FallbackSampleRateHz, 1)

	toMs := func(frame float64) int64 {
		return int64(math.Max(math.Round(frame/fps*1000), 0))
	}

	var points []TimedValue
	for frame := 0.0; frame <= maxFrame; frame += step {
		points = append(points, TimedValue{TS: toMs(frame), Value: SampleAxis(states, frame, fps, axis, defaultValue)})
	}
	if last := toMs(maxFrame); len(points) == 0 || points[len(points)-1].TS != last {
		points = append(points, TimedValue{TS: last, Value: SampleAxis(states, maxFrame, fps, axis, defaultValue)})
	}
	return dedupTimed(points)
}

// dedupTimed sorts by timestamp and keeps the first value per timestamp.
func dedupTimed(points []TimedValue) []TimedValue {
	sorted := make([]TimedValue, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TS < sorted[j].TS })

	out := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p.TS == out[len(out)-1].TS {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Decimate keeps at most maxPoints evenly spread points, always including
// the last one.
func Decimate(points []TimedValue, maxPoints int) []TimedValue {
	if len(points) <= maxPoints || maxPoints < 2 {
		return points
	}
	lastIdx := len(points) - 1
	out := make([]TimedValue, 0, maxPoints+1)
	prev := -1
	for i := range maxPoints {
		idx := i * lastIdx / (maxPoints - 1)
		if idx == prev {
			continue
		}
		out = append(out, points[idx])
		prev = idx
	}
	if out[len(out)-1].TS != points[lastIdx].TS {
		out = append(out, points[lastIdx])
	}
	return out
}

// PiecewiseTrackExpr renders points as a linear track in t (seconds), held
// flat before the first point and after durationMs.
func PiecewiseTrackExpr(points []TimedValue, durationMs int64) string {
	if len(points) == 0 {
		return "0"
	}
	norm := dedupTimed(points)
	if norm[0].TS > 0 {
		norm = append([]TimedValue{{TS: 0, Value: norm[0].Value}}, norm...)
	}
	if last := norm[len(norm)-1]; last.TS < durationMs {
		norm = append(norm, TimedValue{TS: durationMs, Value: last.Value})
	}

	base := spring.FormatFloat(norm[0].Value)
	terms := []string{base}
	for i := 1; i < len(norm); i++ {
		left, right := norm[i-1], norm[i]
		if right.TS <= left.TS {
			continue
		}
		startS := float64(left.TS) / 1000
		span := math.Max(float64(right.TS-left.TS)/1000, 0.0001)
		interp := fmt.Sprintf("(%s+((t-%s)/%s)*(%s))",
			spring.FormatFloat(left.Value), spring.FormatFloat(startS),
			spring.FormatFloat(span), spring.FormatFloat(right.Value-left.Value))
		terms = append(terms, fmt.Sprintf("if(gte(t,%s)*lt(t,%s),(%s)-(%s),0)",
			spring.FormatFloat(startS), spring.FormatFloat(float64(right.TS)/1000), interp, base))
	}
	last := norm[len(norm)-1]
	terms = append(terms, fmt.Sprintf("if(gte(t,%s),(%s)-(%s),0)",
		spring.FormatFloat(float64(last.TS)/1000), spring.FormatFloat(last.Value), base))
	return strings.Join(terms, "+")
}

// CameraExprs are the three axis expressions of an export.
type CameraExprs struct {
	Zoom    string
	OffsetX string
	OffsetY string
	States  int
}

// BuildCameraExprs renders every axis of a project for one export.
func BuildCameraExprs(p *project.Project, params config.ExportParams) CameraExprs {
	states := BuildCameraStates(p, params)
	def := RectToCamera(project.FullFrame(), float64(params.SourceWidth), float64(params.SourceHeight))
	fps := float64(params.FPS)
	return CameraExprs{
		Zoom:    ValueExpr(states, AxisZoom, def.Zoom, fps),
		OffsetX: ValueExpr(states, AxisOffsetX, def.OffsetX, fps),
		OffsetY: ValueExpr(states, AxisOffsetY, def.OffsetY, fps),
		States:  len(states),
	}
}
