package renderer

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/project"
	"github.com/ivlev/autocam/internal/spring"
)

func exportParams(durationMs int64) config.ExportParams {
	return config.ExportParams{
		Width: 1920, Height: 1080, FPS: 30,
		SourceWidth: 1920, SourceHeight: 1080,
		SourceDurationMs: durationMs, ProjectDurationMs: durationMs,
	}
}

func segment(id string, start, end int64, rect project.NormalizedRect) project.ZoomSegment {
	return project.ZoomSegment{
		ID:          id,
		StartTS:     start,
		EndTS:       end,
		InitialRect: rect,
		TargetPoints: []project.TargetPoint{
			{TS: start, Rect: rect},
			{TS: end, Rect: rect},
		},
		Spring: DefaultExportSpring(),
	}
}

func testProject(durationMs int64, segs ...project.ZoomSegment) *project.Project {
	p := project.New("p1", "test", durationMs, 1920, 1080)
	p.Timeline.ZoomSegments = segs
	return p
}

func TestCameraExprsUseClosedFormSprings(t *testing.T) {
	p := testProject(10000, segment("z1", 1000, 2000, project.NormalizedRect{X: 0.4, Y: 0.3, Width: 0.2, Height: 0.2}))

	exprs := BuildCameraExprs(p, exportParams(10000))
	require.Positive(t, exprs.States)

	assert.Contains(t, exprs.Zoom, "exp(")
	assert.Contains(t, exprs.Zoom, "if(gte(n,")
	assert.Contains(t, exprs.OffsetX, "max(0,(n-")
	assert.True(t, strings.HasPrefix(exprs.Zoom, "1.0000+"), exprs.Zoom)
	assert.NotContains(t, exprs.Zoom, "gte(t,")
}

func TestCameraReturnsToFullFrameBetweenSegments(t *testing.T) {
	p := testProject(10000,
		segment("z1", 1000, 2000, project.NormalizedRect{X: 0.4, Y: 0.3, Width: 0.2, Height: 0.2}),
		segment("z2", 4000, 5000, project.NormalizedRect{X: 0.2, Y: 0.2, Width: 0.25, Height: 0.25}),
	)

	states := BuildCameraStates(p, exportParams(10000))

	var gap *CameraState
	for i := range states {
		if math.Abs(states[i].StartFrame-60) < 0.01 {
			gap = &states[i]
		}
	}
	require.NotNil(t, gap, "expected a state starting at frame 60")
	assert.InDelta(t, 1.0, gap.Zoom.Target, 1e-9)
	assert.InDelta(t, 0.0, gap.OffsetX.Target, 1e-9)
	assert.InDelta(t, 0.0, gap.OffsetY.Target, 1e-9)
	assert.Greater(t, gap.Zoom.Start, 1.0, "the gap starts from the zoomed camera")
}

func TestStatesChainContinuously(t *testing.T) {
	p := testProject(6000,
		segment("z1", 1000, 3000, project.NormalizedRect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.3}),
	)
	params := exportParams(6000)
	states := BuildCameraStates(p, params)
	require.GreaterOrEqual(t, len(states), 3)

	fps := float64(params.FPS)
	for i := 1; i < len(states); i++ {
		prev, cur := states[i-1], states[i]
		assert.InDelta(t, prev.EndFrame, cur.StartFrame, 1e-9)
		end := spring.Evaluate(spring.State{Value: prev.Zoom.Start, Velocity: prev.Zoom.Velocity},
			prev.Zoom.Target, prev.Spring, (prev.EndFrame-prev.StartFrame)/fps)
		assert.InDelta(t, end.Value, cur.Zoom.Start, 1e-9)
		assert.InDelta(t, end.Velocity, cur.Zoom.Velocity, 1e-9)
	}
}

func TestCameraAtSettlesOnTarget(t *testing.T) {
	rect := project.NormalizedRect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}
	p := testProject(8000, segment("z1", 0, 8000, rect))
	params := exportParams(8000)
	states := BuildCameraStates(p, params)

	start := CameraAt(states, 0, 30)
	assert.InDelta(t, 1.0, start.Zoom, 1e-9)

	want := RectToCamera(rect, 1920, 1080)
	settled := CameraAt(states, 7*30, 30)
	assert.InDelta(t, want.Zoom, settled.Zoom, 1e-3)
	assert.InDelta(t, want.OffsetX, settled.OffsetX, 0.5)
	assert.InDelta(t, want.OffsetY, settled.OffsetY, 0.5)

	past := CameraAt(states, 10000, 30)
	assert.Equal(t, CameraValues{Zoom: 1}, past)
}

func TestRectToCamera(t *testing.T) {
	full := RectToCamera(project.FullFrame(), 1920, 1080)
	assert.Equal(t, CameraValues{Zoom: 1}, full)

	half := RectToCamera(project.NormalizedRect{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5}, 1920, 1080)
	assert.InDelta(t, 2.0, half.Zoom, 1e-9)
	assert.InDelta(t, 1920.0, half.OffsetX, 1e-9)
	assert.InDelta(t, 1080.0, half.OffsetY, 1e-9)

	tiny := RectToCamera(project.NormalizedRect{Width: 0.00001, Height: 0.00001}, 1920, 1080)
	assert.InDelta(t, 20.0, tiny.Zoom, 1e-9)
}

func TestMapTime(t *testing.T) {
	tests := []struct {
		ts, from, to, want int64
	}{
		{500, 1000, 2000, 1000},
		{1000, 1000, 500, 500},
		{1500, 1000, 500, 500},
		{333, 1000, 1000, 333},
		{10, 0, 1000, 0},
		{10, 1000, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapTime(tt.ts, tt.from, tt.to), "MapTime(%d, %d, %d)", tt.ts, tt.from, tt.to)
	}
}

func TestRetimedProjectScalesFrames(t *testing.T) {
	p := testProject(10000, segment("z1", 1000, 2000, project.NormalizedRect{X: 0.4, Y: 0.3, Width: 0.2, Height: 0.2}))
	params := exportParams(10000)
	params.SourceDurationMs = 5000

	states := BuildCameraStates(p, params)
	require.NotEmpty(t, states)
	assert.InDelta(t, 150.0, states[len(states)-1].EndFrame, 1e-9)
}

func TestManyStatesFallBackToPiecewiseTrack(t *testing.T) {
	seg := project.ZoomSegment{
		ID: "busy", StartTS: 0, EndTS: 10000,
		InitialRect: project.NormalizedRect{X: 0.2, Y: 0.2, Width: 0.4, Height: 0.4},
		Spring:      DefaultExportSpring(),
	}
	for ts := int64(0); ts < 10000; ts += 100 {
		x := 0.1
		if (ts/100)%2 == 1 {
			x = 0.5
		}
		seg.TargetPoints = append(seg.TargetPoints, project.TargetPoint{
			TS: ts, Rect: project.NormalizedRect{X: x, Y: 0.2, Width: 0.4, Height: 0.4},
		})
	}
	p := testProject(10000, seg)

	exprs := BuildCameraExprs(p, exportParams(10000))
	require.Greater(t, exprs.States, MaxStatesForAnalyticExpr)

	assert.Contains(t, exprs.OffsetX, "if(gte(t,")
	assert.NotContains(t, exprs.OffsetX, "gte(n,")
	assert.NotContains(t, exprs.OffsetX, "exp(")
	assert.LessOrEqual(t, strings.Count(exprs.OffsetX, "if(gte(t,"), MaxPointsForExpr+1)
}

func TestDecimateBoundsPoints(t *testing.T) {
	points := make([]TimedValue, 2000)
	for i := range points {
		points[i] = TimedValue{TS: int64(i) * 10, Value: float64(i)}
	}

	out := Decimate(points, MaxPointsForExpr)
	assert.LessOrEqual(t, len(out), MaxPointsForExpr+1)
	assert.Equal(t, points[0], out[0])
	assert.Equal(t, points[len(points)-1], out[len(out)-1])

	short := points[:10]
	assert.Equal(t, short, Decimate(short, MaxPointsForExpr))
}

func TestPiecewiseTrackExpr(t *testing.T) {
	assert.Equal(t, "0", PiecewiseTrackExpr(nil, 0))

	expr := PiecewiseTrackExpr([]TimedValue{{TS: 1000, Value: 2}, {TS: 2000, Value: 4}}, 3000)
	assert.True(t, strings.HasPrefix(expr, "2.0000+"), expr)
	assert.Contains(t, expr, "if(gte(t,1.0000)*lt(t,2.0000),((2.0000+((t-1.0000)/1.0000)*(2.0000)))-(2.0000),0)")
	assert.True(t, strings.HasSuffix(expr, "if(gte(t,3.0000),(4.0000)-(2.0000),0)"), expr)
}

func TestLegacyPanTrajectoryExportsMovingTargets(t *testing.T) {
	seg := project.ZoomSegment{
		ID: "legacy", StartTS: 1000, EndTS: 4000,
		InitialRect: project.NormalizedRect{X: 0.1, Y: 0.1, Width: 0.4, Height: 0.4},
		Spring:      DefaultExportSpring(),
		PanTrajectory: []project.PanKeyframe{
			{TS: 1000, OffsetX: 0},
			{TS: 2500, OffsetX: 0.2},
			{TS: 4000, OffsetX: 0.4},
		},
	}
	p := testProject(6000, seg)

	runtime := RuntimeSegments(p)
	require.Len(t, runtime, 1)
	points := runtime[0].TargetPoints
	require.GreaterOrEqual(t, len(points), 3)
	assert.Equal(t, int64(1000), points[0].TS)
	assert.Equal(t, int64(4000), points[len(points)-1].TS)
	assert.InDelta(t, 0.1, points[0].Rect.X, 1e-9)
	assert.InDelta(t, 0.5, points[len(points)-1].Rect.X, 1e-9)

	targets := map[string]bool{}
	for _, st := range BuildCameraStates(p, exportParams(6000)) {
		if st.StartFrame >= 30 && st.StartFrame < 120 {
			targets[fmt.Sprintf("%.3f", st.OffsetX.Target)] = true
		}
	}
	assert.Greater(t, len(targets), 1, "offset targets should move along the trajectory")
}

func TestLegacySegmentWithoutPanHoldsInitialRect(t *testing.T) {
	rect := project.NormalizedRect{X: 0.3, Y: 0.3, Width: 0.3, Height: 0.3}
	p := testProject(5000, project.ZoomSegment{ID: "hold", StartTS: 1000, EndTS: 2000, InitialRect: rect})

	runtime := RuntimeSegments(p)
	require.Len(t, runtime, 1)
	assert.Equal(t, []project.TargetPoint{{TS: 1000, Rect: rect}, {TS: 2000, Rect: rect}}, runtime[0].TargetPoints)
}

func TestRuntimeSegmentsClampAndNormalize(t *testing.T) {
	p := testProject(3000,
		project.ZoomSegment{ID: "late", StartTS: 3500, EndTS: 4000, InitialRect: project.FullFrame()},
		project.ZoomSegment{
			ID: "tail", StartTS: 2000, EndTS: 5000, InitialRect: project.FullFrame(),
			TargetPoints: []project.TargetPoint{
				{TS: 2500, Rect: project.NormalizedRect{X: 0.9, Y: 0.9, Width: 0.5, Height: 0.5}},
				{TS: 2500, Rect: project.NormalizedRect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5}},
				{TS: 9000, Rect: project.NormalizedRect{X: 0, Y: 0, Width: 2, Height: 2}},
			},
		},
	)

	runtime := RuntimeSegments(p)
	require.Len(t, runtime, 1)
	seg := runtime[0]
	assert.Equal(t, int64(2000), seg.StartTS)
	assert.Equal(t, int64(3000), seg.EndTS)

	require.Len(t, seg.TargetPoints, 3)
	assert.Equal(t, int64(2000), seg.TargetPoints[0].TS)
	assert.InDelta(t, 0.1, seg.TargetPoints[1].Rect.X, 1e-9, "last point per timestamp wins")
	assert.Equal(t, int64(3000), seg.TargetPoints[2].TS)
	assert.Equal(t, project.FullFrame(), seg.TargetPoints[2].Rect)
}

func TestAnchorsAreSortedAndUnique(t *testing.T) {
	segs := []RuntimeSegment{{
		StartTS: 1000, EndTS: 2000,
		TargetPoints: []project.TargetPoint{{TS: 1000}, {TS: 1500}, {TS: 2000}},
	}}
	assert.Equal(t, []int64{0, 1000, 1500, 2000, 5000}, Anchors(segs, 5000))
}
