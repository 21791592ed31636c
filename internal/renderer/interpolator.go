package renderer

import (
	"math"

	"github.com/ivlev/autocam/internal/project"
	"github.com/ivlev/autocam/internal/spring"
)

// CameraValues is the camera as the filter graph sees it: the scale factor
// and the offsets of the scaled frame, in source pixels.
type CameraValues struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64
}

// RectToCamera projects a normalised viewport onto a source frame.
func RectToCamera(r project.NormalizedRect, sourceWidth, sourceHeight float64) CameraValues {
	zoom := clamp(1/math.Max(math.Max(r.Width, r.Height), 1e-4), 1, 20)
	cropW := clamp(sourceWidth/zoom, 32, sourceWidth)
	cropH := clamp(sourceHeight/zoom, 32, sourceHeight)

	cx := (r.X + r.Width/2) * sourceWidth
	cy := (r.Y + r.Height/2) * sourceHeight
	cropX := clamp(cx-cropW/2, 0, math.Max(sourceWidth-cropW, 0))
	cropY := clamp(cy-cropH/2, 0, math.Max(sourceHeight-cropH, 0))

	return CameraValues{
		Zoom:    zoom,
		OffsetX: clamp(cropX*zoom, 0, math.Max(sourceWidth*zoom-sourceWidth, 0)),
		OffsetY: clamp(cropY*zoom, 0, math.Max(sourceHeight*zoom-sourceHeight, 0)),
	}
}

// SampleAxis evaluates one axis at a frame. Frames outside every state get
// defaultValue.
func SampleAxis(states []CameraState, frame, fps float64, axis Axis, defaultValue float64) float64 {
	fps = math.Max(fps, 1)
	for _, st := range states {
		if frame < st.StartFrame || frame >= st.EndFrame {
			continue
		}
		a := axis.of(st)
		elapsed := math.Max((frame-st.StartFrame)/fps, 0)
		return spring.Evaluate(spring.State{Value: a.Start, Velocity: a.Velocity}, a.Target, st.Spring, elapsed).Value
	}
	return defaultValue
}

// CameraAt evaluates every axis at a frame.
func CameraAt(states []CameraState, frame, fps float64) CameraValues {
	return CameraValues{
		Zoom:    SampleAxis(states, frame, fps, AxisZoom, 1),
		OffsetX: SampleAxis(states, frame, fps, AxisOffsetX, 0),
		OffsetY: SampleAxis(states, frame, fps, AxisOffsetY, 0),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
