package analyzer

import "github.com/ivlev/autocam/internal/events"

// PixelRect is a rectangle in screen pixels.
type PixelRect struct {
	X, Y, Width, Height float64
}

func (r PixelRect) CenterX() float64 { return r.X + r.Width*0.5 }
func (r PixelRect) CenterY() float64 { return r.Y + r.Height*0.5 }

// Union returns the axis-aligned bounding box of both rectangles, never
// thinner than one pixel.
func (r PixelRect) Union(o PixelRect) PixelRect {
	left := min(r.X, o.X)
	top := min(r.Y, o.Y)
	right := max(r.X+r.Width, o.X+o.Width)
	bottom := max(r.Y+r.Height, o.Y+o.Height)
	return PixelRect{X: left, Y: top, Width: max(right-left, 1), Height: max(bottom-top, 1)}
}

func pixelRect(b events.BoundingRect) PixelRect {
	return PixelRect{X: float64(b.X), Y: float64(b.Y), Width: float64(b.Width), Height: float64(b.Height)}
}

// FocusClick is a click that may drive the camera.
type FocusClick struct {
	TS     int64
	X, Y   float64
	Bounds *PixelRect // nil when no UI element was resolved
}

// FocusCluster is a run of gated clicks close enough in time to be treated
// as one camera target.
type FocusCluster struct {
	StartTS, EndTS   int64
	AvgX, AvgY       float64
	AnchorX, AnchorY float64 // last click of the run
	Bounds           *PixelRect
	ClickCount       int
}

// Gate selects the clicks that are allowed to move the camera.
type Gate interface {
	Select(evs []events.InputEvent) []FocusClick
}
