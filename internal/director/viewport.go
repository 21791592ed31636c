package director

import (
	"math"

	"github.com/ivlev/autocam/internal/analyzer"
	"github.com/ivlev/autocam/internal/project"
)

const containsEpsilon = 1e-6

// Geometry maps between screen pixels and normalised viewports for one
// recording.
type Geometry struct {
	ScreenWidth  float64
	ScreenHeight float64
	OutputAspect float64
}

// NewGeometry floors degenerate dimensions and aspect ratios.
func NewGeometry(screenWidth, screenHeight uint32, outputAspect float64) Geometry {
	return Geometry{
		ScreenWidth:  float64(max(screenWidth, 1)),
		ScreenHeight: float64(max(screenHeight, 1)),
		OutputAspect: math.Max(outputAspect, 0.1),
	}
}

// ViewportSize returns the normalised width and height of the viewport that
// shows the screen at zoom with the output aspect ratio.
func (g Geometry) ViewportSize(zoom float64) (float64, float64) {
	zoom = math.Max(zoom, 1)
	screenAspect := g.ScreenWidth / g.ScreenHeight

	w := 1 / zoom
	h := w * screenAspect / g.OutputAspect
	if h > 1 {
		h = 1 / zoom
		w = h * g.OutputAspect / math.Max(screenAspect, 0.1)
	}
	return clamp(w, 0.01, 1), clamp(h, 0.01, 1)
}

// ClampCenter keeps a viewport of the given size inside the screen.
func ClampCenter(cx, cy, viewW, viewH float64) (float64, float64) {
	halfW := clamp(viewW*0.5, 0, 0.5)
	halfH := clamp(viewH*0.5, 0, 0.5)
	return clamp(cx, halfW, 1-halfW), clamp(cy, halfH, 1-halfH)
}

// ClampedCenter clamps a center for a viewport at zoom.
func (g Geometry) ClampedCenter(cx, cy, zoom float64) (float64, float64) {
	w, h := g.ViewportSize(zoom)
	return ClampCenter(cx, cy, w, h)
}

// Rect is the viewport rectangle for a center and zoom.
func (g Geometry) Rect(cx, cy, zoom float64) project.NormalizedRect {
	w, h := g.ViewportSize(zoom)
	cx, cy = ClampCenter(cx, cy, w, h)
	return project.NormalizedRect{
		X:      clamp(cx-w*0.5, 0, 1-w),
		Y:      clamp(cy-h*0.5, 0, 1-h),
		Width:  w,
		Height: h,
	}
}

// NormalizePixelRect converts a pixel rectangle to screen fractions, at
// least one pixel wide and tall.
func (g Geometry) NormalizePixelRect(b analyzer.PixelRect) project.NormalizedRect {
	minW, minH := 1/g.ScreenWidth, 1/g.ScreenHeight
	left := clamp(b.X/g.ScreenWidth, 0, 1)
	top := clamp(b.Y/g.ScreenHeight, 0, 1)
	right := clamp((b.X+b.Width)/g.ScreenWidth, 0, 1)
	bottom := clamp((b.Y+b.Height)/g.ScreenHeight, 0, 1)

	x := math.Min(left, right)
	y := math.Min(top, bottom)
	return project.NormalizedRect{
		X:      x,
		Y:      y,
		Width:  math.Min(math.Max(math.Abs(right-left), minW), 1-x),
		Height: math.Min(math.Max(math.Abs(bottom-top), minH), 1-y),
	}
}

// NormalizePoint returns a one-pixel rectangle around a screen point.
func (g Geometry) NormalizePoint(x, y float64) project.NormalizedRect {
	minW, minH := 1/g.ScreenWidth, 1/g.ScreenHeight
	px := clamp(x/g.ScreenWidth, 0, 1)
	py := clamp(y/g.ScreenHeight, 0, 1)
	return project.NormalizedRect{
		X:      clamp(px-minW*0.5, 0, 1-minW),
		Y:      clamp(py-minH*0.5, 0, 1-minH),
		Width:  minW,
		Height: minH,
	}
}

// Diagonal is the screen diagonal in pixels.
func (g Geometry) Diagonal() float64 {
	return math.Hypot(g.ScreenWidth, g.ScreenHeight)
}

// InsetRect shrinks r by ratio of its size on each side.
func InsetRect(r project.NormalizedRect, ratio float64) project.NormalizedRect {
	ratio = clamp(ratio, 0, 0.49)
	dx := r.Width * ratio
	dy := r.Height * ratio
	w := math.Max(r.Width-dx*2, 1e-4)
	h := math.Max(r.Height-dy*2, 1e-4)
	return project.NormalizedRect{
		X:      clamp(r.X+dx, 0, 1-w),
		Y:      clamp(r.Y+dy, 0, 1-h),
		Width:  w,
		Height: h,
	}
}

// Contains reports whether inner lies inside outer, with a small tolerance.
func Contains(outer, inner project.NormalizedRect) bool {
	return inner.X >= outer.X-containsEpsilon &&
		inner.Y >= outer.Y-containsEpsilon &&
		inner.X+inner.Width <= outer.X+outer.Width+containsEpsilon &&
		inner.Y+inner.Height <= outer.Y+outer.Height+containsEpsilon
}

// BreachesDeadZone reports whether a normalised cursor is outside the
// centered dead zone.
func BreachesDeadZone(nx, ny, ratio float64) bool {
	half := clamp(ratio, 0, 0.95) * 0.5
	return nx < 0.5-half || nx > 0.5+half || ny < 0.5-half || ny > 0.5+half
}

// NormalizeScrollDelta maps wheel deltas to notches. Large values are raw
// wheel units (120 per notch).
func NormalizeScrollDelta(d float64) float64 {
	if math.Abs(d) >= 100 {
		d /= 120
	}
	return clamp(d, -6, 6)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
