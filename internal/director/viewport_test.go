package director

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/autocam/internal/analyzer"
	"github.com/ivlev/autocam/internal/project"
)

func TestViewportSize(t *testing.T) {
	tests := []struct {
		name         string
		geo          Geometry
		zoom         float64
		wantW, wantH float64
	}{
		{"same aspect", NewGeometry(1920, 1080, 16.0/9.0), 2, 0.5, 0.5},
		{"below one", NewGeometry(1920, 1080, 16.0/9.0), 0.5, 1, 1},
		{"portrait output", NewGeometry(1920, 1080, 9.0/16.0), 1, 0.31640625, 1},
		{"wide output", NewGeometry(1080, 1080, 2), 2, 0.5, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.geo.ViewportSize(tt.zoom)
			assert.InDelta(t, tt.wantW, w, 1e-9)
			assert.InDelta(t, tt.wantH, h, 1e-9)
		})
	}
}

func TestRectStaysOnScreen(t *testing.T) {
	geo := NewGeometry(1920, 1080, 16.0/9.0)
	r := geo.Rect(0.95, 0.02, 2.5)
	assert.InDelta(t, 0.6, r.X, 1e-9)
	assert.InDelta(t, 0, r.Y, 1e-9)
	assert.InDelta(t, 0.4, r.Width, 1e-9)
	assert.LessOrEqual(t, r.X+r.Width, 1.0)
	assert.LessOrEqual(t, r.Y+r.Height, 1.0)
}

func TestInsetAndContains(t *testing.T) {
	view := project.NormalizedRect{X: 0.3, Y: 0.3, Width: 0.4, Height: 0.4}
	safe := InsetRect(view, 0.15)
	assert.InDelta(t, 0.36, safe.X, 1e-9)
	assert.InDelta(t, 0.28, safe.Width, 1e-9)

	assert.True(t, Contains(safe, project.NormalizedRect{X: 0.4, Y: 0.4, Width: 0.1, Height: 0.1}))
	assert.True(t, Contains(safe, safe))
	assert.False(t, Contains(safe, project.NormalizedRect{X: 0.35, Y: 0.4, Width: 0.1, Height: 0.1}))

	tiny := InsetRect(view, 0.9)
	assert.GreaterOrEqual(t, tiny.Width, 1e-4)
}

func TestNormalizePixelRect(t *testing.T) {
	geo := NewGeometry(1000, 500, 2)
	r := geo.NormalizePixelRect(analyzer.PixelRect{X: -100, Y: 250, Width: 300, Height: 0})
	assert.InDelta(t, 0, r.X, 1e-9)
	assert.InDelta(t, 0.2, r.Width, 1e-9)
	assert.InDelta(t, 0.5, r.Y, 1e-9)
	assert.InDelta(t, 1.0/500, r.Height, 1e-9)

	p := geo.NormalizePoint(1000, 0)
	assert.InDelta(t, 1-1.0/1000, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestDeadZoneAndScrollDelta(t *testing.T) {
	assert.False(t, BreachesDeadZone(0.5, 0.5, 0.4))
	assert.False(t, BreachesDeadZone(0.69, 0.31, 0.4))
	assert.True(t, BreachesDeadZone(0.71, 0.5, 0.4))
	assert.True(t, BreachesDeadZone(0.5, 0.02, 5))

	assert.Equal(t, -1.0, NormalizeScrollDelta(-120))
	assert.Equal(t, 6.0, NormalizeScrollDelta(2400))
	assert.Equal(t, 3.0, NormalizeScrollDelta(3))
	assert.Equal(t, -6.0, NormalizeScrollDelta(-50))
}
