package director

import (
	"math"
	"sort"

	"github.com/ivlev/autocam/internal/analyzer"
	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/project"
)

const (
	noopZoomEpsilon    = 0.001
	multiClickHoldMs   = 250
	minNormalizedShare = 0.01
)

// FocusTransition is a camera target resolved from one click cluster.
type FocusTransition struct {
	StartTS      int64 // pre-roll adjusted activation time
	TriggerTS    int64 // first click of the cluster
	ClusterEndTS int64 // the lock is held at least until here
	CenterX      float64
	CenterY      float64
	Zoom         float64
	FocusRect    project.NormalizedRect
}

// Resolver turns click clusters into focus transitions.
type Resolver struct {
	geo Geometry
	cfg config.SmartCameraConfig
}

// NewResolver creates a resolver for one recording.
func NewResolver(geo Geometry, cfg config.SmartCameraConfig) *Resolver {
	return &Resolver{geo: geo, cfg: cfg}
}

// Target resolves the center and zoom a cluster should lock onto. Clusters
// with a UI rectangle frame the padded rectangle; others get the fallback
// zoom around the average click position.
func (r *Resolver) Target(c analyzer.FocusCluster) (cx, cy, zoom float64) {
	if c.Bounds == nil {
		return r.fallback(c.AvgX, c.AvgY)
	}
	b := *c.Bounds
	pad := 1 + math.Max(r.cfg.SemanticPaddingRatio, 0)
	w, h := b.Width*pad, b.Height*pad
	if w <= 0 || h <= 0 {
		return r.fallback(c.AvgX, c.AvgY)
	}

	if w/math.Max(h, 1) < r.geo.OutputAspect {
		w = h * r.geo.OutputAspect
	} else {
		h = w / r.geo.OutputAspect
	}

	wn := clamp(w/r.geo.ScreenWidth, minNormalizedShare, 1)
	hn := clamp(h/r.geo.ScreenHeight, minNormalizedShare, 1)
	zoom = r.lockedZoom(1 / math.Max(math.Max(wn, hn), 1e-4))
	cx, cy = r.geo.ClampedCenter(b.CenterX()/r.geo.ScreenWidth, b.CenterY()/r.geo.ScreenHeight, zoom)
	return cx, cy, zoom
}

func (r *Resolver) fallback(x, y float64) (float64, float64, float64) {
	zoom := r.lockedZoom(r.cfg.FallbackZoom)
	cx, cy := r.geo.ClampedCenter(clamp(x/r.geo.ScreenWidth, 0, 1), clamp(y/r.geo.ScreenHeight, 0, 1), zoom)
	return cx, cy, zoom
}

func (r *Resolver) lockedZoom(zoom float64) float64 {
	return lockedZoom(zoom, r.cfg.MaxZoomLimit)
}

func lockedZoom(zoom, limit float64) float64 {
	return math.Min(math.Max(zoom, 1), math.Max(limit, 1))
}

// FocusRect is the area a cluster asks to keep visible.
func (r *Resolver) FocusRect(c analyzer.FocusCluster) project.NormalizedRect {
	if c.Bounds != nil {
		return r.geo.NormalizePixelRect(*c.Bounds)
	}
	return r.geo.NormalizePoint(c.AnchorX, c.AnchorY)
}

// Transitions resolves every cluster, pacing them by min_zoom_interval_ms
// and dropping targets that would not zoom in. The result is ordered by
// StartTS. The second return value counts clusters dropped as no-ops.
func (r *Resolver) Transitions(clusters []analyzer.FocusCluster, vel *analyzer.Velocity) ([]FocusTransition, int) {
	var (
		out       []FocusTransition
		noops     int
		lastStart int64
		havePrev  bool
	)
	interval := max(r.cfg.MinZoomIntervalMs, 1)
	freeRoam := math.Max(r.cfg.FreeRoamZoom, 1)

	for _, c := range clusters {
		start := vel.PrerollStart(c.StartTS, r.cfg.MaxLookaheadMs, r.cfg.VelocityThresholdPxPerMs)
		if havePrev && max(start-lastStart, 0) < interval {
			continue
		}

		cx, cy, zoom := r.Target(c)
		zoom = r.lockedZoom(zoom)
		if zoom <= freeRoam+noopZoomEpsilon {
			noops++
			continue
		}

		hold := c.StartTS + max(r.cfg.MinLockDurationMs, 1)
		if c.ClickCount > 1 {
			hold += multiClickHoldMs
		}
		out = append(out, FocusTransition{
			StartTS:      start,
			TriggerTS:    c.StartTS,
			ClusterEndTS: max(c.EndTS, hold),
			CenterX:      cx,
			CenterY:      cy,
			Zoom:         zoom,
			FocusRect:    r.FocusRect(c),
		})
		lastStart, havePrev = start, true
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTS < out[j].StartTS })
	return out, noops
}
