package director

import (
	"math"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/events"
	"github.com/ivlev/autocam/internal/spring"
)

// CameraState is either FreeRoam or LockedFocus.
type CameraState interface {
	isCameraState()
}

// FreeRoam follows the cursor loosely at the free-roam zoom.
type FreeRoam struct{}

// LockedFocus holds the camera on a resolved target until HoldUntilTS plus
// the lock window has passed, or the cursor wanders too far.
type LockedFocus struct {
	CenterX, CenterY float64
	Zoom             float64
	HoldUntilTS      int64
}

func (FreeRoam) isCameraState()    {}
func (LockedFocus) isCameraState() {}

// IsLocked reports whether s is a LockedFocus.
func IsLocked(s CameraState) bool {
	_, ok := s.(LockedFocus)
	return ok
}

// CameraSample is the camera after one simulation tick. Center and Zoom are
// post-spring; the Target fields are what the state machine asked for.
type CameraSample struct {
	TS            int64
	State         CameraState
	CenterX       float64
	CenterY       float64
	Zoom          float64
	TargetCenterX float64
	TargetCenterY float64
	TargetZoom    float64
}

// ScrollSession accumulates one burst of scrolling.
type ScrollSession struct {
	Active  bool
	StartTS int64
	LastTS  int64
	AbsDY   float64
}

// SimulationState is everything the camera carries from one tick to the
// next.
type SimulationState struct {
	State            CameraState
	CursorX, CursorY float64 // pixels
	FreeRoamX        float64
	FreeRoamY        float64
	SpringX, SpringY spring.Spring
	SpringZoom       spring.Spring
	Scroll           ScrollSession
	NextEvent        int
	NextTransition   int
}

// Machine is the immutable input of a simulation: sorted events, resolved
// transitions, geometry and configuration.
type Machine struct {
	geo         Geometry
	cfg         config.SmartCameraConfig
	events      []events.InputEvent
	transitions []FocusTransition
	dtMs        int64
}

// NewMachine prepares a simulation. Events are sorted on a private copy.
func NewMachine(geo Geometry, cfg config.SmartCameraConfig, evs []events.InputEvent, transitions []FocusTransition) *Machine {
	return &Machine{
		geo:         geo,
		cfg:         cfg,
		events:      events.Sorted(evs),
		transitions: transitions,
		dtMs:        max(cfg.FixedDtMs, 1),
	}
}

// Initial is the state before the first tick: free roam, centered, at rest.
func (m *Machine) Initial() SimulationState {
	zoom := math.Max(m.cfg.FreeRoamZoom, 1)
	p := m.cfg.Spring
	return SimulationState{
		State:      FreeRoam{},
		CursorX:    m.geo.ScreenWidth * 0.5,
		CursorY:    m.geo.ScreenHeight * 0.5,
		FreeRoamX:  0.5,
		FreeRoamY:  0.5,
		SpringX:    spring.New(0.5, 0.5, 0, p),
		SpringY:    spring.New(0.5, 0.5, 0, p),
		SpringZoom: spring.New(zoom, zoom, 0, p),
	}
}

// Run ticks from 0 to durationMs inclusive, the last tick clamped to
// durationMs.
func (m *Machine) Run(durationMs int64) []CameraSample {
	if durationMs <= 0 {
		return nil
	}
	samples := make([]CameraSample, 0, durationMs/m.dtMs+2)
	s := m.Initial()
	for ts := int64(0); ; ts = min(ts+m.dtMs, durationMs) {
		var sample CameraSample
		s, sample = m.Step(s, ts)
		samples = append(samples, sample)
		if ts >= durationMs {
			break
		}
	}
	return samples
}

// Step advances the camera to ts. It does not modify s.
func (m *Machine) Step(s SimulationState, ts int64) (SimulationState, CameraSample) {
	s = m.applyEvents(s, ts)
	s = m.applyTransitions(s, ts)

	var tx, ty, tz float64
	s, tx, ty, tz = m.target(s, ts)

	dt := float64(m.dtMs) / 1000
	s.SpringX.Target = tx
	s.SpringY.Target = ty
	s.SpringZoom.Target = math.Max(tz, 1)
	cx := s.SpringX.Tick(dt)
	cy := s.SpringY.Tick(dt)
	cz := math.Max(s.SpringZoom.Tick(dt), 1)

	return s, CameraSample{
		TS:            ts,
		State:         s.State,
		CenterX:       cx,
		CenterY:       cy,
		Zoom:          cz,
		TargetCenterX: tx,
		TargetCenterY: ty,
		TargetZoom:    tz,
	}
}

func (m *Machine) applyEvents(s SimulationState, ts int64) SimulationState {
	idleReset := max(m.cfg.ScrollIdleResetMs, 1)
	forceFreeRoam := false

	for ; s.NextEvent < len(m.events) && m.events[s.NextEvent].TS <= ts; s.NextEvent++ {
		e := m.events[s.NextEvent]
		if e.HasPosition() {
			s.CursorX = clamp(e.X, 0, m.geo.ScreenWidth)
			s.CursorY = clamp(e.Y, 0, m.geo.ScreenHeight)
		}

		if e.Kind != events.KindScroll {
			if s.Scroll.Active && max(e.TS-s.Scroll.LastTS, 0) > idleReset {
				s.Scroll = ScrollSession{}
			}
			continue
		}

		if !s.Scroll.Active || max(e.TS-s.Scroll.LastTS, 0) > idleReset {
			s.Scroll = ScrollSession{Active: true, StartTS: e.TS}
		}
		s.Scroll.AbsDY += math.Abs(e.Delta.DY)
		s.Scroll.LastTS = e.TS

		travel := m.geo.ScreenHeight * math.Max(m.cfg.GlobalScrollViewportTravelRatio, 0)
		if max(e.TS-s.Scroll.StartTS, 0) >= max(m.cfg.GlobalScrollDurationMs, 1) || s.Scroll.AbsDY >= travel {
			forceFreeRoam = true
			s.Scroll = ScrollSession{}
		}

		if lock, ok := s.State.(LockedFocus); ok {
			y := lock.CenterY - NormalizeScrollDelta(e.Delta.DY)*m.cfg.ScrollShiftRatio
			lock.CenterX, lock.CenterY = m.geo.ClampedCenter(lock.CenterX, y, lock.Zoom)
			lock.HoldUntilTS = max(lock.HoldUntilTS, e.TS+idleReset)
			s.State = lock
		}
	}

	if forceFreeRoam {
		s.State = FreeRoam{}
	}
	return s
}

func (m *Machine) applyTransitions(s SimulationState, ts int64) SimulationState {
	for ; s.NextTransition < len(m.transitions) && m.transitions[s.NextTransition].StartTS <= ts; s.NextTransition++ {
		t := m.transitions[s.NextTransition]
		if lock, ok := s.State.(LockedFocus); ok {
			viewport := m.geo.Rect(s.SpringX.Current, s.SpringY.Current, s.SpringZoom.Current)
			if Contains(InsetRect(viewport, m.cfg.SafeZoneMarginRatio), t.FocusRect) {
				lock.HoldUntilTS = max(lock.HoldUntilTS, t.ClusterEndTS, t.TriggerTS)
				s.State = lock
				continue
			}
		}
		s.State = LockedFocus{
			CenterX:     t.CenterX,
			CenterY:     t.CenterY,
			Zoom:        lockedZoom(t.Zoom, m.cfg.MaxZoomLimit),
			HoldUntilTS: max(t.ClusterEndTS, t.TriggerTS),
		}
	}
	return s
}

// target picks this tick's pre-spring center and zoom, escaping the lock or
// panning it toward the cursor when needed.
func (m *Machine) target(s SimulationState, ts int64) (SimulationState, float64, float64, float64) {
	freeRoamZoom := math.Max(m.cfg.FreeRoamZoom, 1)

	switch st := s.State.(type) {
	case LockedFocus:
		dist := math.Hypot(s.CursorX-st.CenterX*m.geo.ScreenWidth, s.CursorY-st.CenterY*m.geo.ScreenHeight)
		escape := m.geo.Diagonal() * math.Max(m.cfg.EscapeDistanceRatio, 0)
		timedOut := ts > st.HoldUntilTS+max(m.cfg.LockRecentWindowMs, 1)
		if timedOut || dist > escape {
			s.State = FreeRoam{}
			return s, s.FreeRoamX, s.FreeRoamY, freeRoamZoom
		}
		st.CenterX, st.CenterY = m.hardEdgePan(st, s.CursorX, s.CursorY)
		s.State = st
		return s, st.CenterX, st.CenterY, lockedZoom(st.Zoom, m.cfg.MaxZoomLimit)
	default:
		nx := clamp(s.CursorX/m.geo.ScreenWidth, 0, 1)
		ny := clamp(s.CursorY/m.geo.ScreenHeight, 0, 1)
		if BreachesDeadZone(nx, ny, m.cfg.DeadZoneRatio) {
			s.FreeRoamX, s.FreeRoamY = m.geo.ClampedCenter(nx, ny, m.cfg.FreeRoamZoom)
		}
		return s, s.FreeRoamX, s.FreeRoamY, freeRoamZoom
	}
}

// hardEdgePan nudges the locked center toward a cursor that left the inner
// part of the viewport, at most hard_edge_pan_speed_px_per_s.
func (m *Machine) hardEdgePan(lock LockedFocus, cursorX, cursorY float64) (float64, float64) {
	nx := clamp(cursorX/m.geo.ScreenWidth, 0, 1)
	ny := clamp(cursorY/m.geo.ScreenHeight, 0, 1)
	viewW, viewH := m.geo.ViewportSize(lockedZoom(lock.Zoom, m.cfg.MaxZoomLimit))

	ratio := clamp(m.cfg.HardEdgeRatio, 0.05, 0.95)
	edgeX := math.Max(viewW*0.5*ratio, 1/m.geo.ScreenWidth)
	edgeY := math.Max(viewH*0.5*ratio, 1/m.geo.ScreenHeight)
	travel := math.Max(m.cfg.HardEdgePanSpeedPxPerS, 0) * float64(m.dtMs) / 1000
	stepX := travel / m.geo.ScreenWidth
	stepY := travel / m.geo.ScreenHeight

	cx, cy := lock.CenterX, lock.CenterY
	if off := nx - cx; math.Abs(off) > edgeX {
		cx += sign(off) * stepX
	}
	if off := ny - cy; math.Abs(off) > edgeY {
		cy += sign(off) * stepY
	}
	return ClampCenter(cx, cy, viewW, viewH)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
