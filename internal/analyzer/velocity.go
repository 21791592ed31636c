package analyzer

import (
	"math"

	"github.com/ivlev/autocam/internal/events"
)

// MaxSpeedPxPerMs caps pointer speed; faster jumps are window or workspace
// switches, not real motion.
const MaxSpeedPxPerMs = 20.0

// CursorSample is a pointer position at a point in time.
type CursorSample struct {
	TS   int64
	X, Y float64
}

// VelocitySample is the pointer speed between a sample and its predecessor,
// stamped with the later timestamp.
type VelocitySample struct {
	TS    int64
	Speed float64 // px/ms
}

// CursorSamples returns every positioned event as a cursor sample, in
// timestamp order.
func CursorSamples(evs []events.InputEvent) []CursorSample {
	var out []CursorSample
	for _, e := range events.Sorted(evs) {
		if e.HasPosition() {
			out = append(out, CursorSample{TS: e.TS, X: e.X, Y: e.Y})
		}
	}
	return out
}

// VelocitySamples differentiates consecutive cursor samples. Pairs sharing a
// timestamp are skipped.
func VelocitySamples(samples []CursorSample) []VelocitySample {
	if len(samples) < 2 {
		return nil
	}
	out := make([]VelocitySample, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		left, right := samples[i-1], samples[i]
		dt := float64(right.TS - left.TS)
		if dt <= 0 {
			continue
		}
		speed := math.Hypot(right.X-left.X, right.Y-left.Y) / dt
		out = append(out, VelocitySample{TS: right.TS, Speed: clampSpeed(speed)})
	}
	return out
}

func clampSpeed(v float64) float64 {
	return math.Max(0, math.Min(v, MaxSpeedPxPerMs))
}

// Velocity answers speed queries over one recording.
type Velocity struct {
	samples []VelocitySample
}

// NewVelocity builds the velocity profile of an event stream.
func NewVelocity(evs []events.InputEvent) *Velocity {
	return &Velocity{samples: VelocitySamples(CursorSamples(evs))}
}

// Samples returns the velocity samples in timestamp order.
func (v *Velocity) Samples() []VelocitySample {
	return v.samples
}

// Window returns the samples with from <= TS <= to.
func (v *Velocity) Window(from, to int64) []VelocitySample {
	var out []VelocitySample
	for _, s := range v.samples {
		if s.TS > to {
			break
		}
		if s.TS >= from {
			out = append(out, s)
		}
	}
	return out
}

// AverageSpeed is the mean speed over the trailing window ending at ts.
// It is zero when the window holds no samples.
func (v *Velocity) AverageSpeed(ts, windowMs int64) float64 {
	in := v.Window(ts-max(windowMs, 0), ts)
	if len(in) == 0 {
		return 0
	}
	var sum float64
	for _, s := range in {
		sum += s.Speed
	}
	return clampSpeed(sum / float64(len(in)))
}
