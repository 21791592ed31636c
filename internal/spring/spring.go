// Package spring implements the mass-spring-damper used to smooth every
// camera axis. The same model is evaluated two ways: Spring.Tick advances it
// by one fixed step for the live simulation, and Solve/Evaluate give the
// closed-form position at any elapsed time for export. Both share Params and
// its floors so that the two trajectories agree.
package spring

import "math"

const (
	minMass      = 1e-4
	minStiffness = 1e-4
	minStep      = 1e-6
)

// Params describes one spring. Zero or negative mass and stiffness are
// floored to small positive values, negative damping to zero.
type Params struct {
	Mass      float64 `json:"mass" yaml:"mass" mapstructure:"mass"`
	Stiffness float64 `json:"stiffness" yaml:"stiffness" mapstructure:"stiffness"`
	Damping   float64 `json:"damping" yaml:"damping" mapstructure:"damping"`
}

// DefaultParams is a critically damped spring with stiffness 170 and unit mass.
func DefaultParams() Params {
	return Params{Mass: 1, Stiffness: 170, Damping: CriticalDamping(170, 1)}
}

// CriticalDamping returns 2*sqrt(k*m) for the floored stiffness and mass.
func CriticalDamping(stiffness, mass float64) float64 {
	return 2 * math.Sqrt(math.Max(stiffness, minStiffness)*math.Max(mass, minMass))
}

// Sanitize applies the parameter floors.
func (p Params) Sanitize() Params {
	return Params{
		Mass:      math.Max(p.Mass, minMass),
		Stiffness: math.Max(p.Stiffness, minStiffness),
		Damping:   math.Max(p.Damping, 0),
	}
}

// Spring is a single scalar spring advanced by fixed steps.
type Spring struct {
	Current  float64
	Target   float64
	Velocity float64
	params   Params
}

// New creates a spring at rest or in motion.
func New(current, target, velocity float64, p Params) Spring {
	return Spring{Current: current, Target: target, Velocity: velocity, params: p.Sanitize()}
}

// Params returns the floored parameters of s.
func (s *Spring) Params() Params {
	return s.params
}

// Tick advances the spring by dt seconds with a semi-implicit Euler step and
// returns the new position.
func (s *Spring) Tick(dt float64) float64 {
	dt = math.Max(dt, minStep)
	p := s.params
	accel := (p.Stiffness*(s.Target-s.Current) - p.Damping*s.Velocity) / p.Mass
	s.Velocity += accel * dt
	s.Current += s.Velocity * dt
	return s.Current
}

// State is a position and velocity pair.
type State struct {
	Value    float64
	Velocity float64
}

// Evaluate returns the closed-form state reached from start after t seconds
// while pulled towards target. Non-positive t returns start unchanged.
func Evaluate(start State, target float64, p Params, t float64) State {
	if t <= 0 {
		return start
	}
	return Solve(start, target, p).At(t)
}
