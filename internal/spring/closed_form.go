package spring

import (
	"fmt"
	"math"
	"strconv"
)

// criticalTolerance is how close the discriminant must be to zero for the
// critically damped solution to be used.
const criticalTolerance = 1e-9

// Regime is the damping class of a spring.
type Regime int

const (
	Critical Regime = iota
	Overdamped
	Underdamped
)

func (r Regime) String() string {
	switch r {
	case Critical:
		return "critical"
	case Overdamped:
		return "overdamped"
	case Underdamped:
		return "underdamped"
	default:
		return "unknown"
	}
}

// Solution holds the coefficients of y(t) = x(t) - target for one start
// state. With alpha = c/2m and omega^2 = k/m:
//
//	critical:    y = (c1 + c2*t) * e^(-alpha*t)
//	overdamped:  y = c1*e^(r1*t) + c2*e^(r2*t)
//	underdamped: y = e^(-alpha*t) * (c1*cos(beta*t) + c2*sin(beta*t))
type Solution struct {
	Regime Regime
	Target float64
	Alpha  float64
	Beta   float64
	R1, R2 float64
	C1, C2 float64
}

// Solve computes the closed-form coefficients for a spring leaving start.
func Solve(start State, target float64, p Params) Solution {
	p = p.Sanitize()
	y0 := start.Value - target
	v0 := start.Velocity
	alpha := p.Damping / (2 * p.Mass)
	omegaSq := p.Stiffness / p.Mass
	disc := alpha*alpha - omegaSq

	s := Solution{Target: target, Alpha: alpha}
	switch {
	case math.Abs(disc) <= criticalTolerance:
		s.Regime = Critical
		s.C1 = y0
		s.C2 = v0 + alpha*y0
	case disc > 0:
		root := math.Sqrt(disc)
		s.Regime = Overdamped
		s.R1 = -alpha + root
		s.R2 = -alpha - root
		s.C1 = (v0 - s.R2*y0) / math.Max(s.R1-s.R2, criticalTolerance)
		s.C2 = y0 - s.C1
	default:
		s.Regime = Underdamped
		s.Beta = math.Sqrt(math.Max(omegaSq-alpha*alpha, criticalTolerance))
		s.C1 = y0
		s.C2 = (v0 + alpha*y0) / s.Beta
	}
	return s
}

// At evaluates position and velocity t seconds after the start state.
func (s Solution) At(t float64) State {
	var y, v float64
	switch s.Regime {
	case Critical:
		e := math.Exp(-s.Alpha * t)
		y = (s.C1 + s.C2*t) * e
		v = (s.C2 - s.Alpha*(s.C1+s.C2*t)) * e
	case Overdamped:
		e1 := math.Exp(s.R1 * t)
		e2 := math.Exp(s.R2 * t)
		y = s.C1*e1 + s.C2*e2
		v = s.C1*s.R1*e1 + s.C2*s.R2*e2
	default:
		e := math.Exp(-s.Alpha * t)
		cos := math.Cos(s.Beta * t)
		sin := math.Sin(s.Beta * t)
		y = e * (s.C1*cos + s.C2*sin)
		v = e * (-s.Alpha*(s.C1*cos+s.C2*sin) + s.Beta*(s.C2*cos-s.C1*sin))
	}
	return State{Value: s.Target + y, Velocity: v}
}

// Expr renders the solution as an arithmetic expression in the variable
// expression elapsed (seconds), using the exp/cos/sin vocabulary of the
// ffmpeg expression evaluator.
func (s Solution) Expr(elapsed string) string {
	t := "(" + elapsed + ")"
	switch s.Regime {
	case Critical:
		return fmt.Sprintf("%s+((%s)+(%s)*%s)*exp(-%s*%s)",
			FormatFloat(s.Target), FormatFloat(s.C1), FormatFloat(s.C2), t, FormatFloat(s.Alpha), t)
	case Overdamped:
		return fmt.Sprintf("%s+(%s)*exp(%s*%s)+(%s)*exp(%s*%s)",
			FormatFloat(s.Target), FormatFloat(s.C1), FormatFloat(s.R1), t, FormatFloat(s.C2), FormatFloat(s.R2), t)
	default:
		return fmt.Sprintf("%s+exp(-%s*%s)*((%s)*cos(%s*%s)+(%s)*sin(%s*%s))",
			FormatFloat(s.Target), FormatFloat(s.Alpha), t,
			FormatFloat(s.C1), FormatFloat(s.Beta), t, FormatFloat(s.C2), FormatFloat(s.Beta), t)
	}
}

// FormatFloat renders v with the fixed precision used in generated
// expressions.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// ValueExpr renders the spring leaving start towards target as an
// expression in elapsed.
func ValueExpr(elapsed string, start State, target float64, p Params) string {
	return Solve(start, target, p).Expr(elapsed)
}
