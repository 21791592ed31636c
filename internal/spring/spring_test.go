package spring

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var regimes = []struct {
	name   string
	params Params
	want   Regime
}{
	{"critical", DefaultParams(), Critical},
	{"overdamped", Params{Mass: 1, Stiffness: 100, Damping: 40}, Overdamped},
	{"underdamped", Params{Mass: 1, Stiffness: 170, Damping: 8}, Underdamped},
}

func TestTickConvergesToTarget(t *testing.T) {
	s := New(0, 1, 0, Params{Mass: 1, Stiffness: 170, Damping: CriticalDamping(170, 1)})
	for i := 0; i < 240; i++ {
		s.Tick(1.0 / 120.0)
	}
	assert.InDelta(t, 1.0, s.Current, 0.01)
}

func TestClosedFormConverges(t *testing.T) {
	for _, tt := range regimes {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(State{Value: 0, Velocity: 0}, 1, tt.params, 4)
			assert.InDelta(t, 1.0, got.Value, 0.01)
			assert.InDelta(t, 0.0, got.Velocity, 0.05)
		})
	}
}

func TestSolveClassifiesRegime(t *testing.T) {
	for _, tt := range regimes {
		t.Run(tt.name, func(t *testing.T) {
			sol := Solve(State{Value: 2}, 1, tt.params)
			assert.Equal(t, tt.want, sol.Regime, "regime %s", sol.Regime)
		})
	}
}

func TestSolutionStartsAtInitialState(t *testing.T) {
	start := State{Value: 0.3, Velocity: -1.5}
	for _, tt := range regimes {
		t.Run(tt.name, func(t *testing.T) {
			got := Solve(start, 0.8, tt.params).At(0)
			assert.InDelta(t, start.Value, got.Value, 1e-9)
			assert.InDelta(t, start.Velocity, got.Velocity, 1e-9)
		})
	}
}

// numericAt integrates the spring with fixed steps of dt up to elapsed t.
func numericAt(start State, target float64, p Params, elapsed, dt float64) State {
	s := New(start.Value, target, start.Velocity, p)
	steps := int(math.Round(elapsed / dt))
	for i := 0; i < steps; i++ {
		s.Tick(dt)
	}
	return State{Value: s.Current, Velocity: s.Velocity}
}

func TestNumericAndClosedFormAgree(t *testing.T) {
	start := State{Value: 0, Velocity: 0.5}
	const target, elapsed = 1.0, 0.5

	for _, tt := range regimes {
		t.Run(tt.name, func(t *testing.T) {
			exact := Evaluate(start, target, tt.params, elapsed)

			coarse := numericAt(start, target, tt.params, elapsed, 1e-3)
			fine := numericAt(start, target, tt.params, elapsed, 1e-4)

			coarseErr := math.Abs(coarse.Value - exact.Value)
			fineErr := math.Abs(fine.Value - exact.Value)

			assert.Less(t, fineErr, 2e-3)
			assert.Less(t, fineErr, coarseErr+1e-12, "error should shrink with the step size")
		})
	}
}

func TestEvaluateNonPositiveElapsedReturnsStart(t *testing.T) {
	start := State{Value: 4, Velocity: 2}
	assert.Equal(t, start, Evaluate(start, 1, DefaultParams(), 0))
	assert.Equal(t, start, Evaluate(start, 1, DefaultParams(), -3))
}

func TestDegenerateParamsAreFloored(t *testing.T) {
	p := Params{Mass: 0, Stiffness: 0, Damping: -5}.Sanitize()
	assert.Greater(t, p.Mass, 0.0)
	assert.Greater(t, p.Stiffness, 0.0)
	assert.Equal(t, 0.0, p.Damping)

	s := New(0, 1, 0, Params{})
	for i := 0; i < 100; i++ {
		v := s.Tick(0.008)
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}

	got := Evaluate(State{}, 1, Params{}, 1)
	assert.False(t, math.IsNaN(got.Value))
}

func TestExprMatchesRegime(t *testing.T) {
	crit := Solve(State{Value: 1}, 2, DefaultParams()).Expr("t")
	assert.Contains(t, crit, "exp(-")
	assert.NotContains(t, crit, "cos(")

	under := Solve(State{Value: 1}, 2, regimes[2].params).Expr("t")
	assert.Contains(t, under, "cos(")
	assert.Contains(t, under, "sin(")

	over := Solve(State{Value: 1}, 2, regimes[1].params).Expr("t")
	assert.Equal(t, 2, strings.Count(over, "exp("))
}

func TestValueExprCriticalForm(t *testing.T) {
	got := ValueExpr("t", State{Value: 1}, 2, DefaultParams())
	assert.Equal(t, "2.0000+((-1.0000)+(-13.0384)*(t))*exp(-13.0384*(t))", got)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.5000", FormatFloat(1.5))
	assert.Equal(t, "-0.1235", FormatFloat(-0.12346))
}
