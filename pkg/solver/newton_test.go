package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveLinear(t *testing.T) {
	x, err := Solve(func(dst, x []float64) {
		dst[0] = 2*x[0] + 1
	}, []float64{10}, nil)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, x[0], 1e-9)
}

func TestSolveSqrtTwo(t *testing.T) {
	x, err := Solve(func(dst, x []float64) {
		dst[0] = x[0]*x[0] - 2
	}, []float64{1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, x[0], 1e-8)
}

func TestSolveTwoDimensional(t *testing.T) {
	// Intersection of the circle x^2+y^2=4 with the hyperbola xy=1.
	x, err := Solve(func(dst, x []float64) {
		dst[0] = x[0]*x[0] + x[1]*x[1] - 4
		dst[1] = x[0]*x[1] - 1
	}, []float64{2, 0.5}, nil)
	require.NoError(t, err)

	wantX := math.Sqrt(2 + math.Sqrt(3))
	wantY := 1 / wantX
	assert.InDelta(t, wantX, x[0], 1e-6)
	assert.InDelta(t, wantY, x[1], 1e-6)
}

func TestSolveNonFiniteResidual(t *testing.T) {
	x, err := Solve(func(dst, x []float64) {
		dst[0] = math.Log(x[0])
	}, []float64{-1}, nil)
	require.Error(t, err)
	assert.NotNil(t, x)
}

func TestSolveNoRoot(t *testing.T) {
	// x^2+1 has no real root; the solver must give up rather than spin.
	opt := &Options{MaxIter: 50, AbsTol: 1e-12, RelTol: 1e-6}
	x, err := Solve(func(dst, x []float64) {
		dst[0] = x[0]*x[0] + 1
	}, []float64{3}, opt)
	require.Error(t, err)
	require.Len(t, x, 1)
}

func TestSolveLineSearchFailure(t *testing.T) {
	// Near-flat gradient at the start makes the Newton step enormous, and
	// no backtracked fraction of it improves the residual norm. The solver
	// must report failure instead of accepting the worsened iterate.
	x, err := Solve(func(dst, x []float64) {
		dst[0] = x[0]*x[0] + 1
	}, []float64{0}, nil)
	require.Error(t, err)
	require.Len(t, x, 1)
	assert.Equal(t, 0.0, x[0])
}

func TestSolveRespectsStart(t *testing.T) {
	// Two roots at +/- sqrt(2); Newton stays on the side it starts on.
	neg, err := Solve(func(dst, x []float64) {
		dst[0] = x[0]*x[0] - 2
	}, []float64{-1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, -math.Sqrt2, neg[0], 1e-8)
}
