package svm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"github.com/YuminosukeSato/kernelsvm/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matrixGram serves kernel values from a precomputed matrix.
type matrixGram [][]float64

func (m matrixGram) At(a, b int) float64 { return m[a][b] }
func (m matrixGram) Diag(a int) float64  { return m[a][a] }

func rbfGram(x [][]float64, gamma float64) matrixGram {
	g := make(matrixGram, len(x))
	for i := range x {
		g[i] = make([]float64, len(x))
		for j := range x {
			d := 0.0
			for k := range x[i] {
				d += (x[i][k] - x[j][k]) * (x[i][k] - x[j][k])
			}
			g[i][j] = math.Exp(-gamma * d)
		}
	}
	return g
}

// noisyProblem builds an overlapping two-class problem so that many
// variables end up free or at the upper bound.
func noisyProblem(n int, seed int64) (*Problem, matrixGram) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	prob := &Problem{P: make([]float64, n), Y: make([]int8, n), Index: make([]int, n), Cp: 1, Cn: 1}
	for i := 0; i < n; i++ {
		y := int8(1)
		center := 1.0
		if i%2 == 1 {
			y, center = -1, -1
		}
		x[i] = []float64{center + rng.NormFloat64(), rng.NormFloat64()}
		prob.P[i] = -1
		prob.Y[i] = y
		prob.Index[i] = i
	}
	return prob, rbfGram(x, 0.5)
}

func quietSolver(t *testing.T, cfg SolverConfig) *Solver {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger, _ = log.NewTestLogger(log.LevelError)
	}
	s, err := NewSolver(cfg)
	require.NoError(t, err)
	return s
}

func TestSolverTwoPoints(t *testing.T) {
	// x = +1 (class +1) and x = -1 (class -1) under a linear kernel
	gram := matrixGram{{1, -1}, {-1, 1}}
	prob := &Problem{P: []float64{-1, -1}, Y: []int8{1, -1}, Index: []int{0, 1}, Cp: 1, Cn: 1}

	sol, err := quietSolver(t, DefaultSolverConfig()).Solve(prob, gram)
	require.NoError(t, err)
	assert.True(t, sol.Converged)
	assert.InDelta(t, 0.5, sol.Alphas[0], 1e-9)
	assert.InDelta(t, 0.5, sol.Alphas[1], 1e-9)
	assert.InDelta(t, 0.0, sol.Rho, 1e-9)
	assert.InDelta(t, -0.5, sol.Obj, 1e-9)
	assert.Equal(t, 1, sol.Iterations)
	assert.Less(t, sol.Gap, 1e-3)
}

// Identical examples make the two-variable curvature K_ii + K_jj - 2K_ij
// vanish; the step then divides by tau and clipping to the box decides.
func TestSolverZeroCurvature(t *testing.T) {
	tests := []struct {
		name   string
		gram   matrixGram
		prob   *Problem
		alphas []float64
		obj    float64
		rho    float64
	}{
		{
			name:   "same point, opposite labels",
			gram:   matrixGram{{1, 1}, {1, 1}},
			prob:   &Problem{P: []float64{-1, -1}, Y: []int8{1, -1}, Index: []int{0, 1}, Cp: 1, Cn: 1},
			alphas: []float64{1, 1},
			obj:    -2,
			rho:    0,
		},
		{
			name: "duplicate pair among separable points",
			// x = 0, 0, 2, -2 under a linear kernel
			gram: matrixGram{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 4, -4}, {0, 0, -4, 4}},
			prob: &Problem{
				P: []float64{-1, -1, -1, -1}, Y: []int8{1, -1, 1, -1},
				Index: []int{0, 1, 2, 3}, Cp: 1, Cn: 1,
			},
			alphas: []float64{1, 1, 0.125, 0.125},
			obj:    -2.125,
			rho:    0,
		},
		{
			// ε-SVR rows for x = 1 with targets 0 and 1, ε = 0.1: variable j
			// and its mirror j+l share the example, so Q_{j,j+l} = -K_jj
			name: "mirrored regression variables",
			gram: matrixGram{{1, 1}, {1, 1}},
			prob: &Problem{
				P: []float64{0.1, -0.9, 0.1, 1.1}, Y: []int8{1, 1, -1, -1},
				Index: []int{0, 1, 0, 1}, Cp: 1, Cn: 1,
			},
			alphas: []float64{0, 1, 1, 0},
			obj:    -0.8,
			rho:    -0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, shrinking := range []bool{true, false} {
				cfg := DefaultSolverConfig()
				cfg.Shrinking = shrinking
				sol, err := quietSolver(t, cfg).Solve(tt.prob, tt.gram)
				require.NoError(t, err)

				assert.True(t, sol.Converged)
				assert.Less(t, sol.Gap, cfg.Eps)
				assert.InDeltaSlice(t, tt.alphas, sol.Alphas, 1e-9)
				assert.InDelta(t, tt.obj, sol.Obj, 1e-9)
				assert.InDelta(t, tt.rho, sol.Rho, 1e-9)

				sum := 0.0
				for i, a := range sol.Alphas {
					sum += float64(tt.prob.Y[i]) * a
				}
				assert.InDelta(t, 0, sum, 1e-12)
			}
		})
	}
}

func TestSolverFeasibility(t *testing.T) {
	for _, shrinking := range []bool{true, false} {
		prob, gram := noisyProblem(80, 7)
		prob.Cp, prob.Cn = 2, 0.5

		sol, err := quietSolver(t, SolverConfig{Eps: 1e-4, Shrinking: shrinking}).Solve(prob, gram)
		require.NoError(t, err)
		require.True(t, sol.Converged)

		sum := 0.0
		for i, a := range sol.Alphas {
			c := prob.Cn
			if prob.Y[i] > 0 {
				c = prob.Cp
			}
			assert.GreaterOrEqual(t, a, 0.0)
			assert.LessOrEqual(t, a, c+1e-12)
			sum += float64(prob.Y[i]) * a
		}
		assert.InDelta(t, 0, sum, 1e-9)
		assert.Equal(t, 2.0, sol.UpperBoundP)
		assert.Equal(t, 0.5, sol.UpperBoundN)
	}
}

func TestSolverShrinkingSameObjective(t *testing.T) {
	prob, gram := noisyProblem(150, 3)

	withShrink, err := quietSolver(t, SolverConfig{Eps: 1e-5, Shrinking: true}).Solve(prob, gram)
	require.NoError(t, err)
	without, err := quietSolver(t, SolverConfig{Eps: 1e-5, Shrinking: false}).Solve(prob, gram)
	require.NoError(t, err)

	assert.InDelta(t, without.Obj, withShrink.Obj, 1e-4*math.Max(1, math.Abs(without.Obj)))
	assert.InDelta(t, without.Rho, withShrink.Rho, 1e-2)
}

func TestSolverMaxIterations(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	logger, _ := log.NewTestLogger(log.LevelDebug)
	prob, gram := noisyProblem(40, 11)

	sol, err := quietSolver(t, SolverConfig{Eps: 1e-6, Shrinking: true, MaxIter: 3, Logger: logger}).Solve(prob, gram)
	require.NoError(t, err)
	assert.False(t, sol.Converged)
	assert.Equal(t, 3, sol.Iterations)
	assert.Greater(t, sol.Gap, 1e-6)
	assert.Len(t, sol.Alphas, 40)

	require.Len(t, warnings, 1)
	var cw *errors.ConvergenceWarning
	require.True(t, errors.As(warnings[0], &cw))
	assert.Equal(t, 3, cw.Iterations)

	assert.True(t, logger.ContainsMessage("maximum iterations reached"))
	assert.True(t, logger.ContainsField(log.IterationKey, 3.0))
}

func TestSolverRejectsInvalidInput(t *testing.T) {
	_, err := NewSolver(SolverConfig{Eps: 0})
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	s := quietSolver(t, DefaultSolverConfig())
	gram := matrixGram{{1}}
	cases := map[string]*Problem{
		"empty":      {},
		"sign":       {P: []float64{-1}, Y: []int8{0}, Index: []int{0}, Cp: 1, Cn: 1},
		"index size": {P: []float64{-1}, Y: []int8{1}, Index: []int{}, Cp: 1, Cn: 1},
		"C":          {P: []float64{-1}, Y: []int8{1}, Index: []int{0}, Cp: 0, Cn: 1},
	}
	for name, prob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Solve(prob, gram)
			assert.Error(t, err)
		})
	}
}

func TestSolverNumericalInstability(t *testing.T) {
	gram := matrixGram{{math.NaN(), 0}, {0, 1}}
	prob := &Problem{P: []float64{-1, -1}, Y: []int8{1, -1}, Index: []int{0, 1}, Cp: 1, Cn: 1}

	_, err := quietSolver(t, DefaultSolverConfig()).Solve(prob, gram)
	require.Error(t, err)
	var nie *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &nie))
}

func TestVariablesSwapMovesEveryArray(t *testing.T) {
	v := variables{
		alpha:     []float64{1, 2},
		status:    []alphaStatus{lowerBound, free},
		y:         []int8{1, -1},
		g:         []float64{3, 4},
		gBar:      []float64{5, 6},
		qd:        []float64{7, 8},
		p:         []float64{9, 10},
		index:     []int{11, 12},
		activeSet: []int{0, 1},
	}
	v.swap(0, 1)
	assert.Equal(t, []float64{2, 1}, v.alpha)
	assert.Equal(t, []alphaStatus{free, lowerBound}, v.status)
	assert.Equal(t, []int8{-1, 1}, v.y)
	assert.Equal(t, []float64{4, 3}, v.g)
	assert.Equal(t, []float64{6, 5}, v.gBar)
	assert.Equal(t, []float64{8, 7}, v.qd)
	assert.Equal(t, []float64{10, 9}, v.p)
	assert.Equal(t, []int{12, 11}, v.index)
	assert.Equal(t, []int{1, 0}, v.activeSet)
}
