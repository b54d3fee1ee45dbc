package svm

import (
	"context"
	"math"

	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"github.com/YuminosukeSato/kernelsvm/pkg/log"
)

const (
	// tau replaces a non-positive quadratic coefficient in the two-variable step.
	tau = 1e-12

	minMaxIter = 10_000_000
)

type alphaStatus int8

const (
	lowerBound alphaStatus = iota
	upperBound
	free
)

// Gram は学習データ間のカーネル値をデータセット上の位置で返す
type Gram interface {
	At(a, b int) float64
	Diag(a int) float64
}

// Problem is the dual QP handed to the solver:
//
//	min 1/2 αᵀQα + pᵀα  s.t.  yᵀα = 0,  0 ≤ α_i ≤ C_i
//
// with Q_ij = y_i·y_j·K(Index_i, Index_j) and C_i = Cp when y_i = +1, Cn otherwise.
type Problem struct {
	P     []float64
	Y     []int8
	Index []int
	Cp    float64
	Cn    float64
}

// Size returns the number of solver variables.
func (p *Problem) Size() int { return len(p.P) }

func (p *Problem) validate() error {
	l := len(p.P)
	if l == 0 {
		return errors.NewModelError("Solve", "empty problem", errors.ErrEmptyData)
	}
	if len(p.Y) != l {
		return errors.NewDimensionError("Solve", l, len(p.Y), 0)
	}
	if len(p.Index) != l {
		return errors.NewDimensionError("Solve", l, len(p.Index), 0)
	}
	for _, y := range p.Y {
		if y != 1 && y != -1 {
			return errors.NewValidationError("y", "sign must be +1 or -1", y)
		}
	}
	if p.Cp <= 0 {
		return errors.NewValidationError("Cp", "must be positive", p.Cp)
	}
	if p.Cn <= 0 {
		return errors.NewValidationError("Cn", "must be positive", p.Cn)
	}
	return nil
}

// Solution は双対問題の解
type Solution struct {
	// Alphas are in problem order, regardless of shrinking permutations.
	Alphas     []float64
	Rho        float64
	Obj        float64
	Iterations int
	Converged  bool
	// Gap is the maximal KKT violation when the solver stopped.
	Gap         float64
	UpperBoundP float64
	UpperBoundN float64
}

// SolverConfig configures Solver.
type SolverConfig struct {
	// Eps is the stopping tolerance on the maximal violating pair.
	Eps       float64
	Shrinking bool
	// MaxIter <= 0 selects max(10_000_000, 100·l).
	MaxIter int
	Logger  log.Logger
}

// DefaultSolverConfig returns the libsvm defaults.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{Eps: 1e-3, Shrinking: true}
}

// Solver runs SMO with second-order working set selection. A Solver holds
// no per-problem state and can be reused, but one Solve must finish before
// the next starts on the same Gram.
type Solver struct {
	cfg    SolverConfig
	logger log.Logger
}

// NewSolver validates cfg and builds a solver.
func NewSolver(cfg SolverConfig) (*Solver, error) {
	if cfg.Eps <= 0 || math.IsNaN(cfg.Eps) {
		return nil, errors.NewValidationError("eps", "must be positive", cfg.Eps)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("svm.solver")
	}
	return &Solver{cfg: cfg, logger: logger}, nil
}

// variables bundles every per-slot array. Shrinking permutes slots, so all
// of them must move together through swap.
type variables struct {
	alpha     []float64
	status    []alphaStatus
	y         []int8
	g         []float64
	gBar      []float64
	qd        []float64
	p         []float64
	index     []int
	activeSet []int
}

func (v *variables) swap(i, j int) {
	v.alpha[i], v.alpha[j] = v.alpha[j], v.alpha[i]
	v.status[i], v.status[j] = v.status[j], v.status[i]
	v.y[i], v.y[j] = v.y[j], v.y[i]
	v.g[i], v.g[j] = v.g[j], v.g[i]
	v.gBar[i], v.gBar[j] = v.gBar[j], v.gBar[i]
	v.qd[i], v.qd[j] = v.qd[j], v.qd[i]
	v.p[i], v.p[j] = v.p[j], v.p[i]
	v.index[i], v.index[j] = v.index[j], v.index[i]
	v.activeSet[i], v.activeSet[j] = v.activeSet[j], v.activeSet[i]
}

// smo holds the state of one Solve call.
type smo struct {
	v          variables
	l          int
	activeSize int
	cp, cn     float64
	eps        float64
	unshrink   bool
	gram       Gram
	rowI       []float64
	rowJ       []float64
	logger     log.Logger
}

func (s *smo) c(i int) float64 {
	if s.v.y[i] > 0 {
		return s.cp
	}
	return s.cn
}

func (s *smo) updateStatus(i int) {
	switch {
	case s.v.alpha[i] >= s.c(i):
		s.v.status[i] = upperBound
	case s.v.alpha[i] <= 0:
		s.v.status[i] = lowerBound
	default:
		s.v.status[i] = free
	}
}

func (s *smo) isUpper(i int) bool { return s.v.status[i] == upperBound }
func (s *smo) isLower(i int) bool { return s.v.status[i] == lowerBound }
func (s *smo) isFree(i int) bool  { return s.v.status[i] == free }

// row fills dst[k] = Q(i, k) for the first len(dst) slots.
func (s *smo) row(i int, dst []float64) []float64 {
	yi := float64(s.v.y[i])
	a := s.v.index[i]
	for k := range dst {
		dst[k] = yi * float64(s.v.y[k]) * s.gram.At(a, s.v.index[k])
	}
	return dst
}

// Solve runs SMO on prob. Reaching the iteration budget is not an error: the
// best solution so far is returned with Converged=false and a warning.
func (sv *Solver) Solve(prob *Problem, gram Gram) (*Solution, error) {
	if err := prob.validate(); err != nil {
		return nil, err
	}
	l := prob.Size()
	s := &smo{
		l:          l,
		activeSize: l,
		cp:         prob.Cp,
		cn:         prob.Cn,
		eps:        sv.cfg.Eps,
		gram:       gram,
		rowI:       make([]float64, l),
		rowJ:       make([]float64, l),
		logger:     sv.logger,
	}
	s.v = variables{
		alpha:     make([]float64, l),
		status:    make([]alphaStatus, l),
		y:         append([]int8(nil), prob.Y...),
		g:         make([]float64, l),
		gBar:      make([]float64, l),
		qd:        make([]float64, l),
		p:         append([]float64(nil), prob.P...),
		index:     append([]int(nil), prob.Index...),
		activeSet: make([]int, l),
	}
	for i := 0; i < l; i++ {
		s.v.activeSet[i] = i
		s.v.qd[i] = gram.Diag(s.v.index[i])
		s.updateStatus(i)
		// all alphas start at zero, so the gradient is p and G_bar is zero
		s.v.g[i] = s.v.p[i]
	}

	maxIter := sv.cfg.MaxIter
	if maxIter <= 0 {
		maxIter = minMaxIter
		if l <= math.MaxInt32/100 && 100*l > maxIter {
			maxIter = 100 * l
		}
	}
	shrinkEvery := l
	if shrinkEvery > 1000 {
		shrinkEvery = 1000
	}
	counter := shrinkEvery + 1

	iter := 0
	converged := false
	gap := math.Inf(1)
	for iter < maxIter {
		if counter--; counter == 0 {
			counter = shrinkEvery
			if sv.cfg.Shrinking {
				s.shrink()
			}
		}

		i, j, g, done := s.selectWorkingSet()
		gap = g
		if done {
			s.reconstructGradient()
			s.activeSize = l
			i, j, g, done = s.selectWorkingSet()
			gap = g
			if done {
				converged = true
				break
			}
			counter = 1
		}
		if j == -1 {
			// only NaN curvature or gradients leave a violating i without a partner
			return nil, errors.NewNumericalInstabilityError("SMO.selectWorkingSet", []float64{gap}, iter)
		}

		iter++
		if err := s.step(i, j, iter); err != nil {
			return nil, err
		}
	}

	if !converged {
		if s.activeSize < l {
			s.reconstructGradient()
			s.activeSize = l
		}
		_, _, gap, _ = s.selectWorkingSet()
		errors.Warn(errors.NewConvergenceWarning("SMO", iter,
			"reached the maximum number of iterations; the solution may be inaccurate"))
		s.logger.Warn("maximum iterations reached",
			log.IterationKey, iter,
			log.GapKey, gap,
			log.ErrorCodeKey, log.ErrorConvergence,
		)
	}

	sol := &Solution{
		Alphas:      make([]float64, l),
		Rho:         s.calculateRho(),
		Iterations:  iter,
		Converged:   converged,
		Gap:         gap,
		UpperBoundP: prob.Cp,
		UpperBoundN: prob.Cn,
	}
	obj := 0.0
	for i := 0; i < l; i++ {
		obj += s.v.alpha[i] * (s.v.g[i] + s.v.p[i])
		sol.Alphas[s.v.activeSet[i]] = s.v.alpha[i]
	}
	sol.Obj = obj / 2

	if s.logger.Enabled(context.Background(), log.LevelInfo) {
		s.logger.Info("optimization finished",
			log.IterationKey, iter,
			log.GapKey, gap,
			log.ObjectiveKey, sol.Obj,
			log.RhoKey, sol.Rho,
		)
	}
	return sol, nil
}

// step optimizes the pair (i, j) analytically and refreshes G and G_bar.
func (s *smo) step(i, j, iter int) error {
	v := &s.v
	qi := s.row(i, s.rowI[:s.activeSize])
	qj := s.row(j, s.rowJ[:s.activeSize])

	ci, cj := s.c(i), s.c(j)
	oldAi, oldAj := v.alpha[i], v.alpha[j]

	if v.y[i] != v.y[j] {
		quad := v.qd[i] + v.qd[j] + 2*qi[j]
		if quad <= 0 {
			quad = tau
		}
		delta := (-v.g[i] - v.g[j]) / quad
		diff := v.alpha[i] - v.alpha[j]
		v.alpha[i] += delta
		v.alpha[j] += delta

		if diff > 0 {
			if v.alpha[j] < 0 {
				v.alpha[j] = 0
				v.alpha[i] = diff
			}
		} else if v.alpha[i] < 0 {
			v.alpha[i] = 0
			v.alpha[j] = -diff
		}
		if diff > ci-cj {
			if v.alpha[i] > ci {
				v.alpha[i] = ci
				v.alpha[j] = ci - diff
			}
		} else if v.alpha[j] > cj {
			v.alpha[j] = cj
			v.alpha[i] = cj + diff
		}
	} else {
		quad := v.qd[i] + v.qd[j] - 2*qi[j]
		if quad <= 0 {
			quad = tau
		}
		delta := (v.g[i] - v.g[j]) / quad
		sum := v.alpha[i] + v.alpha[j]
		v.alpha[i] -= delta
		v.alpha[j] += delta

		if sum > ci {
			if v.alpha[i] > ci {
				v.alpha[i] = ci
				v.alpha[j] = sum - ci
			}
		} else if v.alpha[j] < 0 {
			v.alpha[j] = 0
			v.alpha[i] = sum
		}
		if sum > cj {
			if v.alpha[j] > cj {
				v.alpha[j] = cj
				v.alpha[i] = sum - cj
			}
		} else if v.alpha[i] < 0 {
			v.alpha[i] = 0
			v.alpha[j] = sum
		}
	}

	dAi := v.alpha[i] - oldAi
	dAj := v.alpha[j] - oldAj
	for k := 0; k < s.activeSize; k++ {
		v.g[k] += qi[k]*dAi + qj[k]*dAj
	}
	if err := errors.CheckScalar("SMO.step", v.g[i], iter); err != nil {
		return err
	}
	if err := errors.CheckScalar("SMO.step", v.g[j], iter); err != nil {
		return err
	}

	// G_bar tracks the gradient contribution of variables at their upper bound
	ui, uj := s.isUpper(i), s.isUpper(j)
	s.updateStatus(i)
	s.updateStatus(j)
	if ui != s.isUpper(i) {
		s.addToGBar(i, ci, ui)
	}
	if uj != s.isUpper(j) {
		s.addToGBar(j, cj, uj)
	}
	return nil
}

func (s *smo) addToGBar(i int, c float64, wasUpper bool) {
	q := s.row(i, s.rowI[:s.l])
	if wasUpper {
		c = -c
	}
	for k := 0; k < s.l; k++ {
		s.v.gBar[k] += c * q[k]
	}
}

// selectWorkingSet picks the maximal violating i and the j with the largest
// second-order decrease. A later slot replaces the current best on ties.
// done reports that the gap is below eps; j is -1 when no partner exists.
func (s *smo) selectWorkingSet() (i, j int, gap float64, done bool) {
	v := &s.v
	gmax := math.Inf(-1)
	gmax2 := math.Inf(-1)
	i, j = -1, -1
	objDiffMin := math.Inf(1)

	for t := 0; t < s.activeSize; t++ {
		if v.y[t] == +1 {
			if !s.isUpper(t) && -v.g[t] >= gmax {
				gmax = -v.g[t]
				i = t
			}
		} else if !s.isLower(t) && v.g[t] >= gmax {
			gmax = v.g[t]
			i = t
		}
	}

	var qi []float64
	if i != -1 {
		qi = s.row(i, s.rowI[:s.activeSize])
	}

	for t := 0; t < s.activeSize; t++ {
		var gradDiff, quad float64
		if v.y[t] == +1 {
			if s.isLower(t) {
				continue
			}
			if v.g[t] >= gmax2 {
				gmax2 = v.g[t]
			}
			gradDiff = gmax + v.g[t]
			if gradDiff <= 0 {
				continue
			}
			quad = v.qd[i] + v.qd[t] - 2*float64(v.y[i])*qi[t]
		} else {
			if s.isUpper(t) {
				continue
			}
			if -v.g[t] >= gmax2 {
				gmax2 = -v.g[t]
			}
			gradDiff = gmax - v.g[t]
			if gradDiff <= 0 {
				continue
			}
			quad = v.qd[i] + v.qd[t] + 2*float64(v.y[i])*qi[t]
		}
		if quad <= 0 {
			quad = tau
		}
		if objDiff := -(gradDiff * gradDiff) / quad; objDiff <= objDiffMin {
			j = t
			objDiffMin = objDiff
		}
	}

	gap = gmax + gmax2
	return i, j, gap, gap < s.eps
}

func (s *smo) beShrunk(i int, gmax1, gmax2 float64) bool {
	v := &s.v
	switch {
	case s.isUpper(i):
		if v.y[i] == +1 {
			return -v.g[i] > gmax1
		}
		return -v.g[i] > gmax2
	case s.isLower(i):
		if v.y[i] == +1 {
			return v.g[i] > gmax2
		}
		return v.g[i] > gmax1
	default:
		return false
	}
}

// shrink moves variables that cannot change any more behind activeSize.
// Once the gap falls under 10·eps, the full gradient is rebuilt and every
// variable is made active again, exactly once per Solve.
func (s *smo) shrink() {
	v := &s.v
	gmax1 := math.Inf(-1) // max { -y_i·G_i | i in I_up }
	gmax2 := math.Inf(-1) // max {  y_i·G_i | i in I_low }
	for i := 0; i < s.activeSize; i++ {
		if v.y[i] == +1 {
			if !s.isUpper(i) && -v.g[i] >= gmax1 {
				gmax1 = -v.g[i]
			}
			if !s.isLower(i) && v.g[i] >= gmax2 {
				gmax2 = v.g[i]
			}
		} else {
			if !s.isUpper(i) && -v.g[i] >= gmax2 {
				gmax2 = -v.g[i]
			}
			if !s.isLower(i) && v.g[i] >= gmax1 {
				gmax1 = v.g[i]
			}
		}
	}

	if !s.unshrink && gmax1+gmax2 <= s.eps*10 {
		s.unshrink = true
		s.reconstructGradient()
		s.activeSize = s.l
		s.logger.Debug("unshrink", log.ActiveSizeKey, s.l)
	}

	before := s.activeSize
	for i := 0; i < s.activeSize; i++ {
		if !s.beShrunk(i, gmax1, gmax2) {
			continue
		}
		s.activeSize--
		for s.activeSize > i {
			if !s.beShrunk(s.activeSize, gmax1, gmax2) {
				v.swap(i, s.activeSize)
				break
			}
			s.activeSize--
		}
	}
	if s.activeSize != before {
		s.logger.Debug("shrink", log.ActiveSizeKey, s.activeSize)
	}
}

// reconstructGradient rebuilds G for inactive slots from G_bar and the free
// active variables.
func (s *smo) reconstructGradient() {
	if s.activeSize == s.l {
		return
	}
	v := &s.v
	for j := s.activeSize; j < s.l; j++ {
		v.g[j] = v.gBar[j] + v.p[j]
	}
	nFree := 0
	for j := 0; j < s.activeSize; j++ {
		if s.isFree(j) {
			nFree++
		}
	}

	if nFree*s.l > 2*s.activeSize*(s.l-s.activeSize) {
		for i := s.activeSize; i < s.l; i++ {
			q := s.row(i, s.rowI[:s.activeSize])
			for j := 0; j < s.activeSize; j++ {
				if s.isFree(j) {
					v.g[i] += v.alpha[j] * q[j]
				}
			}
		}
		return
	}
	for i := 0; i < s.activeSize; i++ {
		if !s.isFree(i) {
			continue
		}
		q := s.row(i, s.rowI[:s.l])
		for j := s.activeSize; j < s.l; j++ {
			v.g[j] += v.alpha[i] * q[j]
		}
	}
}

// calculateRho averages y_i·G_i over free variables, or takes the midpoint
// of the feasible interval when none is free.
func (s *smo) calculateRho() float64 {
	v := &s.v
	nFree := 0
	sumFree := 0.0
	ub := math.Inf(1)
	lb := math.Inf(-1)
	for i := 0; i < s.activeSize; i++ {
		yG := float64(v.y[i]) * v.g[i]
		switch {
		case s.isLower(i):
			if v.y[i] > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case s.isUpper(i):
			if v.y[i] < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
