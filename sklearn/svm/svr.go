package svm

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/core/model"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
	"github.com/YuminosukeSato/kernelsvm/metrics"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SVR is ε-Support Vector Regression.
// Compatible with scikit-learn's SVR.
type SVR struct {
	estimator
}

// NewSVR creates a new regressor.
func NewSVR(opts ...Option) *SVR {
	return &SVR{estimator: newEstimator("SVR", opts)}
}

func (s *SVR) formulation() *regression {
	return &regression{c: s.cfg.c, epsilon: s.cfg.epsilon, fn: s.cfg.fn}
}

// Learn trains on ds using each example's regression value as target.
func (s *SVR) Learn(ds dataset.Dataset) error {
	return s.learn(ds, s.formulation())
}

// Fit trains on the rows of X with targets y (n×1).
func (s *SVR) Fit(X, y mat.Matrix) error {
	ds, err := dataset.NewDense(X, y)
	if err != nil {
		return err
	}
	return s.Learn(ds)
}

// PredictionFunction returns the learned model, or nil before Learn.
func (s *SVR) PredictionFunction() PredictionFunction {
	return s.pf
}

// Solution returns the dual solution of the last Learn. Alphas has 2·l
// entries: α_j then α*_j.
func (s *SVR) Solution() *Solution { return s.sol }

// Reset clears the learned state.
func (s *SVR) Reset() { s.reset() }

// Validate reports the first invalid hyperparameter as a ValidationError.
// Learn runs the same checks before building the problem.
func (s *SVR) Validate() error { return s.cfg.validate() }

// Duplicate returns an unlearned SVR with the same hyperparameters. Caches
// supplied with WithKernelCache or WithSquaredNormCache are not carried over.
func (s *SVR) Duplicate() *SVR {
	cfg := s.cfg
	cfg.kernelCache = nil
	cfg.normCache = nil
	return &SVR{estimator: estimator{name: s.name, cfg: cfg, state: model.NewStateManager()}}
}

// Predict returns the predicted value of every row of X.
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	examples, err := s.examplesFor("Predict", X)
	if err != nil {
		return nil, err
	}
	return evaluate(examples, s.pf.Value), nil
}

// Score returns R² on X, y. When y has no variance R² is undefined: an
// UndefinedMetricWarning is emitted and 0 is returned.
func (s *SVR) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	rows, cols := y.Dims()
	if cols != 1 {
		return 0, errors.NewDimensionError("SVR.Score", 1, cols, 1)
	}
	if predRows, _ := pred.Dims(); predRows != rows {
		return 0, errors.NewDimensionError("SVR.Score", predRows, rows, 0)
	}
	truth := mat.Col(nil, 0, y)
	if floats.Max(truth) == floats.Min(truth) {
		errors.Warn(errors.NewUndefinedMetricWarning("r2", "y has no variance", 0))
		return 0, nil
	}
	return metrics.R2Score(mat.NewVecDense(rows, truth), mat.NewVecDense(rows, mat.Col(nil, 0, pred)))
}

// GetParams returns the hyperparameters.
func (s *SVR) GetParams() map[string]interface{} { return s.cfg.params() }

// SetParams updates hyperparameters. Nothing changes if any value is invalid.
func (s *SVR) SetParams(params map[string]interface{}) error { return s.cfg.setParams(params) }

func (s *SVR) isClassifier() bool { return false }

func (s *SVR) withSharedCache(c cache.KernelCache) Estimator {
	d := s.Duplicate()
	d.cfg.kernelCache = c
	return d
}
