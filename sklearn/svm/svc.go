package svm

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/core/model"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
	"github.com/YuminosukeSato/kernelsvm/metrics"
	"gonum.org/v1/gonum/mat"
)

// SVC is a binary C-Support Vector Classifier.
// Compatible with scikit-learn's SVC for two classes.
type SVC struct {
	estimator
}

// NewSVC creates a new classifier.
func NewSVC(opts ...Option) *SVC {
	return &SVC{estimator: newEstimator("SVC", opts)}
}

func (s *SVC) formulation() *classification {
	return &classification{
		c:         s.cfg.c,
		weightPos: s.cfg.weightPos,
		weightNeg: s.cfg.weightNeg,
		fn:        s.cfg.fn,
	}
}

// Learn trains on ds. Targets must take exactly two distinct values; the
// larger one is the positive class.
func (s *SVC) Learn(ds dataset.Dataset) error {
	return s.learn(ds, s.formulation())
}

// Fit trains on the rows of X with labels y (n×1).
func (s *SVC) Fit(X, y mat.Matrix) error {
	ds, err := dataset.NewDense(X, y)
	if err != nil {
		return err
	}
	return s.Learn(ds)
}

// PredictionFunction returns the learned model, or nil before Learn.
func (s *SVC) PredictionFunction() PredictionFunction {
	return s.pf
}

// Solution returns the dual solution of the last Learn.
func (s *SVC) Solution() *Solution { return s.sol }

// Reset clears the learned state.
func (s *SVC) Reset() { s.reset() }

// Validate reports the first invalid hyperparameter as a ValidationError.
// Learn runs the same checks before building the problem.
func (s *SVC) Validate() error { return s.cfg.validate() }

// Duplicate returns an unlearned SVC with the same hyperparameters. Caches
// supplied with WithKernelCache or WithSquaredNormCache are not carried over.
func (s *SVC) Duplicate() *SVC {
	cfg := s.cfg
	cfg.kernelCache = nil
	cfg.normCache = nil
	return &SVC{estimator: estimator{name: s.name, cfg: cfg, state: model.NewStateManager()}}
}

// Classes returns the two labels seen during training, smaller first.
func (s *SVC) Classes() []float64 {
	cf, ok := s.pf.(*ClassifierFunction)
	if !ok {
		return nil
	}
	return []float64{cf.Labels[0], cf.Labels[1]}
}

// Predict returns the predicted label of every row of X.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	examples, err := s.examplesFor("Predict", X)
	if err != nil {
		return nil, err
	}
	return evaluate(examples, s.pf.Value), nil
}

// DecisionFunction returns the signed decision value of every row of X.
func (s *SVC) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	examples, err := s.examplesFor("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	return evaluate(examples, s.pf.(*ClassifierFunction).DecisionValue), nil
}

// Score returns the mean accuracy on X, y.
func (s *SVC) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// GetParams returns the hyperparameters.
func (s *SVC) GetParams() map[string]interface{} { return s.cfg.params() }

// SetParams updates hyperparameters. Nothing changes if any value is invalid.
func (s *SVC) SetParams(params map[string]interface{}) error { return s.cfg.setParams(params) }

func (s *SVC) isClassifier() bool { return true }

func (s *SVC) withSharedCache(c cache.KernelCache) Estimator {
	d := s.Duplicate()
	d.cfg.kernelCache = c
	return d
}
