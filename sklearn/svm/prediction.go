package svm

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/core/model"
	"github.com/YuminosukeSato/kernelsvm/kernel"
)

// Registry tags of the prediction functions in this package.
const (
	ClassifierTag = "svm.classifier"
	RegressorTag  = "svm.regressor"
)

// PredictionFunction は学習済みモデルの予測関数
type PredictionFunction interface {
	model.Tagged
	// Value returns the prediction for e: a class label for classifiers,
	// a real value for regressors.
	Value(e dataset.Example) float64
}

// ClassifierFunction is the decision function of a trained SVC:
//
//	f(x) = Σ Coef_i·K(SV_i, x) - Rho
//
// with Coef_i = y_i·α_i. f(x) > 0 predicts Labels[1].
type ClassifierFunction struct {
	Kernel         kernel.Function
	SupportVectors []dataset.Example
	Coef           []float64
	Rho            float64
	Labels         [2]float64
}

// Tag implements model.Tagged.
func (*ClassifierFunction) Tag() string { return ClassifierTag }

// DecisionValue returns f(e).
func (f *ClassifierFunction) DecisionValue(e dataset.Example) float64 {
	sum := 0.0
	for i, sv := range f.SupportVectors {
		sum += f.Coef[i] * f.Kernel.Evaluate(sv, e)
	}
	return sum - f.Rho
}

// Value implements PredictionFunction.
func (f *ClassifierFunction) Value(e dataset.Example) float64 {
	if f.DecisionValue(e) > 0 {
		return f.Labels[1]
	}
	return f.Labels[0]
}

// RegressorFunction is the model of a trained SVR:
//
//	f(x) = Σ Weights_i·K(SV_i, x) + Bias
type RegressorFunction struct {
	Kernel         kernel.Function
	SupportVectors []dataset.Example
	Weights        []float64
	Bias           float64
}

// Tag implements model.Tagged.
func (*RegressorFunction) Tag() string { return RegressorTag }

// Value implements PredictionFunction.
func (f *RegressorFunction) Value(e dataset.Example) float64 {
	sum := f.Bias
	for i, sv := range f.SupportVectors {
		sum += f.Weights[i] * f.Kernel.Evaluate(sv, e)
	}
	return sum
}

func init() {
	model.Register(ClassifierTag, func() model.Tagged { return &ClassifierFunction{} })
	model.Register(RegressorTag, func() model.Tagged { return &RegressorFunction{} })
}
