// Package kernel provides kernel functions over dataset examples and the
// Kernel facade that answers evaluations through optional caches.
package kernel

import (
	"encoding/gob"
	"math"
	"strings"

	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Function は2つのExampleの内積を特徴空間で計算する
type Function interface {
	Evaluate(a, b dataset.Example) float64
}

// Linear computes <a, b>.
type Linear struct{}

// Polynomial computes (Gamma·<a, b> + Coef0)^Degree.
type Polynomial struct {
	Gamma  float64
	Coef0  float64
	Degree int
}

// RBF computes exp(-Gamma·||a - b||²).
type RBF struct {
	Gamma float64
}

// Sigmoid computes tanh(Gamma·<a, b> + Coef0).
type Sigmoid struct {
	Gamma float64
	Coef0 float64
}

func vectors(op string, a, b dataset.Example) ([]float64, []float64) {
	va, ok := a.(dataset.Vector)
	if !ok {
		panic(errors.NewContractError(op, "dataset.Vector", a))
	}
	vb, ok := b.(dataset.Vector)
	if !ok {
		panic(errors.NewContractError(op, "dataset.Vector", b))
	}
	if len(va.X) != len(vb.X) {
		panic(errors.NewDimensionError(op, len(va.X), len(vb.X), 1))
	}
	return va.X, vb.X
}

// Evaluate implements Function.
func (Linear) Evaluate(a, b dataset.Example) float64 {
	x, y := vectors("Linear.Evaluate", a, b)
	return floats.Dot(x, y)
}

// Evaluate implements Function.
func (k Polynomial) Evaluate(a, b dataset.Example) float64 {
	x, y := vectors("Polynomial.Evaluate", a, b)
	return math.Pow(k.Gamma*floats.Dot(x, y)+k.Coef0, float64(k.Degree))
}

// Evaluate implements Function.
func (k RBF) Evaluate(a, b dataset.Example) float64 {
	x, y := vectors("RBF.Evaluate", a, b)
	d := floats.Distance(x, y, 2)
	return math.Exp(-k.Gamma * d * d)
}

// Evaluate implements Function.
func (k Sigmoid) Evaluate(a, b dataset.Example) float64 {
	x, y := vectors("Sigmoid.Evaluate", a, b)
	return math.Tanh(k.Gamma*floats.Dot(x, y) + k.Coef0)
}

// FromName builds a base kernel from its scikit-learn style name:
// "linear", "poly", "rbf" or "sigmoid".
func FromName(name string, gamma, coef0 float64, degree int) (Function, error) {
	switch strings.ToLower(name) {
	case "linear":
		return Linear{}, nil
	case "poly", "polynomial":
		if degree <= 0 {
			return nil, errors.NewValidationError("degree", "must be positive", degree)
		}
		return Polynomial{Gamma: gamma, Coef0: coef0, Degree: degree}, nil
	case "rbf":
		if gamma <= 0 {
			return nil, errors.NewValidationError("gamma", "must be positive", gamma)
		}
		return RBF{Gamma: gamma}, nil
	case "sigmoid":
		return Sigmoid{Gamma: gamma, Coef0: coef0}, nil
	default:
		return nil, errors.NewValidationError("kernel", "unknown kernel name", name)
	}
}

func init() {
	// 予測関数がFunctionをインターフェース越しに保持するため、gobに具象型を登録する
	gob.Register(Linear{})
	gob.Register(Polynomial{})
	gob.Register(RBF{})
	gob.Register(Sigmoid{})
	gob.Register(Preference{})
	gob.Register(PairwiseSum{})
}
