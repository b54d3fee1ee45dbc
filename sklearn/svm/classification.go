package svm

import (
	"sort"

	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/kernel"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
)

// classification は2クラスC-SVCの定式化。変数は事例ごとに1つ。
type classification struct {
	c         float64
	weightPos float64
	weightNeg float64
	fn        kernel.Function

	// set by buildCoefficients
	labels [2]float64
}

// classLabels returns the two distinct labels of ds, smaller first.
func classLabels(ds dataset.Dataset) ([2]float64, error) {
	seen := map[float64]struct{}{}
	for _, e := range ds.Examples() {
		seen[ds.RegressionValue(e)] = struct{}{}
	}
	distinct := make([]float64, 0, len(seen))
	for v := range seen {
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)

	switch {
	case len(distinct) < 2:
		return [2]float64{}, errors.NewModelError("SVC.Learn", "degenerate dataset", errors.ErrDegenerateDataset)
	case len(distinct) > 2:
		return [2]float64{}, errors.NewValidationError("y", "binary classification needs exactly two classes", len(distinct))
	}
	return [2]float64{distinct[0], distinct[1]}, nil
}

func (f *classification) buildCoefficients(ds dataset.Dataset) (*Problem, error) {
	labels, err := classLabels(ds)
	if err != nil {
		return nil, err
	}
	f.labels = labels

	n := ds.NumberOfExamples()
	prob := &Problem{
		P:     make([]float64, n),
		Y:     make([]int8, n),
		Index: make([]int, n),
		Cp:    f.c * f.weightPos,
		Cn:    f.c * f.weightNeg,
	}
	for i, e := range ds.Examples() {
		prob.P[i] = -1
		prob.Index[i] = i
		if ds.RegressionValue(e) == labels[1] {
			prob.Y[i] = +1
		} else {
			prob.Y[i] = -1
		}
	}
	return prob, nil
}

func (f *classification) extractModel(ds dataset.Dataset, sol *Solution) (PredictionFunction, error) {
	pf := &ClassifierFunction{
		Kernel: f.fn,
		Rho:    sol.Rho,
		Labels: f.labels,
	}
	for i, e := range ds.Examples() {
		a := sol.Alphas[i]
		if a == 0 {
			continue
		}
		sign := -1.0
		if ds.RegressionValue(e) == f.labels[1] {
			sign = 1
		}
		pf.SupportVectors = append(pf.SupportVectors, e)
		pf.Coef = append(pf.Coef, sign*a)
	}
	return pf, nil
}
