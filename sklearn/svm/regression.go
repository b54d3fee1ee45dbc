package svm

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/kernel"
)

// regression はε-SVRの定式化。
//
// 事例 j ごとに変数 j と j+l を作る。両者は同じ事例を指し (index_j = index_{j+l} = j)、
// 符号は y_j = +1, y_{j+l} = -1、線形項は p_j = ε - t_j, p_{j+l} = ε + t_j。
type regression struct {
	c       float64
	epsilon float64
	fn      kernel.Function
}

func (f *regression) buildCoefficients(ds dataset.Dataset) (*Problem, error) {
	l := ds.NumberOfExamples()
	prob := &Problem{
		P:     make([]float64, 2*l),
		Y:     make([]int8, 2*l),
		Index: make([]int, 2*l),
		Cp:    f.c,
		Cn:    f.c,
	}
	for j, e := range ds.Examples() {
		t := ds.RegressionValue(e)
		prob.P[j] = f.epsilon - t
		prob.P[j+l] = f.epsilon + t
		prob.Y[j] = +1
		prob.Y[j+l] = -1
		prob.Index[j] = j
		prob.Index[j+l] = j
	}
	return prob, nil
}

func (f *regression) extractModel(ds dataset.Dataset, sol *Solution) (PredictionFunction, error) {
	l := ds.NumberOfExamples()
	pf := &RegressorFunction{
		Kernel: f.fn,
		Bias:   -sol.Rho,
	}
	for j, e := range ds.Examples() {
		w := sol.Alphas[j] - sol.Alphas[j+l]
		if w == 0 {
			continue
		}
		pf.SupportVectors = append(pf.SupportVectors, e)
		pf.Weights = append(pf.Weights, w)
	}
	return pf, nil
}
