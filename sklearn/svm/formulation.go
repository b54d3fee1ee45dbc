package svm

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/kernel"
)

// formulation turns a dataset into a dual QP and a solved QP into a model.
type formulation interface {
	buildCoefficients(ds dataset.Dataset) (*Problem, error)
	extractModel(ds dataset.Dataset, sol *Solution) (PredictionFunction, error)
}

// datasetGram evaluates the kernel between dataset positions through the facade.
type datasetGram struct {
	k        *kernel.Kernel
	examples []dataset.Example
}

func newDatasetGram(k *kernel.Kernel, ds dataset.Dataset) *datasetGram {
	return &datasetGram{k: k, examples: ds.Examples()}
}

func (g *datasetGram) At(a, b int) float64 {
	return g.k.InnerProduct(g.examples[a], g.examples[b])
}

func (g *datasetGram) Diag(a int) float64 {
	return g.k.SquaredNorm(g.examples[a])
}
