package dataset

import (
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset はソルバーが参照するデータ集合
type Dataset interface {
	// NumberOfExamples returns the number of examples.
	NumberOfExamples() int
	// Examples returns the examples in dataset order.
	Examples() []Example
	// Example returns the i-th example.
	Example(i int) Example
	// RegressionValue returns the target (or class label) of e.
	RegressionValue(e Example) float64
}

// Labeled is a Dataset built from an explicit list of examples and targets.
type Labeled struct {
	examples []Example
	targets  map[int]float64
}

// NewLabeled builds a dataset from examples and their targets.
// Example identities must be unique.
func NewLabeled(examples []Example, targets []float64) (*Labeled, error) {
	if len(examples) == 0 {
		return nil, errors.NewModelError("NewLabeled", "empty dataset", errors.ErrEmptyData)
	}
	if len(examples) != len(targets) {
		return nil, errors.NewDimensionError("NewLabeled", len(examples), len(targets), 0)
	}
	byID := make(map[int]float64, len(examples))
	for i, e := range examples {
		if _, dup := byID[e.ID()]; dup {
			return nil, errors.NewValidationError("examples", "duplicate example identity", e.ID())
		}
		byID[e.ID()] = targets[i]
	}
	return &Labeled{examples: examples, targets: byID}, nil
}

// NewDense converts gonum matrices into a dataset of Vector examples.
// Row i becomes Vector{Index: i}. y must be a column vector.
func NewDense(X, y mat.Matrix) (*Labeled, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("NewDense", "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, errors.NewDimensionError("NewDense", rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewDimensionError("NewDense", 1, yCols, 1)
	}

	examples := VectorsFromMatrix(X)
	targets := make([]float64, rows)
	for i := range targets {
		targets[i] = y.At(i, 0)
	}
	return NewLabeled(examples, targets)
}

// VectorsFromMatrix turns every row of X into a Vector example.
func VectorsFromMatrix(X mat.Matrix) []Example {
	rows, cols := X.Dims()
	examples := make([]Example, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		examples[i] = Vector{Index: i, X: row}
	}
	return examples
}

// NumberOfExamples implements Dataset.
func (d *Labeled) NumberOfExamples() int { return len(d.examples) }

// Examples implements Dataset.
func (d *Labeled) Examples() []Example { return d.examples }

// Example implements Dataset.
func (d *Labeled) Example(i int) Example { return d.examples[i] }

// RegressionValue implements Dataset.
func (d *Labeled) RegressionValue(e Example) float64 { return d.targets[e.ID()] }

// subset is a view on a parent dataset that keeps the parent's identities.
type subset struct {
	parent   Dataset
	examples []Example
}

// Subset returns the examples of ds at the given positions. Identities are
// kept, so caches filled through the parent stay valid for the subset.
func Subset(ds Dataset, indices []int) (Dataset, error) {
	n := ds.NumberOfExamples()
	examples := make([]Example, len(indices))
	for k, i := range indices {
		if i < 0 || i >= n {
			return nil, errors.NewValidationError("indices", "position out of range", i)
		}
		examples[k] = ds.Example(i)
	}
	return &subset{parent: ds, examples: examples}, nil
}

func (s *subset) NumberOfExamples() int { return len(s.examples) }

func (s *subset) Examples() []Example { return s.examples }

func (s *subset) Example(i int) Example { return s.examples[i] }

func (s *subset) RegressionValue(e Example) float64 { return s.parent.RegressionValue(e) }

// Targets returns the regression values of ds in dataset order.
func Targets(ds Dataset) []float64 {
	out := make([]float64, ds.NumberOfExamples())
	for i, e := range ds.Examples() {
		out[i] = ds.RegressionValue(e)
	}
	return out
}
