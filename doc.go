// Package kernelsvm provides kernel Support Vector Machines for Go,
// designed for backend services that train and serve small to mid-sized
// models without leaving the Go runtime.
//
// The library offers a scikit-learn-like API on top of an SMO dual solver
// (the LIBSVM algorithm with WSS3 working-set selection and shrinking),
// pluggable kernel caches, and pairwise kernels for learning on pairs of
// examples.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/kernelsvm/kernel"
//	    "github.com/YuminosukeSato/kernelsvm/sklearn/svm"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})
//
//	    model := svm.NewSVR(svm.WithC(10), svm.WithKernel(kernel.Linear{}))
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    predictions, err := model.Predict(mat.NewDense(2, 1, []float64{5, 6}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Predictions:", predictions)
//	}
//
// # Packages
//
//   - sklearn/svm: SVC, SVR, the SMO solver and k-fold cross-validation
//   - kernel: kernel functions (linear, polynomial, RBF, sigmoid, pairwise) and the caching facade
//   - kernel/cache: FixIndex, DynamicIndex, Stripe and FixSize kernel caches
//   - core/dataset: examples, pairs and labeled datasets
//   - core/model: shared interfaces, fitted state and gob persistence
//   - core/parallel: batch prediction fan-out
//   - metrics: MSE, RMSE, MAE, R² and accuracy
//   - preprocessing: feature standardization
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//
// # Learning on pairs
//
// kernel.Preference and kernel.PairwiseSum lift a base kernel to
// dataset.Pair examples, so an SVC can learn which element of a pair
// ranks higher:
//
//	model := svm.NewSVC(svm.WithKernel(kernel.Preference{Base: kernel.RBF{Gamma: 0.5}}))
//	err := model.Learn(pairs)
//
// # License
//
// kernelsvm is released under the MIT License.
package kernelsvm
