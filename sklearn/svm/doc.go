// Package svm trains kernel Support Vector Machines with an SMO dual solver.
//
// Two formulations are provided: binary C-SVC classification (SVC) and
// ε-insensitive regression (SVR). Both drive the same Solver through the
// formulation interface; the solver itself knows nothing about labels or
// targets.
//
// Kernel evaluations during training go through a kernel.Kernel facade with
// a cache. When the caller supplies no cache, a FixIndexKernelCache is used
// if the whole Gram matrix fits in the cache budget, and a StripeKernelCache
// with as many rows as fit otherwise.
//
// Example:
//
//	svr := svm.NewSVR(
//	    svm.WithC(1.0),
//	    svm.WithEpsilon(0.1),
//	    svm.WithKernel(kernel.Linear{}),
//	)
//	if err := svr.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	pred, _ := svr.Predict(XTest)
package svm
