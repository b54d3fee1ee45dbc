package svm

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"github.com/YuminosukeSato/kernelsvm/pkg/log"
)

// Estimator is implemented by SVC and SVR.
type Estimator interface {
	Learn(ds dataset.Dataset) error
	PredictionFunction() PredictionFunction
	Reset()

	isClassifier() bool
	logger() log.Logger
	// withSharedCache returns an unlearned duplicate training through c.
	withSharedCache(c cache.KernelCache) Estimator
}

// CVFold represents a single fold in cross-validation
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	if nSplits < 2 {
		nSplits = 5 // Default to 5-fold
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// Split generates train/test positions for n examples. The first n%NSplits
// folds get one extra test example.
func (kf *KFold) Split(n int) []CVFold {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		inTest := make([]bool, n)
		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])
		for _, idx := range test {
			inTest[idx] = true
		}

		train := make([]int, 0, n-testSize)
		for _, idx := range indices {
			if !inTest[idx] {
				train = append(train, idx)
			}
		}
		folds[i] = CVFold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds
}

// CrossValScore trains a duplicate of est on every training split of ds and
// scores it on the held-out split: accuracy for classifiers, MSE for
// regressors.
//
// All folds train through one DynamicIndexKernelCache. It is re-bound to
// the fold's training size before each fold and flushed after it.
func CrossValScore(est Estimator, ds dataset.Dataset, kf *KFold) ([]float64, error) {
	n := ds.NumberOfExamples()
	if kf == nil {
		kf = NewKFold(5, false, 0)
	}
	if kf.NSplits < 2 || kf.NSplits > n {
		return nil, errors.NewValidationError("n_splits", "must be in [2, number of examples]", kf.NSplits)
	}

	shared, err := cache.NewDynamicIndexKernelCache(n)
	if err != nil {
		return nil, err
	}
	logger := est.logger()

	folds := kf.Split(n)
	scores := make([]float64, len(folds))
	for f, fold := range folds {
		train, err := dataset.Subset(ds, fold.TrainIndices)
		if err != nil {
			return nil, err
		}
		test, err := dataset.Subset(ds, fold.TestIndices)
		if err != nil {
			return nil, err
		}

		if err := shared.SetExamplesToStore(train.NumberOfExamples()); err != nil {
			return nil, err
		}
		fe := est.withSharedCache(shared)
		if err := fe.Learn(train); err != nil {
			return nil, errors.Wrapf(err, "kernelsvm: fold %d training failed", f)
		}
		scores[f] = scoreFold(fe.PredictionFunction(), test, est.isClassifier())
		shared.Flush()

		logger.Debug("fold finished",
			log.OperationKey, log.OperationCrossValidate,
			log.FoldKey, f,
			log.SamplesKey, train.NumberOfExamples(),
			"score", scores[f],
		)
	}
	return scores, nil
}

func scoreFold(pf PredictionFunction, test dataset.Dataset, classifier bool) float64 {
	n := test.NumberOfExamples()
	sum := 0.0
	for _, e := range test.Examples() {
		got, want := pf.Value(e), test.RegressionValue(e)
		if classifier {
			if got == want {
				sum++
			}
			continue
		}
		sum += (got - want) * (got - want)
	}
	return sum / float64(n)
}
