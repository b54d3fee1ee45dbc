package svm

import (
	"time"

	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/core/model"
	"github.com/YuminosukeSato/kernelsvm/core/parallel"
	"github.com/YuminosukeSato/kernelsvm/kernel"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"github.com/YuminosukeSato/kernelsvm/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// predictThreshold is the batch size above which Predict fans out.
const predictThreshold = 256

// estimator holds what SVC and SVR share: configuration, fitted state and
// the learn/predict plumbing.
type estimator struct {
	name  string
	cfg   config
	state *model.StateManager

	pf  PredictionFunction
	sol *Solution
}

func newEstimator(name string, opts []Option) estimator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return estimator{name: name, cfg: cfg, state: model.NewStateManager()}
}

func (e *estimator) logger() log.Logger {
	if e.cfg.logger != nil {
		return e.cfg.logger
	}
	return log.GetLoggerWithName("svm").With(log.ModelNameKey, e.name)
}

// caches returns the caches to attach for ds: the caller's when given,
// otherwise fresh defaults sized to the cache budget.
func (e *estimator) caches(ds dataset.Dataset) (cache.KernelCache, cache.SquaredNormCache, error) {
	kc, nc := e.cfg.kernelCache, e.cfg.normCache
	n := ds.NumberOfExamples()

	minID, maxID := 0, -1
	for i, ex := range ds.Examples() {
		id := ex.ID()
		if i == 0 || id < minID {
			minID = id
		}
		if id > maxID {
			maxID = id
		}
	}
	span := maxID + 1
	budget := int64(e.cfg.cacheSizeMB * (1 << 20))
	fixIndex := minID >= 0 && int64(span)*int64(span)*cache.BytesPerEntry <= budget

	var err error
	if kc == nil {
		if fixIndex {
			kc, err = cache.NewFixIndexKernelCache(span)
		} else {
			rows := budget / (int64(n) * cache.BytesPerEntry)
			if rows < 1 {
				rows = 1
			}
			if rows > int64(n) {
				rows = int64(n)
			}
			kc, err = cache.NewStripeKernelCache(ds, int(rows))
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if nc == nil {
		if minID >= 0 && int64(span)*cache.BytesPerEntry <= budget {
			nc, err = cache.NewFixIndexSquaredNormCache(span)
		} else {
			nc, err = cache.NewDynamicIndexSquaredNormCache(n)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return kc, nc, nil
}

// learn runs form on ds. Contract violations raised by kernels as panics
// come back as errors.
func (e *estimator) learn(ds dataset.Dataset, form formulation) (err error) {
	defer errors.Recover(&err, e.name+".Learn")
	start := time.Now()

	if err := e.cfg.validate(); err != nil {
		return err
	}
	if ds == nil || ds.NumberOfExamples() == 0 {
		return errors.NewModelError(e.name+".Learn", "empty dataset", errors.ErrEmptyData)
	}

	prob, err := form.buildCoefficients(ds)
	if err != nil {
		return err
	}

	kc, nc, err := e.caches(ds)
	if err != nil {
		return err
	}
	k := kernel.New(e.cfg.fn)
	k.SetKernelCache(kc)
	k.SetSquaredNormCache(nc)
	defer k.DisableCache()

	logger := e.logger()
	solver, err := NewSolver(SolverConfig{
		Eps:       e.cfg.tol,
		Shrinking: e.cfg.shrinking,
		MaxIter:   e.cfg.maxIter,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	sol, err := solver.Solve(prob, newDatasetGram(k, ds))
	if err != nil {
		return err
	}
	pf, err := form.extractModel(ds, sol)
	if err != nil {
		return err
	}

	e.pf = pf
	e.sol = sol
	e.state.Reset()
	e.state.SetDimensions(featureCount(ds), ds.NumberOfExamples())
	e.state.SetFitted()

	nSV, nBSV := supportCounts(prob, sol)
	fields := []any{
		log.OperationKey, log.OperationFit,
		log.SamplesKey, ds.NumberOfExamples(),
		log.VariablesKey, prob.Size(),
		log.SupportVectorsKey, nSV,
		log.BoundedSupportVectorsKey, nBSV,
		log.IterationKey, sol.Iterations,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if r, ok := kc.(cache.StatsReporter); ok {
		s := r.Stats()
		fields = append(fields,
			log.CacheHitsKey, s.Hits,
			log.CacheMissesKey, s.Misses,
			log.CacheStoredKey, s.Stored,
		)
	}
	logger.Info("training finished", fields...)
	return nil
}

// supportCounts counts the examples that carry a nonzero coefficient in the
// prediction function, and those among them with a variable at its upper bound.
// SVR keeps two variables per example, so the signed alphas are summed by
// Problem.Index before counting.
func supportCounts(prob *Problem, sol *Solution) (nSV, nBSV int) {
	weight := make(map[int]float64)
	bounded := make(map[int]bool)
	for i, a := range sol.Alphas {
		id := prob.Index[i]
		weight[id] += float64(prob.Y[i]) * a
		c := prob.Cn
		if prob.Y[i] > 0 {
			c = prob.Cp
		}
		if a >= c {
			bounded[id] = true
		}
	}
	for id, w := range weight {
		if w == 0 {
			continue
		}
		nSV++
		if bounded[id] {
			nBSV++
		}
	}
	return nSV, nBSV
}

func featureCount(ds dataset.Dataset) int {
	if v, ok := ds.Example(0).(dataset.Vector); ok {
		return len(v.X)
	}
	return 0
}

func (e *estimator) reset() {
	e.pf = nil
	e.sol = nil
	e.state.Reset()
}

// examplesFor converts X into Vector examples after checking the model can
// score dense rows of the trained width.
func (e *estimator) examplesFor(method string, X mat.Matrix) ([]dataset.Example, error) {
	if err := e.state.RequireFitted(e.name, method); err != nil {
		return nil, err
	}
	nFeatures, _ := e.state.GetDimensions()
	if nFeatures == 0 {
		return nil, errors.NewValueError(e.name+"."+method,
			"model was trained on non-vector examples; use PredictionFunction()")
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewValueError(e.name+"."+method, "empty input")
	}
	if cols != nFeatures {
		return nil, errors.NewDimensionError(e.name+"."+method, nFeatures, cols, 1)
	}
	return dataset.VectorsFromMatrix(X), nil
}

// evaluate applies value to every example, in parallel for large batches.
func evaluate(examples []dataset.Example, value func(dataset.Example) float64) *mat.Dense {
	out := make([]float64, len(examples))
	parallel.ParallelizeWithThreshold(len(examples), predictThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = value(examples[i])
		}
	})
	return mat.NewDense(len(examples), 1, out)
}
