package svm

import (
	"math"

	"github.com/YuminosukeSato/kernelsvm/kernel"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"github.com/YuminosukeSato/kernelsvm/pkg/log"
)

// config holds the hyperparameters shared by SVC and SVR.
type config struct {
	c           float64
	epsilon     float64 // SVR only
	tol         float64
	shrinking   bool
	maxIter     int
	fn          kernel.Function
	kernelCache cache.KernelCache
	normCache   cache.SquaredNormCache
	cacheSizeMB float64
	weightNeg   float64 // SVC only
	weightPos   float64 // SVC only
	logger      log.Logger
}

func defaultConfig() config {
	return config{
		c:           1.0,
		epsilon:     0.1,
		tol:         1e-3,
		shrinking:   true,
		fn:          kernel.RBF{Gamma: 1.0},
		cacheSizeMB: 100,
		weightNeg:   1,
		weightPos:   1,
	}
}

func (c *config) validate() error {
	if !(c.c > 0) || math.IsInf(c.c, 0) {
		return errors.NewValidationError("C", "must be positive and finite", c.c)
	}
	if c.epsilon < 0 || math.IsNaN(c.epsilon) {
		return errors.NewValidationError("epsilon", "must be non-negative", c.epsilon)
	}
	if !(c.tol > 0) {
		return errors.NewValidationError("tol", "must be positive", c.tol)
	}
	if c.maxIter < 0 {
		return errors.NewValidationError("max_iter", "must be non-negative", c.maxIter)
	}
	if c.fn == nil {
		return errors.NewValidationError("kernel", "must not be nil", nil)
	}
	if !(c.cacheSizeMB > 0) {
		return errors.NewValidationError("cache_size", "must be positive", c.cacheSizeMB)
	}
	if !(c.weightNeg > 0) || !(c.weightPos > 0) {
		return errors.NewValidationError("class_weight", "must be positive", [2]float64{c.weightNeg, c.weightPos})
	}
	return nil
}

// Option configures SVC and SVR.
type Option func(*config)

// WithC sets the penalty of the soft margin.
func WithC(c float64) Option {
	return func(cfg *config) {
		cfg.c = c
	}
}

// WithEpsilon sets the width of the ε-insensitive tube (SVR).
func WithEpsilon(epsilon float64) Option {
	return func(cfg *config) {
		cfg.epsilon = epsilon
	}
}

// WithTol sets the stopping tolerance of the solver.
func WithTol(tol float64) Option {
	return func(cfg *config) {
		cfg.tol = tol
	}
}

// WithShrinking enables or disables the shrinking heuristic.
func WithShrinking(shrinking bool) Option {
	return func(cfg *config) {
		cfg.shrinking = shrinking
	}
}

// WithMaxIter caps the number of SMO iterations. 0 selects max(1e7, 100·l).
func WithMaxIter(maxIter int) Option {
	return func(cfg *config) {
		cfg.maxIter = maxIter
	}
}

// WithKernel sets the kernel function.
func WithKernel(fn kernel.Function) Option {
	return func(cfg *config) {
		cfg.fn = fn
	}
}

// WithKernelCache makes training use c. The estimator never flushes a cache
// it was given; the caller owns it.
func WithKernelCache(c cache.KernelCache) Option {
	return func(cfg *config) {
		cfg.kernelCache = c
	}
}

// WithSquaredNormCache makes training use c for K(x, x).
func WithSquaredNormCache(c cache.SquaredNormCache) Option {
	return func(cfg *config) {
		cfg.normCache = c
	}
}

// WithCacheSize sets the memory budget in MB of the default kernel cache.
func WithCacheSize(mb float64) Option {
	return func(cfg *config) {
		cfg.cacheSizeMB = mb
	}
}

// WithClassWeights scales C per class (SVC). negative applies to the
// smaller label, positive to the larger one.
func WithClassWeights(negative, positive float64) Option {
	return func(cfg *config) {
		cfg.weightNeg = negative
		cfg.weightPos = positive
	}
}

// WithLogger sets the logger used for training diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

func (c *config) params() map[string]interface{} {
	return map[string]interface{}{
		"C":            c.c,
		"epsilon":      c.epsilon,
		"tol":          c.tol,
		"shrinking":    c.shrinking,
		"max_iter":     c.maxIter,
		"kernel":       c.fn,
		"cache_size":   c.cacheSizeMB,
		"class_weight": [2]float64{c.weightNeg, c.weightPos},
	}
}

// setParams applies params on a copy and commits only if the result is valid.
func (c *config) setParams(params map[string]interface{}) error {
	next := *c
	gamma, coef0, degree := 1.0, 0.0, 3

	for key, value := range params {
		var err error
		switch key {
		case "C":
			next.c, err = toFloat(key, value)
		case "epsilon":
			next.epsilon, err = toFloat(key, value)
		case "tol":
			next.tol, err = toFloat(key, value)
		case "cache_size":
			next.cacheSizeMB, err = toFloat(key, value)
		case "gamma":
			gamma, err = toFloat(key, value)
		case "coef0":
			coef0, err = toFloat(key, value)
		case "degree":
			var d float64
			d, err = toFloat(key, value)
			degree = int(d)
		case "max_iter":
			var m float64
			m, err = toFloat(key, value)
			next.maxIter = int(m)
		case "shrinking":
			b, ok := value.(bool)
			if !ok {
				err = errors.NewValidationError(key, "must be a bool", value)
			}
			next.shrinking = b
		case "class_weight":
			w, ok := value.([2]float64)
			if !ok {
				err = errors.NewValidationError(key, "must be [2]float64{negative, positive}", value)
			}
			next.weightNeg, next.weightPos = w[0], w[1]
		case "kernel":
			// resolved below, once gamma/coef0/degree are known
		default:
			err = errors.NewValidationError(key, "unknown parameter", value)
		}
		if err != nil {
			return err
		}
	}

	if value, ok := params["kernel"]; ok {
		switch k := value.(type) {
		case kernel.Function:
			next.fn = k
		case string:
			fn, err := kernel.FromName(k, gamma, coef0, degree)
			if err != nil {
				return err
			}
			next.fn = fn
		default:
			return errors.NewValidationError("kernel", "must be a kernel.Function or a kernel name", value)
		}
	}

	if err := next.validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func toFloat(key string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.NewValidationError(key, "must be numeric", value)
	}
}
