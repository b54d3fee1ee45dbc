package svm

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/core/model"
	"github.com/YuminosukeSato/kernelsvm/kernel"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"github.com/YuminosukeSato/kernelsvm/pkg/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func quietLogger() log.Logger {
	logger, _ := log.NewTestLogger(log.LevelError)
	return logger
}

// blobs returns two well separated Gaussian blobs labelled 0 and 1.
func blobs(n int, seed int64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		center := -3.0
		if i%2 == 1 {
			center = 3
			y.SetVec(i, 1)
		}
		X.Set(i, 0, center+0.5*rng.NormFloat64())
		X.Set(i, 1, center+0.5*rng.NormFloat64())
	}
	return X, y
}

// line returns y = 2x + 1 with uniform noise in [-0.05, 0.05], x in [0, 1).
func line(n int, seed int64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := rng.Float64()
		X.Set(i, 0, x)
		y.SetVec(i, 2*x+1+0.1*(rng.Float64()-0.5))
	}
	return X, y
}

func TestSVCFitPredict(t *testing.T) {
	X, y := blobs(60, 1)
	svc := NewSVC(WithC(1), WithKernel(kernel.RBF{Gamma: 0.5}), WithLogger(quietLogger()))
	require.NoError(t, svc.Fit(X, y))

	score, err := svc.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, []float64{0, 1}, svc.Classes())

	test := mat.NewDense(2, 2, []float64{-3, -3, 3, 3})
	pred, err := svc.Predict(test)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))

	dec, err := svc.DecisionFunction(test)
	require.NoError(t, err)
	assert.Less(t, dec.At(0, 0), 0.0)
	assert.Greater(t, dec.At(1, 0), 0.0)

	sol := svc.Solution()
	require.NotNil(t, sol)
	assert.True(t, sol.Converged)
	cf := svc.PredictionFunction().(*ClassifierFunction)
	assert.NotEmpty(t, cf.SupportVectors)
	assert.Len(t, cf.Coef, len(cf.SupportVectors))
}

func TestSVCClassWeightsScaleBounds(t *testing.T) {
	X, y := blobs(20, 2)
	svc := NewSVC(WithC(2), WithClassWeights(0.5, 3), WithKernel(kernel.Linear{}), WithLogger(quietLogger()))
	require.NoError(t, svc.Fit(X, y))
	assert.Equal(t, 6.0, svc.Solution().UpperBoundP)
	assert.Equal(t, 1.0, svc.Solution().UpperBoundN)
}

func TestSVCDatasetErrors(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})

	svc := NewSVC(WithLogger(quietLogger()))
	err := svc.Fit(X, mat.NewVecDense(3, []float64{1, 1, 1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDegenerateDataset))
	var modelErr *errors.ModelError
	assert.True(t, errors.As(err, &modelErr))

	err = svc.Fit(X, mat.NewVecDense(3, []float64{0, 1, 2}))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestNotFittedAndDimensionErrors(t *testing.T) {
	svr := NewSVR(WithLogger(quietLogger()))
	_, err := svr.Predict(mat.NewDense(1, 1, []float64{0}))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "SVR", nf.ModelName)
	assert.Nil(t, svr.PredictionFunction())

	X, y := line(20, 1)
	require.NoError(t, svr.Fit(X, y))
	_, err = svr.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)

	svr.Reset()
	_, err = svr.Predict(mat.NewDense(1, 1, []float64{0}))
	assert.True(t, errors.As(err, &nf))
}

// evenLine returns y = 2x + 1 plus a bounded perturbation in [-0.05, 0.05),
// with x and the perturbation drawn from low-discrepancy sequences so the
// data do not depend on a random source.
func evenLine(n int, phase float64) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := math.Mod(phase+float64(i)*0.6180339887498949, 1)
		noise := math.Mod(float64(i)*0.7548776662466927+phase, 1) - 0.5
		X.Set(i, 0, x)
		y.SetVec(i, 2*x+1+0.1*noise)
	}
	return X, y
}

// C = 1, ε = 0.1, linear kernel: the held-out MSE is pinned so that any change
// in the solver's fixed point shows up.
func TestSVRLinearAccuracy(t *testing.T) {
	X, y := evenLine(80, 0.1)
	XTest, yTest := evenLine(40, 0.35)

	svr := NewSVR(WithC(1), WithEpsilon(0.1), WithKernel(kernel.Linear{}), WithLogger(quietLogger()))
	require.NoError(t, svr.Fit(X, y))

	pred, err := svr.Predict(XTest)
	require.NoError(t, err)
	mse := 0.0
	for i := 0; i < 40; i++ {
		d := pred.At(i, 0) - yTest.AtVec(i)
		mse += d * d
	}
	mse /= 40
	assert.InDelta(t, 0.0035805, mse, 1e-4)
	assert.Less(t, mse, 0.03)

	r2, err := svr.Score(XTest, yTest)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.9)

	// α_j and α*_j keep Σ(α_j - α*_j) = 0 and stay inside [0, C]
	sol := svr.Solution()
	require.Len(t, sol.Alphas, 160)
	sum := 0.0
	for j := 0; j < 80; j++ {
		assert.GreaterOrEqual(t, sol.Alphas[j], 0.0)
		assert.LessOrEqual(t, sol.Alphas[j+80], 1.0)
		sum += sol.Alphas[j] - sol.Alphas[j+80]
	}
	assert.InDelta(t, 0, sum, 1e-9)

	rf := svr.PredictionFunction().(*RegressorFunction)
	assert.InDelta(t, -sol.Rho, rf.Bias, 0)
	assert.InDelta(t, 1.1108357, rf.Bias, 1e-6)
	// examples inside the tube are not support vectors
	assert.Len(t, rf.SupportVectors, 6)
	assert.True(t, sol.Converged)
}

func TestSVRScoreWithoutVariance(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	X, y := line(20, 5)
	svr := NewSVR(WithKernel(kernel.Linear{}), WithLogger(quietLogger()))
	require.NoError(t, svr.Fit(X, y))

	score, err := svr.Score(mat.NewDense(2, 1, []float64{0, 1}), mat.NewVecDense(2, []float64{3, 3}))
	require.NoError(t, err)
	assert.Zero(t, score)
	require.Len(t, warnings, 1)
	var umw *errors.UndefinedMetricWarning
	assert.True(t, errors.As(warnings[0], &umw))
}

func TestShrinkingDoesNotChangeObjective(t *testing.T) {
	X, y := line(120, 9)
	objective := func(shrinking bool) float64 {
		svr := NewSVR(WithC(1), WithEpsilon(0.05), WithTol(1e-5), WithShrinking(shrinking),
			WithKernel(kernel.RBF{Gamma: 2}), WithLogger(quietLogger()))
		require.NoError(t, svr.Fit(X, y))
		return svr.Solution().Obj
	}
	on, off := objective(true), objective(false)
	assert.InDelta(t, off, on, 1e-4*math.Max(1, math.Abs(off)))
}

func TestCachePoliciesAgree(t *testing.T) {
	X, y := line(30, 8)
	ds, err := dataset.NewDense(X, y)
	require.NoError(t, err)

	fixSize, err := cache.NewFixSizeKernelCache(50)
	require.NoError(t, err)
	dynamic, err := cache.NewDynamicIndexKernelCache(10)
	require.NoError(t, err)

	variants := map[string][]Option{
		"default fix index": nil,
		// 30²·9 bytes do not fit, so the default falls back to a stripe cache
		"default stripe": {WithCacheSize(0.002)},
		"fix size":       {WithKernelCache(fixSize)},
		"dynamic":        {WithKernelCache(dynamic)},
	}

	var reference *Solution
	for name, extra := range variants {
		opts := append([]Option{WithC(1), WithKernel(kernel.RBF{Gamma: 1}), WithLogger(quietLogger())}, extra...)
		svr := NewSVR(opts...)
		require.NoError(t, svr.Learn(ds), name)
		if reference == nil {
			reference = svr.Solution()
			continue
		}
		assert.True(t, cmp.Equal(reference.Alphas, svr.Solution().Alphas, cmpopts.EquateApprox(0, 1e-9)), name)
		assert.InDelta(t, reference.Obj, svr.Solution().Obj, 1e-9, name)
	}
}

func TestCallerCacheIsNotFlushed(t *testing.T) {
	X, y := line(15, 4)
	ds, err := dataset.NewDense(X, y)
	require.NoError(t, err)

	shared, err := cache.NewDynamicIndexKernelCache(15)
	require.NoError(t, err)
	svr := NewSVR(WithKernel(kernel.Linear{}), WithKernelCache(shared), WithLogger(quietLogger()))
	require.NoError(t, svr.Learn(ds))

	assert.Greater(t, shared.Stats().Stored, 0)
	found := 0
	for _, a := range ds.Examples() {
		for _, b := range ds.Examples() {
			if v, ok := shared.Get(a, b); ok {
				found++
				assert.Equal(t, kernel.Linear{}.Evaluate(a, b), v)
			}
		}
	}
	assert.Positive(t, found)

	// a duplicate starts unlearned and without the caller's cache
	dup := svr.Duplicate()
	assert.Nil(t, dup.PredictionFunction())
	assert.Nil(t, dup.cfg.kernelCache)
	assert.Equal(t, svr.GetParams()["C"], dup.GetParams()["C"])
}

func TestPairwiseKernelRequiresPairs(t *testing.T) {
	X, y := blobs(10, 3)
	svc := NewSVC(WithKernel(kernel.Preference{Base: kernel.Linear{}}), WithLogger(quietLogger()))

	err := svc.Fit(X, y)
	require.Error(t, err)
	var contract *errors.ContractError
	assert.True(t, errors.As(err, &contract))
	assert.False(t, svc.state.IsFitted())
}

// pairs of items ranked by a hidden linear score: label 1 when First scores higher.
func preferencePairs(n int, seed int64) (*dataset.Labeled, error) {
	rng := rand.New(rand.NewSource(seed))
	score := func(v dataset.Vector) float64 { return 2*v.X[0] - v.X[1] }
	examples := make([]dataset.Example, 0, n)
	targets := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		a := dataset.Vector{Index: 1000 + 2*i, X: []float64{rng.NormFloat64(), rng.NormFloat64()}}
		b := dataset.Vector{Index: 1001 + 2*i, X: []float64{rng.NormFloat64(), rng.NormFloat64()}}
		label := 0.0
		if score(a) > score(b) {
			label = 1
		}
		examples = append(examples, dataset.Pair{Index: i, First: a, Second: b})
		targets = append(targets, label)
	}
	return dataset.NewLabeled(examples, targets)
}

func TestPreferenceKernelRanking(t *testing.T) {
	ds, err := preferencePairs(60, 12)
	require.NoError(t, err)

	svc := NewSVC(WithC(10), WithKernel(kernel.Preference{Base: kernel.Linear{}}), WithLogger(quietLogger()))
	require.NoError(t, svc.Learn(ds))

	pf := svc.PredictionFunction()
	correct := 0
	for _, e := range ds.Examples() {
		if pf.Value(e) == ds.RegressionValue(e) {
			correct++
		}
	}
	assert.GreaterOrEqual(t, float64(correct)/60, 0.9)

	// dense prediction is meaningless for pair models
	_, err = svc.Predict(mat.NewDense(1, 2, nil))
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}

func TestPredictionFunctionPersistence(t *testing.T) {
	X, y := line(25, 6)
	svr := NewSVR(WithKernel(kernel.RBF{Gamma: 1.5}), WithLogger(quietLogger()))
	require.NoError(t, svr.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModel(&buf, svr.PredictionFunction()))
	loaded, err := model.LoadModel(&buf)
	require.NoError(t, err)
	rf, ok := loaded.(*RegressorFunction)
	require.True(t, ok)

	for _, x := range []float64{0, 0.25, 0.9} {
		e := dataset.Vector{Index: -1, X: []float64{x}}
		assert.InDelta(t, svr.PredictionFunction().Value(e), rf.Value(e), 1e-12)
	}
	assert.Contains(t, model.Tags(), ClassifierTag)
	assert.Contains(t, model.Tags(), RegressorTag)
}

func TestParams(t *testing.T) {
	svc := NewSVC()
	params := svc.GetParams()
	assert.Equal(t, 1.0, params["C"])
	assert.Equal(t, true, params["shrinking"])
	assert.Equal(t, 100.0, params["cache_size"])

	require.NoError(t, svc.SetParams(map[string]interface{}{
		"C":      5,
		"kernel": "poly",
		"gamma":  0.5,
		"degree": 2,
	}))
	params = svc.GetParams()
	assert.Equal(t, 5.0, params["C"])
	assert.Equal(t, kernel.Polynomial{Gamma: 0.5, Degree: 2}, params["kernel"])

	// an invalid value leaves every parameter untouched
	err := svc.SetParams(map[string]interface{}{"C": 2.0, "tol": -1.0})
	require.Error(t, err)
	assert.Equal(t, 5.0, svc.GetParams()["C"])

	assert.Error(t, svc.SetParams(map[string]interface{}{"unknown": 1}))
	assert.Error(t, svc.SetParams(map[string]interface{}{"shrinking": "yes"}))
}

func TestInvalidHyperparameters(t *testing.T) {
	X, y := line(10, 1)
	cases := map[string]Option{
		"C":          WithC(0),
		"epsilon":    WithEpsilon(-0.1),
		"tol":        WithTol(0),
		"cache size": WithCacheSize(0),
		"max iter":   WithMaxIter(-1),
		"kernel":     WithKernel(nil),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			var valErr *errors.ValidationError
			svr := NewSVR(opt, WithLogger(quietLogger()))
			assert.True(t, errors.As(svr.Validate(), &valErr))
			assert.True(t, errors.As(NewSVC(opt).Validate(), &valErr))

			err := svr.Fit(X, y)
			assert.True(t, errors.As(err, &valErr))
			assert.False(t, svr.state.IsFitted())
		})
	}

	assert.NoError(t, NewSVR().Validate())
	assert.NoError(t, NewSVC().Validate())
}

func TestTrainingLogsSummary(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	X, y := line(20, 2)
	svr := NewSVR(WithKernel(kernel.Linear{}), WithLogger(logger))
	require.NoError(t, svr.Fit(X, y))

	assert.True(t, logger.ContainsMessage("training finished"))
	assert.True(t, logger.ContainsMessage("optimization finished"))
	assert.True(t, logger.ContainsField(log.SamplesKey, 20.0))
	assert.True(t, logger.ContainsField(log.VariablesKey, 40.0))
	// support vectors are counted per example, not per solver variable
	rf := svr.PredictionFunction().(*RegressorFunction)
	assert.True(t, logger.ContainsField(log.SupportVectorsKey, float64(len(rf.SupportVectors))))
}

func TestSupportCounts(t *testing.T) {
	tests := []struct {
		name    string
		prob    *Problem
		alphas  []float64
		wantSV  int
		wantBSV int
	}{
		{
			name:    "classification",
			prob:    &Problem{Y: []int8{1, -1, 1, -1}, Index: []int{0, 1, 2, 3}, Cp: 1, Cn: 2},
			alphas:  []float64{1, 0.5, 0, 2},
			wantSV:  3,
			wantBSV: 2,
		},
		{
			name:    "regression pairs",
			prob:    &Problem{Y: []int8{1, 1, 1, -1, -1, -1}, Index: []int{0, 1, 2, 0, 1, 2}, Cp: 1, Cn: 1},
			alphas:  []float64{0.25, 0, 0, 0, 1, 0},
			wantSV:  2,
			wantBSV: 1,
		},
		{
			name:    "regression pair cancels",
			prob:    &Problem{Y: []int8{1, -1}, Index: []int{0, 0}, Cp: 1, Cn: 1},
			alphas:  []float64{0.5, 0.5},
			wantSV:  0,
			wantBSV: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nSV, nBSV := supportCounts(tt.prob, &Solution{Alphas: tt.alphas})
			assert.Equal(t, tt.wantSV, nSV)
			assert.Equal(t, tt.wantBSV, nBSV)
		})
	}
}

func TestParallelPredictMatchesSequential(t *testing.T) {
	X, y := line(30, 3)
	svr := NewSVR(WithKernel(kernel.RBF{Gamma: 1}), WithLogger(quietLogger()))
	require.NoError(t, svr.Fit(X, y))

	n := predictThreshold * 3
	XTest := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		XTest.Set(i, 0, float64(i)/float64(n))
	}
	pred, err := svr.Predict(XTest)
	require.NoError(t, err)
	pf := svr.PredictionFunction()
	for i := 0; i < n; i += 37 {
		e := dataset.Vector{Index: i, X: []float64{XTest.At(i, 0)}}
		assert.Equal(t, pf.Value(e), pred.At(i, 0))
	}
}

func TestEstimatorInterfaces(t *testing.T) {
	var classifier model.Classifier = NewSVC()
	var regressor model.Regressor = NewSVR()
	learners := []model.Learner{NewSVC(), NewSVR()}
	params := []model.ParameterSetter{NewSVC(), NewSVR()}

	assert.NotNil(t, classifier)
	assert.NotNil(t, regressor)
	assert.Len(t, learners, 2)
	assert.Len(t, params, 2)
	_, ok := classifier.(model.ParameterGetter)
	assert.True(t, ok)
}
