package model

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Learner はDatasetから直接学習するモデルのインターフェース
type Learner interface {
	// Learn trains on ds. A previously learned model is replaced.
	Learn(ds dataset.Dataset) error
	// Reset clears the learned state.
	Reset()
}
