package metrics

import (
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Accuracy は予測ラベルが正解ラベルと一致した割合を返す
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := rawPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := range t {
		if t[i] == p[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(t)), nil
}

// ClassificationError は 1 - Accuracy を返す
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// AccuracyMatrix は n×1 行列のペアに対してAccuracyを計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AccuracyMatrix", "nil matrix")
	}
	yTrueVec, yPredVec, err := columnPair("AccuracyMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(yTrueVec, yPredVec)
}
