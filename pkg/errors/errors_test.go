package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "SVC.Learn",
			kind:     "degenerate dataset",
			err:      ErrDegenerateDataset,
			wantMsg:  "kernelsvm: SVC.Learn: degenerate dataset: all labels are identical",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "kernelsvm: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("ModelError should unwrap to the original error")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)

	want := "kernelsvm: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("SVR", "Predict")

	want := "kernelsvm: SVR: this model is not fitted yet. Call Fit() or Learn() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("capacity", "must be positive", 0)

	want := "kernelsvm: validation failed for parameter 'capacity': must be positive (got: 0)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.ParamName != "capacity" {
		t.Errorf("ParamName = %q, want capacity", valErr.ParamName)
	}
}

func TestNewContractError(t *testing.T) {
	err := NewContractError("Preference.Evaluate", "dataset.Pair", 42)

	want := "kernelsvm: Preference.Evaluate: contract violation: expected dataset.Pair, got int"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var contractErr *ContractError
	if !As(err, &contractErr) {
		t.Error("Error should be castable to *ContractError")
	}
}

func TestNewConvergenceWarning(t *testing.T) {
	warn := NewConvergenceWarning("SMO", 1000, "gap 1.2e-02 above tolerance 1.0e-03")

	want := "SMO failed to converge after 1000 iterations: gap 1.2e-02 above tolerance 1.0e-03"
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}

	plain := NewConvergenceWarning("SMO", 10, "")
	if !strings.Contains(plain.Error(), "Consider increasing max_iter") {
		t.Errorf("unexpected default message: %v", plain.Error())
	}
}

func TestWarnUsesCustomHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	Warn(NewConvergenceWarning("SMO", 5, ""))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	var convWarn *ConvergenceWarning
	if !As(got[0], &convWarn) || convWarn.Iterations != 5 {
		t.Errorf("unexpected warning: %v", got[0])
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "in dataset.NewDense")

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in dataset.NewDense") {
		t.Error("Expected wrapped error to contain wrapping message")
	}

	formatted := Wrapf(ErrUnknownTag, "tag %q", "svm.nope")
	if !Is(formatted, ErrUnknownTag) {
		t.Error("Expected Is(formatted, ErrUnknownTag) to be true")
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("gradient_update", 1.5, 3); err != nil {
		t.Errorf("finite value should pass: %v", err)
	}

	err := CheckNumericalStability("gradient_update", []float64{1, 2, nan()}, 7)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Iteration != 7 {
		t.Errorf("Iteration = %d, want 7", numErr.Iteration)
	}
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
