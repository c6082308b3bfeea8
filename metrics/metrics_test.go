package metrics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/treeops/cart/pkg/errors"
)

const tol = 1e-12

func TestMSE(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"constant offset", []float64{1, 2, 3, 4}, []float64{2, 3, 4, 5}, 1},
		{"mixed residuals", []float64{0, 0}, []float64{1, 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yPred), tt.yPred),
			)
			if err != nil {
				t.Fatalf("MSE() error = %v", err)
			}
			if math.Abs(got-tt.want) > tol {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMSEDimensionMismatch(t *testing.T) {
	_, err := MSE(
		mat.NewVecDense(3, []float64{1, 2, 3}),
		mat.NewVecDense(2, []float64{1, 2}),
	)
	if !errors.Is(err, cartErrors.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestRMSE(t *testing.T) {
	got, err := RMSE(
		mat.NewVecDense(2, []float64{0, 0}),
		mat.NewVecDense(2, []float64{3, 3}),
	)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	if math.Abs(got-3) > tol {
		t.Errorf("RMSE() = %v, want 3", got)
	}
}

func TestMAE(t *testing.T) {
	got, err := MAE(
		mat.NewVecDense(4, []float64{1, 2, 3, 4}),
		mat.NewVecDense(4, []float64{0, 4, 3, 2}),
	)
	if err != nil {
		t.Fatalf("MAE() error = %v", err)
	}
	if math.Abs(got-1.25) > tol {
		t.Errorf("MAE() = %v, want 1.25", got)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	perfect, err := R2Score(yTrue, mat.NewVecDense(4, []float64{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("R2Score() error = %v", err)
	}
	if math.Abs(perfect-1) > tol {
		t.Errorf("perfect R2 = %v, want 1", perfect)
	}

	// Predicting the mean gives R2 of 0.
	mean, err := R2Score(yTrue, mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5}))
	if err != nil {
		t.Fatalf("R2Score() error = %v", err)
	}
	if math.Abs(mean) > tol {
		t.Errorf("mean-predictor R2 = %v, want 0", mean)
	}
}

func TestR2ScoreNoVariance(t *testing.T) {
	_, err := R2Score(
		mat.NewVecDense(3, []float64{5, 5, 5}),
		mat.NewVecDense(3, []float64{5, 5, 5}),
	)
	if err == nil {
		t.Error("expected error for yTrue without variance")
	}
}

func TestAccuracyAndErrorRate(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{0, 1, 1, 2, 0})
	yPred := mat.NewVecDense(5, []float64{0, 1, 2, 2, 1})

	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		t.Fatalf("Accuracy() error = %v", err)
	}
	if math.Abs(acc-0.6) > tol {
		t.Errorf("Accuracy() = %v, want 0.6", acc)
	}

	rate, err := ErrorRate(yTrue, yPred)
	if err != nil {
		t.Fatalf("ErrorRate() error = %v", err)
	}
	if math.Abs(rate-0.4) > tol {
		t.Errorf("ErrorRate() = %v, want 0.4", rate)
	}
}

func TestEmptyInputs(t *testing.T) {
	empty := &mat.VecDense{}
	if _, err := MSE(empty, empty); err == nil {
		t.Error("MSE accepted empty input")
	}
	if _, err := Accuracy(empty, empty); err == nil {
		t.Error("Accuracy accepted empty input")
	}
}
