package metrics

import (
	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/treeops/cart/pkg/errors"
)

// Accuracy returns the fraction of predictions matching the true labels.
// Labels are compared by exact equality, matching how classification
// trees emit integer class labels as float64.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, cartErrors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, cartErrors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ErrorRate returns the misclassification rate, 1 - Accuracy.
func ErrorRate(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}
