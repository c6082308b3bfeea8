// Package metrics provides the scalar evaluation metrics used by the
// pruning selector: squared-error metrics for regression trees and
// misclassification metrics for classification trees.
//
// All functions take gonum vectors, validate dimensions, and return a
// typed error from pkg/errors on invalid input.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/treeops/cart/pkg/errors"
)

// MSE returns the mean squared error between true and predicted values.
//
// Errors with ErrEmptyData on empty input and ErrDimensionMismatch when
// the vectors differ in length.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, cartErrors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, cartErrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}

// RMSE returns the root mean squared error, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, cartErrors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, cartErrors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score returns the coefficient of determination. The best possible
// score is 1.0; a model predicting the mean scores 0.
//
// Errors when yTrue has no variance, since R² is undefined there.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, cartErrors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, cartErrors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		d := yt - yPred.AtVec(i)
		tss += (yt - mean) * (yt - mean)
		rss += d * d
	}

	if tss == 0 {
		return 0, cartErrors.NewValueError("R2Score", "no variance in yTrue")
	}
	return 1 - rss/tss, nil
}
