package prune

import (
	"gonum.org/v1/gonum/mat"

	"github.com/treeops/cart/metrics"
	cartErrors "github.com/treeops/cart/pkg/errors"
	"github.com/treeops/cart/tree"
)

// PruneAt returns m pruned at the given complexity parameter. It fails
// with an InvalidParameterError when alpha is negative or exceeds the
// largest alpha on the tree's own pruning path, where pruning is
// undefined.
func PruneAt(m tree.Model, alpha float64) (tree.Model, error) {
	alphas, err := m.Alphas()
	if err != nil {
		return nil, err
	}

	max := alphas[len(alphas)-1]
	if alpha < 0 || alpha > max {
		return nil, cartErrors.NewInvalidParameterError("PruneAt", alpha, max)
	}
	return m.Pruned(alpha)
}

// Evaluate applies the tree's decision rule to each row of X and
// compares against y: mean squared error for regression trees,
// misclassification rate for classification trees.
//
// Fails with a SchemaMismatchError when X's columns do not match the
// features the tree was trained on.
func Evaluate(m tree.Model, X mat.Matrix, y *mat.VecDense) (float64, error) {
	nSamples, nFeatures := X.Dims()
	if nFeatures != m.NFeatures() {
		return 0, cartErrors.NewSchemaMismatchError("Evaluate", m.NFeatures(), nFeatures)
	}
	if y.Len() != nSamples {
		return 0, cartErrors.NewDimensionError("Evaluate", nSamples, y.Len(), 0)
	}

	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}

	if m.Task() == tree.Classification {
		return metrics.ErrorRate(y, pred)
	}
	return metrics.MSE(y, pred)
}
