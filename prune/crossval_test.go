package prune

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/treeops/cart/pkg/errors"
	"github.com/treeops/cart/tree"
)

// noisyStepData replicates the step function with enough samples that
// every cross-validation fold sees all four plateaus, plus deterministic
// jitter so the oversized tree overfits.
func noisyStepData() (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewSource(42))
	n := 200
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.Float64() * 16
		xs[i] = x
		var base float64
		switch {
		case x < 4:
			base = 0
		case x < 8:
			base = 1
		case x < 12:
			base = 5
		default:
			base = 5.5
		}
		ys[i] = base + rng.NormFloat64()*0.2
	}
	return mat.NewDense(n, 1, xs), mat.NewVecDense(n, ys)
}

func growRegressor(X mat.Matrix, y *mat.VecDense) (tree.Model, error) {
	r := tree.NewRegressor(tree.WithMinSamplesLeaf(2))
	if err := r.Fit(X, y); err != nil {
		return nil, err
	}
	return r, nil
}

func TestGrowWithPathInvariants(t *testing.T) {
	X, y := noisyStepData()

	full, path, err := GrowWithPath(growRegressor, X, y, WithFolds(5), WithSeed(7))
	require.NoError(t, err)
	require.NotNil(t, full)
	require.True(t, path.Len() >= 2, "overfit tree should produce a multi-step path")

	// First candidate is the (possibly zero-collapsed) unpruned tree,
	// last is the root stump.
	assert.Equal(t, 0.0, path.At(0).Alpha)
	assert.LessOrEqual(t, path.At(0).Size, full.Leaves())
	assert.Equal(t, 1, path.At(path.Len()-1).Size)

	for i := 0; i < path.Len(); i++ {
		c := path.At(i)
		assert.GreaterOrEqual(t, c.Error, 0.0)
		assert.GreaterOrEqual(t, c.StdError, 0.0)
		if i > 0 {
			assert.Greater(t, c.Alpha, path.At(i-1).Alpha)
			assert.Less(t, c.Size, path.At(i-1).Size)
		}
	}
}

func TestGrowWithPathSelectedAlphaIsUsable(t *testing.T) {
	X, y := noisyStepData()

	full, path, err := GrowWithPath(growRegressor, X, y, WithFolds(5), WithSeed(7))
	require.NoError(t, err)

	for _, policy := range []Policy{PolicyOneSE, PolicyFirstMinimum, PolicySmallestTree} {
		alpha, err := NewSelector(WithPolicy(policy)).SelectAlpha(path)
		require.NoError(t, err)

		pruned, err := PruneAt(full, alpha)
		require.NoError(t, err)
		assert.LessOrEqual(t, pruned.Leaves(), full.Leaves())

		mse, err := Evaluate(pruned, X, y)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, mse, 0.0)
	}
}

func TestGrowWithPathOneSEPrunes(t *testing.T) {
	X, y := noisyStepData()

	full, path, err := GrowWithPath(growRegressor, X, y, WithFolds(10), WithSeed(3))
	require.NoError(t, err)

	alpha, err := NewSelector().SelectAlpha(path)
	require.NoError(t, err)

	pruned, err := PruneAt(full, alpha)
	require.NoError(t, err)

	// The data has four plateaus plus noise: the 1-SE tree must be
	// strictly smaller than the overfit tree.
	assert.Less(t, pruned.Leaves(), full.Leaves())
}

func TestGrowWithPathReproducible(t *testing.T) {
	X, y := noisyStepData()

	_, path1, err := GrowWithPath(growRegressor, X, y, WithFolds(5), WithSeed(11))
	require.NoError(t, err)
	_, path2, err := GrowWithPath(growRegressor, X, y, WithFolds(5), WithSeed(11))
	require.NoError(t, err)

	require.Equal(t, path1.Len(), path2.Len())
	for i := 0; i < path1.Len(); i++ {
		assert.Equal(t, path1.At(i), path2.At(i))
	}
}

func TestGrowWithPathClassification(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := 120
	xs := make([]float64, n*2)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()
		x1 := rng.Float64()
		xs[2*i] = x0
		xs[2*i+1] = x1
		if x0 > 0.5 {
			ys[i] = 1
		}
		// Label noise so the oversized tree overfits.
		if rng.Float64() < 0.05 {
			ys[i] = 1 - ys[i]
		}
	}
	X := mat.NewDense(n, 2, xs)
	y := mat.NewVecDense(n, ys)

	grow := func(X mat.Matrix, y *mat.VecDense) (tree.Model, error) {
		c := tree.NewClassifier()
		if err := c.Fit(X, y); err != nil {
			return nil, err
		}
		return c, nil
	}

	full, path, err := GrowWithPath(grow, X, y, WithFolds(5), WithSeed(2))
	require.NoError(t, err)

	for i := 0; i < path.Len(); i++ {
		c := path.At(i)
		assert.GreaterOrEqual(t, c.Error, 0.0)
		assert.LessOrEqual(t, c.Error, 1.0, "classification CV error is a rate")
	}

	alpha, err := NewSelector().SelectAlpha(path)
	require.NoError(t, err)
	pruned, err := PruneAt(full, alpha)
	require.NoError(t, err)

	rate, err := Evaluate(pruned, X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rate, 0.0)
	assert.LessOrEqual(t, rate, 1.0)
}

func TestGrowWithPathInputValidation(t *testing.T) {
	X, y := noisyStepData()

	_, _, err := GrowWithPath(growRegressor, &mat.Dense{}, &mat.VecDense{})
	assert.True(t, errors.Is(err, cartErrors.ErrEmptyData), "got %v", err)

	_, _, err = GrowWithPath(growRegressor, X, mat.NewVecDense(3, nil))
	assert.True(t, errors.Is(err, cartErrors.ErrDimensionMismatch), "got %v", err)

	_, _, err = GrowWithPath(growRegressor, X, y, WithFolds(1))
	require.Error(t, err)
}
