package prune

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/treeops/cart/core/parallel"
	cartErrors "github.com/treeops/cart/pkg/errors"
	"github.com/treeops/cart/pkg/log"
	"github.com/treeops/cart/tree"
)

// GrowFunc grows a fitted tree on the given training data. The same
// function is used for the oversized tree on the full training set and
// for the per-fold trees during cross-validation, so it should capture
// the growth configuration (stopping criteria) in a closure.
type GrowFunc func(X mat.Matrix, y *mat.VecDense) (tree.Model, error)

type cvConfig struct {
	folds int
	seed  int64
}

// CVOption configures cross-validation in GrowWithPath.
type CVOption func(*cvConfig)

// WithFolds sets the number of cross-validation folds. The default is 10.
func WithFolds(k int) CVOption {
	return func(c *cvConfig) { c.folds = k }
}

// WithSeed fixes the fold-assignment shuffle for reproducible paths.
func WithSeed(seed int64) CVOption {
	return func(c *cvConfig) { c.seed = seed }
}

// GrowWithPath grows an oversized tree on the full training set and
// computes its cost-complexity pruning path, estimating the error at
// each complexity level by k-fold cross-validation.
//
// For every interval between adjacent critical alphas of the oversized
// tree, the representative tested parameter is the geometric midpoint of
// the interval, so each subtree of the pruning sequence is exercised.
// Folds are grown and scored in parallel; the returned path is ready for
// a Selector.
func GrowWithPath(grow GrowFunc, X mat.Matrix, y *mat.VecDense, opts ...CVOption) (tree.Model, *Path, error) {
	cfg := cvConfig{folds: 10, seed: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return nil, nil, cartErrors.NewModelError("GrowWithPath", "empty data", cartErrors.ErrEmptyData)
	}
	if y.Len() != nSamples {
		return nil, nil, cartErrors.NewDimensionError("GrowWithPath", nSamples, y.Len(), 0)
	}
	if cfg.folds < 2 {
		return nil, nil, cartErrors.NewValueError("GrowWithPath", "at least 2 folds required")
	}
	if cfg.folds > nSamples {
		cfg.folds = nSamples
	}
	if cfg.folds < 2 {
		return nil, nil, cartErrors.NewValueError("GrowWithPath", "at least 2 samples required")
	}

	logger := log.GetLoggerWithName("prune").With(log.ComponentKey, "prune")
	start := time.Now()

	full, err := grow(X, y)
	if err != nil {
		return nil, nil, cartErrors.NewModelError("GrowWithPath", "growing oversized tree", err)
	}

	alphas, err := full.Alphas()
	if err != nil {
		return nil, nil, err
	}
	reps := representativeAlphas(alphas)

	logger.Info("cross-validating pruning path",
		log.OperationKey, log.OperationPrune,
		log.PhaseKey, log.PhaseValidation,
		log.SamplesKey, nSamples,
		log.FoldsKey, cfg.folds,
		log.LeavesKey, full.Leaves(),
	)

	// foldOf assigns each sample to a fold via a seeded shuffle.
	foldOf := make([]int, nSamples)
	perm := rand.New(rand.NewSource(cfg.seed)).Perm(nSamples)
	for i, p := range perm {
		foldOf[p] = i % cfg.folds
	}

	// losses[i][j] is the out-of-fold loss of sample j under the tree
	// pruned at reps[i]. Folds write disjoint sample indices, so the
	// fold loop needs no locking.
	losses := make([][]float64, len(reps))
	for i := range losses {
		losses[i] = make([]float64, nSamples)
	}
	foldErrs := make([]error, cfg.folds)

	isClassification := full.Task() == tree.Classification

	parallel.Parallelize(cfg.folds, func(startFold, endFold int) {
		for f := startFold; f < endFold; f++ {
			foldErrs[f] = scoreFold(grow, X, y, foldOf, f, reps, isClassification, losses)
		}
	})
	for _, ferr := range foldErrs {
		if ferr != nil {
			return nil, nil, cartErrors.NewModelError("GrowWithPath", "cross-validation fold failed", ferr)
		}
	}

	candidates := make([]CandidateSubtree, 0, len(reps))
	for i, rep := range reps {
		pruned, perr := full.Pruned(rep)
		if perr != nil {
			return nil, nil, perr
		}
		size := pruned.Leaves()
		// Adjacent critical alphas separated only by floating-point
		// noise prune to the same subtree; keep the first occurrence.
		if len(candidates) > 0 && size >= candidates[len(candidates)-1].Size {
			continue
		}
		mean := stat.Mean(losses[i], nil)
		se := stat.StdDev(losses[i], nil) / math.Sqrt(float64(nSamples))
		candidates = append(candidates, CandidateSubtree{
			Alpha:    alphas[i],
			Size:     size,
			Error:    mean,
			StdError: se,
		})
	}

	path, err := NewPath(candidates)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("pruning path complete",
		log.OperationKey, log.OperationPrune,
		log.PhaseKey, log.PhaseValidation,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return full, path, nil
}

// representativeAlphas maps each interval between adjacent critical
// alphas to a single tested parameter: the geometric midpoint, which
// prunes to the same subtree as any other point of the interval. The
// final critical alpha represents itself (the root-only interval).
func representativeAlphas(alphas []float64) []float64 {
	reps := make([]float64, len(alphas))
	for i := range alphas {
		if i < len(alphas)-1 {
			reps[i] = math.Sqrt(alphas[i] * alphas[i+1])
		} else {
			reps[i] = alphas[i]
		}
	}
	return reps
}

// scoreFold grows a tree without fold f, prunes it at every
// representative alpha, and records per-sample losses for the held-out
// rows.
func scoreFold(grow GrowFunc, X mat.Matrix, y *mat.VecDense, foldOf []int, f int, reps []float64, isClassification bool, losses [][]float64) error {
	nSamples, nFeatures := X.Dims()

	var trainIdx, testIdx []int
	for i := 0; i < nSamples; i++ {
		if foldOf[i] == f {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}
	if len(testIdx) == 0 {
		return nil
	}

	trainX := mat.NewDense(len(trainIdx), nFeatures, nil)
	trainY := mat.NewVecDense(len(trainIdx), nil)
	for r, i := range trainIdx {
		for c := 0; c < nFeatures; c++ {
			trainX.Set(r, c, X.At(i, c))
		}
		trainY.SetVec(r, y.AtVec(i))
	}

	testX := mat.NewDense(len(testIdx), nFeatures, nil)
	for r, i := range testIdx {
		for c := 0; c < nFeatures; c++ {
			testX.Set(r, c, X.At(i, c))
		}
	}

	foldTree, err := grow(trainX, trainY)
	if err != nil {
		return err
	}

	for ri, rep := range reps {
		pruned, err := foldTree.Pruned(rep)
		if err != nil {
			return err
		}
		pred, err := pruned.Predict(testX)
		if err != nil {
			return err
		}
		for r, i := range testIdx {
			truth := y.AtVec(i)
			if isClassification {
				if pred.AtVec(r) != truth {
					losses[ri][i] = 1
				}
			} else {
				d := truth - pred.AtVec(r)
				losses[ri][i] = d * d
			}
		}
	}
	return nil
}
