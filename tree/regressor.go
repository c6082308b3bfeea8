package tree

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/treeops/cart/core/model"
	cartErrors "github.com/treeops/cart/pkg/errors"
	"github.com/treeops/cart/pkg/log"
)

var _ Model = (*Regressor)(nil)

// Regressor is a CART regression tree. Splits minimize within-node
// variance; leaves predict the node mean.
type Regressor struct {
	state  *model.StateManager
	cfg    config
	root   *Node
	logger log.Logger
}

// NewRegressor returns an untrained regression tree. Without options the
// tree grows until nodes are pure or hold fewer than two samples, which
// is the oversized starting point cost-complexity pruning expects.
func NewRegressor(opts ...Option) *Regressor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Regressor{
		state: model.NewStateManager(),
		cfg:   cfg,
		logger: log.GetLoggerWithName("tree").With(
			log.ModelNameKey, "Regressor",
			log.ComponentKey, "tree",
		),
	}
}

// Fit grows the tree on feature matrix X and target vector y.
func (r *Regressor) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer cartErrors.Recover(&err, "Regressor.Fit")

	start := time.Now()
	nSamples, nFeatures := X.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return cartErrors.NewModelError("Regressor.Fit", "empty data", cartErrors.ErrEmptyData)
	}
	if y.Len() != nSamples {
		return cartErrors.NewDimensionError("Regressor.Fit", nSamples, y.Len(), 0)
	}

	r.logger.Info("training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)

	g := &grower{
		cfg:    r.cfg,
		X:      X,
		crit:   &varCriterion{y: vecToSlice(y)},
		nTotal: nSamples,
	}

	inx := make([]int, nSamples)
	for i := range inx {
		inx[i] = i
	}
	r.root = g.grow(inx, 0)

	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()

	r.logger.Info("training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.LeavesKey, countLeaves(r.root),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns the fitted mean for each row of X.
func (r *Regressor) Predict(X mat.Matrix) (_ *mat.VecDense, err error) {
	defer cartErrors.Recover(&err, "Regressor.Predict")

	if !r.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Regressor", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != r.state.NFeatures() {
		return nil, cartErrors.NewDimensionError("Regressor.Predict", r.state.NFeatures(), nFeatures, 1)
	}

	pred := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		pred.SetVec(i, predictRow(r.root, X, i))
	}
	return pred, nil
}

// Leaves returns the number of terminal nodes; 0 before fitting.
func (r *Regressor) Leaves() int { return countLeaves(r.root) }

// Depth returns the maximum tree depth; 0 for a stump.
func (r *Regressor) Depth() int { return maxDepth(r.root) }

// NFeatures returns the feature count seen at training time.
func (r *Regressor) NFeatures() int { return r.state.NFeatures() }

// Task returns Regression.
func (r *Regressor) Task() Task { return Regression }

// Root exposes the fitted tree structure for inspection. The returned
// node must not be mutated.
func (r *Regressor) Root() *Node { return r.root }

// Alphas returns the critical complexity parameters of the weakest-link
// pruning sequence, ascending and starting at 0.
func (r *Regressor) Alphas() ([]float64, error) {
	if !r.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Regressor", "Alphas")
	}
	return criticalAlphas(r.root), nil
}

// Pruned returns a new Regressor with every split whose per-leaf risk
// improvement is at or below alpha collapsed. The receiver is unchanged.
func (r *Regressor) Pruned(alpha float64) (Model, error) {
	if !r.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Regressor", "Pruned")
	}
	if alpha < 0 {
		return nil, cartErrors.NewInvalidParameterError("Regressor.Pruned", alpha, maxAlpha(r.root))
	}

	p := &Regressor{
		state:  model.NewStateManager(),
		cfg:    r.cfg,
		root:   prunedAt(r.root, alpha),
		logger: r.logger,
	}
	p.state.SetDimensions(r.state.NFeatures(), r.state.NSamples())
	p.state.SetFitted()

	r.logger.Debug("pruned tree",
		log.OperationKey, log.OperationPrune,
		log.AlphaKey, alpha,
		log.LeavesKey, p.Leaves(),
	)
	return p, nil
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
