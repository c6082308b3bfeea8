package tree

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/treeops/cart/core/model"
	cartErrors "github.com/treeops/cart/pkg/errors"
	"github.com/treeops/cart/pkg/log"
)

var _ Model = (*Classifier)(nil)

// Classifier is a CART classification tree. Splits minimize Gini
// impurity; leaves predict the majority class. Labels are integers
// carried in a float64 vector.
type Classifier struct {
	state   *model.StateManager
	cfg     config
	root    *Node
	classes []int
	logger  log.Logger
}

// NewClassifier returns an untrained classification tree.
func NewClassifier(opts ...Option) *Classifier {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Classifier{
		state: model.NewStateManager(),
		cfg:   cfg,
		logger: log.GetLoggerWithName("tree").With(
			log.ModelNameKey, "Classifier",
			log.ComponentKey, "tree",
		),
	}
}

// Fit grows the tree on feature matrix X and integer labels y.
func (c *Classifier) Fit(X mat.Matrix, y *mat.VecDense) (err error) {
	defer cartErrors.Recover(&err, "Classifier.Fit")

	start := time.Now()
	nSamples, nFeatures := X.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return cartErrors.NewModelError("Classifier.Fit", "empty data", cartErrors.ErrEmptyData)
	}
	if y.Len() != nSamples {
		return cartErrors.NewDimensionError("Classifier.Fit", nSamples, y.Len(), 0)
	}

	c.logger.Info("training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)

	c.classes = extractClasses(y)
	classIndex := make(map[int]int, len(c.classes))
	for i, cls := range c.classes {
		classIndex[cls] = i
	}

	yIdx := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		yIdx[i] = classIndex[int(y.AtVec(i))]
	}

	g := &grower{
		cfg: c.cfg,
		X:   X,
		crit: &giniCriterion{
			yIdx:     yIdx,
			nClasses: len(c.classes),
			classes:  c.classes,
		},
		nTotal: nSamples,
	}

	inx := make([]int, nSamples)
	for i := range inx {
		inx[i] = i
	}
	c.root = g.grow(inx, 0)

	c.state.SetDimensions(nFeatures, nSamples)
	c.state.SetFitted()

	c.logger.Info("training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.LeavesKey, countLeaves(c.root),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns the majority-class label for each row of X.
func (c *Classifier) Predict(X mat.Matrix) (_ *mat.VecDense, err error) {
	defer cartErrors.Recover(&err, "Classifier.Predict")

	if !c.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Classifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != c.state.NFeatures() {
		return nil, cartErrors.NewDimensionError("Classifier.Predict", c.state.NFeatures(), nFeatures, 1)
	}

	pred := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		pred.SetVec(i, predictRow(c.root, X, i))
	}
	return pred, nil
}

// PredictProba returns per-class probability estimates derived from leaf
// class counts, one row per sample, columns ordered like Classes.
func (c *Classifier) PredictProba(X mat.Matrix) (_ *mat.Dense, err error) {
	defer cartErrors.Recover(&err, "Classifier.PredictProba")

	if !c.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Classifier", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != c.state.NFeatures() {
		return nil, cartErrors.NewDimensionError("Classifier.PredictProba", c.state.NFeatures(), nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, len(c.classes), nil)
	for i := 0; i < nSamples; i++ {
		n := c.root
		for !n.IsLeaf {
			if X.At(i, n.Feature) <= n.Threshold {
				n = n.Left
			} else {
				n = n.Right
			}
		}
		total := 0
		for _, cnt := range n.ClassCounts {
			total += cnt
		}
		for j, cnt := range n.ClassCounts {
			if total > 0 {
				probas.Set(i, j, float64(cnt)/float64(total))
			}
		}
	}
	return probas, nil
}

// Classes returns the sorted unique labels seen at training time.
func (c *Classifier) Classes() []int {
	out := make([]int, len(c.classes))
	copy(out, c.classes)
	return out
}

// Leaves returns the number of terminal nodes; 0 before fitting.
func (c *Classifier) Leaves() int { return countLeaves(c.root) }

// Depth returns the maximum tree depth; 0 for a stump.
func (c *Classifier) Depth() int { return maxDepth(c.root) }

// NFeatures returns the feature count seen at training time.
func (c *Classifier) NFeatures() int { return c.state.NFeatures() }

// Task returns Classification.
func (c *Classifier) Task() Task { return Classification }

// Root exposes the fitted tree structure for inspection. The returned
// node must not be mutated.
func (c *Classifier) Root() *Node { return c.root }

// Alphas returns the critical complexity parameters of the weakest-link
// pruning sequence, ascending and starting at 0.
func (c *Classifier) Alphas() ([]float64, error) {
	if !c.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Classifier", "Alphas")
	}
	return criticalAlphas(c.root), nil
}

// Pruned returns a new Classifier pruned at alpha. The receiver is
// unchanged.
func (c *Classifier) Pruned(alpha float64) (Model, error) {
	if !c.state.IsFitted() {
		return nil, cartErrors.NewNotFittedError("Classifier", "Pruned")
	}
	if alpha < 0 {
		return nil, cartErrors.NewInvalidParameterError("Classifier.Pruned", alpha, maxAlpha(c.root))
	}

	p := &Classifier{
		state:   model.NewStateManager(),
		cfg:     c.cfg,
		root:    prunedAt(c.root, alpha),
		classes: c.Classes(),
		logger:  c.logger,
	}
	p.state.SetDimensions(c.state.NFeatures(), c.state.NSamples())
	p.state.SetFitted()

	c.logger.Debug("pruned tree",
		log.OperationKey, log.OperationPrune,
		log.AlphaKey, alpha,
		log.LeavesKey, p.Leaves(),
	)
	return p, nil
}

func extractClasses(y *mat.VecDense) []int {
	seen := make(map[int]bool)
	for i := 0; i < y.Len(); i++ {
		seen[int(y.AtVec(i))] = true
	}
	classes := make([]int, 0, len(seen))
	for cls := range seen {
		classes = append(classes, cls)
	}
	sort.Ints(classes)
	return classes
}
