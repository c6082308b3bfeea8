// Package tree implements CART decision trees for regression and
// classification, including the cost-complexity pruning machinery the
// prune package builds on.
//
// Both estimators follow the same shape: construct with functional
// options, Fit on a gonum matrix plus target vector, Predict on new
// rows. A fitted tree additionally exposes its cost-complexity pruning
// structure through Alphas and Pruned.
package tree

import "gonum.org/v1/gonum/mat"

// Task distinguishes regression trees from classification trees. It
// determines which impurity criterion is used during growth and which
// error metric applies during evaluation.
type Task int

const (
	// Regression grows trees minimizing within-node variance.
	Regression Task = iota
	// Classification grows trees minimizing Gini impurity.
	Classification
)

// String returns a human-readable task name.
func (t Task) String() string {
	if t == Classification {
		return "classification"
	}
	return "regression"
}

// Node is a single node of a fitted tree. Exported so callers can walk
// the structure, but trees must be treated as immutable once fitted;
// pruning returns a new tree rather than mutating in place.
type Node struct {
	IsLeaf    bool
	Feature   int     // split feature index (internal nodes)
	Threshold float64 // split threshold; rows with value <= Threshold go left
	Left      *Node
	Right     *Node

	Value       float64 // prediction at this node: mean target or majority label
	ClassCounts []int   // per-class sample counts (classification only)
	Impurity    float64 // node impurity under the growth criterion
	NSamples    int     // training samples reaching this node
	Risk        float64 // resubstitution risk R(t), normalized by root sample count
}

// Model is the read surface a fitted tree exposes to the prune package:
// prediction plus the cost-complexity pruning capability.
type Model interface {
	// Predict returns one prediction per row of X.
	Predict(X mat.Matrix) (*mat.VecDense, error)
	// Leaves returns the number of terminal nodes.
	Leaves() int
	// Depth returns the maximum depth, with a stump counting as 0.
	Depth() int
	// NFeatures returns the feature count seen at training time.
	NFeatures() int
	// Task reports whether this is a regression or classification tree.
	Task() Task
	// Alphas returns the critical complexity parameters of the
	// weakest-link pruning sequence, ascending and starting at 0.
	Alphas() ([]float64, error)
	// Pruned returns a new tree with every split whose per-leaf risk
	// improvement is at or below alpha collapsed. The receiver is not
	// modified.
	Pruned(alpha float64) (Model, error)
}

// Option configures tree growth.
type Option func(*config)

type config struct {
	minSamplesSplit     int
	minSamplesLeaf      int
	minImpurityDecrease float64
	maxDepth            int // 0 = unlimited
}

func defaultConfig() config {
	return config{
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
}

// WithMinSamplesSplit sets the minimum number of samples a node must
// hold to be considered for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(c *config) { c.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples each child of a
// split must receive.
func WithMinSamplesLeaf(n int) Option {
	return func(c *config) { c.minSamplesLeaf = n }
}

// WithMinImpurityDecrease sets the smallest weighted impurity decrease a
// split must achieve to be kept.
func WithMinImpurityDecrease(d float64) Option {
	return func(c *config) { c.minImpurityDecrease = d }
}

// WithMaxDepth caps tree depth; 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(c *config) { c.maxDepth = d }
}

func countLeaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf {
		return 1
	}
	return countLeaves(n.Left) + countLeaves(n.Right)
}

func maxDepth(n *Node) int {
	if n == nil || n.IsLeaf {
		return 0
	}
	l := maxDepth(n.Left)
	r := maxDepth(n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}

func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.ClassCounts != nil {
		c.ClassCounts = make([]int, len(n.ClassCounts))
		copy(c.ClassCounts, n.ClassCounts)
	}
	c.Left = cloneNode(n.Left)
	c.Right = cloneNode(n.Right)
	return &c
}

// predictRow walks a single row down to a leaf.
func predictRow(root *Node, X mat.Matrix, row int) float64 {
	n := root
	for !n.IsLeaf {
		if X.At(row, n.Feature) <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}
