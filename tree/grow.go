package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// nodeStats summarizes the samples reaching a node.
type nodeStats struct {
	impurity    float64 // criterion impurity
	value       float64 // prediction: mean target or majority label
	riskNum     float64 // risk numerator: SSE or misclassified count
	classCounts []int   // classification only
}

// criterion abstracts the impurity computations that differ between
// regression and classification growth.
type criterion interface {
	// stats computes node-level statistics for the samples in inx.
	stats(inx []int) nodeStats
	// scanner returns an incremental left/right impurity evaluator over
	// the samples in inx. move transfers one sample from the right
	// partition to the left.
	scanner(inx []int) splitScanner
}

type splitScanner interface {
	move(row int)
	// impurities returns the current left and right impurities together
	// with the left-side sample count.
	impurities() (left, right float64, nLeft int)
}

// varCriterion grows regression trees on within-node variance.
type varCriterion struct {
	y []float64
}

func (c *varCriterion) stats(inx []int) nodeStats {
	var sum, sumSq float64
	for _, i := range inx {
		sum += c.y[i]
		sumSq += c.y[i] * c.y[i]
	}
	n := float64(len(inx))
	mean := sum / n
	sse := sumSq - sum*sum/n
	if sse < 0 {
		sse = 0 // numerical noise on constant targets
	}
	return nodeStats{
		impurity: sse / n,
		value:    mean,
		riskNum:  sse,
	}
}

func (c *varCriterion) scanner(inx []int) splitScanner {
	s := &varScanner{y: c.y}
	for _, i := range inx {
		s.totalSum += c.y[i]
		s.totalSumSq += c.y[i] * c.y[i]
		s.nTotal++
	}
	return s
}

type varScanner struct {
	y                    []float64
	totalSum, totalSumSq float64
	leftSum, leftSumSq   float64
	nTotal, nLeft        int
}

func (s *varScanner) move(row int) {
	s.leftSum += s.y[row]
	s.leftSumSq += s.y[row] * s.y[row]
	s.nLeft++
}

func (s *varScanner) impurities() (float64, float64, int) {
	nl := float64(s.nLeft)
	nr := float64(s.nTotal - s.nLeft)
	left, right := 0.0, 0.0
	if s.nLeft > 0 {
		left = (s.leftSumSq - s.leftSum*s.leftSum/nl) / nl
	}
	if s.nTotal-s.nLeft > 0 {
		rSum := s.totalSum - s.leftSum
		rSumSq := s.totalSumSq - s.leftSumSq
		right = (rSumSq - rSum*rSum/nr) / nr
	}
	if left < 0 {
		left = 0
	}
	if right < 0 {
		right = 0
	}
	return left, right, s.nLeft
}

// giniCriterion grows classification trees on Gini impurity. yIdx holds
// class indices into classes.
type giniCriterion struct {
	yIdx     []int
	nClasses int
	classes  []int
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sumSq += p * p
	}
	return 1 - sumSq
}

func (c *giniCriterion) stats(inx []int) nodeStats {
	counts := make([]int, c.nClasses)
	for _, i := range inx {
		counts[c.yIdx[i]]++
	}

	best := 0
	for i, cnt := range counts {
		if cnt > counts[best] {
			best = i
		}
	}

	return nodeStats{
		impurity:    gini(counts, len(inx)),
		value:       float64(c.classes[best]),
		riskNum:     float64(len(inx) - counts[best]),
		classCounts: counts,
	}
}

func (c *giniCriterion) scanner(inx []int) splitScanner {
	s := &giniScanner{
		yIdx:        c.yIdx,
		totalCounts: make([]int, c.nClasses),
		leftCounts:  make([]int, c.nClasses),
	}
	for _, i := range inx {
		s.totalCounts[c.yIdx[i]]++
		s.nTotal++
	}
	return s
}

type giniScanner struct {
	yIdx          []int
	totalCounts   []int
	leftCounts    []int
	nTotal, nLeft int
}

func (s *giniScanner) move(row int) {
	s.leftCounts[s.yIdx[row]]++
	s.nLeft++
}

func (s *giniScanner) impurities() (float64, float64, int) {
	nRight := s.nTotal - s.nLeft
	rightCounts := make([]int, len(s.totalCounts))
	for i := range rightCounts {
		rightCounts[i] = s.totalCounts[i] - s.leftCounts[i]
	}
	return gini(s.leftCounts, s.nLeft), gini(rightCounts, nRight), s.nLeft
}

// grower builds a tree top-down over row indices, so child nodes never
// copy the feature matrix.
type grower struct {
	cfg    config
	X      mat.Matrix
	crit   criterion
	nTotal int // root sample count, denominator for node risk
}

func (g *grower) grow(inx []int, depth int) *Node {
	st := g.crit.stats(inx)

	node := &Node{
		Value:       st.value,
		ClassCounts: st.classCounts,
		Impurity:    st.impurity,
		NSamples:    len(inx),
		Risk:        st.riskNum / float64(g.nTotal),
	}

	if g.shouldStop(len(inx), st.impurity, depth) {
		node.IsLeaf = true
		return node
	}

	feature, threshold, decrease := g.bestSplit(inx, st.impurity)
	if feature < 0 || decrease < g.cfg.minImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	var left, right []int
	for _, i := range inx {
		if g.X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < g.cfg.minSamplesLeaf || len(right) < g.cfg.minSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = g.grow(left, depth+1)
	node.Right = g.grow(right, depth+1)
	return node
}

func (g *grower) shouldStop(nSamples int, impurity float64, depth int) bool {
	if g.cfg.maxDepth > 0 && depth >= g.cfg.maxDepth {
		return true
	}
	if nSamples < g.cfg.minSamplesSplit {
		return true
	}
	return impurity <= 1e-12
}

// bestSplit scans every feature for the threshold with the largest
// weighted impurity decrease. Returns feature -1 when no admissible
// split improves on the parent.
func (g *grower) bestSplit(inx []int, parentImpurity float64) (int, float64, float64) {
	_, nFeatures := g.X.Dims()
	n := len(inx)

	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0

	sorted := make([]int, n)
	for f := 0; f < nFeatures; f++ {
		copy(sorted, inx)
		sort.Slice(sorted, func(a, b int) bool {
			return g.X.At(sorted[a], f) < g.X.At(sorted[b], f)
		})

		sc := g.crit.scanner(inx)
		for i := 0; i < n-1; i++ {
			sc.move(sorted[i])

			v, next := g.X.At(sorted[i], f), g.X.At(sorted[i+1], f)
			if v == next {
				continue
			}

			left, right, nLeft := sc.impurities()
			nRight := n - nLeft
			if nLeft < g.cfg.minSamplesLeaf || nRight < g.cfg.minSamplesLeaf {
				continue
			}

			weighted := (float64(nLeft)*left + float64(nRight)*right) / float64(n)
			decrease := parentImpurity - weighted
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = f
				bestThreshold = (v + next) / 2
			}
		}
	}

	if bestFeature >= 0 && math.IsInf(bestThreshold, 0) {
		return -1, 0, 0
	}
	return bestFeature, bestThreshold, bestDecrease
}
