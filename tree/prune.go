package tree

import "math"

// Cost-complexity (weakest-link) pruning. For an internal node t with
// subtree T_t, the link strength is
//
//	g(t) = (R(t) - R(T_t)) / (|leaves(T_t)| - 1)
//
// where R is resubstitution risk. Collapsing nodes in ascending order of
// g produces the nested sequence of optimal subtrees; the g values are
// the critical complexity parameters (alphas) of the pruning path.

// alphaEps absorbs floating-point noise when comparing link strength
// against a requested alpha.
const alphaEps = 1e-12

// subtreeStats returns the total leaf risk and leaf count of the subtree
// rooted at n.
func subtreeStats(n *Node) (risk float64, leaves int) {
	if n.IsLeaf {
		return n.Risk, 1
	}
	lr, ll := subtreeStats(n.Left)
	rr, rl := subtreeStats(n.Right)
	return lr + rr, ll + rl
}

// weakestLinks returns the minimum link strength over all internal nodes
// of the tree and every node attaining it. Returns +Inf and nil for a
// single-leaf tree.
func weakestLinks(root *Node) (float64, []*Node) {
	minG := math.Inf(1)
	var argmin []*Node

	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || n.IsLeaf {
			return
		}
		risk, leaves := subtreeStats(n)
		g := (n.Risk - risk) / float64(leaves-1)
		if g < 0 {
			g = 0
		}
		switch {
		case g < minG-alphaEps:
			minG = g
			argmin = append(argmin[:0], n)
		case g <= minG+alphaEps:
			argmin = append(argmin, n)
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(root)

	return minG, argmin
}

func collapse(n *Node) {
	n.IsLeaf = true
	n.Left = nil
	n.Right = nil
}

// criticalAlphas computes the ascending sequence of critical complexity
// parameters for the tree, starting at 0 and ending with the alpha that
// collapses the tree to its root.
func criticalAlphas(root *Node) []float64 {
	alphas := []float64{0}

	t := cloneNode(root)
	prev := 0.0
	for !t.IsLeaf {
		g, links := weakestLinks(t)
		// The sequence is nondecreasing in exact arithmetic; clamp to
		// keep it so under floating point.
		if g < prev {
			g = prev
		}
		if g > prev+alphaEps {
			alphas = append(alphas, g)
			prev = g
		}
		for _, n := range links {
			collapse(n)
		}
	}
	return alphas
}

// maxAlpha returns the largest critical alpha of the tree, the parameter
// at which the whole tree collapses to the root.
func maxAlpha(root *Node) float64 {
	alphas := criticalAlphas(root)
	return alphas[len(alphas)-1]
}

// prunedAt returns a deep copy of the tree with every weakest link of
// strength at most alpha collapsed. Collapsing is iterated because each
// collapse changes the link strength of the remaining ancestors.
func prunedAt(root *Node, alpha float64) *Node {
	t := cloneNode(root)
	for !t.IsLeaf {
		g, links := weakestLinks(t)
		if g > alpha+alphaEps {
			break
		}
		for _, n := range links {
			collapse(n)
		}
	}
	return t
}
