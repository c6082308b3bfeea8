// Package prune implements cost-complexity pruning selection for CART
// trees: building a cross-validated pruning path for an oversized tree,
// selecting the optimal complexity parameter under a configurable
// tie-break policy, pruning at the chosen parameter, and evaluating the
// result on held-out data.
package prune

import (
	"fmt"

	cartErrors "github.com/treeops/cart/pkg/errors"
)

// CandidateSubtree is one entry of the cost-complexity pruning path: a
// complexity parameter, the number of terminal leaves the oversized tree
// retains at that parameter, and the cross-validated error estimate with
// its standard error.
type CandidateSubtree struct {
	Alpha    float64 // complexity parameter; larger prunes harder
	Size     int     // terminal leaves at this parameter
	Error    float64 // cross-validated prediction error estimate
	StdError float64 // standard error of the estimate
}

// Path is an immutable ordered sequence of candidate subtrees, ordered
// by strictly decreasing size and strictly increasing alpha. It is
// produced once per oversized tree and consumed by a Selector.
type Path struct {
	candidates []CandidateSubtree
}

// NewPath validates the ordering invariant and returns the path. The
// input slice is copied; later mutation of it does not affect the path.
func NewPath(candidates []CandidateSubtree) (*Path, error) {
	for i, c := range candidates {
		if c.Alpha < 0 {
			return nil, cartErrors.NewValueError("NewPath",
				fmt.Sprintf("candidate %d has negative alpha %g", i, c.Alpha))
		}
		if c.Size <= 0 {
			return nil, cartErrors.NewValueError("NewPath",
				fmt.Sprintf("candidate %d has non-positive size %d", i, c.Size))
		}
		if c.Error < 0 || c.StdError < 0 {
			return nil, cartErrors.NewValueError("NewPath",
				fmt.Sprintf("candidate %d has negative error or standard error", i))
		}
		if i > 0 {
			prev := candidates[i-1]
			if c.Alpha <= prev.Alpha {
				return nil, cartErrors.NewValueError("NewPath",
					fmt.Sprintf("alphas must be strictly increasing: %g then %g", prev.Alpha, c.Alpha))
			}
			if c.Size >= prev.Size {
				return nil, cartErrors.NewValueError("NewPath",
					fmt.Sprintf("sizes must be strictly decreasing: %d then %d", prev.Size, c.Size))
			}
		}
	}

	cp := make([]CandidateSubtree, len(candidates))
	copy(cp, candidates)
	return &Path{candidates: cp}, nil
}

// Len returns the number of candidates.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.candidates)
}

// At returns the i-th candidate, ordered by increasing alpha.
func (p *Path) At(i int) CandidateSubtree { return p.candidates[i] }

// Candidates returns a copy of the candidate sequence.
func (p *Path) Candidates() []CandidateSubtree {
	if p == nil {
		return nil
	}
	out := make([]CandidateSubtree, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// MaxAlpha returns the largest alpha on the path, or 0 for an empty path.
func (p *Path) MaxAlpha() float64 {
	if p.Len() == 0 {
		return 0
	}
	return p.candidates[len(p.candidates)-1].Alpha
}
