package prune

import (
	"github.com/treeops/cart/pkg/errors"
	"github.com/treeops/cart/pkg/log"
)

// Policy is the tie-break rule used when selecting the optimal
// complexity parameter from a pruning path. The source workflows this
// library descends from differ on the rule, so it is an explicit
// configuration choice rather than a hardwired default.
type Policy int

const (
	// PolicyOneSE selects the largest alpha whose error is within one
	// standard error of the minimum: the most parsimonious tree that is
	// statistically indistinguishable from the best one.
	PolicyOneSE Policy = iota

	// PolicyFirstMinimum selects the first candidate attaining the
	// minimum error, scanning in path order (increasing alpha). This is
	// the behavior of a plain arg-min over the error column.
	PolicyFirstMinimum

	// PolicySmallestTree selects, among all candidates attaining the
	// minimum error, the one with the fewest leaves.
	PolicySmallestTree
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyFirstMinimum:
		return "first-minimum"
	case PolicySmallestTree:
		return "smallest-tree"
	default:
		return "one-se"
	}
}

// Selector chooses a complexity parameter from a pruning path. It is
// stateless across calls; each selection is an independent scan.
type Selector struct {
	policy Policy
	logger log.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithPolicy sets the tie-break policy. The default is PolicyOneSE.
func WithPolicy(p Policy) SelectorOption {
	return func(s *Selector) { s.policy = p }
}

// NewSelector returns a Selector with the given options.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		policy: PolicyOneSE,
		logger: log.GetLoggerWithName("prune").With(
			log.ModelNameKey, "Selector",
			log.ComponentKey, "prune",
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the chosen candidate from the path under the selector's
// policy. It fails with an EmptyPathError when the path has no
// candidates.
func (s *Selector) Select(path *Path) (CandidateSubtree, error) {
	if path.Len() == 0 {
		return CandidateSubtree{}, errors.NewEmptyPathError("Selector.Select")
	}

	// Global minimum error and its first attainer in path order.
	minIdx := 0
	for i := 1; i < path.Len(); i++ {
		if path.At(i).Error < path.At(minIdx).Error {
			minIdx = i
		}
	}
	minErr := path.At(minIdx).Error

	chosen := minIdx
	switch s.policy {
	case PolicyFirstMinimum:
		// minIdx already holds the first attainer.

	case PolicySmallestTree:
		for i := minIdx + 1; i < path.Len(); i++ {
			if path.At(i).Error == minErr && path.At(i).Size < path.At(chosen).Size {
				chosen = i
			}
		}

	case PolicyOneSE:
		// Largest alpha whose error is within one standard error of the
		// minimum. Candidates are ordered by increasing alpha, so the
		// last qualifying index wins.
		threshold := minErr + path.At(minIdx).StdError
		for i := path.Len() - 1; i >= 0; i-- {
			if path.At(i).Error <= threshold {
				chosen = i
				break
			}
		}
	}

	c := path.At(chosen)
	s.logger.Info("complexity parameter selected",
		log.OperationKey, log.OperationSelect,
		log.PolicyKey, s.policy.String(),
		log.AlphaKey, c.Alpha,
		log.LeavesKey, c.Size,
	)
	return c, nil
}

// SelectAlpha returns only the complexity parameter of the selected
// candidate.
func (s *Selector) SelectAlpha(path *Path) (float64, error) {
	c, err := s.Select(path)
	if err != nil {
		return 0, err
	}
	return c.Alpha, nil
}
