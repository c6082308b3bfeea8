package prune

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartErrors "github.com/treeops/cart/pkg/errors"
)

func TestSelectPolicies(t *testing.T) {
	// Three candidates: the full-size subtree has the minimum error, but
	// the mid-size one is within one standard error of it.
	path, err := NewPath(validCandidates())
	require.NoError(t, err)

	tests := []struct {
		name      string
		policy    Policy
		wantAlpha float64
	}{
		{"first minimum picks the global minimum", PolicyFirstMinimum, 0.01},
		{"smallest tree without ties follows the minimum", PolicySmallestTree, 0.01},
		{"one SE prefers the simpler qualifying tree", PolicyOneSE, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(WithPolicy(tt.policy))
			alpha, err := s.SelectAlpha(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlpha, alpha)
		})
	}
}

func TestSelectReturnsPathMember(t *testing.T) {
	path, err := NewPath(validCandidates())
	require.NoError(t, err)

	for _, policy := range []Policy{PolicyOneSE, PolicyFirstMinimum, PolicySmallestTree} {
		alpha, err := NewSelector(WithPolicy(policy)).SelectAlpha(path)
		require.NoError(t, err)

		found := false
		for _, c := range path.Candidates() {
			if c.Alpha == alpha {
				found = true
			}
		}
		assert.True(t, found, "policy %v returned alpha %v not on the path", policy, alpha)
	}
}

func TestSelectTieBreaks(t *testing.T) {
	// The two smaller subtrees tie on the minimum error exactly.
	path, err := NewPath([]CandidateSubtree{
		{Alpha: 0.01, Size: 9, Error: 0.20, StdError: 0.0},
		{Alpha: 0.1, Size: 4, Error: 0.20, StdError: 0.0},
		{Alpha: 0.5, Size: 1, Error: 0.45, StdError: 0.0},
	})
	require.NoError(t, err)

	first, err := NewSelector(WithPolicy(PolicyFirstMinimum)).Select(path)
	require.NoError(t, err)
	assert.Equal(t, 9, first.Size, "first-minimum keeps the first attainer in path order")

	smallest, err := NewSelector(WithPolicy(PolicySmallestTree)).Select(path)
	require.NoError(t, err)
	assert.Equal(t, 4, smallest.Size, "smallest-tree prefers fewer leaves among ties")

	// With zero standard error the 1-SE rule degenerates to the largest
	// alpha attaining the minimum.
	oneSE, err := NewSelector().Select(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, oneSE.Alpha)
}

func TestSelectMinimumErrorProperty(t *testing.T) {
	path, err := NewPath(validCandidates())
	require.NoError(t, err)

	c, err := NewSelector(WithPolicy(PolicyFirstMinimum)).Select(path)
	require.NoError(t, err)

	for _, other := range path.Candidates() {
		assert.LessOrEqual(t, c.Error, other.Error)
	}
}

func TestSelectEmptyPath(t *testing.T) {
	empty, err := NewPath(nil)
	require.NoError(t, err)

	s := NewSelector()
	_, err = s.SelectAlpha(empty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cartErrors.ErrEmptyPath), "got %v, want ErrEmptyPath", err)

	var epErr *cartErrors.EmptyPathError
	assert.True(t, errors.As(err, &epErr))
}

func TestSelectSingleCandidate(t *testing.T) {
	path, err := NewPath([]CandidateSubtree{{Alpha: 0.2, Size: 1, Error: 0.5, StdError: 0.1}})
	require.NoError(t, err)

	for _, policy := range []Policy{PolicyOneSE, PolicyFirstMinimum, PolicySmallestTree} {
		alpha, err := NewSelector(WithPolicy(policy)).SelectAlpha(path)
		require.NoError(t, err)
		assert.Equal(t, 0.2, alpha)
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "one-se", PolicyOneSE.String())
	assert.Equal(t, "first-minimum", PolicyFirstMinimum.String())
	assert.Equal(t, "smallest-tree", PolicySmallestTree.String())
}
