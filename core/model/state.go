// Package model provides the shared estimator-state plumbing composed
// into every fitted model in the library.
package model

import "sync"

// StateManager tracks whether an estimator has been fitted and the data
// dimensions it was fitted on. Estimators compose a StateManager rather
// than embedding it, keeping the fitted-state API out of their exported
// method sets.
//
// All methods are safe for concurrent use.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager returns an unfitted StateManager.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether SetFitted has been called since the last Reset.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as trained. Called by estimator
// implementations at the end of a successful Fit.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	s.fitted = true
	s.mu.Unlock()
}

// Reset returns the estimator to its untrained state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
	s.mu.Unlock()
}

// SetDimensions records the feature and sample counts seen at training
// time. Used later for schema checks against prediction inputs.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
	s.mu.Unlock()
}

// NFeatures returns the feature count recorded by SetDimensions.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures
}

// NSamples returns the sample count recorded by SetDimensions.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}
