// Package handoff carries one analysis result from the submission flow to the report view.
package handoff

import (
	"sync"

	"github.com/spigell/resume-matcher/internal/analysis"
)

// Handoff is navigation-scoped: it holds at most one result and gives it away once.
// Nothing is persisted, so a new session always starts empty.
type Handoff struct {
	mu        sync.Mutex
	result    *analysis.Result
	delivered bool
}

func New() *Handoff {
	return &Handoff{}
}

// Deliver stores a copy of result. Only the first delivery is kept.
func (h *Handoff) Deliver(result *analysis.Result) bool {
	if result == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.delivered {
		return false
	}

	h.result = result.Clone()
	h.delivered = true

	return true
}

// Take returns the delivered result and empties the handoff.
// The second call reports absence, the same as a reload of the report view.
func (h *Handoff) Take() (*analysis.Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.result == nil {
		return nil, false
	}

	result := h.result
	h.result = nil

	return result, true
}
