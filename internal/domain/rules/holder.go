package rules

import "sync/atomic"

// Holder publishes a rule set to concurrent readers. A stored set must not
// be modified afterwards.
type Holder struct {
	value atomic.Pointer[RuleSet]
}

// NewHolder creates a holder seeded with initial, or Empty when nil
func NewHolder(initial *RuleSet) *Holder {
	h := &Holder{}
	if initial == nil {
		initial = Empty()
	}
	h.value.Store(initial)
	return h
}

// Get returns the currently published rule set
func (h *Holder) Get() *RuleSet {
	return h.value.Load()
}

// Set publishes a new rule set. Nil is ignored.
func (h *Holder) Set(set *RuleSet) {
	if set == nil {
		return
	}
	h.value.Store(set)
}
