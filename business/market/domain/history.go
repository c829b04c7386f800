package domain

// MaxSignalHistory bounds the retained signal list.
const MaxSignalHistory = 100

// SignalHistory keeps signals most-recent-first, dropping the oldest beyond
// MaxSignalHistory. It is not safe for concurrent use.
type SignalHistory struct {
	signals []Signal
}

// Add prepends s.
func (h *SignalHistory) Add(s Signal) {
	next := make([]Signal, 0, min(len(h.signals)+1, MaxSignalHistory))
	next = append(next, s)
	next = append(next, h.signals[:min(len(h.signals), MaxSignalHistory-1)]...)
	h.signals = next
}

// List returns a copy, most recent first.
func (h *SignalHistory) List() []Signal {
	out := make([]Signal, len(h.signals))
	copy(out, h.signals)
	return out
}

// Len returns the number of retained signals.
func (h *SignalHistory) Len() int {
	return len(h.signals)
}

// Clear drops every signal.
func (h *SignalHistory) Clear() {
	h.signals = nil
}
