package session

import "sync"

// Sequencer hands out monotonic sequence numbers per logical query type
// and tells whether a completed request is still the latest issued for
// its type. Concurrent fetches (catalog vs search) are not cancelled
// in-flight, so a stale response can arrive after a newer one; callers
// drop any result whose sequence number is no longer current instead of
// letting it overwrite fresher data.
type Sequencer struct {
	mu     sync.Mutex
	issued map[string]uint64
}

// NewSequencer constructs an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{issued: make(map[string]uint64)}
}

// Next issues the next sequence number for the given query type.
func (s *Sequencer) Next(kind string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[kind]++
	return s.issued[kind]
}

// Current reports whether seq is the latest number issued for kind.
// A response should only be applied while this holds.
func (s *Sequencer) Current(kind string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued[kind] == seq
}
