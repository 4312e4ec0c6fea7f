// Package store holds the current sample and a bounded, most-recent-first
// history of readings. It is the only mutable shared state in the service.
package store

import (
	"sync"

	"github.com/SeniorCareDevice/seniorcare-v6/internal/telemetry"
)

// DefaultCapacity is the number of samples retained when no explicit
// capacity is configured.
const DefaultCapacity = 100

// Store keeps the latest sample plus up to capacity prior samples in
// arrival order, newest first. One writer (the ingest path) mutates it;
// query handlers and the hub's subscribe-time snapshot read it.
type Store struct {
	mu       sync.RWMutex
	current  *telemetry.Sample
	history  []telemetry.Sample
	capacity int
	seq      uint64
}

// New creates a store with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		history:  make([]telemetry.Sample, 0, capacity),
		capacity: capacity,
	}
}

// Capacity returns the configured history capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Record sets the current sample and prepends it to history, truncating
// the oldest entries beyond capacity. It returns a sequence number that
// increases by one per recorded sample.
func (s *Store) Record(sample telemetry.Sample) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := sample
	s.current = &cp

	if len(s.history) < s.capacity {
		s.history = append(s.history, telemetry.Sample{})
	}
	copy(s.history[1:], s.history)
	s.history[0] = sample

	s.seq++
	return s.seq
}

// Current returns the most recently recorded sample. The second return
// value is false before the first Record call.
func (s *Store) Current() (telemetry.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return telemetry.Sample{}, false
	}
	return *s.current, true
}

// History returns up to limit samples, newest first. A negative limit
// means the full retained history; limits above capacity are clamped.
func (s *Store) History(limit int) []telemetry.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.historyLocked(limit)
}

// Snapshot returns the current sample (nil before first record), the
// retained history and the latest sequence number as one atomic read.
func (s *Store) Snapshot() (*telemetry.Sample, []telemetry.Sample, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var current *telemetry.Sample
	if s.current != nil {
		cp := *s.current
		current = &cp
	}
	return current, s.historyLocked(-1), s.seq
}

func (s *Store) historyLocked(limit int) []telemetry.Sample {
	if limit < 0 || limit > s.capacity {
		limit = s.capacity
	}
	if limit > len(s.history) {
		limit = len(s.history)
	}

	out := make([]telemetry.Sample, limit)
	copy(out, s.history[:limit])
	return out
}
