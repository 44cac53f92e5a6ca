package monitor

import "sync"

// Statistics is a mutable map of counters owned by the embedding service.
// The monitor only reads it, through Drain, when the status endpoint is hit.
type Statistics struct {
	mu     sync.Mutex
	values map[string]any
}

// NewStatistics creates a Statistics seeded with a copy of initial.
func NewStatistics(initial map[string]any) *Statistics {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Statistics{values: values}
}

// Set stores v under key.
func (s *Statistics) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// Add increments a numeric value. A missing or non-numeric value is
// replaced by delta.
func (s *Statistics) Add(key string, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := s.values[key].(type) {
	case int64:
		s.values[key] = v + delta
	case int:
		s.values[key] = int64(v) + delta
	case float64:
		s.values[key] = v + float64(delta)
	default:
		s.values[key] = delta
	}
}

// Get returns the value stored under key.
func (s *Statistics) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Snapshot returns a copy of the current values.
func (s *Statistics) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Drain returns a copy of the current values and then sets every value,
// numeric or not, to zero.
func (s *Statistics) Drain() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.copyLocked()
	for k := range s.values {
		s.values[k] = 0
	}
	return out
}

func (s *Statistics) copyLocked() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
