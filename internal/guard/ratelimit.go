package guard

import (
	"sync"
	"time"
)

type counter struct {
	count   int
	resetAt time.Time
}

/* CounterStore tracks fixed-window request counters keyed by
   (subject, policy). Two independent stores exist in a running server: one
   keyed by client IP (checked before authentication) and one keyed by user ID
   (checked after). They are constructed separately and never share keyspace.

   All access is mutex-guarded: handlers run on concurrent goroutines and the
   blocked-at-exactly-limit guarantee only holds if the read-modify-write on a
   counter is atomic. */
type CounterStore struct {
	mu       sync.Mutex
	counters map[string]*counter

	now func() time.Time
}

/* NewCounterStore creates a store and starts a background sweeper that evicts
   counters whose window has expired. */
func NewCounterStore() *CounterStore {
	s := newCounterStore(time.Now)
	go s.sweep(5 * time.Minute)
	return s
}

func newCounterStore(now func() time.Time) *CounterStore {
	return &CounterStore{
		counters: make(map[string]*counter),
		now:      now,
	}
}

/* Check records one request for subject under policy and reports whether the
   subject is over the limit. The first request for a key (or the first after
   the window expires) starts a fresh window with count=1. A blocked request
   does not advance the counter. */
func (s *CounterStore) Check(subject string, policy RateLimitPolicy) bool {
	key := subject + "|" + policy.String()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.After(c.resetAt) {
		s.counters[key] = &counter{
			count:   1,
			resetAt: now.Add(policy.WindowDuration()),
		}
		return false
	}

	if c.count >= policy.Requests {
		return true
	}

	c.count++
	return false
}

/* Remaining reports how many requests the subject has left in the current
   window, for X-RateLimit-Remaining style headers. */
func (s *CounterStore) Remaining(subject string, policy RateLimitPolicy) int {
	key := subject + "|" + policy.String()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.After(c.resetAt) {
		return policy.Requests
	}
	if c.count >= policy.Requests {
		return 0
	}
	return policy.Requests - c.count
}

/* sweep periodically drops expired counters so the map does not grow with one
   entry per (subject, policy) pair ever seen. */
func (s *CounterStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.evictExpired()
	}
}

func (s *CounterStore) evictExpired() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.counters {
		if now.After(c.resetAt) {
			delete(s.counters, key)
		}
	}
}

func (s *CounterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
