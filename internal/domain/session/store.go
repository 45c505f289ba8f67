// Package session keeps each browser session's uploaded table in memory
// and exposes the operations the dashboard handlers need: upload with
// optional append, clear, aggregate views, search and export.
package session

import (
	"sync"
	"time"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/search"
	"github.com/FACorreiaa/billing-dashboard/pkg/metrics"
)

type entry struct {
	table   *billing.Table
	index   *search.Index
	touched time.Time
}

// Store holds per-session state. Entries expire after ttl of inactivity
// and are reaped by Sweep.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

func (s *Store) get(sessionID string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sessionID]
	return e, ok
}

// touch refreshes the entry's expiry clock on read access.
func (s *Store) touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sessionID]; ok {
		e.touched = time.Now()
	}
}

func (s *Store) put(sessionID string, table *billing.Table, index *search.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[sessionID]; ok {
		_ = prev.index.Close()
	} else {
		metrics.SessionsActive.Inc()
	}
	s.entries[sessionID] = &entry{table: table, index: index, touched: time.Now()}
}

func (s *Store) clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return false
	}
	_ = e.index.Close()
	delete(s.entries, sessionID)
	metrics.SessionsActive.Dec()
	return true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops every session idle longer than the store TTL and returns
// how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.touched.Before(cutoff) {
			_ = e.index.Close()
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SessionsActive.Sub(float64(removed))
	}
	return removed
}
