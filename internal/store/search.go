package store

import (
	"datasources-client/internal/api"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"sync"
	"time"
)

type SearchEntry struct {
	Response  *api.Response
	Timestamp time.Time
}

// SearchStore maps a serialized set of search parameters to the last response
// received for it. Entries are replaced, never evicted.
type SearchStore struct {
	lock    sync.RWMutex
	entries map[string]SearchEntry
	time    chrono.TimeAPI
}

func NewSearchStore(clock chrono.TimeAPI) *SearchStore {
	assert.NotNil(clock)
	return &SearchStore{
		entries: make(map[string]SearchEntry),
		time:    clock,
	}
}

func (s *SearchStore) Get(key string) (SearchEntry, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Set stores res under key, stamped with the current time.
func (s *SearchStore) Set(key string, res *api.Response) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.entries[key] = SearchEntry{
		Response:  res,
		Timestamp: s.time.Now(),
	}
}

// Fresh returns the response stored under key if it is younger than maxAge.
func (s *SearchStore) Fresh(key string, maxAge time.Duration) (*api.Response, bool) {
	entry, ok := s.Get(key)
	if !ok {
		return nil, false
	}
	if s.time.Now().Sub(entry.Timestamp) >= maxAge {
		return nil, false
	}
	return entry.Response, true
}

func (s *SearchStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.entries)
}
