package api

import (
	"sync"

	"github.com/google/uuid"
)

// MatmulStore keeps completed computations in memory, keyed by their IDs.
type MatmulStore struct {
	mu      sync.Mutex
	records map[string]MatmulResponse
}

func NewMatmulStore() *MatmulStore {
	return &MatmulStore{
		records: make(map[string]MatmulResponse),
	}
}

func newMatmulID() string {
	return "mm_" + uuid.NewString()
}

// Put stores the record under a fresh ID and returns the stored copy.
func (s *MatmulStore) Put(resp MatmulResponse) MatmulResponse {
	resp.ID = newMatmulID()
	s.mu.Lock()
	s.records[resp.ID] = resp
	s.mu.Unlock()
	return resp
}

func (s *MatmulStore) Get(id string) (MatmulResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.records[id]
	return resp, ok
}

// Delete removes the record, reporting whether it existed.
func (s *MatmulStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	return true
}
