package content

import (
	"sync"
	"time"
)

// store is the in-memory document record map. It hands out and accepts
// copies so callers never share record memory across the lock boundary.
type store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func newStore() *store {
	return &store{docs: make(map[string]*Document)}
}

func (s *store) get(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	return doc.clone(), true
}

func (s *store) put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.clone()
}

func (s *store) touch(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.LastAccessed = at
	}
}

func (s *store) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

func (s *store) all() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc.clone())
	}
	return out
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
