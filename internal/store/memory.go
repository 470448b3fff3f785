package store

import (
	"sync"

	"github.com/docchat-io/docchat/internal/models"
)

// MemoryStore is the volatile fallback tier: a process-wide map with no
// expiration. Entries live until deletion or process exit.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]models.Conversation
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]models.Conversation),
	}
}

// Get returns the stored conversation for id, if any. The returned
// slice is a copy; callers may append without affecting stored state.
func (s *MemoryStore) Get(id string) (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	out := make(models.Conversation, len(conv))
	copy(out, conv)
	return out, true
}

// Save stores a copy of conv under id.
func (s *MemoryStore) Save(id string, conv models.Conversation) {
	stored := make(models.Conversation, len(conv))
	copy(stored, conv)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = stored
}

// Delete removes the conversation for id, if present.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}

// Len returns the number of stored conversations.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
