package session

import "sync"

// MemoryStore is the default Store: a mutex-guarded map. State lives for the
// process lifetime; conversations are never evicted.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]Record),
	}
}

// Get returns the record for a chat and whether one exists
func (s *MemoryStore) Get(chatID int64) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[chatID]
	return rec, ok, nil
}

// Set writes a record unconditionally
func (s *MemoryStore) Set(chatID int64, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[chatID] = rec
	return nil
}

// Init writes the record only if the chat has none yet. The single mutex
// makes the check-and-create atomic, so concurrent first touches of the same
// conversation resolve to one winner.
func (s *MemoryStore) Init(chatID int64, rec Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[chatID]; ok {
		return false, nil
	}
	s.records[chatID] = rec
	return true, nil
}

// Count returns the number of stored conversations
func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
