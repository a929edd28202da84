package store

import (
	"context"
	"strings"
	"sync"

	"github.com/karune/chessblock/internal/domain"
)

// MemoryStore is a development fallback used when neither redis nor a
// database is configured. Records survive for the process lifetime only.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.GameStateRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.GameStateRecord)}
}

func (s *MemoryStore) Read(_ context.Context, id string) (*domain.GameStateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[strings.TrimSpace(id)].Clone(), nil
}

func (s *MemoryStore) Write(_ context.Context, id string, rec *domain.GameStateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[strings.TrimSpace(id)] = rec.Clone()
	return nil
}
