package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/parley-engine/pkg/state"
)

// MemoryStore keeps sessions in process memory. It serializes through
// JSON like the Redis store so both backends share snapshot semantics:
// mutating a state after save never changes the stored copy.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID][]byte
}

// Ensure MemoryStore implements Storage interface
var _ Storage = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[uuid.UUID][]byte),
	}
}

func (m *MemoryStore) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = data
	return nil
}

func (m *MemoryStore) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	data, ok := m.states[id]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}

	return &gs, nil
}

func (m *MemoryStore) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
