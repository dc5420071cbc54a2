package store

import (
	"context"
	"sync"
)

// MemoryStore keeps delivery results in process memory. It is the
// fallback when the database is disabled, and what the tests run on.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]*DeliveryResult
}

var Store *MemoryStore

func NewMemoryStore() *MemoryStore {
	if Store == nil {
		Store = &MemoryStore{
			results: make(map[string]*DeliveryResult),
		}
	}
	return Store
}

func (ms *MemoryStore) Save(_ context.Context, result DeliveryResult) error {
	if result.PiPushID == "" {
		return ErrEmptyPushID
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.results[result.PiPushID] = &result
	return nil
}

func (ms *MemoryStore) Get(_ context.Context, piPushID string) (*DeliveryResult, error) {
	if piPushID == "" {
		return nil, ErrEmptyPushID
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	result, ok := ms.results[piPushID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *result
	return &copied, nil
}

func (ms *MemoryStore) Delete(_ context.Context, piPushID string) error {
	if piPushID == "" {
		return ErrEmptyPushID
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.results, piPushID)
	return nil
}
