package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kese-app/goldday/internal/models"
)

// circlesKey is the fixed storage key for the whole room collection. The
// mobile app persisted the same collection shape under this key.
const circlesKey = "kese_gold_days"

// CircleStore persists the room collection as a single JSON value. Every
// write is a whole-collection replace, so Update serializes the full
// read-modify-write cycle; if the write fails, the stored collection is
// unchanged and the mutation is discarded.
type CircleStore struct {
	kv KV
	mu sync.Mutex
}

// NewCircleStore creates a CircleStore on top of the given key-value store.
func NewCircleStore(kv KV) *CircleStore {
	return &CircleStore{kv: kv}
}

// Load returns all persisted rooms, newest first (insertion order is
// maintained by the writers).
func (s *CircleStore) Load(ctx context.Context) ([]*models.Circle, error) {
	data, ok, err := s.kv.Get(ctx, circlesKey)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var rooms []*models.Circle
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return rooms, nil
}

// Update loads the collection, applies fn, and writes the result back
// atomically with respect to other Update calls. fn returning an error
// aborts the update with nothing written.
func (s *CircleStore) Update(ctx context.Context, fn func(rooms []*models.Circle) ([]*models.Circle, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.Load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(rooms)
	if err != nil {
		return err
	}
	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode rooms: %w", err)
	}
	if err := s.kv.Put(ctx, circlesKey, data); err != nil {
		return fmt.Errorf("save rooms: %w", err)
	}
	return nil
}
