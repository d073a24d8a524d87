// Package memory provides in-memory implementations of storage ports.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/ports"
)

// DatasetStore is the in-memory implementation of ports.DatasetStore.
// It holds the single active dataset; Replace swaps it wholesale, so
// readers never observe a partially ingested collection.
type DatasetStore struct {
	mu      sync.RWMutex
	current ports.Dataset
	loaded  bool
}

// NewDatasetStore creates an empty dataset store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{}
}

// Replace swaps in a newly ingested dataset.
func (s *DatasetStore) Replace(ctx context.Context, ds ports.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ds
	s.loaded = true
	return nil
}

// Current returns a snapshot of the active dataset. The event slice is
// copied so callers can sort or slice it without racing the next Replace.
func (s *DatasetStore) Current(ctx context.Context) (ports.Dataset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return ports.Dataset{}, false, nil
	}
	snapshot := s.current
	snapshot.Events = append([]event.Event(nil), s.current.Events...)
	return snapshot, true, nil
}

// Clear removes the active dataset (for testing).
func (s *DatasetStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ports.Dataset{}
	s.loaded = false
}

// Ensure interface compliance.
var _ ports.DatasetStore = (*DatasetStore)(nil)
