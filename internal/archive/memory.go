package archive

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in memory, for tests and one-shot runs.
type MemoryStore struct {
	mu    sync.Mutex
	snaps []Snapshot
}

// NewMemoryStore builds an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save appends a snapshot.
func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return nil
}

// Load retrieves the latest snapshot for the date, or the latest
// overall for the zero time.
func (s *MemoryStore) Load(_ context.Context, date time.Time) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *Snapshot
	for i := range s.snaps {
		snap := &s.snaps[i]
		if !date.IsZero() && snap.Taken.Format(DateFormat) != date.Format(DateFormat) {
			continue
		}
		if found == nil || snap.Taken.After(found.Taken) {
			found = snap
		}
	}
	if found == nil {
		return Snapshot{}, fmt.Errorf("no snapshot found")
	}
	return *found, nil
}

// List returns metadata for every stored snapshot.
func (s *MemoryStore) List(_ context.Context) ([]Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]Info, 0, len(s.snaps))
	for _, snap := range s.snaps {
		infos = append(infos, Info{ID: snap.ID, Taken: snap.Taken})
	}
	return infos, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
