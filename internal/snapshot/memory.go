package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/rerate/internal/contracts"
)

// MemoryStore implements contracts.SnapshotStore in process memory.
// Used by tests and DB-less one-shot runs.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string][]contracts.EstimateSnapshot
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		series: make(map[string][]contracts.EstimateSnapshot),
	}
}

// LoadSeries returns snapshots newest-first, deduplicated by date
func (m *MemoryStore) LoadSeries(ctx context.Context, symbol string) ([]contracts.EstimateSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.series[symbol]
	out := make([]contracts.EstimateSnapshot, len(stored))
	copy(out, stored)
	return Normalize(out), nil
}

// UpsertToday writes a snapshot, overwriting any same-day entry
func (m *MemoryStore) UpsertToday(ctx context.Context, snap contracts.EstimateSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.Date = snap.Date.Truncate(24 * time.Hour)

	stored := m.series[snap.Symbol]
	replaced := false
	for i := range stored {
		if sameDay(stored[i].Date, snap.Date) {
			stored[i] = snap
			replaced = true
			break
		}
	}
	if !replaced {
		stored = append(stored, snap)
	}

	m.series[snap.Symbol] = Trim(Normalize(stored), snap.Date)
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
