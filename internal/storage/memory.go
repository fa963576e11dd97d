package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jit-rpg/engine/pkg/session"
)

// MemoryStore keeps save slots in process memory. It backs sessions
// that run without Redis, and tests. Snapshots are round-tripped
// through JSON so stored state does not alias the live session.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]saveRecord
}

var _ session.SaveStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots: make(map[string]saveRecord),
	}
}

func (m *MemoryStore) Save(ctx context.Context, slot string, snap *session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	var copied session.Snapshot
	if err := json.Unmarshal(data, &copied); err != nil {
		return fmt.Errorf("failed to copy save: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = saveRecord{
		Meta:     metaFor(slot, snap),
		Snapshot: &copied,
	}
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, slot string) (*session.Snapshot, error) {
	m.mu.Lock()
	rec, ok := m.slots[slot]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("slot %q: %w", slot, ErrNotFound)
	}

	// Copy out so the caller cannot mutate the stored slot.
	data, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to copy save: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to copy save: %w", err)
	}
	return &snap, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]session.SaveMeta, error) {
	m.mu.Lock()
	metas := make([]session.SaveMeta, 0, len(m.slots))
	for _, rec := range m.slots {
		metas = append(metas, rec.Meta)
	}
	m.mu.Unlock()

	sortMetas(metas)
	return metas, nil
}

func (m *MemoryStore) Delete(ctx context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; !ok {
		return fmt.Errorf("slot %q: %w", slot, ErrNotFound)
	}
	delete(m.slots, slot)
	return nil
}
