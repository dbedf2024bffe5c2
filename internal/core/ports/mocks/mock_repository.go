package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/joshuaeyu/plum/internal/core/domain"
)

// MockManifestRepository is an in-memory ManifestRepository for testing
type MockManifestRepository struct {
	mu      sync.RWMutex
	records map[string]domain.AssetRecord

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

// NewMockManifestRepository creates a new mock manifest repository
func NewMockManifestRepository() *MockManifestRepository {
	return &MockManifestRepository{
		records: make(map[string]domain.AssetRecord),
	}
}

// Save adds or updates a record
func (m *MockManifestRepository) Save(ctx context.Context, rec domain.AssetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.records[rec.Path] = rec
	return nil
}

// Get retrieves a copy of a record by path
func (m *MockManifestRepository) Get(ctx context.Context, path string) (*domain.AssetRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrAssetNotFound)
	}
	return &rec, nil
}

// List returns every record sorted by path
func (m *MockManifestRepository) List(ctx context.Context) ([]domain.AssetRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.AssetRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Delete removes a record by path
func (m *MockManifestRepository) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[path]; !ok {
		return fmt.Errorf("%s: %w", path, domain.ErrAssetNotFound)
	}
	delete(m.records, path)
	return nil
}

// Count returns the number of stored records
func (m *MockManifestRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// MockJournal is an in-memory Journal for testing
type MockJournal struct {
	mu     sync.RWMutex
	events []domain.SyncEvent
}

// NewMockJournal creates a new mock journal
func NewMockJournal() *MockJournal {
	return &MockJournal{}
}

// Append stores an event with the next sequence number, starting at 1
func (m *MockJournal) Append(ctx context.Context, ev domain.SyncEvent) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev.Seq = uint64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return ev.Seq, nil
}

// Recent returns up to limit events newest first, filtered by path when set
func (m *MockJournal) Recent(ctx context.Context, limit int, path string) ([]domain.SyncEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.SyncEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if path != "" && m.events[i].Path != path {
			continue
		}
		out = append(out, m.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Events returns every stored event in append order
func (m *MockJournal) Events() []domain.SyncEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.SyncEvent(nil), m.events...)
}
