package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/covernest/ratedesk/internal/rates"
)

// MemoryStore is an in-memory Store implementation backed by a map and an
// RWMutex. Suitable for development, testing, and single-instance use.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*memBatch
	queries []QueryLogEntry
}

type memBatch struct {
	meta Batch
	rows []rates.RawRow
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string]*memBatch)}
}

// CurrentBatch returns the most recently published batch, or nil.
func (m *MemoryStore) CurrentBatch(ctx context.Context) (*Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Batch
	for _, b := range m.batches {
		if b.meta.Status != StatusCompleted {
			continue
		}
		if latest == nil || b.meta.PublishedAt.After(*latest.PublishedAt) {
			meta := b.meta
			latest = &meta
		}
	}
	return latest, nil
}

// ListBatches returns all batches, newest upload first.
func (m *MemoryStore) ListBatches(ctx context.Context) ([]Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

// GetRecords returns the raw rows of one batch, or of all batches when
// batchID is empty.
func (m *MemoryStore) GetRecords(ctx context.Context, batchID string) ([]rates.RawRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if batchID != "" {
		b, ok := m.batches[batchID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
		}
		return append([]rates.RawRow(nil), b.rows...), nil
	}

	var out []rates.RawRow
	for _, b := range m.batches {
		out = append(out, b.rows...)
	}
	return out, nil
}

// ImportBatch stores rows as a new staged batch.
func (m *MemoryStore) ImportBatch(ctx context.Context, source string, rows []rates.RawRow) (*Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta := Batch{
		ID:         uuid.NewString(),
		Source:     source,
		Status:     StatusStaged,
		RowCount:   len(rows),
		UploadedAt: time.Now().UTC(),
	}
	m.batches[meta.ID] = &memBatch{meta: meta, rows: append([]rates.RawRow(nil), rows...)}
	return &meta, nil
}

// PublishBatch marks a staged batch completed.
func (m *MemoryStore) PublishBatch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.batches[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	now := time.Now().UTC()
	b.meta.Status = StatusCompleted
	b.meta.PublishedAt = &now
	return nil
}

// LogQuery appends one analytics entry.
func (m *MemoryStore) LogQuery(ctx context.Context, e QueryLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	m.queries = append(m.queries, e)
	return nil
}

// QueryLog returns a copy of the recorded entries; used by tests.
func (m *MemoryStore) QueryLog() []QueryLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]QueryLogEntry(nil), m.queries...)
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error { return nil }
