package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/safient/safient-escrow/internal/domain"
)

type memoryStore struct {
	mu         sync.RWMutex
	records    map[string]*domain.TransferRecord
	byTransfer map[string]string
	history    map[string][]*domain.TransferEvent
	seq        uint64
}

// NewMemoryStore creates a process-local store for tests and local development
func NewMemoryStore() Store {
	return &memoryStore{
		records:    make(map[string]*domain.TransferRecord),
		byTransfer: make(map[string]string),
		history:    make(map[string][]*domain.TransferEvent),
	}
}

func (s *memoryStore) appendEvent(rec *domain.TransferRecord, from *domain.TransferStatus) {
	s.seq++
	s.history[rec.TransferID] = append(s.history[rec.TransferID], &domain.TransferEvent{
		ID:         s.seq,
		TransferID: rec.TransferID,
		FromStatus: from,
		ToStatus:   rec.Status,
		Snapshot:   snapshot(rec),
		CreatedAt:  rec.UpdatedAt,
	})
}

func (s *memoryStore) PutTransfer(_ context.Context, rec *domain.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	if _, ok := s.byTransfer[rec.TransferID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.TransferID)
	}

	s.records[rec.ID] = rec.Clone()
	s.byTransfer[rec.TransferID] = rec.ID
	s.appendEvent(rec, nil)
	return nil
}

func (s *memoryStore) GetTransfer(_ context.Context, id string) (*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records[id].Clone(), nil
}

func (s *memoryStore) GetTransferByTransferID(_ context.Context, transferID string) (*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTransfer[transferID]
	if !ok {
		return nil, nil
	}
	return s.records[id].Clone(), nil
}

func (s *memoryStore) ListTransfers(_ context.Context, filter ListTransfersFilter) ([]*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.TransferRecord, 0, len(s.records))
	for _, rec := range s.records {
		if filter.matches(rec) && filter.After.precedes(rec) {
			matched = append(matched, rec.Clone())
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit := filter.PageLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *memoryStore) UpdateTransfer(_ context.Context, rec *domain.TransferRecord, expected domain.TransferStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[rec.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != expected {
		return ErrStatusConflict
	}

	updated := rec.Clone()
	updated.TransferID = stored.TransferID
	updated.CreatedAt = stored.CreatedAt
	s.records[rec.ID] = updated

	from := expected
	s.appendEvent(updated, &from)
	return nil
}

func (s *memoryStore) GetTransferHistory(_ context.Context, transferID string) ([]*domain.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.history[transferID]
	out := make([]*domain.TransferEvent, len(events))
	for i, ev := range events {
		c := *ev
		c.Snapshot = ev.Snapshot.Clone()
		out[i] = &c
	}
	return out, nil
}
