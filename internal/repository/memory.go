package repository

import (
	"context"
	"sync"
	"time"

	"chapak/internal/models"
)

type memoryEntry struct {
	snapshot  *models.FlowSnapshot
	expiresAt time.Time
}

// MemoryStateRepository is the in-process fallback for session snapshots.
type MemoryStateRepository struct {
	states sync.Map
	ttl    time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, sessionID string) (*models.FlowSnapshot, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.states.Delete(sessionID)
		return nil, nil
	}
	return entry.snapshot, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, snapshot *models.FlowSnapshot) error {
	r.states.Store(snapshot.SessionID, &memoryEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}
