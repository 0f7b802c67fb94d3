package pending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/signalix/otplogin/internal/model"
)

const memoryMaxEntries = 10000

// MemoryBackend keeps pending logins in process memory; entries vanish after ttl or on restart.
type MemoryBackend struct {
	entries *expirable.LRU[uuid.UUID, model.PendingLogin]
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a memory backend holding entries for ttl
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		entries: expirable.NewLRU[uuid.UUID, model.PendingLogin](memoryMaxEntries, nil, ttl),
	}
}

func (b *MemoryBackend) Put(_ context.Context, p model.PendingLogin) error {
	b.entries.Add(p.ID, p)
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, id uuid.UUID) (model.PendingLogin, error) {
	p, ok := b.entries.Get(id)
	if !ok {
		return model.PendingLogin{}, ErrNotFound
	}
	return p, nil
}

func (b *MemoryBackend) Delete(_ context.Context, id uuid.UUID) error {
	b.entries.Remove(id)
	return nil
}

// Len returns the number of live entries.
func (b *MemoryBackend) Len() int {
	return b.entries.Len()
}
