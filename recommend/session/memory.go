package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"

	"stylematch/recommend/models"
)

// MemoryStore is an in-process LRU of sessions with a per-entry expiry. Entries
// are stored encoded so callers never share a Session value.
type MemoryStore struct {
	cache gcache.Cache
}

func NewMemoryStore(maxItems int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gcache.New(maxItems).LRU().Expiration(ttl).Build(),
	}
}

func (ms *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	v, err := ms.cache.Get(id)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected session entry %T", v)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (ms *MemoryStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return ms.cache.Set(s.ID, data)
}

func (ms *MemoryStore) Ping(ctx context.Context) error { return nil }

func (ms *MemoryStore) Name() string { return "memory" }
