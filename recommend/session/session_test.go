package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/models"
)

func sampleSets() []models.FormattedSet {
	return []models.FormattedSet{
		{Rank: 1, TotalCost: 250, Items: []models.FormattedItem{{ProductID: "a"}, {ProductID: "b"}}},
		{Rank: 2, TotalCost: 300, Items: []models.FormattedItem{{ProductID: "c"}}},
	}
}

// setupRedisStore creates a RedisStore backed by miniredis.
func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestSessionSet(t *testing.T) {
	s := New("")
	assert.NotEmpty(t, s.ID)

	s.Replace(sampleSets())
	set, err := s.Set(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, set.ProductIDs())

	_, err = s.Set(3)
	assert.ErrorIs(t, err, models.ErrSetNotFound)
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	s := New("abc")
	s.Replace(sampleSets())
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, s.LastSets, got.LastSets)

	// overwrite, never merge
	s.Replace(sampleSets()[:1])
	require.NoError(t, store.Save(ctx, s))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, got.LastSets, 1)

	// callers do not share state with the store
	got.LastSets = nil
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, again.LastSets, 1)

	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	assert.Equal(t, "memory", store.Name())
	testStore(t, store)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10, 20*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("short")))

	time.Sleep(50 * time.Millisecond)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRedisStore(t *testing.T) {
	store, _ := setupRedisStore(t, time.Hour)
	assert.Equal(t, "redis", store.Name())
	testStore(t, store)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("short")))
	assert.True(t, mr.Exists(sessionKey("short")))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestLoad(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	ctx := context.Background()

	fresh, err := Load(ctx, store, "")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)

	unknown, err := Load(ctx, store, "client-chosen")
	require.NoError(t, err)
	assert.Equal(t, "client-chosen", unknown.ID)

	s := New("known")
	s.Replace(sampleSets())
	require.NoError(t, store.Save(ctx, s))
	known, err := Load(ctx, store, "known")
	require.NoError(t, err)
	assert.Len(t, known.LastSets, 2)
}
