package store

import (
	"context"
	"testing"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProfiles struct {
	*MemoryProfiles
	gets int
}

func (c *countingProfiles) Get(ctx context.Context, userID string) (ai.Profile, error) {
	c.gets++
	return c.MemoryProfiles.Get(ctx, userID)
}

func TestProfileCache_HitsAndExpiry(t *testing.T) {
	ctx := context.Background()
	backing := &countingProfiles{MemoryProfiles: NewMemoryProfiles()}
	cache := NewProfileCache(backing, time.Minute, 10)
	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	_, err = cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.gets)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.gets)
}

func TestProfileCache_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	cache := NewProfileCache(NewMemoryProfiles(), 0, 0)

	_, err := cache.Get(ctx, "u1")
	require.NoError(t, err)

	name := "Jane"
	_, err = cache.Update(ctx, "u1", ai.ProfileUpdate{Name: &name})
	require.NoError(t, err)

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
}

func TestProfileCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	backing := &countingProfiles{MemoryProfiles: NewMemoryProfiles()}
	cache := NewProfileCache(backing, time.Hour, 10)

	_, _ = cache.Get(ctx, "u1")
	cache.Invalidate("u1")
	cache.Invalidate("missing")
	_, _ = cache.Get(ctx, "u1")
	assert.Equal(t, 2, backing.gets)
}

// slowProfiles runs during once while a Get is in flight, after the
// profile has been read.
type slowProfiles struct {
	*MemoryProfiles
	gets   int
	during func()
}

func (s *slowProfiles) Get(ctx context.Context, userID string) (ai.Profile, error) {
	s.gets++
	p, err := s.MemoryProfiles.Get(ctx, userID)
	if f := s.during; f != nil {
		s.during = nil
		f()
	}
	return p, err
}

func TestProfileCache_UpdateDuringLoad(t *testing.T) {
	ctx := context.Background()
	backing := &slowProfiles{MemoryProfiles: NewMemoryProfiles()}
	cache := NewProfileCache(backing, time.Hour, 10)

	name := "Jane"
	backing.during = func() {
		_, err := cache.Update(ctx, "u1", ai.ProfileUpdate{Name: &name})
		require.NoError(t, err)
	}

	stale, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stale.Name)
	assert.Zero(t, cache.Len())

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, 2, backing.gets)

	_, _ = cache.Get(ctx, "u1")
	assert.Equal(t, 2, backing.gets)
}

func TestProfileCache_Bounded(t *testing.T) {
	ctx := context.Background()
	backing := &countingProfiles{MemoryProfiles: NewMemoryProfiles()}
	cache := NewProfileCache(backing, time.Hour, 2)

	for _, id := range []string{"a", "b", "a", "c"} {
		_, err := cache.Get(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 3, backing.gets)

	// "b" was least recently used and got evicted; "a" is still cached.
	_, _ = cache.Get(ctx, "a")
	assert.Equal(t, 3, backing.gets)
	_, _ = cache.Get(ctx, "b")
	assert.Equal(t, 4, backing.gets)
}
