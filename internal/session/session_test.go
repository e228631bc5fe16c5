package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/tracker-mcp-go/internal/domain"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

func TestStaticResolver(t *testing.T) {
	resolver := StaticResolver{
		"tok-1": domain.UserCredential{UserID: "u1", Provider: "redmine"},
	}

	cred, err := resolver.Resolve(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cred.UserID)

	_, err = resolver.Resolve(context.Background(), "tok-unknown")
	var authErr *trackererr.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestNewIDIsUniqueAndSortable(t *testing.T) {
	first := NewID()
	second := NewID()

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 26)
	assert.LessOrEqual(t, first, second)
}

func newClockedStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	store := NewMemoryStore(ttl)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	return store, &now
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store, _ := newClockedStore(time.Hour)

	id := NewID()
	assert.False(t, store.Exists(id))

	require.NoError(t, store.Write(id, []byte("state")))
	assert.True(t, store.Exists(id))

	data, ok := store.Read(id)
	require.True(t, ok)
	assert.Equal(t, []byte("state"), data)

	require.NoError(t, store.Destroy(id))
	assert.False(t, store.Exists(id))

	require.NoError(t, store.Destroy(id), "destroying an absent id is not an error")
}

func TestMemoryStoreExpiry(t *testing.T) {
	store, now := newClockedStore(time.Hour)

	id := NewID()
	require.NoError(t, store.Write(id, []byte("state")))

	*now = now.Add(30 * time.Minute)
	assert.True(t, store.Exists(id))

	*now = now.Add(31 * time.Minute)
	assert.False(t, store.Exists(id))
	_, ok := store.Read(id)
	assert.False(t, ok)
}

func TestMemoryStoreWriteRefreshesTTL(t *testing.T) {
	store, now := newClockedStore(time.Hour)

	id := NewID()
	require.NoError(t, store.Write(id, []byte("v1")))

	*now = now.Add(50 * time.Minute)
	require.NoError(t, store.Write(id, []byte("v2")))

	*now = now.Add(50 * time.Minute)
	data, ok := store.Read(id)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), data)
}

func TestGarbageCollectReturnsExpiredIDs(t *testing.T) {
	store, now := newClockedStore(time.Hour)

	stale := NewID()
	fresh := NewID()
	require.NoError(t, store.Write(stale, []byte("old")))

	*now = now.Add(2 * time.Hour)
	require.NoError(t, store.Write(fresh, []byte("new")))

	expired := store.GarbageCollect()
	assert.Equal(t, []string{stale}, expired)
	assert.True(t, store.Exists(fresh))
	assert.False(t, store.Exists(stale))

	assert.Empty(t, store.GarbageCollect())
}
