package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/voxrelay/internal/session"
	"github.com/yegors/voxrelay/pkg/logger"
)

func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()
	storage, err := NewSessionStorage(filepath.Join(t.TempDir(), "test.db"), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSessionStorageRoundTrip(t *testing.T) {
	storage := newTestStorage(t)

	_, ok, err := storage.Get(42)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Second)
	err = storage.Set(42, session.Record{Language: "ja", State: session.StateExplicit, UpdatedAt: now})
	require.NoError(t, err)

	rec, ok, err := storage.Get(42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ja", rec.Language)
	assert.Equal(t, session.StateExplicit, rec.State)
	assert.True(t, now.Equal(rec.UpdatedAt))
}

func TestSessionStorageSetOverwrites(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.Set(1, session.Record{Language: "en", State: session.StateDefault, UpdatedAt: time.Now()}))
	require.NoError(t, storage.Set(1, session.Record{Language: "fr", State: session.StateExplicit, UpdatedAt: time.Now()}))

	rec, ok, err := storage.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fr", rec.Language)
	assert.Equal(t, session.StateExplicit, rec.State)
}

func TestSessionStorageInitIsAtomic(t *testing.T) {
	storage := newTestStorage(t)

	created, err := storage.Init(7, session.Record{Language: "nl", State: session.StateDefault, UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, created)

	// Second init loses and leaves the first record in place
	created, err = storage.Init(7, session.Record{Language: "en", State: session.StateDefault, UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, created)

	rec, ok, err := storage.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "nl", rec.Language)
}

func TestSessionStorageCount(t *testing.T) {
	storage := newTestStorage(t)

	count, err := storage.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, storage.Set(1, session.Record{Language: "en", State: session.StateDefault, UpdatedAt: time.Now()}))
	require.NoError(t, storage.Set(2, session.Record{Language: "nl", State: session.StateExplicit, UpdatedAt: time.Now()}))

	count, err = storage.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
