package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/voxrelay/pkg/logger"
)

func newTestPreferences(t *testing.T) *Preferences {
	t.Helper()
	prefs, err := NewPreferences(NewMemoryStore(), "nl", logger.NewNop())
	require.NoError(t, err)
	return prefs
}

func TestNewPreferencesRejectsUnknownDefault(t *testing.T) {
	_, err := NewPreferences(NewMemoryStore(), "klingon", logger.NewNop())
	var invalid *InvalidLanguageError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "klingon", invalid.Code)
}

func TestResolveInitializesDefaultOnce(t *testing.T) {
	prefs := newTestPreferences(t)

	lang, firstUse, err := prefs.Resolve(42)
	require.NoError(t, err)
	assert.Equal(t, "nl", lang.Code)
	assert.True(t, firstUse)

	// Every subsequent call returns the same value without the notice
	for i := 0; i < 3; i++ {
		lang, firstUse, err = prefs.Resolve(42)
		require.NoError(t, err)
		assert.Equal(t, "nl", lang.Code)
		assert.False(t, firstUse)
	}
}

func TestResolveFirstUseIsPerConversation(t *testing.T) {
	prefs := newTestPreferences(t)

	_, firstA, err := prefs.Resolve(1)
	require.NoError(t, err)
	_, firstB, err2 := prefs.Resolve(2)
	require.NoError(t, err2)

	assert.True(t, firstA)
	assert.True(t, firstB)
}

// Concurrent first touches of one conversation must produce exactly one
// firstUse=true and agree on the resolved language.
func TestResolveConcurrentFirstTouch(t *testing.T) {
	prefs := newTestPreferences(t)

	const workers = 32
	var wg sync.WaitGroup
	firstUses := make([]bool, workers)
	langs := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lang, firstUse, err := prefs.Resolve(7)
			firstUses[i], langs[i], errs[i] = firstUse, lang.Code, err
		}(i)
	}
	wg.Wait()

	noticed := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if firstUses[i] {
			noticed++
		}
		assert.Equal(t, "nl", langs[i])
	}
	assert.Equal(t, 1, noticed)
}

func TestSelectOverwrites(t *testing.T) {
	prefs := newTestPreferences(t)

	lang, err := prefs.Select(42, "ja")
	require.NoError(t, err)
	assert.Equal(t, "Japanese 🇯🇵", lang.Label)

	resolved, firstUse, err := prefs.Resolve(42)
	require.NoError(t, err)
	assert.Equal(t, "ja", resolved.Code)
	assert.False(t, firstUse)

	// Re-selection is allowed
	lang, err = prefs.Select(42, "ko")
	require.NoError(t, err)
	assert.Equal(t, "ko", lang.Code)
}

func TestSelectInvalidLeavesStateUnchanged(t *testing.T) {
	prefs := newTestPreferences(t)

	_, err := prefs.Select(42, "ja")
	require.NoError(t, err)

	_, err = prefs.Select(42, "xx")
	var invalid *InvalidLanguageError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "xx", invalid.Code)

	resolved, _, err := prefs.Resolve(42)
	require.NoError(t, err)
	assert.Equal(t, "ja", resolved.Code)
}

func TestStateTransitions(t *testing.T) {
	store := NewMemoryStore()
	prefs, err := NewPreferences(store, "en", logger.NewNop())
	require.NoError(t, err)

	// Unset -> Default on first lazy read
	_, _, err = prefs.Resolve(1)
	require.NoError(t, err)
	rec, ok, err := store.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateDefault, rec.State)

	// Default -> Explicit on selection
	_, err = prefs.Select(1, "fr")
	require.NoError(t, err)
	rec, _, err = store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateExplicit, rec.State)

	// Unset -> Explicit when selection comes before any read
	_, err = prefs.Select(2, "de")
	require.NoError(t, err)
	rec, _, err = store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, StateExplicit, rec.State)
}

func TestMemoryStoreInit(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.Init(1, Record{Language: "en", State: StateDefault})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Init(1, Record{Language: "fr", State: StateDefault})
	require.NoError(t, err)
	assert.False(t, created)

	rec, ok, err := store.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "en", rec.Language)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
