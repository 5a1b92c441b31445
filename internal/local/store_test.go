package local

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddAndGet(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	count, err := s.Add("urn:li:activity:1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.Add("urn:li:activity:1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, 2, s.Get("urn:li:activity:1"))
	assert.Equal(t, 0, s.Get("urn:li:activity:unseen"))
}

func TestStore_RemoveDeletesAtZero(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add("urn:li:activity:2")
	require.NoError(t, err)

	count, err := s.Remove("urn:li:activity:2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The entry is gone, not stored as zero.
	assert.NotContains(t, s.Snapshot(), "urn:li:activity:2")
}

func TestStore_RemoveAbsentIsZeroNoRecord(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	count, err := s.Remove("urn:li:activity:nope")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, s.Snapshot())
}

func TestStore_NeverNegative(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		count, err := s.Remove("urn:li:activity:3")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.Add("urn:li:activity:10")
	require.NoError(t, err)
	_, err = s.Add("urn:li:activity:10")
	require.NoError(t, err)
	_, err = s.Add("urn:li:activity:11")
	require.NoError(t, err)
	require.NoError(t, s.SetBackendConfig("https://example.supabase.co", "anon-key"))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Get("urn:li:activity:10"))
	assert.Equal(t, 1, reopened.Get("urn:li:activity:11"))

	url, key := reopened.BackendConfig()
	assert.Equal(t, "https://example.supabase.co", url)
	assert.Equal(t, "anon-key", key)
}

func TestStore_OpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested-does-not-exist-as-file"))
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot())
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.Add("urn:li:activity:20")
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	assert.Empty(t, s.Snapshot())

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Empty(t, reopened.Snapshot())
}
