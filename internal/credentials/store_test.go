package credentials

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	return NewStore(backend, nil), path
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newFileStore(t)

	cred, ok := store.Load(context.Background())
	assert.False(t, ok)
	assert.True(t, cred.IsZero())
}

func TestStore_LoadCorrupt(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, ok := store.Load(context.Background())
	assert.False(t, ok, "corrupt file should be treated as absent")
}

func TestStore_LoadEmptyObject(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	_, ok := store.Load(context.Background())
	assert.False(t, ok)
}

func TestStore_SequentialSavesKeepRefreshToken(t *testing.T) {
	ctx := context.Background()
	store, path := newFileStore(t)

	_, err := store.Save(ctx, Credential{AccessToken: "a1", RefreshToken: "r1"})
	require.NoError(t, err)

	merged, err := store.Save(ctx, Credential{AccessToken: "a2"})
	require.NoError(t, err)
	assert.Equal(t, Credential{AccessToken: "a2", RefreshToken: "r1"}, merged)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Credential
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, Credential{AccessToken: "a2", RefreshToken: "r1"}, onDisk)

	loaded, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, merged, loaded)
}

func TestStore_SaveReplacesRefreshToken(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Save(ctx, Credential{AccessToken: "a1", RefreshToken: "r1"})
	require.NoError(t, err)
	merged, err := store.Save(ctx, Credential{AccessToken: "a2", RefreshToken: "r2"})
	require.NoError(t, err)
	assert.Equal(t, "r2", merged.RefreshToken)
}

func TestStore_SaveOverCorruptFile(t *testing.T) {
	ctx := context.Background()
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	merged, err := store.Save(ctx, Credential{AccessToken: "a1"})
	require.NoError(t, err)
	assert.Equal(t, Credential{AccessToken: "a1"}, merged)
}

func TestFileBackend_WritePermissions(t *testing.T) {
	ctx := context.Background()
	store, path := newFileStore(t)

	_, err := store.Save(ctx, Credential{AccessToken: "a1"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileBackend_CancelledContext(t *testing.T) {
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "c.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, backend.Write(ctx, []byte("{}")))
	_, err = backend.Read(ctx)
	assert.Error(t, err)
}

func TestNewFileBackend_EmptyPath(t *testing.T) {
	_, err := NewFileBackend("")
	assert.Error(t, err)
}

func TestKeyringBackend(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	backend, err := NewKeyringBackend("taskbridge-test", "alice")
	require.NoError(t, err)
	assert.Equal(t, "keyring://taskbridge-test/alice", backend.Location())

	_, err = backend.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	store := NewStore(backend, nil)
	_, err = store.Save(ctx, Credential{AccessToken: "a1", RefreshToken: "r1"})
	require.NoError(t, err)
	_, err = store.Save(ctx, Credential{AccessToken: "a2"})
	require.NoError(t, err)

	loaded, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, Credential{AccessToken: "a2", RefreshToken: "r1"}, loaded)
}

func TestNewKeyringBackend_Validation(t *testing.T) {
	_, err := NewKeyringBackend("", "alice")
	assert.Error(t, err)
	_, err = NewKeyringBackend("svc", "")
	assert.Error(t, err)
}
