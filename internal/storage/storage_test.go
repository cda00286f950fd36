package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "session.yaml"))
	require.NoError(t, err)
	sqliteStore, err := OpenSQLite(filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	inner := NewMemoryStore()
	enc, err := NewEncrypted(inner, testKey, KeyToken)
	require.NoError(t, err)

	stores := map[string]Store{
		"memory":    NewMemoryStore(),
		"file":      fileStore,
		"sqlite":    sqliteStore,
		"encrypted": enc,
	}
	t.Cleanup(func() {
		for _, st := range stores {
			_ = st.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Set(ctx, KeyToken, "tok-1"))
			require.NoError(t, st.Set(ctx, KeyUser, `{"id":1}`))
			require.NoError(t, st.Set(ctx, KeyToken, "tok-2"))

			v, ok, err := st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok-2", v)

			require.NoError(t, st.Remove(ctx, KeyToken))
			require.NoError(t, st.Remove(ctx, KeyToken))
			_, ok, err = st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = st.Get(ctx, KeyUser)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"id":1}`, v)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	st, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, KeyUser, `{"name":"Ana"}`))
	require.NoError(t, st.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"Ana"}`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, KeyPatientSession, `{"groupId":"3"}`))
	require.NoError(t, st.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(ctx, KeyPatientSession)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"groupId":"3"}`, v)
}

func TestClosedStoreFails(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Close())
	assert.ErrorIs(t, st.Set(ctx, KeyUser, "x"), ErrClosed)

	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	_, _, err = db.Get(ctx, KeyUser)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEncryptedSealsOnlySecretKeys(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	enc, err := NewEncrypted(inner, testKey, KeyToken)
	require.NoError(t, err)

	require.NoError(t, enc.Set(ctx, KeyToken, "secret-token"))
	require.NoError(t, enc.Set(ctx, KeyUser, "plain"))

	raw, _, _ := inner.Get(ctx, KeyToken)
	assert.True(t, strings.HasPrefix(raw, encryptedPrefix))
	assert.NotContains(t, raw, "secret-token")

	raw, _, _ = inner.Get(ctx, KeyUser)
	assert.Equal(t, "plain", raw)

	// A sealed value copied under another key must not open.
	sealed, _, _ := inner.Get(ctx, KeyToken)
	other, err := NewEncrypted(inner, testKey, KeyToken, KeyCurrentProfile)
	require.NoError(t, err)
	require.NoError(t, inner.Set(ctx, KeyCurrentProfile, sealed))
	_, _, err = other.Get(ctx, KeyCurrentProfile)
	assert.Error(t, err)
}

func TestEncryptedRejectsBadKey(t *testing.T) {
	_, err := NewEncrypted(NewMemoryStore(), "zz")
	assert.Error(t, err)
	_, err = NewEncrypted(NewMemoryStore(), "0011")
	assert.Error(t, err)
}

func TestOpenDrivers(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	st, err = Open(Options{Driver: "SQLite", Path: filepath.Join(dir, "s.db"), EncryptionKey: testKey})
	require.NoError(t, err)
	assert.IsType(t, &Encrypted{}, st)
	require.NoError(t, st.Close())

	_, err = Open(Options{Driver: "redis"})
	assert.Error(t, err)
	_, err = Open(Options{Driver: "file"})
	assert.Error(t, err)
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Set(ctx, KeyUser, "u"))
	require.NoError(t, st.Set(ctx, KeyToken, "t"))
	require.NoError(t, st.Set(ctx, "other", "o"))

	require.NoError(t, RemoveAll(ctx, st, KeyUser, KeyToken, KeyCurrentProfile))
	assert.ElementsMatch(t, []string{"other"}, st.Keys())
}
