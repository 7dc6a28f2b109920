package trie

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"watch2give/storage"
)

func TestTrieCommitFlushPersistsData(t *testing.T) {
	dir := t.TempDir()

	db1, err := storage.NewLevelDB(dir)
	require.NoError(t, err)

	tr, err := NewTrie(db1, nil)
	require.NoError(t, err)

	key := crypto.Keccak256Hash([]byte("key"))
	value := []byte("value")

	require.NoError(t, tr.Update(key.Bytes(), value))
	root, err := tr.Commit(1)
	require.NoError(t, err)
	require.Equal(t, root, tr.Root())

	db1.Close()

	db2, err := storage.NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	restored, err := NewTrie(db2, root.Bytes())
	require.NoError(t, err)

	got, err := restored.Get(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, value, got)
}

func TestTrieCopyIsolatesMutations(t *testing.T) {
	tr, err := NewTrie(storage.NewMemDB(), nil)
	require.NoError(t, err)

	key := crypto.Keccak256([]byte("balance"))
	require.NoError(t, tr.Update(key, []byte{0x01}))

	cp := tr.Copy()
	require.NoError(t, cp.Update(key, []byte{0x02}))

	got, err := tr.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, got)

	got, err = cp.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02}, got)
	require.NotEqual(t, tr.Hash(), cp.Hash())
}

func TestTrieResetDropsPendingWrites(t *testing.T) {
	tr, err := NewTrie(storage.NewMemDB(), nil)
	require.NoError(t, err)

	key := crypto.Keccak256([]byte("proof"))
	require.NoError(t, tr.Update(key, []byte("committed")))
	root, err := tr.Commit(1)
	require.NoError(t, err)

	require.NoError(t, tr.Update(key, []byte("pending")))
	require.NoError(t, tr.Reset(root))

	got, err := tr.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("committed"), got)
}
