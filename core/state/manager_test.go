package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"watch2give/crypto"
	"watch2give/storage"
	"watch2give/storage/trie"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	tr, err := trie.NewTrie(storage.NewMemDB(), nil)
	require.NoError(t, err)
	return NewManager(tr)
}

func TestAbsentEntriesReadAsDefaults(t *testing.T) {
	m := newTestManager(t)
	alice := crypto.DevAccount("alice")
	bob := crypto.DevAccount("bob")

	bal, ok, err := m.AdTokenBalance(alice)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, bal)

	_, ok, err = m.Proof(alice)
	require.NoError(t, err)
	require.False(t, ok)

	stake, ok, err := m.Stake(alice)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, stake.IsZero())

	count, ok, err := m.DonationCount(alice, bob)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, count)
}

func TestStoresAreIndependent(t *testing.T) {
	m := newTestManager(t)
	alice := crypto.DevAccount("alice")
	bob := crypto.DevAccount("bob")

	require.NoError(t, m.SetAdTokenBalance(alice, 70))
	require.NoError(t, m.SetProof(alice, common.HexToHash("0xfeed")))
	require.NoError(t, m.SetStake(alice, uint256.NewInt(1_000)))
	require.NoError(t, m.SetDonationCount(alice, bob, 1))

	bal, ok, err := m.AdTokenBalance(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 70, bal)

	hash, ok, err := m.Proof(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, common.HexToHash("0xfeed"), hash)

	stake, ok, err := m.Stake(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1_000), stake.Uint64())

	count, _, err := m.DonationCount(alice, bob)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// The pair is ordered.
	reverse, ok, err := m.DonationCount(bob, alice)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, reverse)

	other, ok, err := m.AdTokenBalance(bob)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, other)
}

func TestZeroValuesAreStoredAsEntries(t *testing.T) {
	m := newTestManager(t)
	alice := crypto.DevAccount("alice")

	require.NoError(t, m.SetAdTokenBalance(alice, 0))
	_, ok, err := m.AdTokenBalance(alice)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.SetStake(alice, nil))
	stake, ok, err := m.Stake(alice)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, stake.IsZero())
}

func TestLargeStakeRoundTrips(t *testing.T) {
	m := newTestManager(t)
	alice := crypto.DevAccount("alice")
	max128 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

	require.NoError(t, m.SetStake(alice, max128))
	got, _, err := m.Stake(alice)
	require.NoError(t, err)
	require.Equal(t, max128, got)
}
