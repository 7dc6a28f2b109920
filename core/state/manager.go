package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"watch2give/crypto"
	"watch2give/storage/trie"
)

// Manager maps the four ledger stores onto a single state trie. Every key is
// hashed with keccak256 before it reaches the trie and every value is RLP
// encoded.
type Manager struct {
	trie *trie.Trie
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

// Trie exposes the trie the manager writes to.
func (m *Manager) Trie() *trie.Trie {
	return m.trie
}

func accountKey(prefix []byte, addr crypto.AccountID) []byte {
	buf := make([]byte, len(prefix)+len(addr))
	copy(buf, prefix)
	copy(buf[len(prefix):], addr[:])
	return ethcrypto.Keccak256(buf)
}

func donationCountKey(user, vendor crypto.AccountID) []byte {
	buf := make([]byte, len(donationCountPrefix)+2*crypto.AccountIDLength)
	copy(buf, donationCountPrefix)
	copy(buf[len(donationCountPrefix):], user[:])
	copy(buf[len(donationCountPrefix)+crypto.AccountIDLength:], vendor[:])
	return ethcrypto.Keccak256(buf)
}

func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	data, err := m.trie.Get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.trie.Update(key, encoded)
}

// AdTokenBalance returns the stored ad-token balance. The boolean reports
// whether an entry exists; absent accounts read as zero.
func (m *Manager) AdTokenBalance(addr crypto.AccountID) (uint32, bool, error) {
	var balance uint32
	ok, err := m.get(accountKey(adTokenBalancePrefix, addr), &balance)
	if err != nil {
		return 0, false, fmt.Errorf("ad token balance %s: %w", addr, err)
	}
	return balance, ok, nil
}

// SetAdTokenBalance stores an ad-token balance.
func (m *Manager) SetAdTokenBalance(addr crypto.AccountID, balance uint32) error {
	return m.put(accountKey(adTokenBalancePrefix, addr), balance)
}

// Proof returns the latest content proof submitted for addr.
func (m *Manager) Proof(addr crypto.AccountID) (common.Hash, bool, error) {
	var hash common.Hash
	ok, err := m.get(accountKey(proofPrefix, addr), &hash)
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("proof %s: %w", addr, err)
	}
	return hash, ok, nil
}

// SetProof overwrites the content proof for addr.
func (m *Manager) SetProof(addr crypto.AccountID, hash common.Hash) error {
	return m.put(accountKey(proofPrefix, addr), hash)
}

// Stake returns the staked value held for addr.
func (m *Manager) Stake(addr crypto.AccountID) (*uint256.Int, bool, error) {
	var raw []byte
	ok, err := m.get(accountKey(stakePrefix, addr), &raw)
	if err != nil {
		return nil, false, fmt.Errorf("stake %s: %w", addr, err)
	}
	if !ok {
		return new(uint256.Int), false, nil
	}
	if len(raw) > 32 {
		return nil, false, fmt.Errorf("stake %s: value overflows 256 bits", addr)
	}
	return new(uint256.Int).SetBytes(raw), true, nil
}

// SetStake stores the staked value for addr.
func (m *Manager) SetStake(addr crypto.AccountID, amount *uint256.Int) error {
	if amount == nil {
		amount = new(uint256.Int)
	}
	return m.put(accountKey(stakePrefix, addr), amount.Bytes())
}

// DonationCount returns how many donations user has made to vendor.
func (m *Manager) DonationCount(user, vendor crypto.AccountID) (uint32, bool, error) {
	var count uint32
	ok, err := m.get(donationCountKey(user, vendor), &count)
	if err != nil {
		return 0, false, fmt.Errorf("donation count %s->%s: %w", user, vendor, err)
	}
	return count, ok, nil
}

// SetDonationCount stores the donation counter for the (user, vendor) pair.
func (m *Manager) SetDonationCount(user, vendor crypto.AccountID, count uint32) error {
	return m.put(donationCountKey(user, vendor), count)
}
