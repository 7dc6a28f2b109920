package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AccountPrefix is the human-readable part of bech32 encoded account ids.
const AccountPrefix = "w2g"

// AccountIDLength is the width of an account identifier in bytes.
const AccountIDLength = 32

// AccountID identifies a ledger account. It is derived from a public key and
// compared by equality only.
type AccountID [AccountIDLength]byte

// AccountIDFromBytes copies b into an AccountID.
func AccountIDFromBytes(b []byte) (AccountID, error) {
	var id AccountID
	if len(b) != AccountIDLength {
		return id, fmt.Errorf("account id must be %d bytes, got %d", AccountIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// AccountFromPublicKey derives the account id owned by pub.
func AccountFromPublicKey(pub *ecdsa.PublicKey) AccountID {
	var id AccountID
	copy(id[:], ethcrypto.Keccak256(ethcrypto.FromECDSAPub(pub)))
	return id
}

// DevAccount derives a deterministic account id from a label. It is meant for
// tests, scenario files and local tooling.
func DevAccount(label string) AccountID {
	var id AccountID
	copy(id[:], ethcrypto.Keccak256([]byte("watch2give/dev/"+label)))
	return id
}

func (a AccountID) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// String returns the bech32 form, e.g. w2g1....
func (a AccountID) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(AccountPrefix, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Hex returns the 0x-prefixed hexadecimal form.
func (a AccountID) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ParseAccountID accepts either the bech32 (w2g1...) or the 0x-prefixed hex
// encoding of an account id.
func ParseAccountID(s string) (AccountID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return AccountID{}, fmt.Errorf("account id required")
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		raw, err := hex.DecodeString(trimmed[2:])
		if err != nil {
			return AccountID{}, fmt.Errorf("invalid hex account id: %w", err)
		}
		return AccountIDFromBytes(raw)
	}
	prefix, decoded, err := bech32.Decode(trimmed)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != AccountPrefix {
		return AccountID{}, fmt.Errorf("unexpected account prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return AccountID{}, fmt.Errorf("error converting bits: %w", err)
	}
	return AccountIDFromBytes(conv)
}

// MustParseAccountID is ParseAccountID for constants and tests.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// --- Key Management ---

type PrivateKey struct {
	*ecdsa.PrivateKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Account returns the account id controlled by the key.
func (k *PrivateKey) Account() AccountID {
	return AccountFromPublicKey(&k.PublicKey)
}

func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.PrivateKey)
}
