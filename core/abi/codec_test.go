package abi

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"watch2give/crypto"
)

func TestSelectorsAreUnique(t *testing.T) {
	seen := make(map[Selector]string)
	for _, msg := range Messages() {
		if prev, ok := seen[msg.Selector]; ok {
			t.Fatalf("selector %s shared by %s and %s", msg.Selector, prev, msg.Name)
		}
		seen[msg.Selector] = msg.Name
	}
	require.Len(t, seen, 9)
}

func TestOnlyStakeIsPayable(t *testing.T) {
	for _, msg := range Messages() {
		require.Equal(t, msg.Name == MsgStake, msg.Payable, msg.Name)
	}
}

func TestParseSelector(t *testing.T) {
	sel, err := ParseSelector("0xa1a1a1a4")
	require.NoError(t, err)
	require.Equal(t, SelDonateTokens, sel)
	require.Equal(t, "0xa1a1a1a4", sel.String())

	_, err = ParseSelector("0xa1a1")
	require.Error(t, err)
	_, err = ParseSelector("zzzzzzzz")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	msg, err := Resolve("get_donation_count")
	require.NoError(t, err)
	require.Equal(t, SelGetDonationCount, msg.Selector)

	msg, err = Resolve("0xC3C3C3C1")
	require.NoError(t, err)
	require.Equal(t, MsgStake, msg.Name)
	require.True(t, msg.Payable)

	_, err = Resolve("0xdeadbeef")
	require.ErrorIs(t, err, ErrUnknownSelector)
	_, err = Resolve("transfer")
	require.ErrorIs(t, err, ErrUnknownSelector)
}

func TestCallRoundTrip(t *testing.T) {
	vendor := crypto.DevAccount("vendor")
	input, err := EncodeCall(SelDonateTokens, DonateArgs{Vendor: vendor, Amount: 42})
	require.NoError(t, err)
	require.Equal(t, SelDonateTokens[:], input[:4])

	msg, payload, err := SplitCall(input)
	require.NoError(t, err)
	require.Equal(t, MsgDonateTokens, msg.Name)

	var args DonateArgs
	require.NoError(t, DecodeArgs(payload, &args))
	require.Equal(t, vendor, args.Vendor)
	require.Equal(t, uint32(42), args.Amount)
}

func TestSplitCallErrors(t *testing.T) {
	_, _, err := SplitCall([]byte{0xA1, 0xA1})
	require.ErrorIs(t, err, ErrShortInput)

	_, _, err = SplitCall([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	if !errors.Is(err, ErrUnknownSelector) {
		t.Fatalf("expected unknown selector, got %v", err)
	}
}

func TestDecodeArgsRejectsGarbage(t *testing.T) {
	var args MintArgs
	require.Error(t, DecodeArgs([]byte{0xff, 0x01}, &args))
}

func TestOutputs(t *testing.T) {
	out, err := EncodeOutput(nil)
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = EncodeOutput(uint32(70))
	require.NoError(t, err)
	v, err := DecodeUint32(out)
	require.NoError(t, err)
	require.Equal(t, uint32(70), v)

	hash := common.HexToHash("0xfeed")
	out, err = EncodeOutput(ProofResult{Found: true, Hash: hash})
	require.NoError(t, err)
	proof, err := DecodeProof(out)
	require.NoError(t, err)
	require.True(t, proof.Found)
	require.Equal(t, hash, proof.Hash)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	out, err = EncodeOutput(max)
	require.NoError(t, err)
	bal, err := DecodeBalance(out)
	require.NoError(t, err)
	require.Zero(t, bal.Cmp(max))
}
