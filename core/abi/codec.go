package abi

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"watch2give/crypto"
)

var (
	ErrShortInput      = errors.New("abi: input shorter than selector")
	ErrUnknownSelector = errors.New("abi: unknown selector")
)

// MintArgs is the argument tuple of mint_ad_token.
type MintArgs struct {
	To     crypto.AccountID
	Amount uint32
}

// BurnArgs is the argument tuple of burn_ad_token.
type BurnArgs struct {
	From   crypto.AccountID
	Amount uint32
}

// AccountArgs carries the single account argument of the query messages.
type AccountArgs struct {
	User crypto.AccountID
}

// DonateArgs is the argument tuple of donate_tokens. The donor is the caller.
type DonateArgs struct {
	Vendor crypto.AccountID
	Amount uint32
}

// SubmitProofArgs is the argument tuple of submit_proof.
type SubmitProofArgs struct {
	User crypto.AccountID
	Hash common.Hash
}

// PairArgs is the argument tuple of get_donation_count.
type PairArgs struct {
	User   crypto.AccountID
	Vendor crypto.AccountID
}

// ProofResult is the optional hash returned by get_proof.
type ProofResult struct {
	Found bool
	Hash  common.Hash
}

// EncodeCall builds selector || RLP(args). A nil args value yields the bare
// selector.
func EncodeCall(sel Selector, args interface{}) ([]byte, error) {
	out := append([]byte(nil), sel[:]...)
	if args == nil {
		return out, nil
	}
	payload, err := rlp.EncodeToBytes(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", sel, err)
	}
	return append(out, payload...), nil
}

// SplitCall separates the selector from the encoded arguments and resolves
// the message.
func SplitCall(input []byte) (Message, []byte, error) {
	if len(input) < len(Selector{}) {
		return Message{}, nil, ErrShortInput
	}
	var sel Selector
	copy(sel[:], input[:len(sel)])
	msg, ok := Lookup(sel)
	if !ok {
		return Message{}, nil, fmt.Errorf("%w: %s", ErrUnknownSelector, sel)
	}
	return msg, input[len(sel):], nil
}

// DecodeArgs decodes an RLP argument payload into out.
func DecodeArgs(payload []byte, out interface{}) error {
	if err := rlp.DecodeBytes(payload, out); err != nil {
		return fmt.Errorf("abi: decode args: %w", err)
	}
	return nil
}

// EncodeOutput RLP-encodes a message result. Unit results pass nil and get
// an empty output.
func EncodeOutput(result interface{}) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	if v, ok := result.(*big.Int); ok && v == nil {
		result = new(big.Int)
	}
	return rlp.EncodeToBytes(result)
}

// DecodeUint32 decodes a u32 result.
func DecodeUint32(output []byte) (uint32, error) {
	var v uint32
	if err := rlp.DecodeBytes(output, &v); err != nil {
		return 0, fmt.Errorf("abi: decode u32: %w", err)
	}
	return v, nil
}

// DecodeProof decodes a get_proof result.
func DecodeProof(output []byte) (ProofResult, error) {
	var res ProofResult
	if err := rlp.DecodeBytes(output, &res); err != nil {
		return ProofResult{}, fmt.Errorf("abi: decode proof: %w", err)
	}
	return res, nil
}

// DecodeBalance decodes a get_stake result.
func DecodeBalance(output []byte) (*big.Int, error) {
	v := new(big.Int)
	if err := rlp.DecodeBytes(output, v); err != nil {
		return nil, fmt.Errorf("abi: decode balance: %w", err)
	}
	return v, nil
}
