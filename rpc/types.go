package rpc

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"watch2give/core/types"
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// AccountParams names a single account.
type AccountParams struct {
	Account string `json:"account"`
}

// AmountParams is used by mint and burn.
type AmountParams struct {
	Account string `json:"account"`
	Amount  uint32 `json:"amount"`
}

// DonateParams is used by w2g_donateTokens. The donor is the authenticated
// caller.
type DonateParams struct {
	Vendor string `json:"vendor"`
	Amount uint32 `json:"amount"`
}

// SubmitProofParams records an already computed digest.
type SubmitProofParams struct {
	Account string `json:"account"`
	Hash    string `json:"hash"`
}

// SubmitProofContentParams carries raw content (base64 in JSON) that the node
// hashes before recording.
type SubmitProofContentParams struct {
	Account string `json:"account"`
	Content []byte `json:"content"`
}

// StakeParams attaches a decimal value to w2g_stake.
type StakeParams struct {
	Value string `json:"value"`
}

// PairParams names a (user, vendor) pair.
type PairParams struct {
	User   string `json:"user"`
	Vendor string `json:"vendor"`
}

// CallParams submits raw selector||RLP(args) input.
type CallParams struct {
	Input hexutil.Bytes `json:"input"`
	Value string        `json:"value,omitempty"`
}

// ReceiptResult is the JSON view of a call receipt.
type ReceiptResult struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Selector  string        `json:"selector"`
	Caller    string        `json:"caller"`
	Height    uint64        `json:"height"`
	Timestamp uint64        `json:"timestamp"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Output    hexutil.Bytes `json:"output,omitempty"`
	Events    []types.Event `json:"events,omitempty"`
	StateRoot string        `json:"stateRoot"`
}

type BalanceResult struct {
	Account string `json:"account"`
	Balance uint32 `json:"balance"`
}

type ProofResult struct {
	Account string `json:"account"`
	Found   bool   `json:"found"`
	Hash    string `json:"hash,omitempty"`
}

type StakeResult struct {
	Account string   `json:"account"`
	Amount  *big.Int `json:"amount"`
}

type DonationCountResult struct {
	User   string `json:"user"`
	Vendor string `json:"vendor"`
	Count  uint32 `json:"count"`
}

// RewardTierResult places a pair's donation count in the reward schedule.
// Tier is empty until the first threshold is reached; NextTier is empty at
// the top of the schedule.
type RewardTierResult struct {
	User          string `json:"user"`
	Vendor        string `json:"vendor"`
	Count         uint32 `json:"count"`
	Eligible      bool   `json:"eligible"`
	Tier          string `json:"tier,omitempty"`
	Threshold     uint32 `json:"threshold,omitempty"`
	NextTier      string `json:"nextTier,omitempty"`
	NextThreshold uint32 `json:"nextThreshold,omitempty"`
	Remaining     uint32 `json:"remaining"`
}

type StateRootResult struct {
	Height uint64 `json:"height"`
	Root   string `json:"root"`
}

func receiptResult(r *types.Receipt) *ReceiptResult {
	if r == nil {
		return nil
	}
	return &ReceiptResult{
		ID:        r.ID,
		Message:   r.Message,
		Selector:  r.Selector,
		Caller:    r.Caller,
		Height:    r.Height,
		Timestamp: r.Timestamp,
		Status:    string(r.Status),
		Reason:    r.Reason,
		Output:    hexutil.Bytes(r.Output),
		Events:    r.Events,
		StateRoot: r.StateRoot.Hex(),
	}
}
