package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"watch2give/crypto"
)

// ExecContext is what the host supplies to every call: the authenticated
// invoker, the block the call executes in and the native value attached to
// it.
type ExecContext struct {
	Caller         crypto.AccountID
	BlockNumber    uint64
	BlockTimestamp uint64 // milliseconds since the Unix epoch
	Value          *uint256.Int
}

// TransferredValue returns a copy of the attached value, zero when unset.
func (c ExecContext) TransferredValue() *uint256.Int {
	if c.Value == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(c.Value)
}

// ReceiptStatus reports whether a call committed.
type ReceiptStatus string

const (
	ReceiptSuccess  ReceiptStatus = "success"
	ReceiptReverted ReceiptStatus = "reverted"
)

// Receipt summarises one executed call.
type Receipt struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Selector  string        `json:"selector"`
	Caller    string        `json:"caller"`
	Height    uint64        `json:"height"`
	Timestamp uint64        `json:"timestamp"`
	Status    ReceiptStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Output    []byte        `json:"output,omitempty"`
	Events    []Event       `json:"events,omitempty"`
	StateRoot common.Hash   `json:"stateRoot"`
}
