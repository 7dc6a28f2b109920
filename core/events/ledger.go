package events

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"watch2give/core/types"
	"watch2give/crypto"
)

const (
	TypeDonationMade   = "watch2give.donation.made"
	TypeProofSubmitted = "watch2give.proof.submitted"
)

// DonationMade is emitted when a viewer hands ad tokens to a vendor. User and
// Vendor are indexed topics.
type DonationMade struct {
	User      crypto.AccountID
	Vendor    crypto.AccountID
	Amount    uint32
	Timestamp uint64
}

func (DonationMade) EventType() string { return TypeDonationMade }

func (e DonationMade) Event() *types.Event {
	return &types.Event{
		Type:   TypeDonationMade,
		Topics: []string{e.User.String(), e.Vendor.String()},
		Attributes: map[string]string{
			"user":      e.User.String(),
			"vendor":    e.Vendor.String(),
			"amount":    strconv.FormatUint(uint64(e.Amount), 10),
			"timestamp": strconv.FormatUint(e.Timestamp, 10),
		},
	}
}

// ProofSubmitted is emitted whenever a content proof is recorded for an
// account. User is the only indexed topic.
type ProofSubmitted struct {
	User      crypto.AccountID
	Hash      common.Hash
	Timestamp uint64
}

func (ProofSubmitted) EventType() string { return TypeProofSubmitted }

func (e ProofSubmitted) Event() *types.Event {
	return &types.Event{
		Type:   TypeProofSubmitted,
		Topics: []string{e.User.String()},
		Attributes: map[string]string{
			"user":      e.User.String(),
			"hash":      e.Hash.Hex(),
			"timestamp": strconv.FormatUint(e.Timestamp, 10),
		},
	}
}
