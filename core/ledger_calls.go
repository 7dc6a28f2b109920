package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"watch2give/core/abi"
	"watch2give/core/types"
	"watch2give/crypto"
	"watch2give/native/watch2give"
)

func (l *Ledger) invoke(ctx context.Context, caller crypto.AccountID, value *uint256.Int, sel abi.Selector, args interface{}) (*types.Receipt, error) {
	input, err := abi.EncodeCall(sel, args)
	if err != nil {
		return nil, err
	}
	return l.Call(ctx, caller, value, input)
}

// MintAdToken credits amount ad tokens to the account.
func (l *Ledger) MintAdToken(ctx context.Context, caller, to crypto.AccountID, amount uint32) (*types.Receipt, error) {
	return l.invoke(ctx, caller, nil, abi.SelMintAdToken, abi.MintArgs{To: to, Amount: amount})
}

// BurnAdToken removes amount ad tokens from the account.
func (l *Ledger) BurnAdToken(ctx context.Context, caller, from crypto.AccountID, amount uint32) (*types.Receipt, error) {
	return l.invoke(ctx, caller, nil, abi.SelBurnAdToken, abi.BurnArgs{From: from, Amount: amount})
}

// DonateTokens moves amount from caller to vendor.
func (l *Ledger) DonateTokens(ctx context.Context, caller, vendor crypto.AccountID, amount uint32) (*types.Receipt, error) {
	return l.invoke(ctx, caller, nil, abi.SelDonateTokens, abi.DonateArgs{Vendor: vendor, Amount: amount})
}

// SubmitProof records hash as the latest proof for user.
func (l *Ledger) SubmitProof(ctx context.Context, caller, user crypto.AccountID, hash common.Hash) (*types.Receipt, error) {
	return l.invoke(ctx, caller, nil, abi.SelSubmitProof, abi.SubmitProofArgs{User: user, Hash: hash})
}

// Stake adds value to the caller's vault entry.
func (l *Ledger) Stake(ctx context.Context, caller crypto.AccountID, value *uint256.Int) (*types.Receipt, error) {
	return l.invoke(ctx, caller, value, abi.SelStake, nil)
}

// AdTokenBalance reads the ad-token balance of user.
func (l *Ledger) AdTokenBalance(ctx context.Context, user crypto.AccountID) (uint32, error) {
	receipt, err := l.invoke(ctx, crypto.AccountID{}, nil, abi.SelAdTokenBalance, abi.AccountArgs{User: user})
	if err != nil {
		return 0, err
	}
	return abi.DecodeUint32(receipt.Output)
}

// Proof reads the latest proof for user.
func (l *Ledger) Proof(ctx context.Context, user crypto.AccountID) (common.Hash, bool, error) {
	receipt, err := l.invoke(ctx, crypto.AccountID{}, nil, abi.SelGetProof, abi.AccountArgs{User: user})
	if err != nil {
		return common.Hash{}, false, err
	}
	res, err := abi.DecodeProof(receipt.Output)
	if err != nil {
		return common.Hash{}, false, err
	}
	return res.Hash, res.Found, nil
}

// StakeOf reads the staked value of user.
func (l *Ledger) StakeOf(ctx context.Context, user crypto.AccountID) (*uint256.Int, error) {
	receipt, err := l.invoke(ctx, crypto.AccountID{}, nil, abi.SelGetStake, abi.AccountArgs{User: user})
	if err != nil {
		return nil, err
	}
	amount, err := abi.DecodeBalance(receipt.Output)
	if err != nil {
		return nil, err
	}
	out, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, errStakeOverflow
	}
	return out, nil
}

// DonationCount reads how many donations user made to vendor.
func (l *Ledger) DonationCount(ctx context.Context, user, vendor crypto.AccountID) (uint32, error) {
	receipt, err := l.invoke(ctx, crypto.AccountID{}, nil, abi.SelGetDonationCount, abi.PairArgs{User: user, Vendor: vendor})
	if err != nil {
		return 0, err
	}
	return abi.DecodeUint32(receipt.Output)
}

// RewardStanding places the donation count of user towards vendor in the
// configured reward schedule.
func (l *Ledger) RewardStanding(ctx context.Context, user, vendor crypto.AccountID) (watch2give.RewardStanding, error) {
	count, err := l.DonationCount(ctx, user, vendor)
	if err != nil {
		return watch2give.RewardStanding{}, err
	}
	return l.rewardSchedule().Standing(count), nil
}
