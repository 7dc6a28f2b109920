package watch2give

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"watch2give/core/events"
	"watch2give/core/types"
	"watch2give/crypto"
	"watch2give/observability/metrics"
)

type engineState interface {
	AdTokenBalance(addr crypto.AccountID) (uint32, bool, error)
	SetAdTokenBalance(addr crypto.AccountID, balance uint32) error
	Proof(addr crypto.AccountID) (common.Hash, bool, error)
	SetProof(addr crypto.AccountID, hash common.Hash) error
	Stake(addr crypto.AccountID) (*uint256.Int, bool, error)
	SetStake(addr crypto.AccountID, amount *uint256.Int) error
	DonationCount(user, vendor crypto.AccountID) (uint32, bool, error)
	SetDonationCount(user, vendor crypto.AccountID, count uint32) error
}

// Engine is the ledger state machine: ad-token balances, the proof registry,
// the stake vault and per-pair donation counters. It performs no access
// control; any caller may target any account for mint, burn and proof
// submission.
//
// Precondition failures are detected before the first write, but the engine
// does not undo writes on storage errors. Callers that need all-or-nothing
// semantics run it against a disposable copy of the state (see core.Ledger).
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs an engine with no state and a discarding emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

// MintAdToken credits amount to the account, clamping at the u32 ceiling.
func (e *Engine) MintAdToken(to crypto.AccountID, amount uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	prev, _, err := e.state.AdTokenBalance(to)
	if err != nil {
		return err
	}
	next, clamped := saturatingAddU32(prev, amount)
	if clamped {
		metrics.Ledger().RecordSaturation("mint_ad_token")
	}
	if err := e.state.SetAdTokenBalance(to, next); err != nil {
		return err
	}
	metrics.Ledger().RecordTokens("minted", next-prev)
	return nil
}

// BurnAdToken removes amount from the account. It fails without touching
// state when the balance is smaller than amount.
func (e *Engine) BurnAdToken(from crypto.AccountID, amount uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	prev, _, err := e.state.AdTokenBalance(from)
	if err != nil {
		return err
	}
	if prev < amount {
		metrics.Ledger().RecordAbort("burn_ad_token")
		return ErrInsufficientTokens
	}
	if err := e.state.SetAdTokenBalance(from, saturatingSubU32(prev, amount)); err != nil {
		return err
	}
	metrics.Ledger().RecordTokens("burned", amount)
	return nil
}

// AdTokenBalance returns the balance of user, zero when never credited.
func (e *Engine) AdTokenBalance(user crypto.AccountID) (uint32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	balance, _, err := e.state.AdTokenBalance(user)
	return balance, err
}

// DonateTokens moves amount from the caller to vendor, bumps the
// (caller, vendor) donation counter and emits DonationMade.
//
// The vendor credit saturates. It can clamp when the vendor already sits near
// the u32 ceiling, in which case the excess is lost; every clamp is counted
// under watch2give_ledger_saturation_total{op="donate_tokens"}.
func (e *Engine) DonateTokens(ctx types.ExecContext, vendor crypto.AccountID, amount uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	user := ctx.Caller
	userBalance, _, err := e.state.AdTokenBalance(user)
	if err != nil {
		return err
	}
	if userBalance < amount {
		metrics.Ledger().RecordAbort("donate_tokens")
		return ErrNotEnoughTokens
	}
	if err := e.state.SetAdTokenBalance(user, saturatingSubU32(userBalance, amount)); err != nil {
		return err
	}
	// Read after the debit so a self-donation nets out to zero.
	vendorBalance, _, err := e.state.AdTokenBalance(vendor)
	if err != nil {
		return err
	}
	credited, clamped := saturatingAddU32(vendorBalance, amount)
	if clamped {
		metrics.Ledger().RecordSaturation("donate_tokens")
	}
	if err := e.state.SetAdTokenBalance(vendor, credited); err != nil {
		return err
	}
	count, _, err := e.state.DonationCount(user, vendor)
	if err != nil {
		return err
	}
	count, clamped = saturatingAddU32(count, 1)
	if clamped {
		metrics.Ledger().RecordSaturation("donation_count")
	}
	if err := e.state.SetDonationCount(user, vendor, count); err != nil {
		return err
	}
	metrics.Ledger().RecordDonation(amount)
	e.emit(events.DonationMade{
		User:      user,
		Vendor:    vendor,
		Amount:    amount,
		Timestamp: ctx.BlockTimestamp,
	})
	return nil
}

// DonationCount returns how many donations user has made to vendor.
func (e *Engine) DonationCount(user, vendor crypto.AccountID) (uint32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	count, _, err := e.state.DonationCount(user, vendor)
	return count, err
}

// SubmitProof records hash as the current proof for user, replacing any
// earlier one, and emits ProofSubmitted.
func (e *Engine) SubmitProof(ctx types.ExecContext, user crypto.AccountID, hash common.Hash) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.state.SetProof(user, hash); err != nil {
		return err
	}
	metrics.Ledger().RecordProof()
	e.emit(events.ProofSubmitted{
		User:      user,
		Hash:      hash,
		Timestamp: ctx.BlockTimestamp,
	})
	return nil
}

// Proof returns the most recent proof for user. ok is false when none was
// ever submitted.
func (e *Engine) Proof(user crypto.AccountID) (hash common.Hash, ok bool, err error) {
	if err := e.ready(); err != nil {
		return common.Hash{}, false, err
	}
	return e.state.Proof(user)
}

// Stake credits the value attached to the call to the caller's vault entry.
// A zero-value call still writes the entry. No event is emitted.
func (e *Engine) Stake(ctx types.ExecContext) error {
	if err := e.ready(); err != nil {
		return err
	}
	prev, _, err := e.state.Stake(ctx.Caller)
	if err != nil {
		return err
	}
	next, clamped := saturatingAddBalance(prev, ctx.TransferredValue())
	if clamped {
		metrics.Ledger().RecordSaturation("stake")
	}
	if err := e.state.SetStake(ctx.Caller, next); err != nil {
		return fmt.Errorf("store stake: %w", err)
	}
	metrics.Ledger().RecordStake()
	return nil
}

// StakeOf returns the staked value for user, zero when absent.
func (e *Engine) StakeOf(user crypto.AccountID) (*uint256.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	amount, _, err := e.state.Stake(user)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Set(amount), nil
}
