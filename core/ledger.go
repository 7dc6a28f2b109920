package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"watch2give/core/abi"
	"watch2give/core/events"
	ledgerstate "watch2give/core/state"
	"watch2give/core/types"
	"watch2give/crypto"
	"watch2give/native/watch2give"
	"watch2give/observability"
	"watch2give/storage"
	"watch2give/storage/trie"
)

var headKey = []byte("watch2give/head")

type headRecord struct {
	Root   common.Hash
	Height uint64
}

// Ledger hosts the watch2give engine. It serialises every call behind one
// mutex, runs the call against a copy of the state trie and only installs the
// copy (and publishes the call's events) once the call has succeeded. Each
// committed mutating call advances the height by one and persists the new
// root.
type Ledger struct {
	db      storage.Database
	mu      sync.Mutex
	trie    *trie.Trie
	height  uint64
	nowFn   func() time.Time
	emitter events.Emitter
	logger  *slog.Logger
	rewards watch2give.RewardSchedule
}

// OpenLedger restores the ledger from db, starting from the empty state when
// no head has been recorded.
func OpenLedger(db storage.Database) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("ledger: nil database")
	}
	var head headRecord
	raw, err := db.Get(headKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("ledger: read head: %w", err)
	default:
		if err := rlp.DecodeBytes(raw, &head); err != nil {
			return nil, fmt.Errorf("ledger: decode head: %w", err)
		}
	}
	var root []byte
	if head.Root != (common.Hash{}) {
		root = head.Root.Bytes()
	}
	stateTrie, err := trie.NewTrie(db, root)
	if err != nil {
		return nil, err
	}
	observability.Host().SetHeight(head.Height)
	return &Ledger{
		db:      db,
		trie:    stateTrie,
		height:  head.Height,
		nowFn:   time.Now,
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		rewards: watch2give.DefaultRewardSchedule(),
	}, nil
}

// SetEmitter configures where committed events are published.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	l.emitter = emitter
}

// SetNowFunc overrides the clock used for block timestamps.
func (l *Ledger) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	l.nowFn = now
}

// SetLogger overrides the structured logger.
func (l *Ledger) SetLogger(logger *slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	l.logger = logger
}

// SetRewardSchedule replaces the tiers used by RewardStanding.
func (l *Ledger) SetRewardSchedule(schedule watch2give.RewardSchedule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rewards = schedule
}

func (l *Ledger) rewardSchedule() watch2give.RewardSchedule {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rewards
}

// Head returns the committed height together with its state root.
func (l *Ledger) Head() (uint64, common.Hash) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height, l.trie.Root()
}

// Height returns the number of committed mutating calls.
func (l *Ledger) Height() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// StateRoot returns the committed state root.
func (l *Ledger) StateRoot() common.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trie.Root()
}

// Call executes raw selector||RLP(args) input on behalf of caller with value
// attached. A returned *RevertError means the call aborted and left no trace;
// the accompanying receipt records the reason. Other errors are storage
// failures.
func (l *Ledger) Call(ctx context.Context, caller crypto.AccountID, value *uint256.Int, input []byte) (*types.Receipt, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	started := time.Now()
	msg, payload, err := abi.SplitCall(input)
	if err != nil {
		observability.Host().ObserveCall("unknown", "reverted", time.Since(started))
		return nil, &RevertError{Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	exec := types.ExecContext{
		Caller:         caller,
		BlockNumber:    l.height + 1,
		BlockTimestamp: uint64(l.nowFn().UnixMilli()),
		Value:          value,
	}
	receipt := &types.Receipt{
		ID:        uuid.NewString(),
		Message:   msg.Name,
		Selector:  msg.Selector.String(),
		Caller:    caller.String(),
		Height:    l.height,
		Timestamp: exec.BlockTimestamp,
		StateRoot: l.trie.Root(),
	}

	if !msg.Payable && !exec.TransferredValue().IsZero() {
		return l.revert(receipt, started, ErrNonPayable)
	}

	working := l.trie
	if msg.Mutates {
		working = l.trie.Copy()
	}
	recorder := events.NewRecorder()
	engine := watch2give.NewEngine()
	engine.SetState(ledgerstate.NewManager(working))
	engine.SetEmitter(recorder)

	output, err := dispatch(engine, exec, msg, payload)
	if err != nil {
		if errors.Is(err, watch2give.ErrPreconditionViolated) || errors.Is(err, ErrMalformedInput) {
			return l.revert(receipt, started, err)
		}
		observability.Host().ObserveCall(msg.Name, "error", time.Since(started))
		return nil, fmt.Errorf("%s: %w", msg.Name, err)
	}
	receipt.Status = types.ReceiptSuccess
	receipt.Output = output

	if !msg.Mutates {
		observability.Host().ObserveCall(msg.Name, "success", time.Since(started))
		return receipt, nil
	}

	root, err := working.Commit(exec.BlockNumber)
	if err != nil {
		observability.Host().ObserveCall(msg.Name, "error", time.Since(started))
		return nil, fmt.Errorf("%s: commit state: %w", msg.Name, err)
	}
	head, err := rlp.EncodeToBytes(headRecord{Root: root, Height: exec.BlockNumber})
	if err != nil {
		return nil, fmt.Errorf("%s: encode head: %w", msg.Name, err)
	}
	if err := l.db.Put(headKey, head); err != nil {
		observability.Host().ObserveCall(msg.Name, "error", time.Since(started))
		return nil, fmt.Errorf("%s: persist head: %w", msg.Name, err)
	}
	l.trie = working
	l.height = exec.BlockNumber
	observability.Host().SetHeight(l.height)

	for _, evt := range recorder.Events() {
		if payload := evt.Event(); payload != nil {
			receipt.Events = append(receipt.Events, payload.Clone())
		}
	}
	recorder.FlushTo(events.Fanout{l.emitter, observability.Events().Emitter()})

	receipt.Height = l.height
	receipt.StateRoot = root
	observability.Host().ObserveCall(msg.Name, "success", time.Since(started))
	l.logger.Debug("call committed",
		slog.String("message", msg.Name),
		slog.Uint64("height", l.height),
		slog.String("request_id", receipt.ID))
	return receipt, nil
}

func (l *Ledger) revert(receipt *types.Receipt, started time.Time, cause error) (*types.Receipt, error) {
	receipt.Status = types.ReceiptReverted
	receipt.Reason = cause.Error()
	observability.Host().ObserveCall(receipt.Message, "reverted", time.Since(started))
	l.logger.Info("call reverted",
		slog.String("message", receipt.Message),
		slog.String("status", string(receipt.Status)),
		slog.String("request_id", receipt.ID),
		slog.String("reason", receipt.Reason))
	return receipt, &RevertError{Message: receipt.Message, Err: cause}
}

func decodeArgs(payload []byte, out interface{}) error {
	if err := abi.DecodeArgs(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return nil
}

func dispatch(engine *watch2give.Engine, ctx types.ExecContext, msg abi.Message, payload []byte) ([]byte, error) {
	switch msg.Selector {
	case abi.SelMintAdToken:
		var args abi.MintArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return nil, engine.MintAdToken(args.To, args.Amount)
	case abi.SelBurnAdToken:
		var args abi.BurnArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return nil, engine.BurnAdToken(args.From, args.Amount)
	case abi.SelAdTokenBalance:
		var args abi.AccountArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		balance, err := engine.AdTokenBalance(args.User)
		if err != nil {
			return nil, err
		}
		return abi.EncodeOutput(balance)
	case abi.SelDonateTokens:
		var args abi.DonateArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return nil, engine.DonateTokens(ctx, args.Vendor, args.Amount)
	case abi.SelSubmitProof:
		var args abi.SubmitProofArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return nil, engine.SubmitProof(ctx, args.User, args.Hash)
	case abi.SelGetProof:
		var args abi.AccountArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		hash, ok, err := engine.Proof(args.User)
		if err != nil {
			return nil, err
		}
		return abi.EncodeOutput(abi.ProofResult{Found: ok, Hash: hash})
	case abi.SelStake:
		if len(payload) > 0 {
			var args struct{}
			if err := decodeArgs(payload, &args); err != nil {
				return nil, err
			}
		}
		return nil, engine.Stake(ctx)
	case abi.SelGetStake:
		var args abi.AccountArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		amount, err := engine.StakeOf(args.User)
		if err != nil {
			return nil, err
		}
		return abi.EncodeOutput(amount.ToBig())
	case abi.SelGetDonationCount:
		var args abi.PairArgs
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		count, err := engine.DonationCount(args.User, args.Vendor)
		if err != nil {
			return nil, err
		}
		return abi.EncodeOutput(count)
	default:
		return nil, fmt.Errorf("%w: %s", abi.ErrUnknownSelector, msg.Selector)
	}
}
