package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"watch2give/core/abi"
	"watch2give/core/events"
	"watch2give/core/types"
	"watch2give/crypto"
	"watch2give/native/watch2give"
	"watch2give/storage"
)

var (
	viewer = crypto.DevAccount("viewer")
	vendor = crypto.DevAccount("vendor")
)

func newTestLedger(t *testing.T, db storage.Database) (*Ledger, *events.Recorder) {
	t.Helper()
	ledger, err := OpenLedger(db)
	require.NoError(t, err)
	recorder := events.NewRecorder()
	ledger.SetEmitter(recorder)
	clock := time.UnixMilli(1_700_000_000_000)
	ledger.SetNowFunc(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return ledger, recorder
}

func TestLedgerDonationScenario(t *testing.T) {
	ctx := context.Background()
	ledger, recorder := newTestLedger(t, storage.NewMemDB())

	_, err := ledger.MintAdToken(ctx, viewer, viewer, 100)
	require.NoError(t, err)
	receipt, err := ledger.DonateTokens(ctx, viewer, vendor, 30)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptSuccess, receipt.Status)
	require.Len(t, receipt.Events, 1)
	require.Equal(t, events.TypeDonationMade, receipt.Events[0].Type)
	require.Equal(t, "30", receipt.Events[0].Attributes["amount"])

	rootBefore := ledger.StateRoot()
	heightBefore := ledger.Height()
	receipt, err = ledger.DonateTokens(ctx, viewer, vendor, 100)
	var revert *RevertError
	require.ErrorAs(t, err, &revert)
	require.ErrorIs(t, err, watch2give.ErrNotEnoughTokens)
	require.Equal(t, types.ReceiptReverted, receipt.Status)
	require.Empty(t, receipt.Events)
	require.Equal(t, rootBefore, ledger.StateRoot())
	require.Equal(t, heightBefore, ledger.Height())

	balance, err := ledger.AdTokenBalance(ctx, viewer)
	require.NoError(t, err)
	require.Equal(t, uint32(70), balance)
	balance, err = ledger.AdTokenBalance(ctx, vendor)
	require.NoError(t, err)
	require.Equal(t, uint32(30), balance)
	count, err := ledger.DonationCount(ctx, viewer, vendor)
	require.NoError(t, err)
	require.Equal(t, uint32(1), count)

	published := recorder.Events()
	require.Len(t, published, 1, "reverted call must not publish")
}

func TestLedgerHeightAdvancesOnlyOnCommit(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t, storage.NewMemDB())
	require.Zero(t, ledger.Height())

	_, err := ledger.MintAdToken(ctx, viewer, viewer, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ledger.Height())

	_, err = ledger.AdTokenBalance(ctx, viewer)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ledger.Height(), "queries do not commit")

	_, err = ledger.BurnAdToken(ctx, viewer, viewer, 5)
	require.ErrorIs(t, err, watch2give.ErrInsufficientTokens)
	require.Equal(t, uint64(1), ledger.Height())
}

func TestLedgerRejectsValueOnNonPayable(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t, storage.NewMemDB())

	input, err := abi.EncodeCall(abi.SelMintAdToken, abi.MintArgs{To: viewer, Amount: 5})
	require.NoError(t, err)
	_, err = ledger.Call(ctx, viewer, uint256.NewInt(1), input)
	require.ErrorIs(t, err, ErrNonPayable)
	require.True(t, IsRevert(err))

	balance, err := ledger.AdTokenBalance(ctx, viewer)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestLedgerRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t, storage.NewMemDB())

	_, err := ledger.Call(ctx, viewer, nil, []byte{0x01})
	require.ErrorIs(t, err, abi.ErrShortInput)
	require.True(t, IsRevert(err))

	_, err = ledger.Call(ctx, viewer, nil, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.ErrorIs(t, err, abi.ErrUnknownSelector)

	_, err = ledger.Call(ctx, viewer, nil, append(abi.SelMintAdToken[:], 0xff))
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestLedgerStakeAndProof(t *testing.T) {
	ctx := context.Background()
	ledger, recorder := newTestLedger(t, storage.NewMemDB())

	receipt, err := ledger.Stake(ctx, viewer, uint256.NewInt(250))
	require.NoError(t, err)
	require.Empty(t, receipt.Events)
	_, err = ledger.Stake(ctx, viewer, uint256.NewInt(50))
	require.NoError(t, err)

	staked, err := ledger.StakeOf(ctx, viewer)
	require.NoError(t, err)
	require.Equal(t, uint64(300), staked.Uint64())

	hash := common.HexToHash("0xbeef")
	receipt, err = ledger.SubmitProof(ctx, vendor, viewer, hash)
	require.NoError(t, err)
	require.Len(t, receipt.Events, 1)
	require.Equal(t, []string{viewer.String()}, receipt.Events[0].Topics)

	got, ok, err := ledger.Proof(ctx, viewer)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hash, got)

	_, ok, err = ledger.Proof(ctx, vendor)
	require.NoError(t, err)
	require.False(t, ok)

	require.Len(t, recorder.Events(), 1)
}

func TestLedgerTimestampsInMilliseconds(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t, storage.NewMemDB())
	ledger.SetNowFunc(func() time.Time { return time.UnixMilli(1_234_567) })

	receipt, err := ledger.SubmitProof(ctx, viewer, viewer, common.Hash{})
	require.NoError(t, err)
	require.Equal(t, uint64(1_234_567), receipt.Timestamp)
	require.Equal(t, "1234567", receipt.Events[0].Attributes["timestamp"])
}

func TestLedgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger")

	db, err := storage.NewLevelDB(path)
	require.NoError(t, err)
	ledger, _ := newTestLedger(t, db)
	_, err = ledger.MintAdToken(ctx, viewer, viewer, 90)
	require.NoError(t, err)
	_, err = ledger.DonateTokens(ctx, viewer, vendor, 40)
	require.NoError(t, err)
	_, err = ledger.Stake(ctx, vendor, uint256.NewInt(7))
	require.NoError(t, err)
	root := ledger.StateRoot()
	db.Close()

	reopened, err := storage.NewLevelDB(path)
	require.NoError(t, err)
	defer reopened.Close()
	restored, err := OpenLedger(reopened)
	require.NoError(t, err)
	require.Equal(t, uint64(3), restored.Height())
	require.Equal(t, root, restored.StateRoot())

	balance, err := restored.AdTokenBalance(ctx, viewer)
	require.NoError(t, err)
	require.Equal(t, uint32(50), balance)
	count, err := restored.DonationCount(ctx, viewer, vendor)
	require.NoError(t, err)
	require.Equal(t, uint32(1), count)
	staked, err := restored.StakeOf(ctx, vendor)
	require.NoError(t, err)
	require.Equal(t, uint64(7), staked.Uint64())
}

func TestLedgerHonoursCancelledContext(t *testing.T) {
	ledger, _ := newTestLedger(t, storage.NewMemDB())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ledger.MintAdToken(ctx, viewer, viewer, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	require.Zero(t, ledger.Height())
}

func TestLedgerRewardStanding(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t, storage.NewMemDB())
	schedule, err := watch2give.NewRewardSchedule([]watch2give.RewardTier{
		{Threshold: 2, Name: "sticker"},
		{Threshold: 3, Name: "badge"},
	})
	require.NoError(t, err)
	ledger.SetRewardSchedule(schedule)

	_, err = ledger.MintAdToken(ctx, viewer, viewer, 10)
	require.NoError(t, err)
	standing, err := ledger.RewardStanding(ctx, viewer, vendor)
	require.NoError(t, err)
	require.False(t, standing.Eligible())
	require.Equal(t, "sticker", standing.Next.Name)

	for i := 0; i < 2; i++ {
		_, err = ledger.DonateTokens(ctx, viewer, vendor, 1)
		require.NoError(t, err)
	}
	standing, err = ledger.RewardStanding(ctx, viewer, vendor)
	require.NoError(t, err)
	require.EqualValues(t, 2, standing.Count)
	require.Equal(t, "sticker", standing.Tier.Name)
	require.EqualValues(t, 1, standing.Remaining())

	// Counts are per pair.
	standing, err = ledger.RewardStanding(ctx, vendor, viewer)
	require.NoError(t, err)
	require.EqualValues(t, 0, standing.Count)
}

func TestLedgerHeadPairsHeightWithRoot(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t, storage.NewMemDB())
	height, _ := ledger.Head()
	require.Zero(t, height)

	receipt, err := ledger.MintAdToken(ctx, viewer, viewer, 1)
	require.NoError(t, err)
	height, root := ledger.Head()
	require.EqualValues(t, 1, height)
	require.Equal(t, receipt.StateRoot, root)
	require.Equal(t, ledger.StateRoot(), root)
}
