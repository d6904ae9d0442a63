package staking_test

import (
	"errors"
	"math/big"
	"testing"

	"paycore/native/staking"
	"paycore/state"
	"paycore/storage"
	"paycore/token"
)

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

var (
	admin    = addr(1)
	poolAddr = addr(2)
	staker   = addr(3)
)

const (
	baseTime = int64(1_700_000_000)
	lockup   = int64(3600)
)

func newTestEnv(t *testing.T, poolFunding int64) (*staking.Engine, *token.Ledger, func(int64)) {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	ledger := token.NewLedger("JMZ", 1)
	ledger.SetState(manager)

	engine := staking.NewEngine(admin, poolAddr, 10, lockup)
	engine.SetToken(ledger)
	engine.SetState(manager.StakingState(poolAddr))

	now := baseTime
	engine.SetNowFunc(func() int64 { return now })
	setNow := func(ts int64) { now = ts }

	if poolFunding > 0 {
		if err := ledger.Mint(poolAddr, big.NewInt(poolFunding)); err != nil {
			t.Fatalf("mint pool: %v", err)
		}
	}
	if err := ledger.Mint(staker, big.NewInt(1000)); err != nil {
		t.Fatalf("mint staker: %v", err)
	}
	if err := ledger.Approve(staker, poolAddr, big.NewInt(1000)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return engine, ledger, setNow
}

func TestCampaignStartsOpen(t *testing.T) {
	engine, _, _ := newTestEnv(t, 100)
	open, err := engine.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !open {
		t.Fatal("campaign must start open")
	}
}

func TestSetOpenRequiresAdmin(t *testing.T) {
	engine, _, _ := newTestEnv(t, 100)
	if err := engine.SetOpen(staker, false); !errors.Is(err, staking.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := engine.SetOpen(admin, false); err != nil {
		t.Fatalf("set open: %v", err)
	}
	if err := engine.Stake(staker, big.NewInt(100)); !errors.Is(err, staking.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestStakeAndCollect(t *testing.T) {
	engine, ledger, setNow := newTestEnv(t, 100)
	if err := engine.Stake(staker, big.NewInt(200)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	has, total, err := engine.HasStake(staker)
	if err != nil {
		t.Fatalf("hasStake: %v", err)
	}
	if !has || total.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected locked principal 200, got %v/%s", has, total)
	}

	// Locked before maturity.
	if _, err := engine.Collect(staker); !errors.Is(err, staking.ErrNothingToCollect) {
		t.Fatalf("expected ErrNothingToCollect, got %v", err)
	}

	setNow(baseTime + lockup)
	payout, err := engine.Collect(staker)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	// 200 principal plus 10% rewards.
	if payout.Cmp(big.NewInt(220)) != 0 {
		t.Fatalf("expected payout 220, got %s", payout)
	}
	bal, _ := ledger.BalanceOf(staker)
	if bal.Cmp(big.NewInt(1020)) != 0 {
		t.Fatalf("staker: expected 1020, got %s", bal)
	}
	has, _, err = engine.HasStake(staker)
	if err != nil {
		t.Fatalf("hasStake: %v", err)
	}
	if has {
		t.Fatal("collected stake must be removed")
	}
}

func TestStakeRejectsZero(t *testing.T) {
	engine, _, _ := newTestEnv(t, 100)
	if err := engine.Stake(staker, big.NewInt(0)); !errors.Is(err, staking.ErrZeroStake) {
		t.Fatalf("expected ErrZeroStake, got %v", err)
	}
}

func TestStakeRejectsExhaustedRewardPool(t *testing.T) {
	engine, _, _ := newTestEnv(t, 10)
	// Rewards for 200 are 20; the pool only holds 10.
	if err := engine.Stake(staker, big.NewInt(200)); !errors.Is(err, staking.ErrRewardPoolExhausted) {
		t.Fatalf("expected ErrRewardPoolExhausted, got %v", err)
	}
	// 100 earns 10, exactly what the pool covers.
	if err := engine.Stake(staker, big.NewInt(100)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	// The reserved rewards make the next stake fail.
	if err := engine.Stake(staker, big.NewInt(10)); !errors.Is(err, staking.ErrRewardPoolExhausted) {
		t.Fatalf("expected ErrRewardPoolExhausted, got %v", err)
	}
}

func TestCollectOnlyMaturedStakes(t *testing.T) {
	engine, _, setNow := newTestEnv(t, 100)
	if err := engine.Stake(staker, big.NewInt(100)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	setNow(baseTime + lockup/2)
	if err := engine.Stake(staker, big.NewInt(100)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	setNow(baseTime + lockup)
	payout, err := engine.Collect(staker)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	// Only the first stake has matured.
	if payout.Cmp(big.NewInt(110)) != 0 {
		t.Fatalf("expected payout 110, got %s", payout)
	}
	has, total, err := engine.HasStake(staker)
	if err != nil {
		t.Fatalf("hasStake: %v", err)
	}
	if !has || total.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected one remaining stake of 100, got %v/%s", has, total)
	}
}
