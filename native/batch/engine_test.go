package batch_test

import (
	"errors"
	"math/big"
	"testing"

	"paycore/native/batch"
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
	admin     = addr(1)
	batchAddr = addr(2)
	sender    = addr(3)
)

func newTestEnv(t *testing.T) (*batch.Engine, *token.Ledger) {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	ledger := token.NewLedger("JMZ", 1)
	ledger.SetState(manager)

	engine := batch.NewEngine(admin, batchAddr)
	engine.SetToken(ledger)
	return engine, ledger
}

func TestBatchTransfer(t *testing.T) {
	engine, ledger := newTestEnv(t)
	if err := ledger.Mint(sender, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Approve(sender, batchAddr, big.NewInt(100)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	recipients := [][20]byte{addr(10), addr(11), addr(12)}
	amounts := []*big.Int{big.NewInt(10), big.NewInt(20), big.NewInt(30)}
	if err := engine.BatchTransfer(sender, recipients, amounts); err != nil {
		t.Fatalf("batch transfer: %v", err)
	}
	for i, r := range recipients {
		bal, _ := ledger.BalanceOf(r)
		if bal.Cmp(amounts[i]) != 0 {
			t.Fatalf("recipient %d: expected %s, got %s", i, amounts[i], bal)
		}
	}
	remaining, _ := ledger.BalanceOf(sender)
	if remaining.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("sender: expected 40, got %s", remaining)
	}
}

func TestBatchTransferValidation(t *testing.T) {
	engine, _ := newTestEnv(t)
	if err := engine.BatchTransfer(sender, nil, nil); !errors.Is(err, batch.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	tooMany := make([][20]byte, batch.MaxRecipients+1)
	amounts := make([]*big.Int, batch.MaxRecipients+1)
	if err := engine.BatchTransfer(sender, tooMany, amounts); !errors.Is(err, batch.ErrTooManyRecipients) {
		t.Fatalf("expected ErrTooManyRecipients, got %v", err)
	}
	if err := engine.BatchTransfer(sender, [][20]byte{addr(10)}, nil); !errors.Is(err, batch.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestBatchTransferInsufficientAllowanceAborts(t *testing.T) {
	engine, ledger := newTestEnv(t)
	if err := ledger.Mint(sender, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Approve(sender, batchAddr, big.NewInt(15)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	recipients := [][20]byte{addr(10), addr(11)}
	amounts := []*big.Int{big.NewInt(10), big.NewInt(10)}
	if err := engine.BatchTransfer(sender, recipients, amounts); !errors.Is(err, token.ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
}

func TestDrain(t *testing.T) {
	engine, ledger := newTestEnv(t)
	if err := ledger.Mint(batchAddr, big.NewInt(55)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.Drain(sender); !errors.Is(err, batch.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := engine.Drain(admin); err != nil {
		t.Fatalf("drain: %v", err)
	}
	bal, _ := ledger.BalanceOf(admin)
	if bal.Cmp(big.NewInt(55)) != 0 {
		t.Fatalf("admin: expected 55, got %s", bal)
	}
	// Draining an empty utility is a no-op.
	if err := engine.Drain(admin); err != nil {
		t.Fatalf("drain empty: %v", err)
	}
}
