package token

import (
	"errors"
	"math/big"
	"testing"

	"paycore/crypto"
)

func signedPermit(t *testing.T, ledger *Ledger, key *crypto.PrivateKey, spender [20]byte, value *big.Int, nonce uint64, deadline int64) []byte {
	t.Helper()
	msg := PermitMessage{
		Ledger:   ledger.Name(),
		ChainID:  ledger.ChainID(),
		Owner:    key.PubKey().Address().Raw(),
		Spender:  spender,
		Value:    value,
		Nonce:    nonce,
		Deadline: deadline,
	}
	sig, err := SignPermit(msg, key)
	if err != nil {
		t.Fatalf("sign permit: %v", err)
	}
	return sig
}

func TestPermitGrantsAllowanceAndConsumesNonce(t *testing.T) {
	ledger, _, _ := newTestLedger()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := key.PubKey().Address().Raw()
	spender := addr(9)
	value := big.NewInt(500)

	sig := signedPermit(t, ledger, key, spender, value, 0, 1000)
	if err := ledger.Permit(owner, spender, value, 1000, sig, 500); err != nil {
		t.Fatalf("permit: %v", err)
	}
	allowance, _ := ledger.Allowance(owner, spender)
	if allowance.Cmp(value) != 0 {
		t.Fatalf("expected allowance %s, got %s", value, allowance)
	}
	nonce, _ := ledger.Nonce(owner)
	if nonce != 1 {
		t.Fatalf("expected nonce 1, got %d", nonce)
	}
}

func TestPermitRejectsReplay(t *testing.T) {
	ledger, _, _ := newTestLedger()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := key.PubKey().Address().Raw()
	spender := addr(9)
	value := big.NewInt(500)

	sig := signedPermit(t, ledger, key, spender, value, 0, 1000)
	if err := ledger.Permit(owner, spender, value, 1000, sig, 500); err != nil {
		t.Fatalf("permit: %v", err)
	}
	// The consumed nonce makes the old signature recover a different signer.
	if err := ledger.Permit(owner, spender, value, 1000, sig, 500); !errors.Is(err, ErrPermitInvalid) {
		t.Fatalf("expected ErrPermitInvalid on replay, got %v", err)
	}
}

func TestPermitRejectsExpiredDeadline(t *testing.T) {
	ledger, _, _ := newTestLedger()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := key.PubKey().Address().Raw()
	spender := addr(9)
	value := big.NewInt(500)

	sig := signedPermit(t, ledger, key, spender, value, 0, 100)
	if err := ledger.Permit(owner, spender, value, 100, sig, 500); !errors.Is(err, ErrPermitExpired) {
		t.Fatalf("expected ErrPermitExpired, got %v", err)
	}
}

func TestPermitRejectsForeignSigner(t *testing.T) {
	ledger, _, _ := newTestLedger()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	other, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := key.PubKey().Address().Raw()
	spender := addr(9)
	value := big.NewInt(500)

	msg := PermitMessage{
		Ledger:   ledger.Name(),
		ChainID:  ledger.ChainID(),
		Owner:    owner,
		Spender:  spender,
		Value:    value,
		Nonce:    0,
		Deadline: 1000,
	}
	sig, err := SignPermit(msg, other)
	if err != nil {
		t.Fatalf("sign permit: %v", err)
	}
	if err := ledger.Permit(owner, spender, value, 1000, sig, 500); !errors.Is(err, ErrPermitInvalid) {
		t.Fatalf("expected ErrPermitInvalid, got %v", err)
	}
	nonce, _ := ledger.Nonce(owner)
	if nonce != 0 {
		t.Fatalf("rejected permit must not consume the nonce, got %d", nonce)
	}
}

func TestPermitRejectsWrongValue(t *testing.T) {
	ledger, _, _ := newTestLedger()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	owner := key.PubKey().Address().Raw()
	spender := addr(9)

	sig := signedPermit(t, ledger, key, spender, big.NewInt(500), 0, 1000)
	if err := ledger.Permit(owner, spender, big.NewInt(501), 1000, sig, 500); !errors.Is(err, ErrPermitInvalid) {
		t.Fatalf("expected ErrPermitInvalid, got %v", err)
	}
}

func TestRecoverPermitSignerRoundTrip(t *testing.T) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	msg := PermitMessage{
		Ledger:   "JMZ",
		ChainID:  1,
		Owner:    key.PubKey().Address().Raw(),
		Spender:  addr(4),
		Value:    big.NewInt(42),
		Nonce:    7,
		Deadline: 99,
	}
	sig, err := SignPermit(msg, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	signer, err := RecoverPermitSigner(msg, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if signer != msg.Owner {
		t.Fatal("recovered signer does not match owner")
	}
}
