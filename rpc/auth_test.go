package rpc

import (
	"net/http/httptest"
	"testing"
	"time"

	"paycore/crypto"
)

func TestAuthenticatorDisabledWithoutSecret(t *testing.T) {
	auth := NewAuthenticator("   ")
	if auth.Enabled() {
		t.Fatal("blank secret must disable the authenticator")
	}
	if _, err := auth.IssueToken(crypto.Address{}, time.Minute); err == nil {
		t.Fatal("issuing without a secret must fail")
	}
}

func TestAuthenticatorRoundTrip(t *testing.T) {
	auth := NewAuthenticator("test-secret")
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()

	bearer, err := auth.IssueToken(addr, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	got, err := auth.Caller(req)
	if err != nil {
		t.Fatalf("caller: %v", err)
	}
	if got != addr.Raw() {
		t.Fatal("recovered caller does not match issued address")
	}
}

func TestAuthenticatorRejectsMissingHeader(t *testing.T) {
	auth := NewAuthenticator("test-secret")
	req := httptest.NewRequest("POST", "/", nil)
	if _, err := auth.Caller(req); err == nil {
		t.Fatal("expected error for missing header")
	}
	req.Header.Set("Authorization", "Basic abc")
	if _, err := auth.Caller(req); err == nil {
		t.Fatal("expected error for non-bearer scheme")
	}
}

func TestAuthenticatorRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthenticator("secret-a")
	verifier := NewAuthenticator("secret-b")
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	bearer, err := issuer.IssueToken(key.PubKey().Address(), time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if _, err := verifier.Caller(req); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestAuthenticatorRejectsExpiredToken(t *testing.T) {
	auth := NewAuthenticator("test-secret")
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	// Beyond the 30s verification leeway.
	bearer, err := auth.IssueToken(key.PubKey().Address(), -2*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if _, err := auth.Caller(req); err == nil {
		t.Fatal("expected error for expired token")
	}
}
