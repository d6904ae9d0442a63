package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paycore/crypto"
)

func testAddress(t *testing.T) string {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key.PubKey().Address().String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	body := fmt.Sprintf(`
AdminAddress = %q
GatewayAddress = %q
DistributorAddress = %q
CharityBeneficiary = %q
`, testAddress(t), testAddress(t), testAddress(t), testAddress(t))
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "127.0.0.1:8645" {
		t.Fatalf("unexpected rpc default: %s", cfg.RPCAddress)
	}
	if cfg.ChainID != 1 || cfg.LedgerName != "JMZ" {
		t.Fatalf("unexpected ledger defaults: %d %s", cfg.ChainID, cfg.LedgerName)
	}
	if cfg.DataDir == "" {
		t.Fatal("data dir default missing")
	}
}

func TestLoadRejectsMissingAddresses(t *testing.T) {
	body := fmt.Sprintf(`
AdminAddress = %q
`, testAddress(t))
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for missing addresses")
	}
}

func TestLoadRejectsInvalidAddress(t *testing.T) {
	body := fmt.Sprintf(`
AdminAddress = "garbage"
GatewayAddress = %q
DistributorAddress = %q
CharityBeneficiary = %q
`, testAddress(t), testAddress(t), testAddress(t))
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for invalid address")
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error telling the operator to fill in addresses")
	}
	if !strings.Contains(err.Error(), "fill in") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("default file not created: %v", statErr)
	}
	// A second load parses the generated file and fails validation, not IO.
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error on generated file")
	}
}

func TestAddressHelper(t *testing.T) {
	encoded := testAddress(t)
	raw, err := Address(encoded)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	if raw == ([20]byte{}) {
		t.Fatal("expected non-zero raw address")
	}
	if _, err := Address("garbage"); err == nil {
		t.Fatal("expected error for invalid address")
	}
}
