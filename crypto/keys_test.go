package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	var raw [AddressLength]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr := MustNewAddress(JMZPrefix, raw)
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(JMZPrefix)) {
		t.Fatalf("expected %s prefix, got %s", JMZPrefix, encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatal("round trip mangled the address")
	}
	if decoded.Prefix() != JMZPrefix {
		t.Fatalf("expected prefix %s, got %s", JMZPrefix, decoded.Prefix())
	}
}

func TestNewAddressRejectsWrongLength(t *testing.T) {
	if _, err := NewAddress(JMZPrefix, make([]byte, 19)); err == nil {
		t.Fatal("expected error for short input")
	}
	if _, err := NewAddress(JMZPrefix, make([]byte, 21)); err == nil {
		t.Fatal("expected error for long input")
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatal("expected error for invalid input")
	}
}

func TestIsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Fatal("zero value must report IsZero")
	}
	addr := MustNewAddress(JMZPrefix, [AddressLength]byte{19: 1})
	if addr.IsZero() {
		t.Fatal("non-zero address must not report IsZero")
	}
}

func TestKeyDerivesStableAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	first := key.PubKey().Address()
	second := key.PubKey().Address()
	if !first.Equal(second) {
		t.Fatal("address derivation is not deterministic")
	}
	if first.IsZero() {
		t.Fatal("derived address is zero")
	}
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !bytes.Equal(restored.Bytes(), key.Bytes()) {
		t.Fatal("key bytes changed across round trip")
	}
	if !restored.PubKey().Address().Equal(key.PubKey().Address()) {
		t.Fatal("restored key derives a different address")
	}
}
