package govaddr

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

func TestKeyIDForAddressRoundTrip(t *testing.T) {
	params := &chaincfg.MainNetParams
	var hash160 [20]byte
	for i := range hash160 {
		hash160[i] = byte(i + 1)
	}

	addr, err := btcutil.NewAddressPubKeyHash(hash160[:], params)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}

	c := New(params)
	got, err := c.KeyIDForAddress(addr.EncodeAddress())
	if err != nil {
		t.Fatalf("KeyIDForAddress: %v", err)
	}
	if got != hash160 {
		t.Fatalf("KeyIDForAddress = %x, want %x", got, hash160)
	}
}

func TestKeyIDForAddressRejectsScriptHash(t *testing.T) {
	params := &chaincfg.MainNetParams
	var scriptHash [20]byte
	for i := range scriptHash {
		scriptHash[i] = byte(0xa0 + i)
	}

	addr, err := btcutil.NewAddressScriptHashFromHash(scriptHash[:], params)
	if err != nil {
		t.Fatalf("NewAddressScriptHashFromHash: %v", err)
	}

	c := New(params)
	if _, err := c.KeyIDForAddress(addr.EncodeAddress()); err == nil {
		t.Fatalf("expected KeyIDForAddress to reject a P2SH destination")
	}
}

func TestKeyIDForAddressRejectsGarbage(t *testing.T) {
	c := New(&chaincfg.MainNetParams)
	if _, err := c.KeyIDForAddress("not an address"); err == nil {
		t.Fatalf("expected decode error for malformed address")
	}
}

func TestKeyIDForAddressRejectsWrongNetwork(t *testing.T) {
	var hash160 [20]byte
	for i := range hash160 {
		hash160[i] = byte(i + 1)
	}
	addr, err := btcutil.NewAddressPubKeyHash(hash160[:], &chaincfg.TestNet3Params)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash: %v", err)
	}

	c := New(&chaincfg.MainNetParams)
	if _, err := c.KeyIDForAddress(addr.EncodeAddress()); err == nil {
		t.Fatalf("expected decode error for testnet address under mainnet params")
	}
}
