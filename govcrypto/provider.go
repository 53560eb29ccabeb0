// Package govcrypto adapts the secp256k1 compact-signature primitives
// the governance engine needs onto a concrete provider, the same role
// the teacher's crypto.CryptoProvider interface (crypto/provider.go)
// plays for consensus-level signature checks.
package govcrypto

import (
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/ripemd160"
)

// Provider implements gov.SignatureProvider over btcec/v2's compact
// ECDSA signature scheme, the scheme the rest of the retrieved example
// pack (btcsuite-btcwallet) uses for address-owned key recovery.
type Provider struct{}

// New constructs a Provider. There is no state to configure.
func New() *Provider {
	return &Provider{}
}

// RecoverCompact recovers the 33-byte compressed public key that
// produced sig over digest.
func (p *Provider) RecoverCompact(sig []byte, digest [32]byte) ([]byte, error) {
	if len(sig) != 65 {
		return nil, errors.New("govcrypto: compact signature must be 65 bytes")
	}
	pubkey, _, err := ecdsa.RecoverCompact(sig, digest[:])
	if err != nil {
		return nil, err
	}
	return pubkey.SerializeCompressed(), nil
}

// SignCompact produces a 65-byte recoverable signature over digest.
func (p *Provider) SignCompact(privkey []byte, digest [32]byte) ([]byte, error) {
	priv, pub := btcec.PrivKeyFromBytes(privkey)
	_ = pub
	return ecdsa.SignCompact(priv, digest[:], true), nil
}

// KeyID returns the hash160 (RIPEMD-160 of SHA-256) of a compressed
// public key, the same key-id construction btcutil addresses commit to.
func (p *Provider) KeyID(pubkey []byte) [20]byte {
	sh := sha256.Sum256(pubkey)
	r := ripemd160.New()
	r.Write(sh[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}
