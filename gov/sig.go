package gov

// SignatureProvider is the stipulated signing collaborator (spec.md §6),
// mirroring the teacher's crypto.CryptoProvider interface shape
// (crypto/provider.go) but scoped to the compact-ECDSA recovery this
// engine needs: a vote's signature recovers a public key from its
// sig_hash, and that key's hash160 must equal the utxo's owning key id.
type SignatureProvider interface {
	// RecoverCompact recovers the public key (33-byte compressed
	// encoding) that produced sig over digest, or an error if the
	// signature is malformed or does not recover.
	RecoverCompact(sig []byte, digest [32]byte) (pubkey []byte, err error)
	// KeyID returns the hash160 of a compressed public key.
	KeyID(pubkey []byte) [20]byte
	// SignCompact produces a compact recoverable signature over digest
	// using the given private key, for use by vote-producing callers
	// (not exercised by the consensus-facing validation path).
	SignCompact(privkey []byte, digest [32]byte) ([]byte, error)
}
