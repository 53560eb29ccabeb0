package gov

// AddressCodec is the stipulated address-decoding collaborator
// (spec.md §6), kept narrow: the engine only ever needs to turn a
// base58/bech32-style address string into the key id it commits to.
type AddressCodec interface {
	// KeyIDForAddress decodes addr and returns the hash160 it commits
	// to, or an error if addr is not a key-addressable (P2PKH-style)
	// destination.
	KeyIDForAddress(addr string) ([20]byte, error)
}
