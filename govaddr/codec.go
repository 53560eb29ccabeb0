// Package govaddr adapts base58-check address decoding onto the
// gov.AddressCodec contract, grounded on btcsuite-btcwallet's own
// address-handling idiom (btcutil.DecodeAddress, txscript.PayToAddrScript).
package govaddr

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// Codec implements gov.AddressCodec over btcutil's address decoder.
type Codec struct {
	params *chaincfg.Params
}

// New constructs a Codec bound to a specific network's address
// parameters (mainnet, testnet, ...).
func New(params *chaincfg.Params) *Codec {
	return &Codec{params: params}
}

// KeyIDForAddress decodes addr and returns the hash160 it commits to.
// Only key-addressable (P2PKH) destinations are supported; anything
// else — scripts, segwit witness programs — is rejected since a
// governance vote's utxo owner must be a single recoverable key.
func (c *Codec) KeyIDForAddress(addr string) ([20]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, c.params)
	if err != nil {
		return [20]byte{}, err
	}
	pkh, ok := decoded.(*btcutil.AddressPubKeyHash)
	if !ok {
		return [20]byte{}, errors.New("govaddr: address is not key-addressable")
	}
	var out [20]byte
	copy(out[:], pkh.Hash160()[:])
	return out, nil
}
