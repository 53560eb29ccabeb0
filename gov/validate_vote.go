package gov

// ValidateVoteSignature checks a vote's signature and utxo ownership,
// mirroring original_source/governance.h's Vote::isValid(params) single
// overload: recover the signer's public key from the vote's sig_hash,
// derive its key id, and require it to match the address that owns the
// referenced utxo.
func ValidateVoteSignature(v Vote, coinAddress string, sigp SignatureProvider, addrp AddressCodec) error {
	if len(v.Signature) == 0 {
		return govErr(ErrSignature, "vote has no signature")
	}
	pubkey, err := sigp.RecoverCompact(v.Signature, v.SigHash())
	if err != nil {
		return govErr(ErrSignature, "signature does not recover")
	}
	keyid := sigp.KeyID(pubkey)
	wantKeyID, err := addrp.KeyIDForAddress(coinAddress)
	if err != nil {
		return govErr(ErrSignature, "utxo address is not key-addressable")
	}
	if keyid != wantKeyID {
		return govErr(ErrSignature, "signature does not match utxo owner")
	}
	return nil
}

// ValidateVoteReplay checks a vote's anti-replay binding, mirroring
// original_source/governance.h's Vote::isValid(vinHashes, params)
// overload: the vote's carried vinhash must appear among the carrier
// transaction's own input-prevout vinhashes.
func ValidateVoteReplay(v Vote, vinHashes []VinHash) error {
	for _, vh := range vinHashes {
		if vh == v.VinHash {
			return nil
		}
	}
	return govErr(ErrReplay, "vinhash does not match any carrier input")
}

// ValidateVoteAmount checks the utxo backing a vote meets the minimum
// stake required to cast it.
func ValidateVoteAmount(amount int64, params Params) error {
	if amount < params.VoteMinUtxoAmount {
		return govErr(ErrPolicyAmount, "utxo below minimum vote amount")
	}
	return nil
}
