package gov

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/txscript"
)

// unspendableOutput reports whether script is an OP_RETURN-style
// carrier and, if so, returns its single pushed payload, using
// txscript.OP_RETURN and txscript.PushedData
// (github.com/btcsuite/btcd/txscript).
func unspendableOutput(script []byte) (payload []byte, ok bool) {
	if len(script) == 0 || script[0] != txscript.OP_RETURN {
		return nil, false
	}
	pushes, err := txscript.PushedData(script)
	if err != nil || len(pushes) != 1 {
		return nil, false
	}
	return pushes[0], true
}

// extractedVote pairs a decoded vote with the identity and signature
// hashes needed to resolve an intra-block vote-change tie-break.
type extractedVote struct {
	hash    [32]byte
	vote    Vote
	sigHash [32]byte
}

// ExtractionResult carries everything the extractor found in one block,
// ready for the connect engine to apply.
type ExtractionResult struct {
	Proposals []Proposal
	Votes     []Vote
}

// ExtractDeps bundles the policy and collaborator-backed checks
// ExtractBlock needs to fully validate a record while extracting it,
// mirroring original_source/governance.h's dataFromBlock taking the
// active consensus params alongside the node's utxo/signature lookups.
type ExtractDeps struct {
	Params Params
	// VinHashesFor lazily computes a transaction's carrier vinhashes,
	// consulted only once a vote payload is actually found in it.
	VinHashesFor func(tx BlockTx) []VinHash
	// ValidateVote runs the signature-to-utxo-ownership and
	// minimum-amount checks spec.md §4.3's three-argument validate()
	// requires beyond the replay binding ExtractBlock already checks
	// inline. Nil skips these checks (e.g. extraction exercised in
	// isolation from its collaborators).
	ValidateVote func(v Vote) error
}

// ExtractBlock scans every transaction output in block for governance
// payloads, decodes them, and runs each through its full validator
// before admitting it to the result set, mirroring
// original_source/governance.h's dataFromBlock. deps.VinHashesFor
// lazily computes a transaction's carrier vinhashes only when a vote
// payload is actually found in it, matching the original's
// lazy-computation comment ("Only calculate if necessary since this is
// computationally expensive").
func ExtractBlock(block Block, deps ExtractDeps) ExtractionResult {
	var proposals []Proposal
	byHash := make(map[[32]byte]extractedVote)

	for _, tx := range block.Txs {
		var vinHashes []VinHash
		var vinHashesComputed bool

		for _, payload := range tx.GovPayloads {
			if len(payload) < 2 {
				continue
			}
			switch RecordType(payload[1]) {
			case RecordProposal:
				p, err := DecodeProposal(payload)
				if err != nil {
					continue
				}
				p.BlockNumber = block.Height
				if err := ValidateProposal(p, payload, block.Height, deps.Params); err != nil {
					continue
				}
				proposals = append(proposals, p)

			case RecordVote:
				v, err := DecodeVote(payload)
				if err != nil {
					continue
				}
				if !vinHashesComputed {
					if deps.VinHashesFor != nil {
						vinHashes = deps.VinHashesFor(tx)
					}
					vinHashesComputed = true
				}
				if err := ValidateVoteReplay(v, vinHashes); err != nil {
					continue
				}
				v.BlockNumber = block.Height
				v.Time = block.Time
				if deps.ValidateVote != nil {
					if err := deps.ValidateVote(v); err != nil {
						continue
					}
				}

				hash := v.Hash()
				applyVoteChangeTiebreak(byHash, hash, v)
			}
		}
	}

	votes := make([]Vote, 0, len(byHash))
	for _, ev := range byHash {
		votes = append(votes, ev.vote)
	}
	return ExtractionResult{Proposals: proposals, Votes: votes}
}

// applyVoteChangeTiebreak resolves the case where the same signer casts
// more than one vote for the same proposal within a single block: the
// later identity-hash collision keeps whichever vote sorts higher under
// the (time, sig_hash-as-uint256) total order, matching the tie-break
// the connect engine uses across blocks so both orders agree (spec.md
// §4.4).
func applyVoteChangeTiebreak(byHash map[[32]byte]extractedVote, hash [32]byte, v Vote) {
	sh := v.SigHash()
	existing, present := byHash[hash]
	if !present || voteWins(v.Time, sh, existing.vote.Time, existing.sigHash) {
		byHash[hash] = extractedVote{hash: hash, vote: v, sigHash: sh}
	}
}

// voteWins reports whether candidate (time, sigHash) sorts after
// incumbent (time, sigHash) under spec.md §4.4's total order: later time
// wins; ties broken by the sig_hash compared as a big-endian uint256.
func voteWins(candTime int64, candSig [32]byte, incTime int64, incSig [32]byte) bool {
	if candTime != incTime {
		return candTime > incTime
	}
	return bytes.Compare(candSig[:], incSig[:]) > 0
}

// sortedBySigHash returns votes ordered by the same (time, sig_hash)
// total order used for tie-breaking, for callers needing a deterministic
// replay order (e.g. the historical loader's phase 2).
func sortedBySigHash(votes []Vote) []Vote {
	out := append([]Vote(nil), votes...)
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].SigHash(), out[j].SigHash()
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return bytes.Compare(si[:], sj[:]) < 0
	})
	return out
}
