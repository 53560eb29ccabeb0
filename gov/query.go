package gov

// CastVote validates a freshly-observed vote outside of block
// connection — e.g. a vote still sitting in the mempool that a wallet
// wants instant feedback on — without applying it. It never mutates the
// Store; ConnectBlock remains the only path that commits state.
func (e *Engine) CastVote(v Vote, coinAddress string, coinAmount int64, vinHashes []VinHash, sigp SignatureProvider, addrp AddressCodec) error {
	e.store.mu.Lock()
	_, hasProposal := e.store.proposals[v.Proposal]
	e.store.mu.Unlock()
	if !hasProposal {
		return govErr(ErrMissingProp, "vote references unknown proposal")
	}
	if err := ValidateVoteReplay(v, vinHashes); err != nil {
		return err
	}
	if err := ValidateVoteAmount(coinAmount, e.params); err != nil {
		return err
	}
	if err := ValidateVoteSignature(v, coinAddress, sigp, addrp); err != nil {
		return err
	}
	return nil
}

// UtxoInVoteCutoff reports whether blockNumber falls within the window
// in which a vote for a proposal targeting superblock is still counted
// (spec.md §4.2's insideVoteCutoff).
func (e *Engine) UtxoInVoteCutoff(superblock, blockNumber uint64) bool {
	return insideVoteCutoff(superblock, blockNumber, e.params)
}

// NextSuperblock and PreviousSuperblock expose the params-derived
// superblock arithmetic through the engine for callers that only hold
// an *Engine.
func (e *Engine) NextSuperblock(fromHeight uint64) uint64 {
	return NextSuperblock(fromHeight, e.params)
}

func (e *Engine) PreviousSuperblock(fromHeight uint64) uint64 {
	return PreviousSuperblock(fromHeight, e.params)
}

func (e *Engine) IsSuperblockHeight(height uint64) bool {
	return IsSuperblock(height, e.params)
}

// Params returns the engine's consensus parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Tally computes the de-duplicated tally for one proposal, using the
// engine's own vote index and configured vote balance.
func (e *Engine) Tally(proposalHash [32]byte, carrierTxOf func(v Vote) ([32]byte, bool)) VoteTally {
	var votes []Vote
	for _, v := range e.store.GetVotes() {
		if v.Proposal == proposalHash {
			votes = append(votes, v)
		}
	}
	return GetTally(votes, carrierTxOf, e.params.VoteBalance)
}

// Results computes every passing proposal for superblock, ready for
// SuperblockPayees to rank and budget-fill.
func (e *Engine) Results(superblock uint64, carrierTxOf func(v Vote) ([32]byte, bool)) []SuperblockResult {
	proposals := e.store.ProposalsForSuperblock(superblock)
	votesByProposal := make(map[[32]byte][]Vote)
	for _, v := range e.store.GetVotes() {
		votesByProposal[v.Proposal] = append(votesByProposal[v.Proposal], v)
	}
	return SuperblockResults(proposals, votesByProposal, superblock, carrierTxOf, e.params.VoteBalance)
}

// Payees computes the final ordered, budget-filled payee list for
// superblock.
func (e *Engine) Payees(superblock uint64, carrierTxOf func(v Vote) ([32]byte, bool)) []Proposal {
	results := e.Results(superblock, carrierTxOf)
	return SuperblockPayees(results, superblock, e.params)
}

// ValidateSuperblock checks a candidate block against the payee list its
// superblock height computes, locating the coinstake transaction (if
// any) among the block's transactions and feeding its payout outputs to
// IsValidSuperblock, mirroring spec.md §6's
// is_valid_superblock(block, height) → (bool, total_payment) contract.
// A block carrying no coinstake transaction is rejected outright, per
// spec.md §4.7's proof-of-stake requirement. hadResults is computed from
// the pre-budget-fill results so a superblock with zero passing
// proposals accepts any coinstake (spec.md §4.7's last sentence), which
// the post-budget-fill payee list alone cannot distinguish from
// "proposals passed but none fit the budget."
func (e *Engine) ValidateSuperblock(block Block, superblock uint64, carrierTxOf func(v Vote) ([32]byte, bool)) (bool, int64) {
	results := e.Results(superblock, carrierTxOf)
	payees := SuperblockPayees(results, superblock, e.params)
	hadResults := len(results) > 0

	for _, tx := range block.Txs {
		if tx.IsCoinstake {
			return IsValidSuperblock(true, tx.PayoutOutputs, payees, hadResults)
		}
	}
	return IsValidSuperblock(false, nil, payees, hadResults)
}
