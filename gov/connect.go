package gov

// Engine ties a Store to its stipulated collaborators and implements
// the block connect/disconnect lifecycle (spec.md §4.5), generalizing
// the teacher's store.Reorg/ApplyBlockAsNewTip pair (node/store/reorg.go)
// from disk-backed chain state to the in-memory governance index.
type Engine struct {
	store   *Store
	params  Params
	chain   ChainView
	utxo    UTXOView
	pool    MempoolView
	decoder BlockDecoder
	sig     SignatureProvider
	addr    AddressCodec
}

// NewEngine constructs an Engine over an existing Store.
func NewEngine(store *Store, params Params, chain ChainView, utxo UTXOView, pool MempoolView, decoder BlockDecoder, sig SignatureProvider, addr AddressCodec) *Engine {
	return &Engine{store: store, params: params, chain: chain, utxo: utxo, pool: pool, decoder: decoder, sig: sig, addr: addr}
}

// ConnectBlock applies one newly-accepted block's governance effects:
// insert proposals (first-sighting wins), resolve votes with the
// cross-block tie-break, and mark any vote's utxo spent if this block's
// inputs consumed it — restricted to proposals whose superblock has not
// yet passed (spec.md §4.5). processingTip gates the spent-utxo check
// insertVote runs for brand-new votes: historical replay
// (processingTip=false) never asks the mempool or the UTXO view whether
// a vote's utxo is spent, since the loader's own phase-2 pass already
// reconciles spend status from the chain itself. The UTXO view's coin
// lookup for vote validation (extractDeps) runs in both modes.
func (e *Engine) ConnectBlock(block Block, processingTip bool) error {
	result := ExtractBlock(block, e.extractDeps())

	e.store.mu.Lock()
	for _, p := range result.Proposals {
		e.store.addProposalLocked(p.Hash(), p)
	}
	e.store.mu.Unlock()

	for _, v := range result.Votes {
		e.insertVote(v, processingTip)
	}

	for _, tx := range block.Txs {
		for _, prevout := range tx.Vin {
			e.markSpentIfVoted(prevout, block.Height, tx.Hash)
		}
	}
	return nil
}

// extractDeps builds the ExtractDeps bundle ConnectBlock and LoadHistory
// feed into ExtractBlock, wiring the engine's own params and utxo/
// signature collaborators into the vote validator so the block-processing
// path runs the same full three-argument validate() CastVote's
// mempool-facing path already ran (spec.md §4.3).
func (e *Engine) extractDeps() ExtractDeps {
	return ExtractDeps{
		Params:       e.params,
		VinHashesFor: e.vinHashesFor,
		ValidateVote: e.validateVoteUtxoBinding,
	}
}

// validateVoteUtxoBinding resolves a vote's utxo through the engine's
// UTXOView and runs the amount and signature-to-ownership checks against
// it. Missing collaborators (utxo view, signature provider, address
// codec) are treated as "skip this check" rather than a hard failure, so
// the engine keeps working in reduced-collaborator test and demo setups.
func (e *Engine) validateVoteUtxoBinding(v Vote) error {
	if e.utxo == nil {
		return nil
	}
	amount, address, ok, err := e.utxo.Coin(v.Utxo)
	if err != nil {
		return err
	}
	if !ok {
		return govErr(ErrMissingUtxo, "vote utxo not found")
	}
	if err := ValidateVoteAmount(amount, e.params); err != nil {
		return err
	}
	if e.sig != nil && e.addr != nil {
		if err := ValidateVoteSignature(v, address, e.sig, e.addr); err != nil {
			return err
		}
	}
	return nil
}

// insertVote enforces spec.md §4.5's three connect rules for one
// extracted vote: (1) a vote referencing an unknown proposal, or one
// cast outside its proposal's voting cutoff, is dropped; (2) a vote
// sharing its identity hash with an already-stored vote only replaces
// it if it wins the (time, sig_hash) total order, the same order
// ExtractBlock applies within a single block, so both orderings agree
// (spec.md §4.4); (3) otherwise the vote is new, and — only while
// processingTip is set — it is additionally checked against the
// mempool-aware UTXO view and dropped if its utxo is already spent.
// Historical loads (processingTip=false) bypass rule 3, per spec.md
// §4.5's parenthetical, since the loader's own phase-2 pass already
// reconciles confirmed spends from the chain.
//
// insertVote manages e.store.mu itself, releasing it before any call
// into the utxo/mempool collaborators, matching IsVoteUtxoSpent's own
// lock discipline: collaborator calls never happen while the index
// mutex is held.
func (e *Engine) insertVote(v Vote, processingTip bool) {
	e.store.mu.Lock()
	prop, hasProposal := e.store.proposals[v.Proposal]
	if !hasProposal {
		e.store.mu.Unlock()
		return
	}
	if outsideVotingCutoff(prop.Superblock, v.BlockNumber, e.params) {
		e.store.mu.Unlock()
		return
	}

	hash := v.Hash()
	superblock := prop.Superblock
	existing, hasExisting := e.store.votes[hash]
	e.store.mu.Unlock()

	if hasExisting {
		if !voteWins(v.Time, v.SigHash(), existing.Time, existing.SigHash()) {
			return
		}
	} else if processingTip {
		if spent, err := e.voteUtxoAlreadySpent(v.Utxo); err != nil || spent {
			return
		}
	}

	e.store.mu.Lock()
	e.store.addVoteLocked(hash, v, superblock)
	e.store.mu.Unlock()
}

// voteUtxoAlreadySpent reports whether a vote's utxo is already spent,
// consulting the mempool view first (a cheap, purely in-memory check)
// and falling back to the confirmed UTXOView. Missing collaborators are
// treated as "not spent" so the engine keeps working in reduced-
// collaborator test and demo setups.
func (e *Engine) voteUtxoAlreadySpent(outpoint Outpoint) (bool, error) {
	if e.pool != nil && e.pool.IsSpentInMempool(outpoint) {
		return true, nil
	}
	if e.utxo == nil {
		return false, nil
	}
	unspent, err := e.utxo.IsUnspent(outpoint)
	if err != nil {
		return false, err
	}
	return !unspent, nil
}

// superblockForVote resolves the superblock a vote's proposal targets,
// or returns 0 if that proposal is not in the store (proposals are always
// inserted before votes within the same ConnectBlock call, per
// original_source/governance.h's processBlock ordering).
func (e *Engine) superblockForVote(v Vote) uint64 {
	if p, ok := e.store.proposals[v.Proposal]; ok {
		return p.Superblock
	}
	return 0
}

// markSpentIfVoted marks every stored vote whose utxo this block's
// transaction consumes as spent, but only while that vote's proposal's
// superblock has not yet passed — votes remain spendable-tracked exactly
// through their superblock, matching spendVote's guard in
// original_source/governance.h. Unlike insertVote's rule 3, spend
// marking applies uniformly to live connection and historical replay
// alike (spec.md §4.5 draws no tip/historical distinction here).
func (e *Engine) markSpentIfVoted(prevout Outpoint, blockHeight uint64, spentIn [32]byte) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	var targets [][32]byte
	for h, cand := range e.store.votes {
		if cand.Utxo == prevout {
			targets = append(targets, h)
		}
	}

	for _, target := range targets {
		v := e.store.votes[target]
		superblock := e.superblockForVote(v)
		if superblock != 0 && blockHeight > superblock {
			continue
		}
		v.SpentBlock = blockHeight
		v.SpentTxHash = spentIn
		e.store.addVoteLocked(target, v, superblock)
	}
}

// DisconnectBlock undoes one block's governance effects during a
// reorg: votes and proposals first sighted at height are removed, then
// any vote whose utxo was spent by a transaction in the disconnected
// block (restricted to proposals with superblock>=height) is marked
// unspent again, mirroring original_source/governance.h's
// BlockDisconnected override exactly.
func (e *Engine) DisconnectBlock(block Block) error {
	e.store.mu.Lock()
	for h, v := range e.store.votes {
		if v.BlockNumber == block.Height {
			e.store.removeVoteLocked(h, v)
		}
	}
	for h, p := range e.store.proposals {
		if p.BlockNumber == block.Height {
			e.store.removeProposalLocked(h)
		}
	}
	e.store.mu.Unlock()

	spentHere := make(map[Outpoint][32]byte)
	for _, tx := range block.Txs {
		for _, prevout := range tx.Vin {
			spentHere[prevout] = tx.Hash
		}
	}

	e.store.mu.Lock()
	for h, v := range e.store.votes {
		if !v.Spent() {
			continue
		}
		if _, wasSpentHere := spentHere[v.Utxo]; !wasSpentHere {
			continue
		}
		superblock := e.superblockForVote(v)
		if superblock < block.Height {
			continue
		}
		v.SpentBlock = 0
		v.SpentTxHash = [32]byte{}
		e.store.addVoteLocked(h, v, superblock)
	}
	e.store.mu.Unlock()
	return nil
}

// vinHashesFor computes the vinhash of every input a transaction spends
// from the transaction's own prevouts; it takes no lock and consults no
// collaborator.
func (e *Engine) vinHashesFor(tx BlockTx) []VinHash {
	out := make([]VinHash, 0, len(tx.Vin))
	for _, prevout := range tx.Vin {
		out = append(out, MakeVinHash(prevout))
	}
	return out
}

// Store returns the engine's underlying Store, for query access.
func (e *Engine) Store() *Store {
	return e.store
}

// IsVoteUtxoSpent reports whether a vote's utxo is already spent,
// consulting the confirmed UTXOView and, when checkMempool is set, the
// MempoolView as well. The lock is released before either external call
// and reacquired only to read the result back out, matching spec.md
// §5's rule that collaborator calls never happen while the index mutex
// is held.
func (e *Engine) IsVoteUtxoSpent(hash [32]byte, checkMempool bool) (bool, error) {
	e.store.mu.Lock()
	v, ok := e.store.votes[hash]
	e.store.mu.Unlock()
	if !ok {
		return false, govErr(ErrMissingProp, "unknown vote")
	}
	if v.Spent() {
		return true, nil
	}

	if checkMempool && e.pool != nil && e.pool.IsSpentInMempool(v.Utxo) {
		return true, nil
	}
	if e.utxo != nil {
		unspent, err := e.utxo.IsUnspent(v.Utxo)
		if err != nil {
			return false, err
		}
		return !unspent, nil
	}
	return false, nil
}
