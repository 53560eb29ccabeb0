package gov

// VoteTally is the summed result of one proposal's votes, mirroring
// original_source/governance.h's Tally struct.
type VoteTally struct {
	Yes     int64
	No      int64
	Abstain int64

	// CYes, CNo, CAbstain are the raw UTXO-value sums each vote-count
	// field was divided down from, mirroring
	// original_source/governance.h's Tally::cyes/cno/cabstain.
	CYes     int64
	CNo      int64
	CAbstain int64
}

// Passing reports whether the tally clears quorum: yes/(yes+no) >= 60%,
// total unique vote power cast >= 25% of all unique vote power in
// circulation, and at least one yes vote (spec.md §4.6).
func (t VoteTally) Passing(uniqueVotePower int64) bool {
	if t.Yes == 0 {
		return false
	}
	if t.Yes+t.No == 0 {
		return false
	}
	if t.Yes*100 < (t.Yes+t.No)*60 {
		return false
	}
	total := t.Yes + t.No + t.Abstain
	if uniqueVotePower <= 0 {
		return false
	}
	return total*100 >= uniqueVotePower*25
}

// NetYes is yes minus no, used to rank proposals competing for a shared
// superblock budget.
func (t VoteTally) NetYes() int64 {
	return t.Yes - t.No
}

// voterIdentity is the de-duplication key for one cast vote: either the
// hash of the transaction that carried it, or (when that transaction is
// unknown to the caller) the signer's key id. original_source/
// governance.h dedups on "txid or keyid" so that a single signer voting
// from several utxos in one transaction is counted once.
type voterIdentity struct {
	useTx bool
	tx    [32]byte
	keyid [20]byte
}

// unionFind is a minimal map-based disjoint-set over voterIdentity keys,
// used to collapse voting power across both of spec.md §4.6's grouping
// relations transitively: two votes sharing a carrier tx, or sharing a
// keyid, or chained through a third vote that shares one relation with
// each, all end up in the same group. Mirrors the cross-referencing
// original_source/governance.h's userVotes/userVotesDest maps perform,
// expressed as a standard disjoint-set since the original's two maps are
// exactly a union-find's two relations.
type unionFind struct {
	parent map[voterIdentity]voterIdentity
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[voterIdentity]voterIdentity)}
}

func (u *unionFind) find(x voterIdentity) voterIdentity {
	parent, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if parent == x {
		return x
	}
	root := u.find(parent)
	u.parent[x] = root
	return root
}

func (u *unionFind) union(a, b voterIdentity) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// voteGroup accumulates one collapsed voter identity's UTXO-value sum
// under each of the three possible answers, since members unioned into
// the same group (sharing a carrier tx or a keyid, directly or
// transitively) are not guaranteed to agree on how they voted — a group
// tracks a sum per answer, exactly like
// original_source/governance.h's per-user Tally{cyes, cno, cabstain}
// before it is divided into vote counts.
type voteGroup struct {
	yes     int64
	no      int64
	abstain int64
}

// groupVotesByIdentity collapses votes into voterIdentity groups by
// unioning each vote's tx and keyid identities together whenever a
// carrier tx is known, so that sharing either relation with another vote
// (directly or transitively) merges their voting power into one group,
// matching spec.md §4.6's "two votes grouped by either relation are
// treated as controlled by the same voting user".
func groupVotesByIdentity(votes []Vote, carrierTxOf func(v Vote) (tx [32]byte, ok bool)) map[voterIdentity]*voteGroup {
	uf := newUnionFind()
	counted := make(map[Outpoint]bool)

	type resolved struct {
		identity voterIdentity
		v        Vote
	}
	var kept []resolved
	for _, v := range votes {
		if counted[v.Utxo] {
			continue
		}
		counted[v.Utxo] = true

		keyIdentity := voterIdentity{useTx: false, keyid: v.KeyID}
		identity := keyIdentity
		if tx, haveTx := carrierTxOf(v); haveTx {
			txIdentity := voterIdentity{useTx: true, tx: tx}
			uf.union(txIdentity, keyIdentity)
			identity = txIdentity
		}
		kept = append(kept, resolved{identity: identity, v: v})
	}

	groups := make(map[voterIdentity]*voteGroup)
	for _, r := range kept {
		root := uf.find(r.identity)
		g, ok := groups[root]
		if !ok {
			g = &voteGroup{}
			groups[root] = g
		}
		switch r.v.Vote {
		case VoteYes:
			g.yes += r.v.Amount
		case VoteNo:
			g.no += r.v.Amount
		case VoteAbstain:
			g.abstain += r.v.Amount
		}
	}
	return groups
}

// GetTally computes the de-duplicated vote tally for a single proposal.
// votes must already be filtered to that proposal. carrierTxOf resolves
// a vote's carrier transaction hash, if known; voteBalance divides each
// group's per-answer raw sum into whole vote counts (integer division,
// matching the original's behavior exactly), with negative results
// clamped to zero per spec.md §4.6 step 2.
func GetTally(votes []Vote, carrierTxOf func(v Vote) (tx [32]byte, ok bool), voteBalance int64) VoteTally {
	if voteBalance <= 0 {
		voteBalance = 1
	}

	var t VoteTally
	for _, g := range groupVotesByIdentity(votes, carrierTxOf) {
		t.CYes += g.yes
		t.CNo += g.no
		t.CAbstain += g.abstain

		if yes := g.yes / voteBalance; yes > 0 {
			t.Yes += yes
		}
		if no := g.no / voteBalance; no > 0 {
			t.No += no
		}
		if abstain := g.abstain / voteBalance; abstain > 0 {
			t.Abstain += abstain
		}
	}
	return t
}

// UniqueVotePower sums every distinct voter's UTXO value across all votes
// cast for any proposal; SuperblockResults divides it by voteBalance to
// get the denominator spec.md §4.6's quorum check uses. Dedup follows the
// same union-by-either-relation identity as GetTally.
func UniqueVotePower(votes []Vote, carrierTxOf func(v Vote) (tx [32]byte, ok bool)) int64 {
	var total int64
	for _, g := range groupVotesByIdentity(votes, carrierTxOf) {
		total += g.yes + g.no + g.abstain
	}
	return total
}

// SuperblockResult pairs a proposal with its computed tally, for
// reporting which proposals passed a given superblock.
type SuperblockResult struct {
	Proposal Proposal
	Tally    VoteTally
}

// SuperblockResults filters proposals to those targeting superblock and
// returns each with its passing tally, mirroring
// original_source/governance.h's getSuperblockResults — only passing
// proposals are included.
func SuperblockResults(proposals []Proposal, votesByProposal map[[32]byte][]Vote, superblock uint64, carrierTxOf func(v Vote) (tx [32]byte, ok bool), voteBalance int64) []SuperblockResult {
	var allVotes []Vote
	for _, vs := range votesByProposal {
		allVotes = append(allVotes, vs...)
	}
	if voteBalance <= 0 {
		voteBalance = 1
	}
	// Passing compares vote counts, so the raw UTXO-value sum is divided
	// down by the same voteBalance GetTally uses.
	uniquePower := UniqueVotePower(allVotes, carrierTxOf) / voteBalance

	var out []SuperblockResult
	for _, p := range proposals {
		if p.Superblock != superblock {
			continue
		}
		hash := p.Hash()
		t := GetTally(votesByProposal[hash], carrierTxOf, voteBalance)
		if t.Passing(uniquePower) {
			out = append(out, SuperblockResult{Proposal: p, Tally: t})
		}
	}
	return out
}
