package gov

import "sync"

// Store holds the engine's entire in-memory state: proposals, votes, and
// the superblock-indexed mirror of votes, all behind one mutex (spec.md
// §5). This is a direct generalization of the teacher's protected-field
// pattern (consensus package keeps no shared mutable state of its own,
// but node/store/db.go's single *bbolt.DB with buckets is the analogous
// "one lock guards several correlated indexes" shape); here the guard is
// a plain sync.Mutex since the state lives in memory, not on disk.
type Store struct {
	mu sync.Mutex

	proposals map[[32]byte]Proposal
	votes     map[[32]byte]Vote
	sbvotes   map[uint64]map[[32]byte]Vote
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		proposals: make(map[[32]byte]Proposal),
		votes:     make(map[[32]byte]Vote),
		sbvotes:   make(map[uint64]map[[32]byte]Vote),
	}
}

// HasProposal reports whether hash is a known proposal.
func (s *Store) HasProposal(hash [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.proposals[hash]
	return ok
}

// GetProposal returns the proposal for hash.
func (s *Store) GetProposal(hash [32]byte) (Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[hash]
	return p, ok
}

// GetProposals returns every known proposal, unordered.
func (s *Store) GetProposals() []Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		out = append(out, p)
	}
	return out
}

// ProposalsForSuperblock returns every proposal targeting superblock.
func (s *Store) ProposalsForSuperblock(superblock uint64) []Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Proposal, 0)
	for _, p := range s.proposals {
		if p.Superblock == superblock {
			out = append(out, p)
		}
	}
	return out
}

// HasVote reports whether hash is a known vote.
func (s *Store) HasVote(hash [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.votes[hash]
	return ok
}

// GetVote returns the vote for hash.
func (s *Store) GetVote(hash [32]byte) (Vote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[hash]
	return v, ok
}

// GetVotes returns every known vote, unordered.
func (s *Store) GetVotes() []Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Vote, 0, len(s.votes))
	for _, v := range s.votes {
		out = append(out, v)
	}
	return out
}

// VotesForSuperblock returns the votes mirrored for superblock.
func (s *Store) VotesForSuperblock(superblock uint64) []Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.sbvotes[superblock]
	if !ok {
		return nil
	}
	out := make([]Vote, 0, len(sb))
	for _, v := range sb {
		out = append(out, v)
	}
	return out
}

// addProposalLocked inserts p under hash. Callers must hold s.mu. Per
// spec.md §4.5, first-sighting wins: an existing proposal is never
// overwritten.
func (s *Store) addProposalLocked(hash [32]byte, p Proposal) {
	if _, exists := s.proposals[hash]; exists {
		return
	}
	s.proposals[hash] = p
}

// removeProposalLocked deletes the proposal at hash. Callers must hold
// s.mu.
func (s *Store) removeProposalLocked(hash [32]byte) {
	delete(s.proposals, hash)
}

// addVoteLocked inserts or replaces the vote at hash in both indexes,
// maintaining the invariant that sbvotes mirrors votes exactly (spec.md
// §5). The superblock key is taken from the vote's proposal, which the
// caller must have already resolved.
func (s *Store) addVoteLocked(hash [32]byte, v Vote, superblock uint64) {
	if old, exists := s.votes[hash]; exists {
		s.removeVoteLocked(hash, old)
	}
	s.votes[hash] = v
	s.mutableSBVotesLocked(superblock)[hash] = v
}

// removeVoteLocked deletes the vote at hash from both indexes. The
// superblock bucket holding hash is found by scanning sbvotes; old is
// not read.
func (s *Store) removeVoteLocked(hash [32]byte, old Vote) {
	delete(s.votes, hash)
	for sbHeight, sb := range s.sbvotes {
		if _, ok := sb[hash]; ok {
			delete(sb, hash)
			if len(sb) == 0 {
				delete(s.sbvotes, sbHeight)
			}
			return
		}
	}
}

// mutableSBVotesLocked returns the live sbvotes bucket for superblock,
// creating it if absent. Callers must hold s.mu.
func (s *Store) mutableSBVotesLocked(superblock uint64) map[[32]byte]Vote {
	sb, ok := s.sbvotes[superblock]
	if !ok {
		sb = make(map[[32]byte]Vote)
		s.sbvotes[superblock] = sb
	}
	return sb
}

// Reset clears all state. Used by cmd/govsim's -reset flag.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals = make(map[[32]byte]Proposal)
	s.votes = make(map[[32]byte]Vote)
	s.sbvotes = make(map[uint64]map[[32]byte]Vote)
}
