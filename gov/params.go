package gov

// Params mirrors the stipulated `consensus_params` collaborator (spec.md
// §6). BlockSubsidy is a func field rather than a one-method interface:
// the teacher's BlockValidationContext (consensus/block_basic.go) passes
// host policy as callback-style struct fields, and a single-method
// collaborator is more idiomatic here as a func value than as an
// interface with one method.
type Params struct {
	SuperblockInterval         uint64
	GovernanceActivationHeight uint64
	ProposalMinAmount          int64
	ProposalMaxAmount          int64
	VoteMinUtxoAmount          int64
	VoteBalance                int64
	ProposalCutoff             uint64
	VotingCutoff               uint64
	BlockSubsidy               func(height uint64) int64
}

func (p Params) subsidy(height uint64) int64 {
	if p.BlockSubsidy == nil {
		return 0
	}
	return p.BlockSubsidy(height)
}

// ProposalAmountCeiling returns min(ProposalMaxAmount, BlockSubsidy(superblock)).
func (p Params) ProposalAmountCeiling(superblock uint64) int64 {
	subsidy := p.subsidy(superblock)
	if subsidy < p.ProposalMaxAmount {
		return subsidy
	}
	return p.ProposalMaxAmount
}

// IsSuperblock reports whether height is an activated superblock height.
func IsSuperblock(height uint64, p Params) bool {
	return height >= p.GovernanceActivationHeight && p.SuperblockInterval != 0 && height%p.SuperblockInterval == 0
}

// NextSuperblock returns the first superblock strictly after fromHeight;
// when fromHeight is itself a superblock boundary, the following boundary
// is returned (NextSuperblock(100) is 200 for an interval of 100).
func NextSuperblock(fromHeight uint64, p Params) uint64 {
	if p.SuperblockInterval == 0 {
		return fromHeight
	}
	return fromHeight - fromHeight%p.SuperblockInterval + p.SuperblockInterval
}

// PreviousSuperblock returns the superblock immediately preceding the
// next superblock after fromHeight.
func PreviousSuperblock(fromHeight uint64, p Params) uint64 {
	next := NextSuperblock(fromHeight, p)
	if next < p.SuperblockInterval {
		return 0
	}
	return next - p.SuperblockInterval
}

// outsideProposalCutoff reports whether a proposal observed at blockNumber
// is still outside its proposal-submission cutoff window. Expressed as
// blockNumber+cutoff < superblock to avoid uint64 underflow when cutoff
// exceeds superblock.
func outsideProposalCutoff(superblock uint64, blockNumber uint64, p Params) bool {
	return blockNumber+p.ProposalCutoff < superblock
}

// outsideVotingCutoff reports whether a vote observed at blockNumber is
// still outside its proposal's voting cutoff window.
func outsideVotingCutoff(superblock uint64, blockNumber uint64, p Params) bool {
	return blockNumber+p.VotingCutoff < superblock
}

// insideVoteCutoff reports whether blockNumber falls within the window
// [superblock-VotingCutoff, superblock].
func insideVoteCutoff(superblock uint64, blockNumber uint64, p Params) bool {
	if blockNumber > superblock {
		return false
	}
	return blockNumber+p.VotingCutoff >= superblock
}
