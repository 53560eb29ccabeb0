package gov

import "regexp"

// MaxOpReturnRelay bounds the total size of a carrier output's pushed
// data (spec.md §4.2); 3 bytes are reserved for the OP_RETURN opcode and
// push-length prefix, mirroring original_source/governance.h's
// MAX_OP_RETURN_RELAY-3 bound.
const MaxOpReturnRelay = 83

var proposalNamePattern = regexp.MustCompile(`^\w+[\w\-_ ]*\w+$`)

// ValidateProposal checks a decoded proposal against policy, mirroring
// original_source/governance.h's Proposal::isValid. blockNumber is the
// height at which the proposal was observed, used for the cutoff check.
func ValidateProposal(p Proposal, raw []byte, blockNumber uint64, params Params) error {
	if !proposalNamePattern.MatchString(p.Name) {
		return govErr(ErrPolicyName, "proposal name fails pattern")
	}
	if len(raw) > MaxOpReturnRelay {
		return govErr(ErrPolicyTooLarge, "proposal payload exceeds relay size")
	}
	if p.Superblock == 0 || p.Superblock%params.SuperblockInterval != 0 {
		return govErr(ErrPolicySuperblock, "superblock is not on an interval boundary")
	}
	if outsideProposalCutoff(p.Superblock, blockNumber, params) {
		return govErr(ErrCutoffMissed, "proposal observed outside its submission cutoff")
	}
	if p.Amount < params.ProposalMinAmount || p.Amount > params.ProposalAmountCeiling(p.Superblock) {
		return govErr(ErrPolicyAmount, "proposal amount outside allowed range")
	}
	if p.Address == "" {
		return govErr(ErrPolicyAddress, "proposal has no payout address")
	}
	return nil
}
