package gov

import "sort"

// SuperblockPayees orders passing results (netyes desc, yes desc,
// proposal.BlockNumber asc) and greedily fills the superblock budget,
// skipping any proposal that does not fit rather than re-sorting between
// picks — resolving spec.md §9 Open Question (2) in favor of the
// original's actual fixed-order behavior, per
// original_source/governance.h's getSuperblockPayees.
func SuperblockPayees(results []SuperblockResult, superblock uint64, params Params) []Proposal {
	ordered := append([]SuperblockResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ni, nj := ordered[i].Tally.NetYes(), ordered[j].Tally.NetYes()
		if ni != nj {
			return ni > nj
		}
		if ordered[i].Tally.Yes != ordered[j].Tally.Yes {
			return ordered[i].Tally.Yes > ordered[j].Tally.Yes
		}
		return ordered[i].Proposal.BlockNumber < ordered[j].Proposal.BlockNumber
	})

	budget := params.ProposalAmountCeiling(superblock)
	var payees []Proposal
	var spent int64
	for _, r := range ordered {
		if spent+r.Proposal.Amount > budget {
			continue
		}
		payees = append(payees, r.Proposal)
		spent += r.Proposal.Amount
	}
	return payees
}

// IsValidSuperblock checks that a candidate superblock's coinstake
// transaction actually pays every selected payee the right amount,
// mirroring original_source/governance.h's isValidSuperblock: the
// coinstake may carry at most two extra outputs (e.g. change, the stake
// reward) beyond the matched payees, and every payee must be consumed
// exactly once. isCoinstake must hold, per spec.md §4.7's requirement
// that the candidate block be proof-of-stake, or the block is rejected
// regardless of how its outputs line up. totalPayment is always the sum
// of payees' amounts, returned alongside ok per spec.md §6's
// is_valid_superblock(block, height) → (bool, total_payment) contract.
//
// hadResults distinguishes "no proposal was even scheduled or passed
// quorum this superblock" from "proposals passed but didn't all fit the
// budget": per spec.md §4.7's last sentence and the original's
// `if (results.empty()) return true;`, a superblock with no passing
// proposals accepts any coinstake with respect to governance, regardless
// of its outputs. When results existed but payees is empty, there is no
// separate rejection: the coinstake is accepted iff it has at most two
// outputs.
func IsValidSuperblock(isCoinstake bool, coinstakeOutputs []PayoutOutput, payees []Proposal, hadResults bool) (ok bool, totalPayment int64) {
	for _, p := range payees {
		totalPayment += p.Amount
	}
	if !isCoinstake {
		return false, totalPayment
	}
	if !hadResults {
		return true, totalPayment
	}
	if len(coinstakeOutputs)-len(payees) > 2 {
		return false, totalPayment
	}

	remaining := append([]Proposal(nil), payees...)
	for _, out := range coinstakeOutputs {
		for i, p := range remaining {
			if p.Address == out.Address && p.Amount == out.Amount {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return len(remaining) == 0, totalPayment
}
