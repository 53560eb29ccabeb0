package gov

import "testing"

func noCarrierTx(v Vote) ([32]byte, bool) { return [32]byte{}, false }

func TestGetTallyDedupesByKeyID(t *testing.T) {
	keyA := [20]byte{1}
	keyB := [20]byte{2}
	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Vote: VoteYes, Amount: 5000, KeyID: keyA},
		{Utxo: Outpoint{Index: 2}, Vote: VoteYes, Amount: 5000, KeyID: keyA}, // same signer, second utxo
		{Utxo: Outpoint{Index: 3}, Vote: VoteNo, Amount: 10000, KeyID: keyB},
	}
	tally := GetTally(votes, noCarrierTx, 10000)
	if tally.Yes != 1 {
		t.Fatalf("Yes = %d, want 1 (deduped by key id)", tally.Yes)
	}
	if tally.No != 1 {
		t.Fatalf("No = %d, want 1", tally.No)
	}
}

func TestGetTallyDedupesByCarrierTx(t *testing.T) {
	tx := [32]byte{7}
	carrier := func(v Vote) ([32]byte, bool) { return tx, true }
	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Vote: VoteYes, Amount: 3000, KeyID: [20]byte{1}},
		{Utxo: Outpoint{Index: 2}, Vote: VoteYes, Amount: 3000, KeyID: [20]byte{2}},
	}
	tally := GetTally(votes, carrier, 6000)
	if tally.Yes != 1 {
		t.Fatalf("Yes = %d, want 1 (deduped by shared carrier tx)", tally.Yes)
	}
}

func TestGetTallyIgnoresDuplicateUtxo(t *testing.T) {
	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Vote: VoteYes, Amount: 10000, KeyID: [20]byte{1}},
		{Utxo: Outpoint{Index: 1}, Vote: VoteNo, Amount: 10000, KeyID: [20]byte{1}},
	}
	tally := GetTally(votes, noCarrierTx, 10000)
	if tally.Yes != 1 || tally.No != 0 {
		t.Fatalf("tally = %+v, want only the first-seen utxo counted", tally)
	}
}

func TestGetTallyUnionsAcrossTxAndKeyIDTransitively(t *testing.T) {
	keyA := [20]byte{1}
	txAB := [32]byte{0xaa}
	txBC := [32]byte{0xbb}

	// voteA shares a carrier tx with voteB (txAB); voteC is carried by
	// txBC, which no other vote uses. voteC never shares a carrier tx
	// with voteA or voteB, but all three must still collapse into one
	// group since their shared keyid bridges them: each vote's carrier
	// tx is unioned with keyA's identity.
	carrierTxOf := func(v Vote) ([32]byte, bool) {
		switch v.Utxo.Index {
		case 1:
			return txAB, true
		case 2:
			return txAB, true
		case 3:
			return txBC, true
		default:
			return [32]byte{}, false
		}
	}

	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Vote: VoteYes, Amount: 1000, KeyID: keyA},
		{Utxo: Outpoint{Index: 2}, Vote: VoteYes, Amount: 1000, KeyID: keyA},
		{Utxo: Outpoint{Index: 3}, Vote: VoteYes, Amount: 1000, KeyID: keyA},
	}
	tally := GetTally(votes, carrierTxOf, 3000)
	if tally.Yes != 1 {
		t.Fatalf("Yes = %d, want 1 (three votes sharing a keyid through two different carrier txs must collapse to one group)", tally.Yes)
	}
	if tally.CYes != 3000 {
		t.Fatalf("CYes = %d, want 3000", tally.CYes)
	}
}

func TestGetTallySplitsPerAnswerWithinATransitivelyUnionedGroup(t *testing.T) {
	keyA := [20]byte{9}
	txAB := [32]byte{0xcc}

	// voteA and voteB share a carrier tx, so they union into one group
	// despite disagreeing on the answer. voteC shares no tx but does
	// share voteB's keyid, so it joins the same group too. The group's
	// net answer must reflect each member's own vote rather than
	// collapsing to whichever vote happened to create the group.
	carrierTxOf := func(v Vote) ([32]byte, bool) {
		if v.Utxo.Index == 1 || v.Utxo.Index == 2 {
			return txAB, true
		}
		return [32]byte{}, false
	}

	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Vote: VoteYes, Amount: 1000, KeyID: keyA},
		{Utxo: Outpoint{Index: 2}, Vote: VoteNo, Amount: 2000, KeyID: keyA},
		{Utxo: Outpoint{Index: 3}, Vote: VoteAbstain, Amount: 3000, KeyID: keyA},
	}
	tally := GetTally(votes, carrierTxOf, 1000)
	if tally.Yes != 1 || tally.No != 2 || tally.Abstain != 3 {
		t.Fatalf("tally = %+v, want Yes=1 No=2 Abstain=3 (each member's own answer must be tallied separately within the group)", tally)
	}
	if tally.CYes != 1000 || tally.CNo != 2000 || tally.CAbstain != 3000 {
		t.Fatalf("raw sums = %+v, want CYes=1000 CNo=2000 CAbstain=3000", tally)
	}
}

func TestUniqueVotePowerUnionsDifferentCarrierTxsBySharedKeyID(t *testing.T) {
	keyA := [20]byte{3}
	txOne := [32]byte{0x01}
	txTwo := [32]byte{0x02}
	carrierTxOf := func(v Vote) ([32]byte, bool) {
		if v.Utxo.Index == 1 {
			return txOne, true
		}
		return txTwo, true
	}
	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Amount: 100, KeyID: keyA},
		{Utxo: Outpoint{Index: 2}, Amount: 150, KeyID: keyA},
	}
	got := UniqueVotePower(votes, carrierTxOf)
	if got != 250 {
		t.Fatalf("UniqueVotePower = %d, want 250 (two different carrier txs, same signer, must not be double-counted or under-counted)", got)
	}
}

func TestPassingQuorum(t *testing.T) {
	cases := []struct {
		name       string
		tally      VoteTally
		uniquePower int64
		want       bool
	}{
		{"clears quorum", VoteTally{Yes: 70, No: 30}, 100, true},
		{"below 60pct yes", VoteTally{Yes: 50, No: 50}, 100, false},
		{"below 25pct participation", VoteTally{Yes: 7, No: 3}, 1000, false},
		{"zero yes never passes", VoteTally{Yes: 0, No: 0}, 100, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.tally.Passing(c.uniquePower); got != c.want {
				t.Fatalf("Passing() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestUniqueVotePowerDedup(t *testing.T) {
	votes := []Vote{
		{Utxo: Outpoint{Index: 1}, Amount: 100, KeyID: [20]byte{1}},
		{Utxo: Outpoint{Index: 2}, Amount: 100, KeyID: [20]byte{1}},
		{Utxo: Outpoint{Index: 3}, Amount: 50, KeyID: [20]byte{2}},
	}
	got := UniqueVotePower(votes, noCarrierTx)
	if got != 250 {
		t.Fatalf("UniqueVotePower = %d, want 250", got)
	}
}
