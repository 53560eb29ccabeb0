package gov

import "testing"

func testEngineParams() Params {
	return Params{
		SuperblockInterval: 100,
		ProposalMinAmount:  1,
		ProposalMaxAmount:  500_00000000,
		VoteMinUtxoAmount:  1,
		ProposalCutoff:     1_000_000,
		VotingCutoff:       1_000_000,
		BlockSubsidy: func(uint64) int64 {
			return 500_00000000
		},
	}
}

func newTestEngine() (*Engine, *Store) {
	store := NewStore()
	engine := NewEngine(store, testEngineParams(), nil, nil, nil, nil, nil, nil)
	return engine, store
}

func TestConnectBlockInsertsProposalFirstSightingWins(t *testing.T) {
	engine, store := newTestEngine()
	p := sampleProposal()
	p.Description = "first"
	block1 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block1, false); err != nil {
		t.Fatalf("ConnectBlock: %v", err)
	}

	dup := p
	dup.Description = "second, must be ignored"
	block2 := Block{Height: 2, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(dup)}}}}
	if err := engine.ConnectBlock(block2, false); err != nil {
		t.Fatalf("ConnectBlock: %v", err)
	}

	got, ok := store.GetProposal(p.Hash())
	if !ok {
		t.Fatalf("expected proposal to be stored")
	}
	if got.Description != "first" {
		t.Fatalf("Description = %q, want %q (first sighting must win)", got.Description, "first")
	}
}

func TestConnectBlockVoteChangeAcrossBlocksRespectsTiebreak(t *testing.T) {
	engine, store := newTestEngine()
	p := sampleProposal()
	block0 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block0, false); err != nil {
		t.Fatalf("ConnectBlock proposal: %v", err)
	}

	carrierInput := Outpoint{Txid: [32]byte{0xaa}, Index: 0}

	first := sampleVote()
	first.Proposal = p.Hash()
	first.Time = 100
	first.Vote = VoteNo
	first.VinHash = MakeVinHash(carrierInput)

	// A vote's Time is not serialized: ExtractBlock stamps it with the
	// carrying block's Time, so the blocks carry the times under test.
	block1 := Block{Height: 2, Time: 100, Txs: []BlockTx{{
		Vin:         []Outpoint{carrierInput},
		GovPayloads: [][]byte{EncodeVote(first)},
	}}}
	if err := engine.ConnectBlock(block1, false); err != nil {
		t.Fatalf("ConnectBlock vote: %v", err)
	}

	earlierReplay := first
	earlierReplay.Time = 50
	earlierReplay.Vote = VoteYes
	block2 := Block{Height: 3, Time: 50, Txs: []BlockTx{{
		Vin:         []Outpoint{carrierInput},
		GovPayloads: [][]byte{EncodeVote(earlierReplay)},
	}}}
	if err := engine.ConnectBlock(block2, false); err != nil {
		t.Fatalf("ConnectBlock replay vote: %v", err)
	}

	got, ok := store.GetVote(first.Hash())
	if !ok {
		t.Fatalf("expected vote to be stored")
	}
	if got.Vote != VoteNo {
		t.Fatalf("vote = %d, want NO (an earlier-time vote must not overwrite a later one)", got.Vote)
	}
}

// fakeUTXOView backs a single coin, used to drive ConnectBlock's
// signature-to-utxo-ownership check end to end.
type fakeUTXOView struct {
	outpoint Outpoint
	amount   int64
	address  string
	unspent  bool
}

func (f fakeUTXOView) IsUnspent(outpoint Outpoint) (bool, error) {
	return outpoint == f.outpoint && f.unspent, nil
}

func (f fakeUTXOView) Coin(outpoint Outpoint) (int64, string, bool, error) {
	if outpoint != f.outpoint {
		return 0, "", false, nil
	}
	return f.amount, f.address, true, nil
}

func TestConnectBlockDropsVoteForUnknownProposal(t *testing.T) {
	engine, store := newTestEngine()
	v := sampleVote()
	carrierInput := Outpoint{Txid: [32]byte{0xbb}, Index: 0}
	v.VinHash = MakeVinHash(carrierInput)

	block := Block{Height: 2, Txs: []BlockTx{{
		Vin:         []Outpoint{carrierInput},
		GovPayloads: [][]byte{EncodeVote(v)},
	}}}
	if err := engine.ConnectBlock(block, false); err != nil {
		t.Fatalf("ConnectBlock: %v", err)
	}
	if store.HasVote(v.Hash()) {
		t.Fatalf("expected vote referencing an unknown proposal to be dropped")
	}
}

func TestConnectBlockDropsVoteOutsideVotingCutoff(t *testing.T) {
	store := NewStore()
	params := testEngineParams()
	params.VotingCutoff = 1
	engine := NewEngine(store, params, nil, nil, nil, nil, nil, nil)

	p := sampleProposal()
	block0 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block0, false); err != nil {
		t.Fatalf("ConnectBlock proposal: %v", err)
	}

	v := sampleVote()
	v.Proposal = p.Hash()
	carrierInput := Outpoint{Txid: [32]byte{0xcc}, Index: 0}
	v.VinHash = MakeVinHash(carrierInput)

	block1 := Block{Height: 2, Txs: []BlockTx{{
		Vin:         []Outpoint{carrierInput},
		GovPayloads: [][]byte{EncodeVote(v)},
	}}}
	if err := engine.ConnectBlock(block1, false); err != nil {
		t.Fatalf("ConnectBlock vote: %v", err)
	}
	if store.HasVote(v.Hash()) {
		t.Fatalf("expected vote observed outside its proposal's voting cutoff to be dropped")
	}
}

func TestConnectBlockDropsVoteWithForgedSignature(t *testing.T) {
	store := NewStore()
	params := testEngineParams()
	utxo := fakeUTXOView{outpoint: Outpoint{Txid: [32]byte{1, 2, 3}, Index: 1}, amount: 5_00000000, address: "owner-address", unspent: true}
	sig := fakeSigProvider{pubkey: []byte{1, 2, 3}, keyid: [20]byte{9, 9, 9}}
	addr := fakeAddrCodec{keyid: [20]byte{1, 1, 1}}
	engine := NewEngine(store, params, nil, utxo, nil, nil, sig, addr)

	p := sampleProposal()
	block0 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block0, false); err != nil {
		t.Fatalf("ConnectBlock proposal: %v", err)
	}

	v := sampleVote()
	v.Proposal = p.Hash()
	block1 := Block{Height: 2, Txs: []BlockTx{{
		Vin:         []Outpoint{v.Utxo},
		GovPayloads: [][]byte{EncodeVote(v)},
	}}}
	if err := engine.ConnectBlock(block1, true); err != nil {
		t.Fatalf("ConnectBlock vote: %v", err)
	}
	if store.HasVote(v.Hash()) {
		t.Fatalf("expected vote with a signature not matching the utxo owner to be dropped")
	}
}

func TestConnectBlockAcceptsVoteWithMatchingSignature(t *testing.T) {
	store := NewStore()
	params := testEngineParams()
	utxo := fakeUTXOView{outpoint: Outpoint{Txid: [32]byte{1, 2, 3}, Index: 1}, amount: 5_00000000, address: "owner-address", unspent: true}
	keyid := [20]byte{4, 4, 4}
	sig := fakeSigProvider{pubkey: []byte{1, 2, 3}, keyid: keyid}
	addr := fakeAddrCodec{keyid: keyid}
	engine := NewEngine(store, params, nil, utxo, nil, nil, sig, addr)

	p := sampleProposal()
	block0 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block0, false); err != nil {
		t.Fatalf("ConnectBlock proposal: %v", err)
	}

	v := sampleVote()
	v.Proposal = p.Hash()
	block1 := Block{Height: 2, Txs: []BlockTx{{
		Vin:         []Outpoint{v.Utxo},
		GovPayloads: [][]byte{EncodeVote(v)},
	}}}
	if err := engine.ConnectBlock(block1, true); err != nil {
		t.Fatalf("ConnectBlock vote: %v", err)
	}
	if !store.HasVote(v.Hash()) {
		t.Fatalf("expected a correctly-signed vote whose utxo is still unspent to be stored")
	}
}

func TestConnectBlockDropsNewVoteWithAlreadySpentUtxo(t *testing.T) {
	store := NewStore()
	params := testEngineParams()
	utxo := fakeUTXOView{outpoint: Outpoint{Txid: [32]byte{1, 2, 3}, Index: 1}, amount: 5_00000000, address: "owner-address", unspent: false}
	engine := NewEngine(store, params, nil, utxo, nil, nil, nil, nil)

	p := sampleProposal()
	block0 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block0, false); err != nil {
		t.Fatalf("ConnectBlock proposal: %v", err)
	}

	v := sampleVote()
	v.Proposal = p.Hash()
	block1 := Block{Height: 2, Txs: []BlockTx{{
		Vin:         []Outpoint{v.Utxo},
		GovPayloads: [][]byte{EncodeVote(v)},
	}}}
	// processingTip=true: a brand-new vote whose utxo the mempool-aware
	// UTXO view already reports spent must be dropped (spec.md §4.5
	// rule #3).
	if err := engine.ConnectBlock(block1, true); err != nil {
		t.Fatalf("ConnectBlock vote: %v", err)
	}
	if store.HasVote(v.Hash()) {
		t.Fatalf("expected a new vote referencing an already-spent utxo to be dropped")
	}
}

func TestConnectBlockAcceptsSpentUtxoVoteDuringHistoricalReplay(t *testing.T) {
	store := NewStore()
	params := testEngineParams()
	utxo := fakeUTXOView{outpoint: Outpoint{Txid: [32]byte{1, 2, 3}, Index: 1}, amount: 5_00000000, address: "owner-address", unspent: false}
	engine := NewEngine(store, params, nil, utxo, nil, nil, nil, nil)

	p := sampleProposal()
	block0 := Block{Height: 1, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block0, false); err != nil {
		t.Fatalf("ConnectBlock proposal: %v", err)
	}

	v := sampleVote()
	v.Proposal = p.Hash()
	block1 := Block{Height: 2, Txs: []BlockTx{{
		Vin:         []Outpoint{v.Utxo},
		GovPayloads: [][]byte{EncodeVote(v)},
	}}}
	// processingTip=false: historical replay bypasses rule #3 entirely,
	// per spec.md §4.5's parenthetical, even though the utxo view
	// reports the utxo already spent.
	if err := engine.ConnectBlock(block1, false); err != nil {
		t.Fatalf("ConnectBlock vote: %v", err)
	}
	if !store.HasVote(v.Hash()) {
		t.Fatalf("expected historical replay to accept the vote despite the already-spent utxo")
	}
}

func TestDisconnectBlockRemovesRecordsFirstSightedThere(t *testing.T) {
	engine, store := newTestEngine()
	p := sampleProposal()
	block := Block{Height: 5, Txs: []BlockTx{{GovPayloads: [][]byte{EncodeProposal(p)}}}}
	if err := engine.ConnectBlock(block, false); err != nil {
		t.Fatalf("ConnectBlock: %v", err)
	}
	if !store.HasProposal(p.Hash()) {
		t.Fatalf("expected proposal to be present before disconnect")
	}
	if err := engine.DisconnectBlock(block); err != nil {
		t.Fatalf("DisconnectBlock: %v", err)
	}
	if store.HasProposal(p.Hash()) {
		t.Fatalf("expected proposal to be removed after disconnect")
	}
}
