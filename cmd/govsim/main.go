// Command govsim is a small standalone demonstrator for the governance
// engine: it builds a synthetic block carrying one proposal, connects it
// through the engine, and prints the proposals the store tracks. It
// follows the same flag-driven, fmt.Fprintf-logging style as
// cmd/rubin-node's main, just scoped to governance rather than full
// node operation.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/stakevote/governance/gov"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args and executes the demo, writing status to out and
// errors to errOut, mirroring cmd/rubin-node's run(args, out, errOut)
// split so the flag parsing and engine wiring stay testable without
// exercising os.Exit.
func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("govsim", flag.ContinueOnError)
	fs.SetOutput(errOut)
	datadir := fs.String("datadir", "", "chainstore database path (ignored: the demo always runs in memory)")
	superblockInterval := fs.Uint64("superblock-interval", 43200, "blocks between superblocks")
	voteBalance := fs.Int64("vote-balance", 10000_00000000, "stake units per vote")
	reset := fs.Bool("reset", false, "discard any previously tracked state before running the demo")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *datadir != "" {
		fmt.Fprintf(out, "note: --datadir=%s ignored; this demo runs entirely in memory\n", *datadir)
	}

	params := gov.Params{
		SuperblockInterval:         *superblockInterval,
		GovernanceActivationHeight: 0,
		ProposalMinAmount:          1_00000000,
		ProposalMaxAmount:          500_00000000,
		VoteMinUtxoAmount:          1,
		VoteBalance:                *voteBalance,
		ProposalCutoff:             *superblockInterval / 2,
		VotingCutoff:               *superblockInterval / 4,
		BlockSubsidy: func(uint64) int64 {
			return 500_00000000
		},
	}

	store := gov.NewStore()
	if *reset {
		store.Reset()
	}
	engine := gov.NewEngine(store, params, nil, nil, nil, nil, nil, nil)

	proposal := gov.Proposal{
		Version:    gov.NetworkVersion,
		Superblock: params.SuperblockInterval,
		Amount:     100_00000000,
		Address:    "DemoPayeeAddress",
		Name:       "community-fund-q1",
		URL:        "https://example.invalid/p/1",
	}
	block := gov.Block{
		Height: params.SuperblockInterval - 1,
		Time:   1_700_000_000,
		Txs: []gov.BlockTx{
			{GovPayloads: [][]byte{gov.EncodeProposal(proposal)}},
		},
	}
	if err := engine.ConnectBlock(block, false); err != nil {
		fmt.Fprintf(errOut, "connect block failed: %v\n", err)
		return 1
	}

	proposals := store.GetProposals()
	fmt.Fprintf(out, "tracked proposals: %d\n", len(proposals))
	for _, p := range proposals {
		fmt.Fprintf(out, "  %x  name=%s superblock=%d amount=%d\n", p.Hash(), p.Name, p.Superblock, p.Amount)
	}
	return 0
}
