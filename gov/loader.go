package gov

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LoaderConfig controls the historical replay in Engine.LoadHistory,
// mirroring original_source/governance.h's loadGovernanceData sharding
// of [governanceBlock, blockHeight] across "cores" worker threads.
type LoaderConfig struct {
	StartHeight uint64
	EndHeight   uint64
	Workers     int
	// ShouldStop is polled between blocks so a shutdown request can
	// abort a long historical replay early, mirroring the teacher's
	// cooperative-cancellation idiom (node/sync.go's stop channel)
	// rather than a hard kill.
	ShouldStop func() bool
}

// LoadHistory replays [StartHeight, EndHeight] in two phases (spec.md
// §4.8). Phase 1 shards the height range across Workers goroutines,
// extracting proposals and votes from each block without consulting the
// mempool and without checking utxo-spent status inline — instead every
// worker records prevouts it sees spent into a shared map under a
// short-lived auxiliary mutex. Phase 2 shards the resulting vote set
// across Workers goroutines, and each worker reconciles that vote's utxo
// against the shared spent-prevout map, dropping the vote if its
// proposal is unknown and marking it spent only if its utxo was spent at
// or before the proposal's superblock.
func (e *Engine) LoadHistory(ctx context.Context, cfg LoaderConfig) error {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	heights := make([]uint64, 0, cfg.EndHeight-cfg.StartHeight+1)
	for h := cfg.StartHeight; h <= cfg.EndHeight; h++ {
		heights = append(heights, h)
	}

	var spentMu sync.Mutex
	spentPrevouts := make(map[Outpoint]spentRecord)

	allProposals, allVotes, err := e.loadPhase1(ctx, heights, workers, cfg.ShouldStop, &spentMu, spentPrevouts)
	if err != nil {
		return err
	}

	e.store.mu.Lock()
	for _, p := range allProposals {
		e.store.addProposalLocked(p.Hash(), p)
	}
	e.store.mu.Unlock()

	return e.loadPhase2(ctx, allVotes, workers, &spentMu, spentPrevouts)
}

// spentRecord is phase 1's record of one prevout's confirmed spend: the
// spending transaction's hash and, critically, the height of the block
// that spent it — spec.md §4.8 requires phase 2 to gate on this real
// spend height, not on any property of the vote being reconciled.
type spentRecord struct {
	txHash [32]byte
	height uint64
}

// loadPhase1 extracts every block's governance records. Extraction
// itself needs no lock; only appending to the shared slices and the
// shared spentPrevouts map is synchronized.
func (e *Engine) loadPhase1(ctx context.Context, heights []uint64, workers int, shouldStop func() bool, spentMu *sync.Mutex, spentPrevouts map[Outpoint]spentRecord) ([]Proposal, []Vote, error) {
	shards := shardHeights(heights, workers)

	var resultsMu sync.Mutex
	var allProposals []Proposal
	var allVotes []Vote

	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		shard := shard
		g.Go(func() error {
			var localProposals []Proposal
			var localVotes []Vote
			for _, height := range shard {
				if shouldStop != nil && shouldStop() {
					return govErr(ErrShutdown, "load history stopped")
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				blockHash, ok := e.chain.BlockHashAtHeight(height)
				if !ok {
					continue
				}
				raw, err := e.chain.ReadBlock(blockHash)
				if err != nil {
					return govErr(ErrIO, "read block: "+err.Error())
				}
				block, err := e.decoder.DecodeBlock(raw, height, blockHash)
				if err != nil {
					continue
				}

				result := ExtractBlock(block, e.extractDeps())
				localProposals = append(localProposals, result.Proposals...)
				localVotes = append(localVotes, result.Votes...)

				spentMu.Lock()
				for _, tx := range block.Txs {
					for _, prevout := range tx.Vin {
						spentPrevouts[prevout] = spentRecord{txHash: tx.Hash, height: height}
					}
				}
				spentMu.Unlock()
			}

			resultsMu.Lock()
			allProposals = append(allProposals, localProposals...)
			allVotes = append(allVotes, localVotes...)
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return allProposals, allVotes, nil
}

// loadPhase2 reconciles every extracted vote's spend status against the
// shared prevout map built in phase 1, inserting the surviving votes
// with the same tie-break insertVote applies during live connect.
// Historical replay passes processingTip=false into insertVote, so rule
// 3's mempool/UTXO consult is skipped — the real spend height recorded
// here already tells phase 2 everything it needs to know.
func (e *Engine) loadPhase2(ctx context.Context, votes []Vote, workers int, spentMu *sync.Mutex, spentPrevouts map[Outpoint]spentRecord) error {
	// Sort into the same (time, sig_hash) total order the tie-break
	// uses so replay is deterministic across runs regardless of how
	// phase 1's goroutines interleaved their appends.
	shards := shardVotes(sortedBySigHash(votes), workers)

	g, gctx := errgroup.WithContext(ctx)
	var insertMu sync.Mutex
	for _, shard := range shards {
		shard := shard
		g.Go(func() error {
			for _, v := range shard {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				e.store.mu.Lock()
				_, hasProposal := e.store.proposals[v.Proposal]
				e.store.mu.Unlock()
				if !hasProposal {
					continue
				}

				spentMu.Lock()
				rec, wasSpent := spentPrevouts[v.Utxo]
				spentMu.Unlock()
				if wasSpent {
					superblock := e.superblockForVote(v)
					if superblock == 0 || rec.height <= superblock {
						v.SpentBlock = rec.height
						v.SpentTxHash = rec.txHash
					}
				}

				insertMu.Lock()
				e.insertVote(v, false)
				insertMu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}

func shardHeights(heights []uint64, workers int) [][]uint64 {
	if workers > len(heights) {
		workers = len(heights)
	}
	if workers < 1 {
		return nil
	}
	shards := make([][]uint64, workers)
	for i, h := range heights {
		shards[i%workers] = append(shards[i%workers], h)
	}
	return shards
}

func shardVotes(votes []Vote, workers int) [][]Vote {
	if workers > len(votes) {
		workers = len(votes)
	}
	if workers < 1 {
		return nil
	}
	shards := make([][]Vote, workers)
	for i, v := range votes {
		shards[i%workers] = append(shards[i%workers], v)
	}
	return shards
}
