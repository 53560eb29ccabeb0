package gov

// ChainView is the stipulated read-only view onto block storage the
// engine consults during extraction and the historical loader (spec.md
// §6). Modeled on the teacher's store.DB read surface
// (node/store/db.go's GetBlockBytes/BlockIndexEntry lookups) but kept
// as a narrow interface so callers can back it with any store.
type ChainView interface {
	// Height returns the current chain tip height.
	Height() uint64
	// BlockHashAtHeight returns the accepted block hash at height, or
	// ok=false if height is not on the active chain.
	BlockHashAtHeight(height uint64) (hash [32]byte, ok bool)
	// ReadBlock returns the raw block bytes for hash.
	ReadBlock(hash [32]byte) ([]byte, error)
}

// UTXOView is the stipulated coin-set collaborator. The engine only ever
// looks up a specific outpoint (whether it is spendable, and its value
// and owner); it never enumerates the UTXO set (spec.md §6).
type UTXOView interface {
	// IsUnspent reports whether outpoint is still a live, unspent
	// coin as of the view's snapshot.
	IsUnspent(outpoint Outpoint) (bool, error)
	// Coin returns the value and destination address locked by
	// outpoint. ok is false if the coin is unknown to the view.
	Coin(outpoint Outpoint) (amount int64, address string, ok bool, err error)
}

// MempoolView is the stipulated mempool collaborator, consulted only
// while extracting the current chain tip (spec.md §5's "UTXO/mempool
// checks release-and-reacquire the lock").
type MempoolView interface {
	// IsSpentInMempool reports whether some unconfirmed transaction
	// already spends outpoint.
	IsSpentInMempool(outpoint Outpoint) bool
}

// BlockTx is the minimal per-transaction view the extractor needs: its
// own hash, inputs' previous outpoints, and any unspendable outputs
// carrying governance payloads.
type BlockTx struct {
	Hash          [32]byte
	Vin           []Outpoint
	GovPayloads   [][]byte
	IsCoinstake   bool
	PayoutOutputs []PayoutOutput
}

// PayoutOutput is a transaction output considered for superblock payee
// matching (spec.md §4.7).
type PayoutOutput struct {
	Address string
	Amount  int64
}

// Block is the minimal per-block view the extractor and payout
// validator need, decoded once by the caller from raw bytes.
type Block struct {
	Hash   [32]byte
	Height uint64
	Time   int64
	Txs    []BlockTx
}

// BlockDecoder turns the raw bytes ChainView.ReadBlock returns into the
// minimal Block view the extractor needs. Kept as its own stipulated
// collaborator since full block/transaction parsing is outside this
// engine's scope (spec.md §1's Non-goals) — callers plug in whatever
// node's wire format they run.
type BlockDecoder interface {
	DecodeBlock(raw []byte, height uint64, hash [32]byte) (Block, error)
}
