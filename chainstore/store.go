// Package chainstore is a bbolt-backed reference implementation of the
// governance engine's stipulated ChainView/UTXOView/MempoolView
// collaborators, adapted from the teacher's node/store/db.go bucket
// layout (headers/blocks/index/utxo buckets backed by a single
// *bolt.DB) but scoped to what the governance engine actually reads: a
// height-to-hash index, raw block bytes, and a coin set keyed by
// outpoint. It exists for demos and integration tests — production
// callers plug the engine directly into their own node's chainstate.
package chainstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/stakevote/governance/gov"
)

var (
	bucketHeights = []byte("height_to_hash")
	bucketBlocks  = []byte("blocks_by_hash")
	bucketCoins   = []byte("coins_by_outpoint")
)

// Store implements gov.ChainView and gov.UTXOView over a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) a chainstore database at path.
func Open(path string) (*Store, error) {
	bdb, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("chainstore: open bbolt: %w", err)
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketHeights, bucketBlocks, bucketCoins} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("chainstore: create buckets: %w", err)
	}
	return &Store{db: bdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutBlock records a block's raw bytes and its height-to-hash mapping,
// the minimal write path a block-connect caller needs before handing
// the block to the governance engine.
func (s *Store) PutBlock(height uint64, hash [32]byte, raw []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var heightKey [8]byte
		binary.BigEndian.PutUint64(heightKey[:], height)
		if err := tx.Bucket(bucketHeights).Put(heightKey[:], hash[:]); err != nil {
			return err
		}
		return tx.Bucket(bucketBlocks).Put(hash[:], raw)
	})
}

// Height returns the highest height ever recorded via PutBlock.
func (s *Store) Height() uint64 {
	var height uint64
	_ = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketHeights).Cursor()
		k, _ := c.Last()
		if k == nil {
			return nil
		}
		height = binary.BigEndian.Uint64(k)
		return nil
	})
	return height
}

// BlockHashAtHeight implements gov.ChainView.
func (s *Store) BlockHashAtHeight(height uint64) ([32]byte, bool) {
	var out [32]byte
	var ok bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		var heightKey [8]byte
		binary.BigEndian.PutUint64(heightKey[:], height)
		v := tx.Bucket(bucketHeights).Get(heightKey[:])
		if v == nil {
			return nil
		}
		copy(out[:], v)
		ok = true
		return nil
	})
	return out, ok
}

// ReadBlock implements gov.ChainView.
func (s *Store) ReadBlock(hash [32]byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlocks).Get(hash[:])
		if v == nil {
			return fmt.Errorf("chainstore: unknown block %x", hash[:8])
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// coinEntry is what PutCoin/coin store about an outpoint.
type coinEntry struct {
	amount  int64
	address string
	spent   bool
}

func encodeCoinEntry(e coinEntry) []byte {
	out := make([]byte, 0, 9+1+len(e.address))
	var amt [8]byte
	binary.LittleEndian.PutUint64(amt[:], uint64(e.amount))
	out = append(out, amt[:]...)
	if e.spent {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, e.address...)
	return out
}

func decodeCoinEntry(b []byte) (coinEntry, error) {
	if len(b) < 9 {
		return coinEntry{}, fmt.Errorf("chainstore: truncated coin entry")
	}
	return coinEntry{
		amount:  int64(binary.LittleEndian.Uint64(b[0:8])),
		spent:   b[8] == 1,
		address: string(b[9:]),
	}, nil
}

func outpointKey(o gov.Outpoint) []byte {
	key := make([]byte, 36)
	copy(key[:32], o.Txid[:])
	binary.BigEndian.PutUint32(key[32:], o.Index)
	return key
}

// PutCoin records (or updates) the amount, owning address, and spend
// state of outpoint.
func (s *Store) PutCoin(outpoint gov.Outpoint, amount int64, address string, spent bool) error {
	val := encodeCoinEntry(coinEntry{amount: amount, address: address, spent: spent})
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCoins).Put(outpointKey(outpoint), val)
	})
}

// IsUnspent implements gov.UTXOView.
func (s *Store) IsUnspent(outpoint gov.Outpoint) (bool, error) {
	var unspent bool
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCoins).Get(outpointKey(outpoint))
		if v == nil {
			return nil
		}
		found = true
		e, err := decodeCoinEntry(v)
		if err != nil {
			return err
		}
		unspent = !e.spent
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("chainstore: unknown outpoint")
	}
	return unspent, nil
}

// Coin implements gov.UTXOView.
func (s *Store) Coin(outpoint gov.Outpoint) (int64, string, bool, error) {
	var e coinEntry
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCoins).Get(outpointKey(outpoint))
		if v == nil {
			return nil
		}
		found = true
		var err error
		e, err = decodeCoinEntry(v)
		return err
	})
	if err != nil {
		return 0, "", false, err
	}
	return e.amount, e.address, found, nil
}

// Mempool is an in-memory gov.MempoolView: a set of outpoints already
// claimed by some unconfirmed transaction. It is deliberately separate
// from Store (mempool state is ephemeral and never belongs on disk).
type Mempool struct {
	mu    sync.Mutex
	spent map[gov.Outpoint]struct{}
}

// NewMempool constructs an empty Mempool.
func NewMempool() *Mempool {
	return &Mempool{spent: make(map[gov.Outpoint]struct{})}
}

// MarkSpent records that some unconfirmed transaction spends outpoint.
func (m *Mempool) MarkSpent(outpoint gov.Outpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spent[outpoint] = struct{}{}
}

// Clear drops every recorded mempool spend, e.g. after a block confirms.
func (m *Mempool) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spent = make(map[gov.Outpoint]struct{})
}

// IsSpentInMempool implements gov.MempoolView.
func (m *Mempool) IsSpentInMempool(outpoint gov.Outpoint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.spent[outpoint]
	return ok
}
