// Package chaintest builds blocks and transactions for tests
package chaintest

import (
	"encoding/binary"

	"github.com/minchain/minchain-p2p/internal/chain"
)

// MakeBlock returns a block at the given height on top of previous, with its raw bytes and id
func MakeBlock(previous chain.ObjectID, height uint64, transactions ...[]byte) (*chain.Block, []byte, chain.ObjectID) {
	block := &chain.Block{
		Header: chain.BlockHeader{
			Previous:  previous,
			Height:    height,
			Timestamp: 1600000000000 + height*1000,
			Nonce:     height,
		},
		Transactions: transactions,
	}

	raw, err := block.Serialize()
	if err != nil {
		panic(err)
	}

	id, err := block.ID()
	if err != nil {
		panic(err)
	}

	return block, raw, id
}

// MakeChain returns raw blocks and ids for heights 1..n, each on top of the previous one
func MakeChain(n int) ([][]byte, []chain.ObjectID) {
	raws := make([][]byte, 0, n)
	ids := make([]chain.ObjectID, 0, n)
	previous := chain.ObjectID{}

	for i := 1; i <= n; i++ {
		_, raw, id := MakeBlock(previous, uint64(i))
		raws = append(raws, raw)
		ids = append(ids, id)
		previous = id
	}

	return raws, ids
}

// MakeTransaction returns a transaction spending numInputs outputs, with its raw bytes and id.
// seed makes transactions with the same shape distinct.
func MakeTransaction(seed uint64, numInputs int) (*chain.Transaction, []byte, chain.ObjectID) {
	trx := &chain.Transaction{
		Timestamp:  seed,
		InEntries:  make([]chain.InEntry, 0, numInputs),
		OutEntries: []chain.OutEntry{{Amount: seed + 1}},
	}

	for i := 0; i < numInputs; i++ {
		var previous chain.ObjectID
		binary.BigEndian.PutUint64(previous[:], seed)
		trx.InEntries = append(trx.InEntries, chain.InEntry{
			TransactionID: previous,
			OutEntryIndex: uint32(i),
			PublicKey:     []byte{0x02, byte(i)},
			Signature:     []byte{0x30, byte(i)},
		})
	}

	raw, err := trx.Serialize()
	if err != nil {
		panic(err)
	}

	trx.Original = raw
	return trx, raw, chain.ComputeTransactionID(raw)
}
