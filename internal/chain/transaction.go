package chain

import (
	"fmt"

	"github.com/minchain/minchain-p2p/internal/p2perrors"
)

// InEntry references an output of a previous transaction
type InEntry struct {
	_             struct{} `cbor:",toarray"`
	TransactionID ObjectID
	OutEntryIndex uint32
	PublicKey     []byte
	Signature     []byte
}

// OutEntry transfers an amount to a recipient
type OutEntry struct {
	_         struct{} `cbor:",toarray"`
	Recipient ObjectID
	Amount    uint64
}

// Transaction is a parsed transaction together with the bytes it was parsed from
type Transaction struct {
	_          struct{} `cbor:",toarray"`
	Timestamp  uint64
	InEntries  []InEntry
	OutEntries []OutEntry

	// Original holds the bytes the transaction was received as
	Original []byte `cbor:"-"`
}

// IsCoinbase returns true if the transaction spends no previous output
func (t *Transaction) IsCoinbase() bool {
	return len(t.InEntries) == 0
}

// Serialize returns the canonical encoding of the transaction
func (t *Transaction) Serialize() ([]byte, error) {
	data, err := encMode.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("%w, %v", p2perrors.ErrSerialization, err)
	}

	return data, nil
}

// ComputeTransactionID returns the double SHA-256 of the raw transaction
func ComputeTransactionID(raw []byte) ObjectID {
	return DoubleSHA256(raw)
}

// DeserializeTransaction decodes a raw transaction, keeping raw as its original bytes
func DeserializeTransaction(raw []byte) (*Transaction, error) {
	trx := &Transaction{}
	if err := decMode.Unmarshal(raw, trx); err != nil {
		return nil, fmt.Errorf("%w, %v", p2perrors.ErrDeserialization, err)
	}

	trx.Original = raw
	return trx, nil
}
