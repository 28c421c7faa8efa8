package chain

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 65536,
		MaxNestedLevels:  16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// BlockHeader is the part of a block covered by the block id
type BlockHeader struct {
	_               struct{} `cbor:",toarray"`
	Previous        ObjectID
	Height          uint64
	Timestamp       uint64
	Difficulty      uint64
	Nonce           uint64
	TransactionRoot ObjectID
}

// Block is a header followed by the raw bytes of its transactions
type Block struct {
	_            struct{} `cbor:",toarray"`
	Header       BlockHeader
	Transactions [][]byte
}

// Serialize returns the canonical encoding of the block
func (b *Block) Serialize() ([]byte, error) {
	data, err := encMode.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w, %v", p2perrors.ErrSerialization, err)
	}

	return data, nil
}

// ID returns the block id, the double SHA-256 of the encoded header
func (b *Block) ID() (ObjectID, error) {
	header, err := encMode.Marshal(&b.Header)
	if err != nil {
		return ObjectID{}, fmt.Errorf("%w, %v", p2perrors.ErrSerialization, err)
	}

	return DoubleSHA256(header), nil
}

// DeserializeBlock decodes a raw block
func DeserializeBlock(raw []byte) (*Block, error) {
	block := &Block{}
	if err := decMode.Unmarshal(raw, block); err != nil {
		return nil, fmt.Errorf("%w, %v", p2perrors.ErrDeserialization, err)
	}

	return block, nil
}

// ComputeBlockID decodes a raw block and returns the hash of its header
func ComputeBlockID(raw []byte) (ObjectID, error) {
	block, err := DeserializeBlock(raw)
	if err != nil {
		return ObjectID{}, err
	}

	return block.ID()
}

// ExtractPreviousBlockID returns the parent pointer of a raw block
func ExtractPreviousBlockID(raw []byte) (ObjectID, error) {
	block, err := DeserializeBlock(raw)
	if err != nil {
		return ObjectID{}, err
	}

	return block.Header.Previous, nil
}
