package chain

import (
	"encoding/hex"
	"fmt"

	"github.com/minchain/minchain-p2p/internal/p2perrors"
	"github.com/multiformats/go-multihash"
)

// ObjectIDLength is the length of a block or transaction id in bytes
const ObjectIDLength = 32

// ObjectID is the content hash identifying a single block or transaction
type ObjectID [ObjectIDLength]byte

// ObjectIDFromBytes copies b into an ObjectID, failing if the length is wrong
func ObjectIDFromBytes(b []byte) (ObjectID, error) {
	var id ObjectID
	if len(b) != ObjectIDLength {
		return id, fmt.Errorf("%w, object id must be %d bytes, was %d", p2perrors.ErrDeserialization, ObjectIDLength, len(b))
	}

	copy(id[:], b)
	return id, nil
}

// String returns the hex encoding of the id
func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero returns true for the all zero id, used as the previous id of a genesis block
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// MarshalBinary encodes the id as a CBOR byte string
func (id ObjectID) MarshalBinary() ([]byte, error) {
	return id[:], nil
}

// UnmarshalBinary decodes a CBOR byte string of exactly ObjectIDLength bytes
func (id *ObjectID) UnmarshalBinary(data []byte) error {
	decoded, err := ObjectIDFromBytes(data)
	if err != nil {
		return err
	}

	*id = decoded
	return nil
}

// DoubleSHA256 hashes data twice with SHA-256
func DoubleSHA256(data []byte) ObjectID {
	mh, err := multihash.Sum(data, multihash.DBL_SHA2_256, -1)
	if err != nil {
		// DBL_SHA2_256 is registered by go-multihash itself
		panic(err)
	}

	decoded, err := multihash.Decode(mh)
	if err != nil {
		panic(err)
	}

	var id ObjectID
	copy(id[:], decoded.Digest)
	return id
}
