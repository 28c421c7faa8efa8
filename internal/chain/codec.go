package chain

// Codec provides the chain specific functions the inventory relies on
type Codec interface {
	ComputeBlockID(raw []byte) (ObjectID, error)
	ComputeTransactionID(raw []byte) ObjectID
	DeserializeTransaction(raw []byte) (*Transaction, error)
	ExtractPreviousBlockID(raw []byte) (ObjectID, error)
}

// CBORCodec implements Codec for CBOR encoded blocks and transactions
type CBORCodec struct{}

// DefaultCodec is the codec used by the node
var DefaultCodec Codec = CBORCodec{}

// ComputeBlockID satisfies Codec
func (CBORCodec) ComputeBlockID(raw []byte) (ObjectID, error) {
	return ComputeBlockID(raw)
}

// ComputeTransactionID satisfies Codec
func (CBORCodec) ComputeTransactionID(raw []byte) ObjectID {
	return ComputeTransactionID(raw)
}

// DeserializeTransaction satisfies Codec
func (CBORCodec) DeserializeTransaction(raw []byte) (*Transaction, error) {
	return DeserializeTransaction(raw)
}

// ExtractPreviousBlockID satisfies Codec
func (CBORCodec) ExtractPreviousBlockID(raw []byte) (ObjectID, error) {
	return ExtractPreviousBlockID(raw)
}
