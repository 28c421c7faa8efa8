package rpc

import (
	"github.com/minchain/minchain-p2p/internal/chain"
)

// ChainRequest is a request to the chain service. Exactly one field is set.
type ChainRequest struct {
	Reserved    *ReservedRequest    `cbor:"1,keyasint,omitempty"`
	SubmitBlock *SubmitBlockRequest `cbor:"2,keyasint,omitempty"`
}

// ChainResponse is a response from the chain service. Exactly one field is set.
type ChainResponse struct {
	Reserved    *ReservedResponse    `cbor:"1,keyasint,omitempty"`
	SubmitBlock *SubmitBlockResponse `cbor:"2,keyasint,omitempty"`
	Error       *ErrorResponse       `cbor:"3,keyasint,omitempty"`
}

// ReservedRequest is answered by any running chain service
type ReservedRequest struct{}

// ReservedResponse answers a ReservedRequest
type ReservedResponse struct{}

// SubmitBlockRequest asks the chain service to execute a block
type SubmitBlockRequest struct {
	Block    []byte         `cbor:"1,keyasint"`
	Previous chain.ObjectID `cbor:"2,keyasint"`
}

// SubmitBlockResponse is returned when the block was executed
type SubmitBlockResponse struct {
	Height uint64 `cbor:"1,keyasint,omitempty"`
}

// ErrorResponse is returned when the chain service could not serve a request
type ErrorResponse struct {
	Code    int64  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
}
