package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	koinosmq "github.com/koinos/koinos-mq-golang"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
)

// RPC service constants
const (
	ChainRPC = "chain"

	contentType = "application/cbor"
)

// Client sends a request to an AMQP RPC service and waits for the response
type Client interface {
	RPC(ctx context.Context, contentType koinosmq.ContentType, rpcType string, data []byte) ([]byte, error)
}

// MQRPC implements LocalRPC by communicating with the local chain service via AMQP
type MQRPC struct {
	mq Client
}

// NewMQRPC factory
func NewMQRPC(mq Client) *MQRPC {
	rpc := new(MQRPC)
	rpc.mq = mq
	return rpc
}

func (k *MQRPC) call(ctx context.Context, method string, req *ChainRequest) (*ChainResponse, error) {
	data, err := cbor.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w %s, %s", p2perrors.ErrSerialization, method, err)
	}

	var responseBytes []byte
	responseBytes, err = k.mq.RPC(ctx, contentType, ChainRPC, data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w %s, %s", p2perrors.ErrLocalRPCTimeout, method, err)
		}
		return nil, fmt.Errorf("%w %s, %s", p2perrors.ErrLocalRPC, method, err)
	}

	response := &ChainResponse{}
	err = cbor.Unmarshal(responseBytes, response)
	if err != nil {
		return nil, fmt.Errorf("%w %s, %s", p2perrors.ErrDeserialization, method, err)
	}

	return response, nil
}

// SubmitBlock rpc call
func (k *MQRPC) SubmitBlock(ctx context.Context, raw []byte, previous chain.ObjectID) error {
	args := &ChainRequest{
		SubmitBlock: &SubmitBlockRequest{
			Block:    raw,
			Previous: previous,
		},
	}

	response, err := k.call(ctx, "SubmitBlock", args)
	if err != nil {
		return err
	}

	switch {
	case response.SubmitBlock != nil:
		return nil
	case response.Error != nil:
		return fmt.Errorf("%w SubmitBlock, chain rpc error %d, %s", p2perrors.ErrBlockExecution, response.Error.Code, response.Error.Message)
	default:
		return fmt.Errorf("%w SubmitBlock, unexpected chain rpc response", p2perrors.ErrLocalRPC)
	}
}

// IsConnectedToChain returns if the AMQP connection can currently communicate
// with the chain microservice.
func (k *MQRPC) IsConnectedToChain(ctx context.Context) (bool, error) {
	args := &ChainRequest{
		Reserved: &ReservedRequest{},
	}

	if _, err := k.call(ctx, "IsConnectedToChain", args); err != nil {
		return false, err
	}

	return true, nil
}
