package rpc

import (
	"context"

	"github.com/minchain/minchain-p2p/internal/chain"
)

// LocalRPC interface for local node RPC methods required for minchain-p2p to function
type LocalRPC interface {
	SubmitBlock(ctx context.Context, raw []byte, previous chain.ObjectID) error
	IsConnectedToChain(ctx context.Context) (bool, error)
}
