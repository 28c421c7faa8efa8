package inventory

import (
	"context"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/minchain/minchain-p2p/internal/chain"
)

// Transport delivers inventory messages to peers
type Transport interface {
	// SendTo delivers a message to exactly one peer
	SendTo(ctx context.Context, msg *Message, pid peer.ID) error

	// BroadcastExcept delivers a message to every connected peer other than excluded
	BroadcastExcept(ctx context.Context, msg *Message, excluded peer.ID) error
}

// Executor consumes blocks that passed the inventory checks
type Executor interface {
	// ProcessBlock hands a block to the execution engine. It must not wait for
	// execution, and ctx only bounds the hand-off itself.
	ProcessBlock(ctx context.Context, raw []byte, previous chain.ObjectID)
}
