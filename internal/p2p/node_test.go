package p2p

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/chain/chaintest"
	"github.com/minchain/minchain-p2p/internal/inventory"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testListenAddr = "/ip4/127.0.0.1/tcp/0"

func newTestConfig() *options.Config {
	config := options.NewConfig()
	config.ConnectionManagerOptions.ReconnectInterval = 100 * time.Millisecond
	config.ConnectionManagerOptions.ConnectTimeout = time.Second
	return config
}

func createTestNode(t *testing.T, ctx context.Context, seed string, config *options.Config) (*MinchainP2PNode, *testRPC) {
	rpc := &testRPC{}
	node, err := NewMinchainP2PNode(ctx, testListenAddr, rpc, nil, seed, config, inventory.NopMetrics())
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })
	return node, rpc
}

func TestNodeIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nodeA, _ := createTestNode(t, ctx, "test1", newTestConfig())
	nodeB, _ := createTestNode(t, ctx, "test1", newTestConfig())
	nodeC, _ := createTestNode(t, ctx, "test2", newTestConfig())
	nodeD, _ := createTestNode(t, ctx, "", newTestConfig())

	assert.Equal(t, nodeA.Host.ID(), nodeB.Host.ID())
	assert.NotEqual(t, nodeA.Host.ID(), nodeC.Host.ID())
	assert.NotEqual(t, nodeA.Host.ID(), nodeD.Host.ID())

	addr := nodeA.GetPeerAddress().String()
	if !strings.Contains(addr, "/p2p/"+nodeA.Host.ID().String()) {
		t.Errorf("Peer address %s does not contain the peer id", addr)
	}
}

func TestNodeErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := NewMinchainP2PNode(ctx, "not a multiaddress", &testRPC{}, nil, "test", newTestConfig(), nil)
	assert.Error(t, err)

	_, err = NewMinchainP2PNode(ctx, testListenAddr, nil, nil, "test", newTestConfig(), nil)
	assert.Error(t, err)

	config := newTestConfig()
	config.NodeOptions.InitialPeers = []string{"/ip4/127.0.0.1/tcp/8888"}
	_, err = NewMinchainP2PNode(ctx, testListenAddr, &testRPC{}, nil, "test", config, nil)
	assert.Error(t, err)
}

func TestNodeBlockPropagation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nodeA, rpcA := createTestNode(t, ctx, "nodeA", newTestConfig())
	nodeA.Start(ctx)

	configB := newTestConfig()
	configB.NodeOptions.InitialPeers = []string{nodeA.GetPeerAddress().String()}
	nodeB, rpcB := createTestNode(t, ctx, "nodeB", configB)
	nodeB.Start(ctx)

	require.Eventually(t, func() bool {
		return nodeA.ConnectionManager.IsConnected(ctx, nodeB.Host.ID()) &&
			nodeB.ConnectionManager.IsConnected(ctx, nodeA.Host.ID())
	}, 5*time.Second, 10*time.Millisecond)

	raws, ids := chaintest.MakeChain(1)
	nodeA.handleBlockBroadcast(BlockAcceptTopic, raws[0])

	require.Eventually(t, func() bool {
		return nodeB.Inventory.Blocks.Contains(ids[0])
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(rpcB.blocks()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, raws[0], rpcB.blocks()[0].raw)
	assert.Equal(t, chain.ObjectID{}, rpcB.blocks()[0].previous)

	// Locally published blocks are not executed again
	assert.Empty(t, rpcA.blocks())

	_, trxRaw, trxID := chaintest.MakeTransaction(1, 1)
	nodeB.handleTransactionBroadcast(TransactionAcceptTopic, trxRaw)

	require.Eventually(t, func() bool {
		return nodeA.Inventory.Transactions.Contains(trxID)
	}, 5*time.Second, 10*time.Millisecond)
}
