package inventory

import (
	"context"
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/chain/chaintest"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBodyIdempotenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		manager, transport, executor := newTestManagerWithOptions(t, *options.NewInventoryOptions())

		height := rapid.Uint64Range(1, 1<<20).Draw(t, "height").(uint64)
		seed := rapid.Uint64().Draw(t, "seed").(uint64)
		inputs := rapid.IntRange(1, 4).Draw(t, "inputs").(int)
		repeats := rapid.IntRange(1, 6).Draw(t, "repeats").(int)

		_, blockRaw, blockID := chaintest.MakeBlock(chain.ObjectID{}, height)
		_, trxRaw, trxID := chaintest.MakeTransaction(seed, inputs)

		for i := 0; i < repeats; i++ {
			pid := peer.ID(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "peer").(string))

			_, err := manager.HandleMessage(ctx, &Message{Phase: Body, IsBlock: true, ObjectID: blockID, Data: blockRaw}, pid)
			require.NoError(t, err)
			_, err = manager.HandleMessage(ctx, &Message{Phase: Body, IsBlock: false, ObjectID: trxID, Data: trxRaw}, pid)
			require.NoError(t, err)
		}

		require.Equal(t, 1, manager.BlockCount())
		require.Equal(t, 1, manager.TransactionCount())
		require.Len(t, transport.broadcasts(), 2)
		require.Len(t, executor.executed(), 1)
	})
}

func TestBodyIntegrityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		manager, transport, _ := newTestManagerWithOptions(t, *options.NewInventoryOptions())

		isBlock := rapid.Bool().Draw(t, "isBlock").(bool)
		data := rapid.SliceOfN(rapid.Byte(), 1, 512).Draw(t, "data").([]byte)
		claimed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "claimed").([]byte)

		id, err := chain.ObjectIDFromBytes(claimed)
		require.NoError(t, err)

		res, err := manager.HandleMessage(ctx, &Message{Phase: Body, IsBlock: isBlock, ObjectID: id, Data: data}, peerA)
		require.NoError(t, err)
		require.True(t, res.IsIgnored())

		// Nothing with an unverified id is ever stored or relayed
		require.False(t, manager.Blocks.Contains(id))
		require.False(t, manager.Transactions.Contains(id))
		require.Empty(t, transport.sent)
	})
}

func TestAdvertiseProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		manager, transport, _ := newTestManagerWithOptions(t, *options.NewInventoryOptions())
		raws, ids := chaintest.MakeChain(rapid.IntRange(1, 8).Draw(t, "length").(int))

		isKnown := make(map[int]bool)
		for i := range ids {
			if rapid.Bool().Draw(t, "known").(bool) {
				require.True(t, manager.Blocks.InsertIfAbsent(ids[i], raws[i]))
				isKnown[i] = true
			}
		}

		for i, id := range ids {
			transport.reset()
			_, err := manager.HandleMessage(ctx, &Message{Phase: Advertise, IsBlock: true, ObjectID: id}, peerB)
			require.NoError(t, err)

			if isKnown[i] {
				require.Empty(t, transport.sent)
			} else {
				require.Len(t, transport.sends(), 1)
				require.Equal(t, peerB, transport.sends()[0].pid)
			}
		}

		require.Equal(t, len(isKnown), manager.BlockCount())
	})
}
