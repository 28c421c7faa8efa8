package p2p

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/libp2p/go-msgio"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/inventory"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedMessage struct {
	msg *inventory.Message
	pid peer.ID
}

type testHandler struct {
	mu       sync.Mutex
	received []receivedMessage
	err      error
}

func (h *testHandler) HandleMessage(ctx context.Context, msg *inventory.Message, pid peer.ID) (inventory.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, receivedMessage{msg: msg, pid: pid})
	return inventory.Result{}, h.err
}

func (h *testHandler) messages() []receivedMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]receivedMessage{}, h.received...)
}

type staticPeers []peer.ID

func (s staticPeers) ConnectedPeers(context.Context) []peer.ID {
	return s
}

func newTestMocknet(t *testing.T, n int) []host.Host {
	mn, err := mocknet.FullMeshConnected(n)
	require.NoError(t, err)
	t.Cleanup(func() { mn.Close() })
	return mn.Hosts()
}

func expectPeerError(t *testing.T, peerErrorChan <-chan PeerError, pid peer.ID, target error) {
	select {
	case perr := <-peerErrorChan:
		assert.Equal(t, pid, perr.id)
		assert.ErrorIs(t, perr.err, target)
	case <-time.After(2 * time.Second):
		t.Fatalf("Expected peer error %s for %s", target, pid)
	}
}

func TestTransportSendTo(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := newTestMocknet(t, 2)
	peerErrorChan := make(chan PeerError, 10)
	opts := *options.NewTransportOptions()

	handler := &testHandler{}
	NewInventoryProtocol(hosts[1], handler, peerErrorChan, opts).Start(ctx)
	transport := NewTransport(hosts[0], staticPeers{hosts[1].ID()}, peerErrorChan, opts)

	msg := &inventory.Message{Phase: inventory.Body, IsBlock: true, ObjectID: chain.DoubleSHA256([]byte("x")), Data: []byte{1, 2, 3}}
	require.NoError(t, transport.SendTo(ctx, msg, hosts[1].ID()))

	require.Eventually(t, func() bool {
		return len(handler.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	received := handler.messages()[0]
	assert.Equal(t, hosts[0].ID(), received.pid)
	assert.Equal(t, msg, received.msg)
	assert.Empty(t, peerErrorChan)
}

func TestTransportSendToUnsupportedPeer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := newTestMocknet(t, 2)
	peerErrorChan := make(chan PeerError, 10)
	transport := NewTransport(hosts[0], staticPeers{}, peerErrorChan, *options.NewTransportOptions())

	err := transport.SendTo(ctx, &inventory.Message{Phase: inventory.Advertise}, hosts[1].ID())
	assert.ErrorIs(t, err, p2perrors.ErrPeerRPC)
	expectPeerError(t, peerErrorChan, hosts[1].ID(), p2perrors.ErrPeerRPC)
}

func TestTransportBroadcastExcept(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := newTestMocknet(t, 4)
	peerErrorChan := make(chan PeerError, 10)
	opts := *options.NewTransportOptions()
	opts.MaxConcurrentSends = 2

	handlers := make([]*testHandler, len(hosts))
	peers := make(staticPeers, 0)
	for i := 1; i < len(hosts); i++ {
		handlers[i] = &testHandler{}
		NewInventoryProtocol(hosts[i], handlers[i], peerErrorChan, opts).Start(ctx)
		peers = append(peers, hosts[i].ID())
	}

	transport := NewTransport(hosts[0], peers, peerErrorChan, opts)
	msg := &inventory.Message{Phase: inventory.Advertise, ObjectID: chain.DoubleSHA256([]byte("trx"))}
	require.NoError(t, transport.BroadcastExcept(ctx, msg, hosts[2].ID()))

	require.Eventually(t, func() bool {
		return len(handlers[1].messages()) == 1 && len(handlers[3].messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, handlers[2].messages())
	assert.Equal(t, msg, handlers[1].messages()[0].msg)
}

func TestInventoryProtocolViolation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := newTestMocknet(t, 2)
	peerErrorChan := make(chan PeerError, 10)
	opts := *options.NewTransportOptions()

	handler := &testHandler{err: fmt.Errorf("%w, %w", p2perrors.ErrProtocolViolation, p2perrors.ErrUnexpectedPayload)}
	NewInventoryProtocol(hosts[1], handler, peerErrorChan, opts).Start(ctx)

	transport := NewTransport(hosts[0], staticPeers{}, make(chan PeerError, 10), opts)
	require.NoError(t, transport.SendTo(ctx, &inventory.Message{Phase: inventory.Request, Data: []byte{1}}, hosts[1].ID()))

	expectPeerError(t, peerErrorChan, hosts[0].ID(), p2perrors.ErrUnexpectedPayload)
}

func writeRawFrames(t *testing.T, ctx context.Context, from host.Host, to peer.ID, frames ...[]byte) {
	s, err := from.NewStream(ctx, to, InventoryProtocolID)
	require.NoError(t, err)

	writer := msgio.NewVarintWriter(s)
	for _, frame := range frames {
		require.NoError(t, writer.WriteMsg(frame))
	}
	s.Close()
}

func TestInventoryProtocolBadFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := newTestMocknet(t, 2)
	peerErrorChan := make(chan PeerError, 10)

	handler := &testHandler{}
	NewInventoryProtocol(hosts[1], handler, peerErrorChan, *options.NewTransportOptions()).Start(ctx)

	// Frames that are not messages
	writeRawFrames(t, ctx, hosts[0], hosts[1].ID(), []byte{0xff, 0x00, 0x01})
	expectPeerError(t, peerErrorChan, hosts[0].ID(), p2perrors.ErrDeserialization)

	// A length prefix larger than any message is rejected before the body is read
	s, err := hosts[0].NewStream(ctx, hosts[1].ID(), InventoryProtocolID)
	require.NoError(t, err)
	prefix := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(prefix, inventory.MaximumMessageSize+1)
	_, err = s.Write(prefix[:n])
	require.NoError(t, err)
	s.Close()
	expectPeerError(t, peerErrorChan, hosts[0].ID(), p2perrors.ErrBodyTooLarge)

	assert.Empty(t, handler.messages())
}

func TestInventoryProtocolStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := newTestMocknet(t, 2)
	peerErrorChan := make(chan PeerError, 10)

	handler := &testHandler{}
	NewInventoryProtocol(hosts[1], handler, peerErrorChan, *options.NewTransportOptions()).Start(ctx)

	// A stream may carry several messages
	frames := make([][]byte, 0)
	for i := 0; i < 5; i++ {
		msg := &inventory.Message{Phase: inventory.Advertise, ObjectID: chain.DoubleSHA256([]byte{byte(i)})}
		data, err := msg.Serialize()
		require.NoError(t, err)
		frames = append(frames, data)
	}
	writeRawFrames(t, ctx, hosts[0], hosts[1].ID(), frames...)

	require.Eventually(t, func() bool {
		return len(handler.messages()) == 5
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, peerErrorChan)
}
