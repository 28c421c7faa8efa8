package p2p

import (
	"context"
	"errors"
	"fmt"

	log "github.com/koinos/koinos-log-golang"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-msgio"
	"github.com/minchain/minchain-p2p/internal/inventory"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
	"golang.org/x/sync/errgroup"
)

// PeerProvider lists the peers a broadcast is sent to
type PeerProvider interface {
	ConnectedPeers(ctx context.Context) []peer.ID
}

// Transport sends inventory messages to peers over libp2p streams.
// Every message is written on its own stream.
type Transport struct {
	host          host.Host
	peers         PeerProvider
	peerErrorChan chan<- PeerError

	opts options.TransportOptions
}

// NewTransport creates a Transport
func NewTransport(host host.Host, peers PeerProvider, peerErrorChan chan<- PeerError, opts options.TransportOptions) *Transport {
	return &Transport{
		host:          host,
		peers:         peers,
		peerErrorChan: peerErrorChan,
		opts:          opts,
	}
}

// SendTo delivers a message to exactly one peer
func (t *Transport) SendTo(ctx context.Context, msg *inventory.Message, pid peer.ID) error {
	data, err := msg.Serialize()
	if err != nil {
		return err
	}

	return t.sendData(ctx, data, pid)
}

// BroadcastExcept delivers a message to every connected peer other than excluded.
// It returns when every send has finished. Failed sends are reported against
// the receiving peer and do not fail the broadcast.
func (t *Transport) BroadcastExcept(ctx context.Context, msg *inventory.Message, excluded peer.ID) error {
	data, err := msg.Serialize()
	if err != nil {
		return err
	}

	var g errgroup.Group
	if t.opts.MaxConcurrentSends > 0 {
		g.SetLimit(t.opts.MaxConcurrentSends)
	}

	for _, pid := range t.peers.ConnectedPeers(ctx) {
		if pid == excluded {
			continue
		}

		pid := pid
		g.Go(func() error {
			if err := t.sendData(ctx, data, pid); err != nil {
				log.Debugf("Error broadcasting %s to peer %v: %s", msg, pid, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (t *Transport) sendData(ctx context.Context, data []byte, pid peer.ID) error {
	sendCtx, cancel := context.WithTimeout(ctx, t.opts.SendTimeout)
	defer cancel()

	err := t.writeStream(sendCtx, data, pid)
	if err != nil {
		select {
		case t.peerErrorChan <- PeerError{id: pid, err: err}:
		case <-ctx.Done():
		}
	}

	return err
}

func (t *Transport) writeStream(ctx context.Context, data []byte, pid peer.ID) error {
	s, err := t.host.NewStream(ctx, pid, InventoryProtocolID)
	if err != nil {
		return classifySendError(ctx, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.SetWriteDeadline(deadline)
	}

	writer := msgio.NewVarintWriter(s)
	if err := writer.WriteMsg(data); err != nil {
		_ = s.Reset()
		return classifySendError(ctx, err)
	}

	if err := s.Close(); err != nil {
		return classifySendError(ctx, err)
	}

	return nil
}

func classifySendError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w, %v", p2perrors.ErrPeerRPCTimeout, err)
	}

	return fmt.Errorf("%w, %v", p2perrors.ErrPeerRPC, err)
}
