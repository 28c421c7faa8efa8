package p2p

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/koinos/koinos-log-golang"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-msgio"
	"github.com/minchain/minchain-p2p/internal/inventory"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
)

// InventoryProtocolID is the libp2p protocol carrying inventory messages
const InventoryProtocolID protocol.ID = "/minchain/inventory/1.0.0"

// MessageHandler handles one inventory message received from a peer
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *inventory.Message, pid peer.ID) (inventory.Result, error)
}

// InventoryProtocol reads inventory messages from inbound streams and
// dispatches each of them to the handler on its own goroutine
type InventoryProtocol struct {
	host          host.Host
	handler       MessageHandler
	peerErrorChan chan<- PeerError

	opts options.TransportOptions
}

// NewInventoryProtocol creates an InventoryProtocol
func NewInventoryProtocol(host host.Host, handler MessageHandler, peerErrorChan chan<- PeerError, opts options.TransportOptions) *InventoryProtocol {
	return &InventoryProtocol{
		host:          host,
		handler:       handler,
		peerErrorChan: peerErrorChan,
		opts:          opts,
	}
}

// Start handling inbound inventory streams until ctx is done
func (p *InventoryProtocol) Start(ctx context.Context) {
	p.host.SetStreamHandler(InventoryProtocolID, func(s network.Stream) {
		p.handleStream(ctx, s)
	})

	go func() {
		<-ctx.Done()
		p.host.RemoveStreamHandler(InventoryProtocolID)
	}()
}

func (p *InventoryProtocol) handleStream(ctx context.Context, s network.Stream) {
	pid := s.Conn().RemotePeer()
	reader := msgio.NewVarintReaderSize(s, inventory.MaximumMessageSize)

	for {
		frame, err := reader.ReadMsg()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				_ = s.Close()
			case errors.Is(err, msgio.ErrMsgTooLarge):
				_ = s.Reset()
				p.reportError(ctx, pid, fmt.Errorf("%w, %w, frame exceeds %d bytes", p2perrors.ErrProtocolViolation, p2perrors.ErrBodyTooLarge, inventory.MaximumMessageSize))
			default:
				_ = s.Reset()
				log.Debugf("Error reading inventory stream from peer %v: %s", pid, err)
			}
			return
		}

		msg, err := inventory.DeserializeMessage(frame)
		reader.ReleaseMsg(frame)
		if err != nil {
			_ = s.Reset()
			p.reportError(ctx, pid, err)
			return
		}

		go p.handleMessage(ctx, msg, pid)
	}
}

func (p *InventoryProtocol) handleMessage(ctx context.Context, msg *inventory.Message, pid peer.ID) {
	handleCtx, cancel := context.WithTimeout(ctx, p.opts.HandleTimeout)
	defer cancel()

	if _, err := p.handler.HandleMessage(handleCtx, msg, pid); err != nil {
		log.Warnf("Protocol violation from peer %v: %s", pid, err)
		p.reportError(ctx, pid, err)
	}
}

func (p *InventoryProtocol) reportError(ctx context.Context, pid peer.ID, err error) {
	select {
	case p.peerErrorChan <- PeerError{id: pid, err: err}:
	case <-ctx.Done():
	}
}
