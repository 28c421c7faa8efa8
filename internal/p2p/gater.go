package p2p

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/control"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	multiaddr "github.com/multiformats/go-multiaddr"
)

const gaterTimeout = time.Second

// ConnectionGater refuses connections to and from peers the PeerErrorHandler
// has disconnected until their error score decays
type ConnectionGater struct {
	errorHandler *PeerErrorHandler
}

// NewConnectionGater creates a ConnectionGater backed by the given PeerErrorHandler
func NewConnectionGater(errorHandler *PeerErrorHandler) *ConnectionGater {
	return &ConnectionGater{errorHandler: errorHandler}
}

func (g *ConnectionGater) canConnect(id peer.ID) bool {
	ctx, cancel := context.WithTimeout(context.Background(), gaterTimeout)
	defer cancel()
	return g.errorHandler.CanConnect(ctx, id)
}

// InterceptPeerDial is part of the libp2p connmgr.ConnectionGater interface
func (g *ConnectionGater) InterceptPeerDial(id peer.ID) bool {
	return g.canConnect(id)
}

// InterceptAddrDial is part of the libp2p connmgr.ConnectionGater interface
func (g *ConnectionGater) InterceptAddrDial(peer.ID, multiaddr.Multiaddr) bool {
	return true
}

// InterceptAccept is part of the libp2p connmgr.ConnectionGater interface
func (g *ConnectionGater) InterceptAccept(network.ConnMultiaddrs) bool {
	return true
}

// InterceptSecured is part of the libp2p connmgr.ConnectionGater interface
func (g *ConnectionGater) InterceptSecured(_ network.Direction, id peer.ID, _ network.ConnMultiaddrs) bool {
	return g.canConnect(id)
}

// InterceptUpgraded is part of the libp2p connmgr.ConnectionGater interface
func (g *ConnectionGater) InterceptUpgraded(network.Conn) (bool, control.DisconnectReason) {
	return true, 0
}
