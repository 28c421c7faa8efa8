package p2p

import (
	"context"
	"fmt"
	"time"

	log "github.com/koinos/koinos-log-golang"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/minchain/minchain-p2p/internal/options"
	multiaddr "github.com/multiformats/go-multiaddr"
)

type connectionMessage struct {
	net  network.Network
	conn network.Conn
}

type peerAddressMessage struct {
	id         peer.ID
	returnChan chan<- multiaddr.Multiaddr
}

type numConnectionsMessage struct {
	returnChan chan<- int
}

type isConnectedMessage struct {
	id         peer.ID
	returnChan chan<- bool
}

type connectedPeersMessage struct {
	returnChan chan<- []peer.ID
}

// ConnectionManager tracks connected peers using the network.Notifiee interface,
// reconnects to the initial peers and disconnects peers on request.
type ConnectionManager struct {
	host host.Host
	opts options.ConnectionManagerOptions

	initialPeers   map[peer.ID]peer.AddrInfo
	connectedPeers map[peer.ID]network.Conn

	peerConnectedChan    chan connectionMessage
	peerDisconnectedChan chan connectionMessage
	disconnectPeerChan   <-chan peer.ID
	peerAddressChan      chan *peerAddressMessage
	numConnectionsChan   chan *numConnectionsMessage
	isConnectedChan      chan *isConnectedMessage
	connectedPeersChan   chan *connectedPeersMessage
	done                 chan struct{}
}

// NewConnectionManager creates a new ConnectionManager object
func NewConnectionManager(
	host host.Host,
	opts options.ConnectionManagerOptions,
	initialPeers []peer.AddrInfo,
	disconnectPeerChan <-chan peer.ID) *ConnectionManager {

	connectionManager := ConnectionManager{
		host:                 host,
		opts:                 opts,
		initialPeers:         make(map[peer.ID]peer.AddrInfo),
		connectedPeers:       make(map[peer.ID]network.Conn),
		peerConnectedChan:    make(chan connectionMessage),
		peerDisconnectedChan: make(chan connectionMessage),
		disconnectPeerChan:   disconnectPeerChan,
		peerAddressChan:      make(chan *peerAddressMessage),
		numConnectionsChan:   make(chan *numConnectionsMessage),
		isConnectedChan:      make(chan *isConnectedMessage),
		connectedPeersChan:   make(chan *connectedPeersMessage),
		done:                 make(chan struct{}),
	}

	for _, peer := range initialPeers {
		connectionManager.initialPeers[peer.ID] = peer
	}

	return &connectionManager
}

// Connected is part of the libp2p network.Notifiee interface
func (c *ConnectionManager) Connected(net network.Network, conn network.Conn) {
	select {
	case c.peerConnectedChan <- connectionMessage{net: net, conn: conn}:
	case <-c.done:
	}
}

// Disconnected is part of the libp2p network.Notifiee interface
func (c *ConnectionManager) Disconnected(net network.Network, conn network.Conn) {
	select {
	case c.peerDisconnectedChan <- connectionMessage{net: net, conn: conn}:
	case <-c.done:
	}
}

// Listen is part of the libp2p network.Notifiee interface
func (c *ConnectionManager) Listen(n network.Network, _ multiaddr.Multiaddr) {
}

// ListenClose is part of the libp2p network.Notifiee interface
func (c *ConnectionManager) ListenClose(n network.Network, _ multiaddr.Multiaddr) {
}

// GetPeerAddress returns the remote address of a connected peer, or nil
func (c *ConnectionManager) GetPeerAddress(ctx context.Context, id peer.ID) multiaddr.Multiaddr {
	returnChan := make(chan multiaddr.Multiaddr, 1)

	select {
	case c.peerAddressChan <- &peerAddressMessage{id, returnChan}:
	case <-c.done:
		return nil
	case <-ctx.Done():
		return nil
	}

	select {
	case addr := <-returnChan:
		return addr
	case <-ctx.Done():
		return nil
	}
}

// GetNumConnections returns the number of connected peers
func (c *ConnectionManager) GetNumConnections(ctx context.Context) int {
	returnChan := make(chan int, 1)

	select {
	case c.numConnectionsChan <- &numConnectionsMessage{returnChan}:
	case <-c.done:
		return 0
	case <-ctx.Done():
		return 0
	}

	select {
	case num := <-returnChan:
		return num
	case <-ctx.Done():
		return 0
	}
}

// IsConnected returns true if the peer is connected
func (c *ConnectionManager) IsConnected(ctx context.Context, pid peer.ID) bool {
	returnChan := make(chan bool, 1)

	select {
	case c.isConnectedChan <- &isConnectedMessage{pid, returnChan}:
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}

	select {
	case connected := <-returnChan:
		return connected
	case <-ctx.Done():
		return false
	}
}

// ConnectedPeers returns the ids of all connected peers
func (c *ConnectionManager) ConnectedPeers(ctx context.Context) []peer.ID {
	returnChan := make(chan []peer.ID, 1)

	select {
	case c.connectedPeersChan <- &connectedPeersMessage{returnChan}:
	case <-c.done:
		return nil
	case <-ctx.Done():
		return nil
	}

	select {
	case peers := <-returnChan:
		return peers
	case <-ctx.Done():
		return nil
	}
}

func (c *ConnectionManager) handleConnected(msg connectionMessage) {
	pid := msg.conn.RemotePeer()
	s := fmt.Sprintf("%s/p2p/%s", msg.conn.RemoteMultiaddr(), pid)

	if _, ok := c.connectedPeers[pid]; !ok {
		log.Infof("Connected to peer: %s", s)
		c.connectedPeers[pid] = msg.conn
	}
}

func (c *ConnectionManager) handleDisconnected(msg connectionMessage) {
	pid := msg.conn.RemotePeer()

	if _, ok := c.connectedPeers[pid]; !ok {
		return
	}

	// Another connection to the same peer may still be open
	if c.host.Network().Connectedness(pid) == network.Connected {
		if conns := c.host.Network().ConnsToPeer(pid); len(conns) > 0 {
			c.connectedPeers[pid] = conns[0]
			return
		}
	}

	delete(c.connectedPeers, pid)

	s := fmt.Sprintf("%s/p2p/%s", msg.conn.RemoteMultiaddr(), pid)
	log.Infof("Disconnected from peer: %s", s)
}

func (c *ConnectionManager) handleDisconnectPeer(pid peer.ID) {
	log.Infof("Closing connection to peer %s", pid)
	if err := c.host.Network().ClosePeer(pid); err != nil {
		log.Warnf("Error closing connection to peer %s: %s", pid, err)
	}
}

func (c *ConnectionManager) handleGetPeerAddress(msg *peerAddressMessage) {
	var addr multiaddr.Multiaddr
	if conn, ok := c.connectedPeers[msg.id]; ok {
		addr = conn.RemoteMultiaddr()
	}

	msg.returnChan <- addr
}

func (c *ConnectionManager) handleGetNumConnections(msg *numConnectionsMessage) {
	msg.returnChan <- len(c.connectedPeers)
}

func (c *ConnectionManager) handleIsConnected(msg *isConnectedMessage) {
	_, connected := c.connectedPeers[msg.id]
	msg.returnChan <- connected
}

func (c *ConnectionManager) handleConnectedPeers(msg *connectedPeersMessage) {
	peers := make([]peer.ID, 0, len(c.connectedPeers))
	for pid := range c.connectedPeers {
		peers = append(peers, pid)
	}

	msg.returnChan <- peers
}

func (c *ConnectionManager) connectInitialPeers(ctx context.Context) {
	for {
		for peer, addr := range c.initialPeers {
			if !c.IsConnected(ctx, peer) {
				log.Infof("Attempting to connect to peer %v", peer)
				connectCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
				if err := c.host.Connect(connectCtx, addr); err != nil {
					log.Infof("Error connecting to peer %v: %s", peer, err)
				}
				cancel()
			}
		}

		select {
		case <-time.After(c.opts.ReconnectInterval):
		case <-ctx.Done():
			return
		}
	}
}

func (c *ConnectionManager) managerLoop(ctx context.Context) {
	for {
		select {
		case connMsg := <-c.peerConnectedChan:
			c.handleConnected(connMsg)
		case connMsg := <-c.peerDisconnectedChan:
			c.handleDisconnected(connMsg)
		case pid := <-c.disconnectPeerChan:
			c.handleDisconnectPeer(pid)
		case peerAddrMsg := <-c.peerAddressChan:
			c.handleGetPeerAddress(peerAddrMsg)
		case numConnectionsMsg := <-c.numConnectionsChan:
			c.handleGetNumConnections(numConnectionsMsg)
		case isConnectedMsg := <-c.isConnectedChan:
			c.handleIsConnected(isConnectedMsg)
		case connectedPeersMsg := <-c.connectedPeersChan:
			c.handleConnectedPeers(connectedPeersMsg)

		case <-ctx.Done():
			c.host.Network().StopNotify(c)
			close(c.done)
			c.connectedPeers = make(map[peer.ID]network.Conn)
			return
		}
	}
}

// Start the connection manager
func (c *ConnectionManager) Start(ctx context.Context) {
	c.host.Network().Notify(c)

	// Peers connected before Notify was called
	for _, pid := range c.host.Network().Peers() {
		if conns := c.host.Network().ConnsToPeer(pid); len(conns) > 0 {
			c.connectedPeers[pid] = conns[0]
		}
	}

	go c.managerLoop(ctx)

	if len(c.initialPeers) > 0 {
		go c.connectInitialPeers(ctx)
	}
}
