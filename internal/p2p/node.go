package p2p

import (
	"context"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/keygen"
	log "github.com/koinos/koinos-log-golang"
	koinosmq "github.com/koinos/koinos-mq-golang"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/inventory"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/minchain/minchain-p2p/internal/rpc"
	multiaddr "github.com/multiformats/go-multiaddr"
)

// AMQP topics carrying objects produced by the local node
const (
	BlockAcceptTopic       = "minchain.block.accept"
	TransactionAcceptTopic = "minchain.transaction.accept"
)

// ProtocolVersion is announced to peers through libp2p identify
const ProtocolVersion = "minchain/p2p/1.0.0"

// MinchainP2PNode is the core object representing a minchain peer
type MinchainP2PNode struct {
	Host              host.Host
	Inventory         *inventory.Manager
	Transport         *Transport
	Protocol          *InventoryProtocol
	ConnectionManager *ConnectionManager
	PeerErrorHandler  *PeerErrorHandler
	Executor          *BlockExecutor

	localRPC           rpc.LocalRPC
	peerErrorChan      chan PeerError
	disconnectPeerChan chan peer.ID

	Options options.Config
}

func generatePrivateKey(seed string) (crypto.PrivKey, error) {
	var secret []byte
	if seed == "" {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	} else {
		sum := sha256.Sum256([]byte(seed))
		secret = sum[:]
	}

	key, err := keygen.ECDSA(elliptic.P256(), secret)
	if err != nil {
		return nil, err
	}

	privateKey, _, err := crypto.ECDSAKeyPairFromKey(key)
	return privateKey, err
}

// NewMinchainP2PNode creates a libp2p node object listening on the given multiaddress
// listenAddr is a multiaddress string on which to listen
// seed is the string from which the node identity is derived, a random identity is used if empty
// requestHandler may be nil, in which case locally produced objects are not relayed
func NewMinchainP2PNode(ctx context.Context, listenAddr string, localRPC rpc.LocalRPC, requestHandler *koinosmq.RequestHandler, seed string, config *options.Config, metrics *inventory.Metrics) (*MinchainP2PNode, error) {
	if localRPC == nil {
		return nil, errors.New("minchain p2p node needs a local rpc")
	}

	privateKey, err := generatePrivateKey(seed)
	if err != nil {
		return nil, err
	}

	node := new(MinchainP2PNode)
	node.localRPC = localRPC
	node.Options = *config
	node.peerErrorChan = make(chan PeerError)
	node.disconnectPeerChan = make(chan peer.ID)
	node.PeerErrorHandler = NewPeerErrorHandler(node.disconnectPeerChan, node.peerErrorChan, config.PeerErrorHandlerOptions)

	// The error handler answers the connection gater, so it runs before the host exists
	node.PeerErrorHandler.Start(ctx)

	libp2pOptions := []libp2p.Option{
		libp2p.ListenAddrStrings(listenAddr),
		libp2p.Identity(privateKey),
		libp2p.ConnectionGater(NewConnectionGater(node.PeerErrorHandler)),
		libp2p.ProtocolVersion(ProtocolVersion),
	}

	node.Host, err = libp2p.New(libp2pOptions...)
	if err != nil {
		return nil, err
	}

	initialPeers := make([]peer.AddrInfo, 0, len(config.NodeOptions.InitialPeers))
	for _, peerStr := range config.NodeOptions.InitialPeers {
		ma, err := multiaddr.NewMultiaddr(peerStr)
		if err != nil {
			node.Host.Close()
			return nil, fmt.Errorf("invalid peer address %s: %w", peerStr, err)
		}
		addr, err := peer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			node.Host.Close()
			return nil, fmt.Errorf("invalid peer address %s: %w", peerStr, err)
		}
		initialPeers = append(initialPeers, *addr)
	}

	node.ConnectionManager = NewConnectionManager(node.Host, config.ConnectionManagerOptions, initialPeers, node.disconnectPeerChan)
	node.Transport = NewTransport(node.Host, node.ConnectionManager, node.peerErrorChan, config.TransportOptions)
	node.Executor = NewBlockExecutor(localRPC, config.ExecutorOptions)

	node.Inventory, err = inventory.NewManager(node.Transport, node.Executor, chain.DefaultCodec, config.InventoryOptions, metrics)
	if err != nil {
		node.Host.Close()
		return nil, err
	}

	node.Protocol = NewInventoryProtocol(node.Host, node.Inventory, node.peerErrorChan, config.TransportOptions)

	if requestHandler != nil && config.NodeOptions.EnableLocalIngress {
		requestHandler.SetBroadcastHandler(BlockAcceptTopic, node.handleBlockBroadcast)
		requestHandler.SetBroadcastHandler(TransactionAcceptTopic, node.handleTransactionBroadcast)
	}

	return node, nil
}

func (n *MinchainP2PNode) handleBlockBroadcast(topic string, data []byte) {
	log.Debugf("Received broadcast on %s", topic)
	ctx, cancel := context.WithTimeout(context.Background(), n.Options.TransportOptions.HandleTimeout)
	defer cancel()

	id, res, err := n.Inventory.PublishBlock(ctx, data)
	if err != nil {
		log.Warnf("Unable to relay local block: %s", err)
		return
	}

	log.Infof("Relayed local block %s: %s", id, res)
}

func (n *MinchainP2PNode) handleTransactionBroadcast(topic string, data []byte) {
	log.Debugf("Received broadcast on %s", topic)
	ctx, cancel := context.WithTimeout(context.Background(), n.Options.TransportOptions.HandleTimeout)
	defer cancel()

	id, res, err := n.Inventory.PublishTransaction(ctx, data)
	if err != nil {
		log.Warnf("Unable to relay local transaction: %s", err)
		return
	}

	log.Debugf("Relayed local transaction %s: %s", id, res)
}

// GetListenAddress returns the multiaddress on which the node is listening
func (n *MinchainP2PNode) GetListenAddress() multiaddr.Multiaddr {
	return n.Host.Addrs()[0]
}

// GetPeerAddress returns the multiaddress to which other peers should connect
func (n *MinchainP2PNode) GetPeerAddress() multiaddr.Multiaddr {
	hostAddr, _ := multiaddr.NewMultiaddr(fmt.Sprintf("/p2p/%s", n.Host.ID()))
	return n.GetListenAddress().Encapsulate(hostAddr)
}

// Start starts background processes
func (n *MinchainP2PNode) Start(ctx context.Context) {
	n.ConnectionManager.Start(ctx)
	n.Executor.Start(ctx)
	n.Protocol.Start(ctx)
}

// Close closes the node
func (n *MinchainP2PNode) Close() error {
	if err := n.Host.Close(); err != nil {
		return err
	}

	return nil
}
