package inventory

import (
	"context"
	"fmt"

	log "github.com/koinos/koinos-log-golang"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
)

// localPeer is the origin of objects produced by this node
const localPeer peer.ID = ""

// Manager tracks which blocks and transactions the node has, fetches the ones
// it does not have and relays new ones to its peers
type Manager struct {
	Blocks       *Store[[]byte]
	Transactions *Store[*chain.Transaction]

	transport Transport
	executor  Executor
	codec     chain.Codec
	backfill  *backfillTracker
	metrics   *Metrics

	opts options.InventoryOptions
}

// NewManager creates a Manager. The transport, executor and codec are required.
func NewManager(transport Transport, executor Executor, codec chain.Codec, opts options.InventoryOptions, metrics *Metrics) (*Manager, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w, inventory manager needs a transport", p2perrors.ErrMissingCollaborator)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w, inventory manager needs an executor", p2perrors.ErrMissingCollaborator)
	}
	if codec == nil {
		return nil, fmt.Errorf("%w, inventory manager needs a codec", p2perrors.ErrMissingCollaborator)
	}
	if metrics == nil {
		metrics = NopMetrics()
	}

	return &Manager{
		Blocks:       NewStore[[]byte](),
		Transactions: NewStore[*chain.Transaction](),
		transport:    transport,
		executor:     executor,
		codec:        codec,
		backfill:     newBackfillTracker(opts.MaxPendingBackfill, opts.BackfillTimeout),
		metrics:      metrics,
		opts:         opts,
	}, nil
}

// HandleMessage handles one inventory message received from a peer.
// A returned error always wraps p2perrors.ErrProtocolViolation; messages that
// are dropped for any other reason are reported through the Result.
func (m *Manager) HandleMessage(ctx context.Context, msg *Message, pid peer.ID) (Result, error) {
	log.Debugf("Received %s from peer %v", msg, pid)
	m.metrics.Messages.With("phase", msg.Phase.String()).Add(1)

	var (
		res Result
		err error
	)

	switch msg.Phase {
	case Advertise:
		res, err = m.handleAdvertise(ctx, msg, pid)
	case Request:
		res, err = m.handleRequest(ctx, msg, pid)
	case Body:
		res, err = m.handleBody(ctx, msg, pid)
	default:
		res = ignored(ReasonUnknownPhase)
	}

	if err != nil {
		m.metrics.ProtocolViolations.With("phase", msg.Phase.String()).Add(1)
		return res, err
	}

	if res.IsIgnored() {
		log.Debugf("Ignored %s from peer %v: %s", msg, pid, res.Reason)
		m.metrics.IgnoredMessages.With("reason", res.Reason.String()).Add(1)
	}

	return res, nil
}

func (m *Manager) contains(isBlock bool, id chain.ObjectID) bool {
	if isBlock {
		return m.Blocks.Contains(id)
	}
	return m.Transactions.Contains(id)
}

func (m *Manager) handleAdvertise(ctx context.Context, msg *Message, pid peer.ID) (Result, error) {
	if msg.hasPayload() {
		return Result{}, fmt.Errorf("%w, %w, advertise carried %d bytes", p2perrors.ErrProtocolViolation, p2perrors.ErrUnexpectedPayload, len(msg.Data))
	}

	if m.contains(msg.IsBlock, msg.ObjectID) {
		return ignored(ReasonKnownObject), nil
	}

	m.send(ctx, &Message{Phase: Request, IsBlock: msg.IsBlock, ObjectID: msg.ObjectID}, pid)
	return handled, nil
}

func (m *Manager) handleRequest(ctx context.Context, msg *Message, pid peer.ID) (Result, error) {
	if msg.hasPayload() {
		return Result{}, fmt.Errorf("%w, %w, request carried %d bytes", p2perrors.ErrProtocolViolation, p2perrors.ErrUnexpectedPayload, len(msg.Data))
	}

	var data []byte
	if msg.IsBlock {
		block, ok := m.Blocks.Get(msg.ObjectID)
		if !ok {
			return ignored(ReasonUnknownObject), nil
		}
		data = block
	} else {
		trx, ok := m.Transactions.Get(msg.ObjectID)
		if !ok {
			return ignored(ReasonUnknownObject), nil
		}
		data = trx.Original
	}

	m.send(ctx, &Message{Phase: Body, IsBlock: msg.IsBlock, ObjectID: msg.ObjectID, Data: data}, pid)
	return handled, nil
}

func (m *Manager) handleBody(ctx context.Context, msg *Message, pid peer.ID) (Result, error) {
	if len(msg.Data) > MaximumBodySize {
		return Result{}, fmt.Errorf("%w, %w, body of %d bytes", p2perrors.ErrProtocolViolation, p2perrors.ErrBodyTooLarge, len(msg.Data))
	}

	var id chain.ObjectID
	if msg.IsBlock {
		var err error
		id, err = m.codec.ComputeBlockID(msg.Data)
		if err != nil {
			return ignored(ReasonUndecodable), nil
		}
	} else {
		id = m.codec.ComputeTransactionID(msg.Data)
	}

	if id != msg.ObjectID {
		return ignored(ReasonHashMismatch), nil
	}

	if msg.IsBlock {
		return m.acceptBlock(ctx, id, msg.Data, pid), nil
	}
	return m.acceptTransaction(ctx, id, msg.Data, pid), nil
}

// acceptBlock stores a block whose id has been verified, backfills its parent,
// executes it and advertises it to every peer but the origin
func (m *Manager) acceptBlock(ctx context.Context, id chain.ObjectID, data []byte, pid peer.ID) Result {
	if !m.Blocks.InsertIfAbsent(id, data) {
		return ignored(ReasonDuplicate)
	}
	m.metrics.Blocks.Set(float64(m.Blocks.Len()))
	depth := m.backfill.resolve(id)

	previous, err := m.codec.ExtractPreviousBlockID(data)
	if err != nil {
		log.Warnf("Stored block %s without a readable previous block: %s", id, err)
	} else {
		// The zero id is the parent of a genesis block and is never requested
		if pid != localPeer && !previous.IsZero() && !m.Blocks.Contains(previous) {
			m.requestAncestor(ctx, previous, depth+1, pid)
		}

		// Blocks published locally come from the execution engine
		if pid != localPeer {
			m.executor.ProcessBlock(ctx, data, previous)
		}
	}

	m.advertise(ctx, true, id, pid)
	return handled
}

func (m *Manager) requestAncestor(ctx context.Context, previous chain.ObjectID, depth uint64, pid peer.ID) {
	if depth > m.opts.MaxBackfillDepth {
		log.Infof("Not requesting ancestor block %s from peer %v, backfill depth %d exceeds %d", previous, pid, depth, m.opts.MaxBackfillDepth)
		m.metrics.BackfillLimitHits.Add(1)
		return
	}

	m.backfill.track(previous, depth)
	m.metrics.AncestorRequests.Add(1)
	m.send(ctx, &Message{Phase: Request, IsBlock: true, ObjectID: previous}, pid)
}

// acceptTransaction stores a transaction whose id has been verified and
// advertises it to every peer but the origin
func (m *Manager) acceptTransaction(ctx context.Context, id chain.ObjectID, data []byte, pid peer.ID) Result {
	if m.Transactions.Contains(id) {
		return ignored(ReasonDuplicate)
	}

	trx, err := m.codec.DeserializeTransaction(data)
	if err != nil {
		return ignored(ReasonUndecodable)
	}

	// Coinbase transactions are only valid inside a block
	if trx.IsCoinbase() {
		return ignored(ReasonCoinbase)
	}

	if trx.Original == nil {
		trx.Original = data
	}

	if !m.Transactions.InsertIfAbsent(id, trx) {
		return ignored(ReasonDuplicate)
	}
	m.metrics.Transactions.Set(float64(m.Transactions.Len()))

	m.advertise(ctx, false, id, pid)
	return handled
}

// PublishBlock adds a block produced by this node and advertises it to every peer
func (m *Manager) PublishBlock(ctx context.Context, raw []byte) (chain.ObjectID, Result, error) {
	if len(raw) > MaximumBodySize {
		return chain.ObjectID{}, Result{}, fmt.Errorf("%w, block of %d bytes", p2perrors.ErrBodyTooLarge, len(raw))
	}

	id, err := m.codec.ComputeBlockID(raw)
	if err != nil {
		return chain.ObjectID{}, Result{}, err
	}

	return id, m.acceptBlock(ctx, id, raw, localPeer), nil
}

// PublishTransaction adds a transaction submitted to this node and advertises it to every peer
func (m *Manager) PublishTransaction(ctx context.Context, raw []byte) (chain.ObjectID, Result, error) {
	if len(raw) > MaximumBodySize {
		return chain.ObjectID{}, Result{}, fmt.Errorf("%w, transaction of %d bytes", p2perrors.ErrBodyTooLarge, len(raw))
	}

	id := m.codec.ComputeTransactionID(raw)
	return id, m.acceptTransaction(ctx, id, raw, localPeer), nil
}

func (m *Manager) send(ctx context.Context, msg *Message, pid peer.ID) {
	if err := m.transport.SendTo(ctx, msg, pid); err != nil {
		log.Debugf("Could not send %s to peer %v: %s", msg, pid, err)
	}
}

func (m *Manager) advertise(ctx context.Context, isBlock bool, id chain.ObjectID, origin peer.ID) {
	msg := &Message{Phase: Advertise, IsBlock: isBlock, ObjectID: id}
	kind := "transaction"
	if isBlock {
		kind = "block"
	}

	m.metrics.Broadcasts.With("kind", kind).Add(1)
	if err := m.transport.BroadcastExcept(ctx, msg, origin); err != nil {
		log.Debugf("Could not broadcast %s: %s", msg, err)
	}
}

// BlockCount returns the number of stored blocks
func (m *Manager) BlockCount() int {
	return m.Blocks.Len()
}

// TransactionCount returns the number of transactions in the memory pool
func (m *Manager) TransactionCount() int {
	return m.Transactions.Len()
}
