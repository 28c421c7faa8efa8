package inventory

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
)

const (
	// MaximumBodySize is the largest payload accepted on a body message, for blocks and transactions alike
	MaximumBodySize = 1024 * 1024

	// MaximumMessageSize bounds an encoded message, a full body plus framing
	MaximumMessageSize = MaximumBodySize + 4096
)

// Phase is the step of the inventory protocol a message belongs to
type Phase uint8

// The inventory protocol phases
const (
	// Advertise announces that the sender has an object
	Advertise Phase = iota

	// Request asks the receiver for an object's body
	Request

	// Body carries an object's raw bytes
	Body
)

func (p Phase) String() string {
	switch p {
	case Advertise:
		return "advertise"
	case Request:
		return "request"
	case Body:
		return "body"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// Message is the unit of exchange of the inventory protocol
type Message struct {
	_        struct{} `cbor:",toarray"`
	Phase    Phase
	IsBlock  bool
	ObjectID chain.ObjectID
	Data     []byte
}

func (m *Message) String() string {
	kind := "transaction"
	if m.IsBlock {
		kind = "block"
	}

	return fmt.Sprintf("%s %s %s (%d bytes)", m.Phase, kind, m.ObjectID, len(m.Data))
}

func (m *Message) hasPayload() bool {
	return len(m.Data) > 0
}

// Serialize encodes the message for the wire
func (m *Message) Serialize() ([]byte, error) {
	data, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w, %v", p2perrors.ErrSerialization, err)
	}

	return data, nil
}

// DeserializeMessage decodes a message received from the wire
func DeserializeMessage(data []byte) (*Message, error) {
	msg := &Message{}
	if err := cbor.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w, %v", p2perrors.ErrDeserialization, err)
	}

	return msg, nil
}
