package inventory

import (
	"testing"

	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/p2perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEncoding(t *testing.T) {
	msg := &Message{Phase: Body, IsBlock: true, ObjectID: chain.DoubleSHA256([]byte("x")), Data: []byte{1, 2, 3}}

	data, err := msg.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)

	// A full body fits in a message
	msg.Data = make([]byte, MaximumBodySize)
	data, err = msg.Serialize()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), MaximumMessageSize)

	_, err = DeserializeMessage([]byte{0x83, 0x01})
	assert.ErrorIs(t, err, p2perrors.ErrDeserialization)

	assert.Equal(t, "advertise", Advertise.String())
	assert.Equal(t, "unknown(9)", Phase(9).String())
}
