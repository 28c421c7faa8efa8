package options

import "time"

const (
	sendTimeoutDefault   = time.Second * 6
	maxConcurrentDefault = 32
	handleTimeoutDefault = time.Second * 30
)

// TransportOptions are options for the libp2p inventory transport
type TransportOptions struct {
	// Upper bound on opening a stream and writing one message to a peer
	SendTimeout time.Duration

	// Number of peers a broadcast sends to at the same time
	MaxConcurrentSends int

	// Upper bound on handling a single inbound message
	HandleTimeout time.Duration
}

// NewTransportOptions returns default initialized TransportOptions
func NewTransportOptions() *TransportOptions {
	return &TransportOptions{
		SendTimeout:        sendTimeoutDefault,
		MaxConcurrentSends: maxConcurrentDefault,
		HandleTimeout:      handleTimeoutDefault,
	}
}
