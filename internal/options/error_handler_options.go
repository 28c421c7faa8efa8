package options

import (
	"time"
)

const (
	errorScoreDecayHalflifeDefault = time.Minute * 10
	errorScoreThresholdDefault     = 100000

	unexpectedPayloadErrorScoreDefault = 25000
	bodyTooLargeErrorScoreDefault      = 50000
	deserializationErrorScoreDefault   = 5000
	serializationErrorScoreDefault     = 0
	peerRPCErrorScoreDefault           = 1000
	peerRPCTimeoutErrorScoreDefault    = 1000
	localRPCErrorScoreDefault          = 0
	localRPCTimeoutErrorScoreDefault   = 0
	unknownErrorScoreDefault           = deserializationErrorScoreDefault
)

// PeerErrorHandlerOptions are options for PeerErrorHandler
type PeerErrorHandlerOptions struct {
	ErrorScoreDecayHalflife time.Duration
	ErrorScoreThreshold     uint64

	UnexpectedPayloadErrorScore uint64
	BodyTooLargeErrorScore      uint64
	DeserializationErrorScore   uint64
	SerializationErrorScore     uint64
	PeerRPCErrorScore           uint64
	PeerRPCTimeoutErrorScore    uint64
	LocalRPCErrorScore          uint64
	LocalRPCTimeoutErrorScore   uint64
	UnknownErrorScore           uint64
}

// NewPeerErrorHandlerOptions returns default initialized PeerErrorHandlerOptions
func NewPeerErrorHandlerOptions() *PeerErrorHandlerOptions {
	return &PeerErrorHandlerOptions{
		ErrorScoreDecayHalflife:     errorScoreDecayHalflifeDefault,
		ErrorScoreThreshold:         errorScoreThresholdDefault,
		UnexpectedPayloadErrorScore: unexpectedPayloadErrorScoreDefault,
		BodyTooLargeErrorScore:      bodyTooLargeErrorScoreDefault,
		DeserializationErrorScore:   deserializationErrorScoreDefault,
		SerializationErrorScore:     serializationErrorScoreDefault,
		PeerRPCErrorScore:           peerRPCErrorScoreDefault,
		PeerRPCTimeoutErrorScore:    peerRPCTimeoutErrorScoreDefault,
		LocalRPCErrorScore:          localRPCErrorScoreDefault,
		LocalRPCTimeoutErrorScore:   localRPCTimeoutErrorScoreDefault,
		UnknownErrorScore:           unknownErrorScoreDefault,
	}
}
