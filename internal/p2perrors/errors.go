package p2perrors

import (
	"errors"
)

var (
	// ErrDeserialization represents any sort of error deserializing a block, transaction or message
	ErrDeserialization = errors.New("error during deserialization")

	// ErrSerialization represents any sort of error serializing a block, transaction or message
	ErrSerialization = errors.New("error during serialization")

	// ErrProtocolViolation represents a message that breaks the inventory protocol rules
	ErrProtocolViolation = errors.New("inventory protocol violation")

	// ErrUnexpectedPayload is when an advertise or request message carries data
	ErrUnexpectedPayload = errors.New("unexpected payload on a message without body")

	// ErrBodyTooLarge is when a body message exceeds the maximum body size
	ErrBodyTooLarge = errors.New("body exceeds maximum size")

	// ErrMissingCollaborator is when a component is constructed without a required dependency
	ErrMissingCollaborator = errors.New("required collaborator is missing")

	// ErrLocalRPC represents an error occurred during a local rpc
	ErrLocalRPC = errors.New("local RPC error")

	// ErrLocalRPCTimeout represents a local rpc timed out
	ErrLocalRPCTimeout = errors.New("local RPC request timed out")

	// ErrPeerRPC represents an error occurred while sending to a peer
	ErrPeerRPC = errors.New("peer RPC error")

	// ErrPeerRPCTimeout represents a send to a peer timed out
	ErrPeerRPCTimeout = errors.New("peer RPC request timed out")

	// ErrBlockExecution represents the execution engine rejecting a block
	ErrBlockExecution = errors.New("block execution failed")
)
