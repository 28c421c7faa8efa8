package options

import "time"

const (
	reconnectIntervalDefault = time.Second * 10
	connectTimeoutDefault    = time.Second * 30
)

// ConnectionManagerOptions are options for ConnectionManager
type ConnectionManagerOptions struct {
	ReconnectInterval time.Duration
	ConnectTimeout    time.Duration
}

// NewConnectionManagerOptions returns default initialized ConnectionManagerOptions
func NewConnectionManagerOptions() *ConnectionManagerOptions {
	return &ConnectionManagerOptions{
		ReconnectInterval: reconnectIntervalDefault,
		ConnectTimeout:    connectTimeoutDefault,
	}
}
