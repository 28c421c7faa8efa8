package options

// Config is the entire configuration file
type Config struct {
	NodeOptions              NodeOptions
	InventoryOptions         InventoryOptions
	TransportOptions         TransportOptions
	ConnectionManagerOptions ConnectionManagerOptions
	PeerErrorHandlerOptions  PeerErrorHandlerOptions
	ExecutorOptions          ExecutorOptions
}

// NewConfig creates a new Config
func NewConfig() *Config {
	config := Config{
		NodeOptions:              *NewNodeOptions(),
		InventoryOptions:         *NewInventoryOptions(),
		TransportOptions:         *NewTransportOptions(),
		ConnectionManagerOptions: *NewConnectionManagerOptions(),
		PeerErrorHandlerOptions:  *NewPeerErrorHandlerOptions(),
		ExecutorOptions:          *NewExecutorOptions(),
	}
	return &config
}
