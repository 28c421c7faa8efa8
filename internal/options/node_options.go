package options

// NodeOptions is options that affect the whole node
type NodeOptions struct {
	// Set to true to relay locally produced blocks and transactions received over AMQP
	EnableLocalIngress bool

	// Peers to initially connect
	InitialPeers []string
}

// NewNodeOptions creates a NodeOptions object which controls how p2p works
func NewNodeOptions() *NodeOptions {
	return &NodeOptions{
		EnableLocalIngress: true,
		InitialPeers:       make([]string, 0),
	}
}
