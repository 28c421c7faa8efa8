package options

import "time"

const (
	maxBackfillDepthDefault   = 10000
	maxPendingBackfillDefault = 4096
	backfillTimeoutDefault    = time.Minute
)

// InventoryOptions are options for the inventory Manager
type InventoryOptions struct {
	// Longest chain of missing ancestors requested from peers before backfill stops
	MaxBackfillDepth uint64

	// Number of outstanding ancestor requests tracked at once
	MaxPendingBackfill int

	// How long an ancestor request is considered outstanding
	BackfillTimeout time.Duration
}

// NewInventoryOptions returns default initialized InventoryOptions
func NewInventoryOptions() *InventoryOptions {
	return &InventoryOptions{
		MaxBackfillDepth:   maxBackfillDepthDefault,
		MaxPendingBackfill: maxPendingBackfillDefault,
		BackfillTimeout:    backfillTimeoutDefault,
	}
}
