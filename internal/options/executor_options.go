package options

import "time"

const (
	executionTimeoutDefault = time.Second * 6
	executionJobsDefault    = 4
	maxPendingBlocksDefault = 1024
)

// ExecutorOptions are options for handing blocks to the execution engine
type ExecutorOptions struct {
	ExecutionTimeout time.Duration
	ExecutionJobs    int

	// Blocks waiting for an execution job. Blocks beyond this are dropped.
	MaxPendingBlocks int
}

// NewExecutorOptions returns default initialized ExecutorOptions
func NewExecutorOptions() *ExecutorOptions {
	return &ExecutorOptions{
		ExecutionTimeout: executionTimeoutDefault,
		ExecutionJobs:    executionJobsDefault,
		MaxPendingBlocks: maxPendingBlocksDefault,
	}
}
