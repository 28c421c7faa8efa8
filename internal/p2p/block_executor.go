package p2p

import (
	"context"

	log "github.com/koinos/koinos-log-golang"
	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/minchain/minchain-p2p/internal/options"
	"github.com/minchain/minchain-p2p/internal/rpc"
)

type blockExecutionRequest struct {
	raw      []byte
	previous chain.ObjectID
}

// BlockExecutor hands blocks to the local execution engine without waiting for the result
type BlockExecutor struct {
	rpc              rpc.LocalRPC
	executeBlockChan chan *blockExecutionRequest

	opts options.ExecutorOptions
}

// NewBlockExecutor creates a BlockExecutor
func NewBlockExecutor(rpc rpc.LocalRPC, opts options.ExecutorOptions) *BlockExecutor {
	return &BlockExecutor{
		rpc:              rpc,
		executeBlockChan: make(chan *blockExecutionRequest, opts.MaxPendingBlocks),
		opts:             opts,
	}
}

// ProcessBlock queues a block for execution. A block is dropped when the queue is full.
func (b *BlockExecutor) ProcessBlock(ctx context.Context, raw []byte, previous chain.ObjectID) {
	select {
	case b.executeBlockChan <- &blockExecutionRequest{raw: raw, previous: previous}:
	case <-ctx.Done():
	default:
		log.Warnf("Execution queue is full, dropping block with previous %s", previous)
	}
}

func (b *BlockExecutor) handleExecuteBlock(ctx context.Context, request *blockExecutionRequest) {
	executeCtx, cancel := context.WithTimeout(ctx, b.opts.ExecutionTimeout)
	defer cancel()

	if err := b.rpc.SubmitBlock(executeCtx, request.raw, request.previous); err != nil {
		log.Infof("Block with previous %s was not executed: %s", request.previous, err)
	}
}

// Start the execution jobs
func (b *BlockExecutor) Start(ctx context.Context) {
	for i := 0; i < b.opts.ExecutionJobs; i++ {
		go func() {
			for {
				select {
				case request := <-b.executeBlockChan:
					b.handleExecuteBlock(ctx, request)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}
