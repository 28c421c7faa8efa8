package inventory

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/minchain/minchain-p2p/internal/chain"
)

// backfillTracker remembers how deep in a chain of missing ancestors each
// outstanding ancestor request is. Entries expire, so an ancestor that was
// never delivered stops counting and may be requested again later.
type backfillTracker struct {
	pending *expirable.LRU[chain.ObjectID, uint64]
}

func newBackfillTracker(size int, ttl time.Duration) *backfillTracker {
	return &backfillTracker{
		pending: expirable.NewLRU[chain.ObjectID, uint64](size, nil, ttl),
	}
}

// track records an outstanding request for id at the given depth
func (b *backfillTracker) track(id chain.ObjectID, depth uint64) {
	if existing, ok := b.pending.Peek(id); ok && existing <= depth {
		return
	}

	b.pending.Add(id, depth)
}

// resolve returns the depth of an outstanding request for id, or 0 if id was
// not requested as an ancestor, and forgets it
func (b *backfillTracker) resolve(id chain.ObjectID) uint64 {
	depth, ok := b.pending.Peek(id)
	if !ok {
		return 0
	}

	b.pending.Remove(id)
	return depth
}

func (b *backfillTracker) len() int {
	return b.pending.Len()
}
