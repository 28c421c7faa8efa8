package inventory

import (
	"sync"
	"testing"

	"github.com/minchain/minchain-p2p/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	store := NewStore[[]byte]()
	id := chain.DoubleSHA256([]byte("a"))

	assert.False(t, store.Contains(id))
	_, ok := store.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	require.True(t, store.InsertIfAbsent(id, []byte("first")))
	assert.True(t, store.Contains(id))

	// The first value wins
	assert.False(t, store.InsertIfAbsent(id, []byte("second")))
	value, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), value)
	assert.Equal(t, 1, store.Len())
}

func TestStoreConcurrentInsert(t *testing.T) {
	store := NewStore[int]()
	ids := make([]chain.ObjectID, 16)
	for i := range ids {
		ids[i] = chain.DoubleSHA256([]byte{byte(i)})
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted = make(map[chain.ObjectID]int)
	)

	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for _, id := range ids {
				if store.InsertIfAbsent(id, worker) {
					mu.Lock()
					inserted[id]++
					mu.Unlock()
				}
				store.Contains(id)
			}
		}(worker)
	}
	wg.Wait()

	assert.Equal(t, len(ids), store.Len())
	for _, id := range ids {
		assert.Equal(t, 1, inserted[id])
	}
}
