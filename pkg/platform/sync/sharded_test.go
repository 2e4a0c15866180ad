package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("user-1")
			defer m.Unlock("user-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutex_EmptyKeyUsesShardZero(t *testing.T) {
	m := NewShardedMutex()
	assert.Equal(t, 0, m.shardFor(""))
}

func TestShardedMutex_StableShardSelection(t *testing.T) {
	m := NewShardedMutex()
	assert.Equal(t, m.shardFor("user-abc"), m.shardFor("user-abc"))
}
