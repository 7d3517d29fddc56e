package repositories

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := NewKeyedMutex()

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		guard   sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(7)
			defer unlock()

			guard.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			guard.Unlock()

			guard.Lock()
			inside--
			guard.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, k.held(), "locks are released once idle")
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := NewKeyedMutex()
	unlockA := k.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock(2)
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
	assert.Equal(t, 0, k.held())
}
