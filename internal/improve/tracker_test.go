package improve

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_SingleInFlightPerKey(t *testing.T) {
	tracker := NewTracker()
	key := Key{ItemID: "e1", Field: "description"}

	release, ok := tracker.TryAcquire(key)
	assert.True(t, ok)
	assert.True(t, tracker.InFlight(key))

	_, ok = tracker.TryAcquire(key)
	assert.False(t, ok, "second acquire of the same key must fail")

	other, ok := tracker.TryAcquire(Key{ItemID: "e2", Field: "description"})
	assert.True(t, ok, "different items are independent")
	other()

	release()
	release()
	assert.False(t, tracker.InFlight(key))

	_, ok = tracker.TryAcquire(key)
	assert.True(t, ok)
}

func TestTracker_StaleReleaseDoesNotFreeNewHolder(t *testing.T) {
	tracker := NewTracker()
	key := Key{Field: "summary"}

	first, _ := tracker.TryAcquire(key)
	first()
	_, ok := tracker.TryAcquire(key)
	assert.True(t, ok)

	first()
	assert.True(t, tracker.InFlight(key))
}

func TestTracker_ConcurrentAcquire(t *testing.T) {
	tracker := NewTracker()
	key := Key{ItemID: "p1", Field: "description"}

	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := tracker.TryAcquire(key); ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

