package testhelpers

import (
	"sync"
	"time"
)

// StepClock returns a clock that starts at start and advances by step on
// every call. It is safe for concurrent use.
func StepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}
