package hal

import (
	"sync"
	"time"
)

// hostTime is the frame clock. A fixed step advances it by exactly one
// tick per call to step, so headless runs are reproducible.
type hostTime struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
	real bool
}

func newHostTime() *hostTime {
	return &hostTime{real: true}
}

func newFixedTime(tick time.Duration) *hostTime {
	return &hostTime{now: time.Unix(0, 0), tick: tick}
}

func (t *hostTime) Now() time.Time {
	if t.real {
		return time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

func (t *hostTime) step(n uint64) {
	if t.real {
		return
	}
	t.mu.Lock()
	t.now = t.now.Add(time.Duration(n) * t.tick)
	t.mu.Unlock()
}
