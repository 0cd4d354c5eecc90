package generator

import (
	"sync"
	"time"
)

// Clock supplies generation timestamps in milliseconds
type Clock interface {
	NowMillis() int64
}

// MonotonicClock returns wall-clock milliseconds, bumped past the previous
// value whenever two calls land in the same millisecond. Class names and file
// names derived from it are unique within a run and sort in generation order.
type MonotonicClock struct {
	now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewMonotonicClock creates a clock backed by time.Now
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

// NowMillis returns the next timestamp
func (c *MonotonicClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixMilli()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}
