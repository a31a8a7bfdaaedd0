package mutation

import (
	"sync"

	"github.com/google/uuid"
)

// Clock is a Lamport clock issuing client timestamps for mutations.
// Timestamps are strictly increasing per device; Witness pulls the clock forward
// past timestamps seen in remote data so later local edits order after them.
type Clock struct {
	nodeID  string
	counter int64
	mu      sync.Mutex
}

// NewClock creates a clock for the given device. An empty nodeID gets a random UUID.
func NewClock(nodeID string) *Clock {
	if nodeID == "" {
		nodeID = uuid.New().String()
	}
	return &Clock{nodeID: nodeID}
}

// Tick advances the clock for a new local event and returns the new timestamp.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	return c.counter
}

// Witness merges a timestamp observed in remote data:
// counter = max(counter, remote) + 1.
func (c *Clock) Witness(remote int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.counter {
		c.counter = remote
	}
	c.counter++

	return c.counter
}

// Now returns the current value without advancing the clock.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counter
}

// Restore moves the clock forward to ts after a restart. It never moves backwards.
func (c *Clock) Restore(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts > c.counter {
		c.counter = ts
	}
}

// NodeID returns the device identifier.
func (c *Clock) NodeID() string {
	return c.nodeID
}
