package testutil

import (
	"fmt"
	"sync"
)

// Counter hands out history ids "<prefix>-1", "<prefix>-2", ...
//
// Unlike engine.SequenceGenerator, Counter is safe for concurrent use and
// can be reset, so one Counter can serve several runs of the same test
// with identical ids.
type Counter struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCounter creates a counter. The first call to Generate returns
// "<prefix>-1". An empty prefix means "t".
func NewCounter(prefix string) *Counter {
	if prefix == "" {
		prefix = "t"
	}
	return &Counter{prefix: prefix}
}

// Generate returns the next id. Implements engine.IDGenerator.
func (c *Counter) Generate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("%s-%d", c.prefix, c.n)
}

// Current returns how many ids have been handed out.
func (c *Counter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset starts the sequence over.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
