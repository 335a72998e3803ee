package history

import (
	"sync"
	"time"

	"github.com/KirkDiggler/dicetray/internal/models"
)

// tickClock returns a strictly increasing time on every call
type tickClock struct {
	mu   sync.Mutex
	next time.Time
}

func newTickClock(start time.Time) *tickClock {
	return &tickClock{next: start}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.next
	c.next = c.next.Add(time.Second)
	return now
}

// collector gathers rolls delivered by a change feed
type collector struct {
	ch chan *models.Roll
}

func newCollector() *collector {
	return &collector{ch: make(chan *models.Roll, 100)}
}

func (c *collector) handle(roll *models.Roll) {
	c.ch <- roll
}

// next waits for one delivered roll
func (c *collector) next(timeout time.Duration) *models.Roll {
	select {
	case roll := <-c.ch:
		return roll
	case <-time.After(timeout):
		return nil
	}
}
