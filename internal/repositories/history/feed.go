package history

import (
	"sync"

	"github.com/KirkDiggler/dicetray/internal/models"
)

// defaultFeedBuffer is how many undelivered rolls a subscriber may lag behind
const defaultFeedBuffer = 64

// feed fans stored rolls out to in-process subscribers. Each subscriber has
// its own queue and goroutine so a slow callback never blocks a write; when
// a queue is full the roll is dropped for that subscriber.
type feed struct {
	mu     sync.Mutex
	subs   map[int]*feedSubscription
	nextID int
	buffer int
	closed bool
}

// newFeed creates an empty feed
func newFeed(buffer int) *feed {
	if buffer <= 0 {
		buffer = defaultFeedBuffer
	}
	return &feed{
		subs:   make(map[int]*feedSubscription),
		buffer: buffer,
	}
}

// feedSubscription is one registered callback
type feedSubscription struct {
	id      int
	feed    *feed
	queue   chan *models.Roll
	done    chan struct{}
	once    sync.Once
	handler RollHandler
}

// Subscribe registers handler and starts its delivery goroutine
func (f *feed) Subscribe(handler RollHandler) (*feedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFeedClosed
	}

	sub := &feedSubscription{
		id:      f.nextID,
		feed:    f,
		queue:   make(chan *models.Roll, f.buffer),
		done:    make(chan struct{}),
		handler: handler,
	}
	f.nextID++
	f.subs[sub.id] = sub

	go sub.run()

	return sub, nil
}

// Publish queues roll for every subscriber without blocking
func (f *feed) Publish(roll *models.Roll) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		select {
		case sub.queue <- roll.Clone():
		default:
			// Subscriber is behind; it reconciles on its next reload
		}
	}
}

// Close stops every subscription
func (f *feed) Close() {
	f.mu.Lock()
	subs := make([]*feedSubscription, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	f.closed = true
	f.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
}

// Unsubscribe removes the subscription and stops its goroutine
func (s *feedSubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()

		close(s.done)
	})
	return nil
}

// run delivers queued rolls in publish order. No delivery starts after
// Unsubscribe, even with rolls still queued.
func (s *feedSubscription) run() {
	for {
		select {
		case roll := <-s.queue:
			select {
			case <-s.done:
				return
			default:
			}
			s.handler(roll)
		case <-s.done:
			return
		}
	}
}
