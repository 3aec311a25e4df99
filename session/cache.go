package session

import (
	"sync"
	"time"
)

// staleAfter is how long an undelivered reply is retained before a sweep
// discards it.
const staleAfter = 30 * time.Second

// sweepThreshold is the number of distinct context queues the cache may hold
// before ingest triggers a sweep pass: a sweep runs once it holds more.
const sweepThreshold = 64

// Entry is one inbound reply, queued by context id until an awaiter claims
// it or a sweep discards it as abandoned.
type Entry struct {
	Preamble Preamble
	Payload  []byte
	Enqueued time.Time
}

// broadcaster lets many waiters block on "something changed" without each
// holding its own channel: Wait captures the current generation channel,
// Signal closes it and starts a new one. Mirrors the single-writer,
// many-reader shape of a sync.Cond without the lock-reacquire dance.
type broadcaster struct {
	mu sync.Mutex
	ch chan struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{ch: make(chan struct{})}
}

func (b *broadcaster) wait() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ch
}

func (b *broadcaster) signal() {
	b.mu.Lock()
	old := b.ch
	b.ch = make(chan struct{})
	b.mu.Unlock()
	close(old)
}

// replyCache is the per-session reply cache: {ctx -> queue}, behind a mutex
// held only across short critical sections (insert, read-and-remove,
// sweep).
type replyCache struct {
	mu     sync.Mutex
	queues map[uint32][]Entry
	bcast  *broadcaster
}

func newReplyCache() *replyCache {
	return &replyCache{
		queues: make(map[uint32][]Entry),
		bcast:  newBroadcaster(),
	}
}

// deposit appends an inbound entry to its context's queue and wakes every
// waiter. Only the reader task calls this.
func (c *replyCache) deposit(e Entry) (queueCount int) {
	c.mu.Lock()
	c.queues[e.Preamble.Context] = append(c.queues[e.Preamble.Context], e)
	n := len(c.queues)
	c.mu.Unlock()
	c.bcast.signal()
	return n
}

// take removes and returns the full queue for ctx, or (nil, false) if
// empty/absent.
func (c *replyCache) take(ctx uint32) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queues[ctx]
	if !ok || len(q) == 0 {
		return nil, false
	}
	delete(c.queues, ctx)
	return q, true
}

// sweep discards entries older than staleAfter and drops any queue that
// becomes empty as a result. Unrelated, fresh contexts are left untouched.
func (c *replyCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ctx, q := range c.queues {
		kept := q[:0]
		for _, e := range q {
			if now.Sub(e.Enqueued) < staleAfter {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(c.queues, ctx)
		} else {
			c.queues[ctx] = kept
		}
	}
}

func (c *replyCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queues)
}
