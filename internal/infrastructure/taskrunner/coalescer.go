package taskrunner

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Coalescer merges bursts of same-key tasks into one run of the latest task.
// With a delay the run waits for the burst to quiet down first.
type Coalescer struct {
	mu        sync.Mutex
	pending   map[string]bool
	callbacks map[string]func()
	post      func(func()) bool
	clock     clockwork.Clock
	delay     time.Duration
	destroyed bool
}

// NewCoalescer creates a coalescer that hands merged tasks to post, usually a Loop's Post.
func NewCoalescer(post func(func()) bool, clock clockwork.Clock, delay time.Duration) *Coalescer {
	if post == nil {
		panic("taskrunner.NewCoalescer: post function cannot be nil")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Coalescer{
		pending:   make(map[string]bool),
		callbacks: make(map[string]func()),
		post:      post,
		clock:     clock,
		delay:     delay,
	}
}

// SetDelay changes the quiet period for bursts scheduled from now on.
func (c *Coalescer) SetDelay(delay time.Duration) {
	c.mu.Lock()
	c.delay = delay
	c.mu.Unlock()
}

// Post schedules fn under key. If a task with the same key is already waiting,
// fn replaces it and nothing new is scheduled.
func (c *Coalescer) Post(key string, fn func()) {
	if fn == nil || key == "" {
		return
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.callbacks[key] = fn
	if c.pending[key] {
		c.mu.Unlock()
		return
	}
	c.pending[key] = true
	delay := c.delay
	c.mu.Unlock()

	if delay <= 0 {
		c.schedule(key)
		return
	}
	c.clock.AfterFunc(delay, func() { c.schedule(key) })
}

// Pending reports whether a task for key is waiting to run.
func (c *Coalescer) Pending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[key]
}

// Cancel drops the waiting task for key, if any.
func (c *Coalescer) Cancel(key string) {
	c.mu.Lock()
	delete(c.pending, key)
	delete(c.callbacks, key)
	c.mu.Unlock()
}

// Destroy drops every waiting task.
func (c *Coalescer) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.pending = map[string]bool{}
	c.callbacks = map[string]func(){}
	c.mu.Unlock()
}

func (c *Coalescer) schedule(key string) {
	ok := c.post(func() {
		c.mu.Lock()
		if c.destroyed {
			c.mu.Unlock()
			return
		}
		fn := c.callbacks[key]
		delete(c.pending, key)
		delete(c.callbacks, key)
		c.mu.Unlock()

		if fn != nil {
			fn()
		}
	})
	if !ok {
		c.mu.Lock()
		delete(c.pending, key)
		delete(c.callbacks, key)
		c.mu.Unlock()
	}
}
