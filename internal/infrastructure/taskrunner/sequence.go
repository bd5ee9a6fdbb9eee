package taskrunner

import "sync"

// Sequence runs tasks one after another in submission order, off the caller's
// goroutine. Metadata writes of one window go through a single Sequence so they never
// race on the same file.
type Sequence struct {
	mu      sync.Mutex
	queue   []func()
	running bool
	closed  bool
	idle    *sync.Cond
}

// NewSequence creates an empty sequence.
func NewSequence() *Sequence {
	s := &Sequence{}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Post appends fn. It reports false after Close.
func (s *Sequence) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.queue = append(s.queue, fn)
	if !s.running {
		s.running = true
		go s.drain()
	}
	return true
}

// Wait blocks until every posted task has run.
func (s *Sequence) Wait() {
	s.mu.Lock()
	for s.running {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Close rejects further tasks. Already posted tasks still run.
func (s *Sequence) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Sequence) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}
