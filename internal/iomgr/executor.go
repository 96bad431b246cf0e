package iomgr

import (
	"log/slog"
	"sync"

	"github.com/eapache/queue"
)

// Executor runs posted functions on a fixed set of goroutines in FIFO order.
// The queue is unbounded so posting never blocks, which matters when a
// completion handler running on one of our own goroutines posts follow-up work.
type Executor struct {
	log 	*slog.Logger
	mu		sync.Mutex
	cond	*sync.Cond
	q		*queue.Queue
	closed	bool
	wg		sync.WaitGroup
}

func NewExecutor(name string, workers int) *Executor {
	e := &Executor{
		log: 	slog.With("src", "Executor", "name", name),
		q: 		queue.New(),
	}
	e.cond = sync.NewCond(&e.mu)

	for range max(workers, 1) {
		e.wg.Add(1)
		go e.run()
	}
	return e
}

// Post queues fn. Fails with ErrClosed once Close has been called.
func (e *Executor) Post(fn func()) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.q.Add(fn)
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q.Length()
}

func (e *Executor) run() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		for e.q.Length() == 0 && !e.closed {
			e.cond.Wait()
		}
		if e.q.Length() == 0 {
			// closed and drained
			e.mu.Unlock()
			return
		}
		fn := e.q.Remove().(func())
		e.mu.Unlock()

		fn()
	}
}

// Close stops accepting work, runs everything already queued and waits for
// the workers to exit. Must not be called from a posted function.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	pending := e.q.Length()
	e.mu.Unlock()
	e.cond.Broadcast()

	e.log.Debug("draining", "pending", pending)
	e.wg.Wait()
}
