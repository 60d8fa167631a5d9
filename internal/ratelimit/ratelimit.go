package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrStopped is returned by Execute after the limiter has been stopped.
var ErrStopped = errors.New("ratelimit: limiter stopped")

// queueCapacity bounds pending submissions; beyond it Execute blocks
// until the worker drains the backlog.
const queueCapacity = 256

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Limiter serializes tasks through a single worker goroutine with a
// minimum delay between consecutive task starts. Tasks run strictly in
// submission order; a failing task rejects only its own caller and the
// queue keeps draining. There is no retry and a submitted task cannot
// be withdrawn.
type Limiter struct {
	tasks chan *task
	pacer *rate.Limiter

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// New creates a started limiter enforcing minDelay between task starts.
func New(minDelay time.Duration) *Limiter {
	l := &Limiter{
		tasks: make(chan *task, queueCapacity),
		pacer: rate.NewLimiter(rate.Every(minDelay), 1),
	}
	l.wg.Add(1)
	go l.drain()
	return l
}

// Execute submits fn and blocks until it has run, returning fn's error.
func (l *Limiter) Execute(ctx context.Context, fn func(context.Context) error) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	t := &task{ctx: ctx, fn: fn, done: make(chan error, 1)}
	// Enqueue under the lock so submission order is queue order.
	l.tasks <- t
	l.mu.Unlock()

	return <-t.done
}

// Stop shuts the worker down after the queue drains. Execute calls made
// after Stop fail with ErrStopped.
func (l *Limiter) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	close(l.tasks)
	l.mu.Unlock()

	l.wg.Wait()
}

func (l *Limiter) drain() {
	defer l.wg.Done()
	for t := range l.tasks {
		// Pace against the background context: a caller-cancelled task
		// must not stall the queue for everyone behind it.
		if err := l.pacer.Wait(context.Background()); err != nil {
			t.done <- err
			continue
		}
		t.done <- l.run(t)
	}
}

func (l *Limiter) run(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("ratelimit: task panic")
		}
	}()
	return t.fn(t.ctx)
}
