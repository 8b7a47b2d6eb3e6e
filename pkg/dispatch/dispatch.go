// Package dispatch runs callback-driven asynchronous operations to completion
// on the calling goroutine.
//
// An operation started with Run receives a Loop. Work that finishes on other
// goroutines hands its continuation back with Post; continuations run on the
// goroutine that called Run, one at a time and in the order they were posted.
// The operation ends by calling Complete, which is itself queued behind
// everything posted before it.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"src.xs.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[dispatch] ")

// ErrClosed is returned by Post after the loop has finished.
var ErrClosed = errors.New("dispatch loop is closed")

// Loop is a single-goroutine dispatch loop.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}

	finished bool
	err      error
}

type loopKey struct{}

// FromContext returns the loop an operation runs in.
func FromContext(ctx context.Context) (*Loop, bool) {
	l, ok := ctx.Value(loopKey{}).(*Loop)
	return l, ok
}

// Run starts op on the calling goroutine and then runs the continuations it
// posts until it completes. It returns the error op completed with, or the
// error of ctx if ctx is done first. The loop is closed when Run returns,
// even if a continuation panics.
func Run(ctx context.Context, op func(ctx context.Context, l *Loop)) error {
	l := &Loop{wake: make(chan struct{}, 1)}
	defer l.close()
	op(context.WithValue(ctx, loopKey{}, l), l)
	for !l.finished {
		f, ok := l.next()
		if ok {
			f()
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return l.err
}

// Post queues a continuation. It is safe to call from any goroutine.
func (l *Loop) Post(f func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		logger.Println("continuation posted to a closed loop")
		return ErrClosed
	}
	l.queue = append(l.queue, f)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Complete queues the end of the operation. Continuations posted before it
// still run; later ones do not.
func (l *Loop) Complete(err error) error {
	return l.Post(func() {
		l.finished = true
		l.err = err
	})
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	f := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return f, true
}

func (l *Loop) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.queue = nil
}
