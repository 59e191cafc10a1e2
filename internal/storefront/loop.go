package storefront

import (
	"context"
	"sync"
)

// eventLoop runs posted closures one at a time on a single goroutine, so
// state owned by the loop needs no locks.
type eventLoop struct {
	events    chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newEventLoop() *eventLoop {
	l := &eventLoop{
		events: make(chan func(), 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *eventLoop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-l.quit:
			return
		}
	}
}

// post queues fn without waiting for it; it reports false once the loop is closed.
func (l *eventLoop) post(fn func()) bool {
	select {
	case l.events <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// call runs fn on the loop and waits for it to finish.
func (l *eventLoop) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case l.events <- func() { fn(); close(finished) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrClosed
	}
}

// wait blocks on ch while honouring ctx and loop shutdown.
func (l *eventLoop) wait(ctx context.Context, ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrClosed
	}
}

func (l *eventLoop) close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
}
