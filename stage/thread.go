package stage

import (
	"errors"
	"runtime"
	"sync"
)

// ErrThreadClosed is returned by Run after Close.
var ErrThreadClosed = errors.New("stage: operation thread closed")

type operation struct {
	fn   func()
	done chan struct{}
}

// OperationThread runs operations in order on one locked OS thread. Some
// window systems only allow a context to be current on the thread that
// created it; such contexts hand out an OperationThread and every draw on
// them is run through it.
type OperationThread struct {
	queue chan operation
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewOperationThread starts the thread. init, if not nil, runs first on the
// new thread, typically to create and make current a context.
func NewOperationThread(init func()) *OperationThread {
	t := &OperationThread{
		queue: make(chan operation),
		quit:  make(chan struct{}),
	}
	t.wg.Add(1)
	go t.loop(init)
	return t
}

func (t *OperationThread) loop(init func()) {
	defer t.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if init != nil {
		init()
	}
	for {
		select {
		case <-t.quit:
			return
		case op := <-t.queue:
			op.fn()
			close(op.done)
		}
	}
}

// Run queues fn and blocks until it has run.
func (t *OperationThread) Run(fn func()) error {
	op := operation{fn: fn, done: make(chan struct{})}
	select {
	case <-t.quit:
		return ErrThreadClosed
	case t.queue <- op:
	}
	<-op.done
	return nil
}

// Close stops the thread after the running operation finishes. Queued
// callers blocked in Run get ErrThreadClosed.
func (t *OperationThread) Close() {
	t.once.Do(func() { close(t.quit) })
	t.wg.Wait()
}
