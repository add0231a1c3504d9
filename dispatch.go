package runloopthread

import (
	"context"

	"github.com/joeycumines/go-runloopthread/internal/runloop"
)

// workItem is a unit of submitted work. The result, if any, is captured by
// run itself (see CallContext). done is nil for async work.
type workItem struct {
	thread *Thread
	run    func()
	done   chan struct{}
	err    error // written before done is closed
}

// execute runs the item on the loop thread. If run calls runtime.Goexit,
// err is left as ErrGoexit, and waiters are still released.
func (w *workItem) execute() {
	w.err = ErrGoexit
	defer w.complete()
	w.err = w.thread.safeExecute(w.run)
}

// discard releases waiters of an item that will never run.
func (w *workItem) discard() {
	w.err = ErrWorkDiscarded
	w.complete()
}

func (w *workItem) complete() {
	if w.done != nil {
		close(w.done)
	}
}

// submit validates the state, and queues the item. Work is accepted until
// a stop is requested.
func (t *Thread) submit(w *workItem) error {
	t.gate.RLock()
	defer t.gate.RUnlock()

	if state := t.state.Load(); !state.acceptsWork() {
		return &NotRunningError{Thread: t.name, State: state}
	}

	if err := t.loop.Post(runloop.Task{Run: w.execute, Discard: w.discard}); err != nil {
		return &NotRunningError{Thread: t.name, State: t.state.Load()}
	}

	return nil
}

// Async submits fn to run on the loop thread, returning immediately.
//
// A panic in fn is recovered and logged. It fails with a [NotRunningError]
// if the thread is stopping or stopped.
func (t *Thread) Async(fn func()) error {
	if fn == nil {
		return &UsageError{Cause: ErrNilWork, Thread: t.name}
	}
	return t.submit(&workItem{thread: t, run: fn})
}

// Sync runs fn on the loop thread, blocking until it has completed. If
// called on the loop thread, fn runs inline.
//
// A panic in fn is returned as a [PanicError]. It fails with a
// [NotRunningError], without running fn, if the thread is stopping or
// stopped.
func (t *Thread) Sync(fn func()) error {
	if fn == nil {
		return &UsageError{Cause: ErrNilWork, Thread: t.name}
	}
	_, err := CallContext(context.Background(), t, func() struct{} {
		fn()
		return struct{}{}
	})
	return err
}

// Call runs fn on the loop thread, blocking until it has completed, and
// returns its result. All side effects of fn are visible to the caller
// once Call returns. See also [Thread.Sync].
//
// Call may be used prior to [Thread.Start], in which case it blocks until
// the thread is started, and fn is run.
func Call[T any](t *Thread, fn func() T) (T, error) {
	return CallContext(context.Background(), t, fn)
}

// CallContext is [Call], but stops waiting if ctx is done, returning
// ctx.Err(). Note that fn still runs, if it was accepted.
func CallContext[T any](ctx context.Context, t *Thread, fn func() T) (result T, err error) {
	if fn == nil {
		return result, &UsageError{Cause: ErrNilWork, Thread: t.name}
	}

	if t.IsCurrentThread() {
		// waiting would deadlock, the loop can only run one item at a time
		if state := t.state.Load(); state != StateRunning {
			return result, &NotRunningError{Thread: t.name, State: state}
		}
		if err := t.safeExecute(func() { result = fn() }); err != nil {
			var zero T
			return zero, err
		}
		return result, nil
	}

	var value T
	w := &workItem{
		thread: t,
		run:    func() { value = fn() },
		done:   make(chan struct{}),
	}

	if err := t.submit(w); err != nil {
		return result, err
	}

	select {
	case <-w.done:
		if w.err != nil {
			return result, w.err
		}
		return value, nil
	case <-ctx.Done():
		return result, ctx.Err()
	}
}

// AsyncThen submits fn to run on the loop thread, returning immediately.
// Once fn completes, handler is called with its result, also on the loop
// thread, strictly before any later-submitted work begins. No other
// assumptions should be made about the context handler runs in.
//
// If fn panics, handler is not called.
func AsyncThen[T any](t *Thread, fn func() T, handler func(T)) error {
	if fn == nil || handler == nil {
		return &UsageError{Cause: ErrNilWork, Thread: t.name}
	}
	return t.submit(&workItem{
		thread: t,
		run: func() {
			handler(fn())
		},
	})
}
