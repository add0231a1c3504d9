package runloopthread

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-runloopthread/internal/runloop"
	"github.com/joeycumines/logiface"
)

// Thread owns a single dedicated loop thread: a goroutine, locked to its own
// OS thread, that runs a persistent run loop, executing submitted work
// serially, in the order it was accepted.
//
// The thread is neither started nor stopped automatically. Callers must call
// [Thread.Start], then eventually [Thread.RequestStop] (or [Thread.Stop]).
// A stopped thread cannot be restarted.
//
// Instances must be initialized using [New].
type Thread struct { // betteralign:ignore
	_ [0]func()

	logger       *logiface.Logger[logiface.Event]
	panicLimiter *catrate.Limiter

	state *fastState
	loop  *runloop.Loop
	done  chan struct{}

	name string

	// gate orders submissions (read lock) against Start, RequestStop and
	// Close (write lock), so nothing is queued behind the stop wake.
	gate sync.RWMutex

	// priorityMu serialises priority changes against the loop thread
	// publishing or clearing its OS thread id.
	priorityMu sync.Mutex
	priority   atomic.Uint64 // float64 bits
	osThreadID atomic.Int64

	loopGoroutineID atomic.Uint64

	// stopObserved is only accessed on the loop thread.
	stopObserved bool
}

// New creates a Thread in [StateInitialized]. No thread is started unless
// [WithStartThread] is provided.
func New(opts ...Option) (*Thread, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	loop, err := runloop.New()
	if err != nil {
		return nil, err
	}

	t := &Thread{
		logger: cfg.logger,
		state:  &fastState{},
		loop:   loop,
		done:   make(chan struct{}),
		name:   cfg.name,
	}
	t.priority.Store(math.Float64bits(cfg.priority))

	if len(cfg.panicLogRates) != 0 {
		t.panicLimiter = catrate.NewLimiter(cfg.panicLogRates)
	}

	if cfg.startThread {
		if err := t.Start(); err != nil {
			_ = t.Close()
			return nil, err
		}
	}

	return t, nil
}

// Name returns the thread's name.
func (t *Thread) Name() string {
	return t.name
}

// State returns the current lifecycle state.
func (t *Thread) State() LoopState {
	return t.state.Load()
}

// Done returns a channel that is closed once the thread reaches
// [StateStopped].
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// IsCurrentThread reports whether the caller is running on the loop thread.
func (t *Thread) IsCurrentThread() bool {
	id := t.loopGoroutineID.Load()
	if id == 0 {
		return false
	}
	return getGoroutineID() == id
}

// Start starts the loop thread, transitioning from [StateInitialized] to
// [StateRunning]. Any work submitted prior to Start runs first, in order.
//
// Calling Start more than once fails with a [UsageError] wrapping
// [ErrAlreadyStarted], and has no effect.
func (t *Thread) Start() error {
	t.gate.Lock()
	defer t.gate.Unlock()

	if !t.state.TryTransition(StateInitialized, StateRunning) {
		return &UsageError{Cause: ErrAlreadyStarted, Thread: t.name}
	}

	t.logger.Debug().
		Str(`thread`, t.name).
		Log(`starting run loop thread`)

	go t.run()

	return nil
}

// RequestStop asks the loop thread to stop, transitioning from
// [StateRunning] to [StateStopping], and wakes the loop, so an idle loop
// observes the request promptly. Work accepted before the request still
// runs. Termination is asynchronous, see [Thread.Done].
//
// RequestStop is idempotent, and a no-op unless the thread is running.
func (t *Thread) RequestStop() {
	t.gate.Lock()
	defer t.gate.Unlock()

	if !t.state.TryTransition(StateRunning, StateStopping) {
		return
	}

	t.logger.Debug().
		Str(`thread`, t.name).
		Log(`stopping run loop thread`)

	// the loop only closes after Stopped, so this can't fail
	if err := t.loop.Post(runloop.Task{Run: t.observeStop}); err != nil {
		t.logger.Err().
			Str(`thread`, t.name).
			Err(err).
			Log(`failed to wake run loop thread for stop`)
	}
}

// Stop calls [Thread.RequestStop], then waits for the thread to reach
// [StateStopped], or for ctx to be done.
//
// It fails with a [NotRunningError] if the thread was never started, and
// with a [UsageError] if called on the loop thread (the stop is still
// requested).
func (t *Thread) Stop(ctx context.Context) error {
	if t.IsCurrentThread() {
		t.RequestStop()
		return &UsageError{Cause: ErrStopFromLoopThread, Thread: t.name}
	}

	t.RequestStop()

	if state := t.state.Load(); state == StateInitialized {
		return &NotRunningError{Thread: t.name, State: state}
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases a thread that is not live. A never-started thread is moved
// directly to [StateStopped], any queued work is discarded, and blocking
// callers waiting on it fail with [ErrWorkDiscarded]. Closing a stopped
// thread is a no-op.
//
// Closing a thread that is running or stopping would orphan a live OS
// thread, which is treated as a fatal internal consistency violation: Close
// panics.
func (t *Thread) Close() error {
	t.gate.Lock()

	switch state := t.state.Load(); state {
	case StateInitialized:
		if !t.state.TryTransition(StateInitialized, StateStopped) {
			t.gate.Unlock()
			panic(fmt.Sprintf(`runloopthread: lost race closing thread %q`, t.name))
		}
		t.gate.Unlock()
		err := t.loop.Close()
		close(t.done)
		return err

	case StateStopped:
		t.gate.Unlock()
		return nil

	default:
		t.gate.Unlock()
		panic(fmt.Sprintf(`runloopthread: close of thread %q whose state is %s`, t.name, state))
	}
}

// observeStop is the stop wake item, run on the loop thread.
func (t *Thread) observeStop() {
	t.stopObserved = true
	t.logger.Trace().
		Str(`thread`, t.name).
		Log(`run loop thread observed stop`)
}
