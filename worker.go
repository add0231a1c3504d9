package runloopthread

import (
	"fmt"
	"runtime"

	"github.com/joeycumines/go-runloopthread/internal/runloop"
)

// run is the body of the loop thread.
func (t *Thread) run() {
	// The OS thread is deliberately never unlocked: it exits with this
	// goroutine, rather than returning to the scheduler with a modified
	// priority.
	runtime.LockOSThread()

	t.loopGoroutineID.Store(getGoroutineID())
	t.attachOSThread()

	src := t.loop.AddSource()

	defer t.finish(src)

	for !t.stopObserved {
		if _, err := t.loop.RunOnce(t.isStopObserved); err != nil {
			t.logger.Crit().
				Str(`thread`, t.name).
				Err(err).
				Log(`run loop failed: terminating thread`)
			return
		}
	}
}

func (t *Thread) isStopObserved() bool {
	return t.stopObserved
}

// finish performs the final Stopping → Stopped transition, on the loop
// thread. If the loop exited without observing a stop (run loop failure, or
// runtime.Goexit from work), the thread is first moved to Stopping.
func (t *Thread) finish(src *runloop.Source) {
	src.Remove()

	if !t.stopObserved {
		t.gate.Lock()
		abnormal := t.state.TryTransition(StateRunning, StateStopping)
		t.gate.Unlock()
		if abnormal {
			t.logger.Err().
				Str(`thread`, t.name).
				Log(`run loop thread exited without a stop request`)
		}
	}

	t.detachOSThread()
	t.loopGoroutineID.Store(0)

	if !t.state.TryTransition(StateStopping, StateStopped) {
		panic(fmt.Sprintf(`runloopthread: invalid state %s when ending loop thread %q`, t.state.Load(), t.name))
	}

	// anything left (only possible on abnormal exit) is discarded
	if err := t.loop.Close(); err != nil {
		t.logger.Warning().
			Str(`thread`, t.name).
			Err(err).
			Log(`failed to release run loop`)
	}

	t.logger.Debug().
		Str(`thread`, t.name).
		Log(`run loop thread stopped`)

	close(t.done)
}

// safeExecute runs fn with panic recovery, returning any panic as a
// *PanicError.
func (t *Thread) safeExecute(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := newPanicError(r)
			t.logPanic(perr)
			err = perr
		}
	}()
	fn()
	return nil
}
