package runloopthread

import (
	"errors"
	"fmt"
	"runtime"
)

// Standard errors.
var (
	// ErrAlreadyStarted is the cause of the [UsageError] returned when
	// [Thread.Start] is called more than once.
	ErrAlreadyStarted = errors.New("runloopthread: thread already started")

	// ErrNotRunning is matched by every [NotRunningError].
	ErrNotRunning = errors.New("runloopthread: thread is not running")

	// ErrInvalidPriority is the cause of the [UsageError] returned for a
	// priority outside [0, 1].
	ErrInvalidPriority = errors.New("runloopthread: priority out of range [0, 1]")

	// ErrNilWork is the cause of the [UsageError] returned when a nil func
	// is submitted.
	ErrNilWork = errors.New("runloopthread: nil work")

	// ErrStopFromLoopThread is the cause of the [UsageError] returned when
	// [Thread.Stop] is called on the loop thread, which cannot wait for
	// itself.
	ErrStopFromLoopThread = errors.New("runloopthread: cannot wait for stop from the loop thread")

	// ErrWorkDiscarded is returned to blocking callers whose work was still
	// queued when the thread's run loop was released.
	ErrWorkDiscarded = errors.New("runloopthread: work discarded before execution")

	// ErrGoexit is returned to blocking callers whose work called
	// [runtime.Goexit], which also terminates the loop thread.
	ErrGoexit = errors.New("runloopthread: work called runtime.Goexit")
)

// UsageError indicates a violation of the calling contract, e.g. starting a
// thread twice. It signals a defect in the caller, and is not retryable.
type UsageError struct {
	Cause  error
	Thread string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	msg := "runloopthread: usage error"
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Thread != "" {
		msg = fmt.Sprintf("%s (thread %q)", msg, e.Thread)
	}
	return msg
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *UsageError) Unwrap() error {
	return e.Cause
}

// NotRunningError indicates work was submitted to a thread that has stopped,
// or is stopping. It always matches [ErrNotRunning].
type NotRunningError struct {
	Thread string
	State  LoopState
}

// Error implements the error interface.
func (e *NotRunningError) Error() string {
	return fmt.Sprintf("runloopthread: thread %q is not running (state %s)", e.Thread, e.State)
}

// Unwrap returns [ErrNotRunning].
func (e *NotRunningError) Unwrap() error {
	return ErrNotRunning
}

// PanicError wraps a value recovered from a panic in submitted work,
// together with the stack of the loop thread at the point of the panic.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the loop thread's stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("runloopthread: work panicked: %v", e.Value)
}

// Unwrap returns the panic value, if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *PanicError {
	// runtime.Stack truncates gracefully if the buffer is too small
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
