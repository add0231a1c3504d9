package runloopthread

import (
	"sync/atomic"
)

// LoopState represents the lifecycle state of a [Thread].
//
// State Machine:
//
//	StateInitialized → StateRunning  [Start()]
//	StateRunning     → StateStopping [RequestStop()]
//	StateStopping    → StateStopped  [loop thread, after its loop exits]
//	StateInitialized → StateStopped  [Close() on a never-started thread]
//	StateStopped     → (terminal)
//
// Transitions only ever move forward, a Thread is single-use.
type LoopState uint64

const (
	// StateInitialized indicates the thread has been created but not started.
	StateInitialized LoopState = iota
	// StateRunning indicates the loop thread is live.
	StateRunning
	// StateStopping indicates a stop has been requested, but the loop thread
	// has not yet observed it.
	StateStopping
	// StateStopped indicates the loop thread has exited. It is now useless.
	StateStopped
)

// String returns a human-readable representation of the state.
func (s LoopState) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// acceptsWork reports whether submissions are accepted in this state.
// Work submitted prior to Start is queued, and runs once started.
func (s LoopState) acceptsWork() bool {
	return s == StateInitialized || s == StateRunning
}

// fastState is a lock-free state cell with cache-line padding.
type fastState struct { // betteralign:ignore
	_ [64]byte      //nolint:unused
	v atomic.Uint64 // LoopState
	_ [56]byte      //nolint:unused
}

// Load returns the current state atomically.
func (s *fastState) Load() LoopState {
	return LoopState(s.v.Load())
}

// TryTransition attempts to atomically transition from one state to
// another, returning true on success.
func (s *fastState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}
