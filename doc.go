// Package runloopthread provides a dedicated background loop thread, that
// accepts work from any goroutine, executing it serially, in the order it
// was accepted.
//
// # Architecture
//
// A [Thread] owns exactly one goroutine, locked to its own OS thread, which
// hosts a run loop. The run loop sleeps in a platform-native poller while
// idle, and is woken whenever work is submitted:
//   - Linux: eventfd + epoll
//   - macOS: self-pipe + kqueue
//   - Other platforms: a channel
//
// A wake source is registered for the lifetime of the loop thread, so the
// run loop never exits merely because it is idle.
//
// # Lifecycle
//
//	StateInitialized → StateRunning → StateStopping → StateStopped
//
// Threads are neither started nor stopped automatically: call [Thread.Start],
// then [Thread.RequestStop] (non-blocking) or [Thread.Stop] (waits). A Thread
// is single-use. [Thread.Close] must only be called once the thread has
// stopped, or if it was never started.
//
// # Submitting Work
//
//   - [Thread.Sync], [Call], [CallContext]: block until the work has run,
//     returning its result
//   - [Thread.Async]: returns immediately
//   - [AsyncThen]: returns immediately, calling a handler with the result,
//     on the loop thread
//
// All of these are safe to call from any goroutine, including the loop
// thread (blocking calls run inline there). Work submitted before
// [Thread.Start] is queued, and runs once started. Work is rejected with a
// [NotRunningError] once a stop has been requested. Everything accepted
// before the stop request runs before the thread stops.
//
// # Usage
//
//	thread, err := runloopthread.New(runloopthread.WithName("worker"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := thread.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer thread.Stop(context.Background())
//
//	n, err := runloopthread.Call(thread, func() int {
//	    return 42
//	})
//
// # Error Types
//
//   - [UsageError]: contract violations, e.g. [ErrAlreadyStarted]
//   - [NotRunningError]: work submitted after a stop request, matches
//     [ErrNotRunning]
//   - [PanicError]: a panic recovered from work, returned to blocking callers
package runloopthread
