//go:build !linux

package runloopthread

// currentThreadID returns a non-zero stand-in, as there's no per-thread
// priority control on this platform.
func currentThreadID() int64 {
	return int64(getGoroutineID())
}

// setThreadPriority records nothing: the priority is only reported via
// Thread.Priority on this platform.
func setThreadPriority(tid int64, priority float64) error {
	_, _ = tid, priority
	return nil
}
