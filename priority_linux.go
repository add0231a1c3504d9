//go:build linux

package runloopthread

import (
	"golang.org/x/sys/unix"
)

// currentThreadID returns the kernel id of the calling OS thread.
func currentThreadID() int64 {
	return int64(unix.Gettid())
}

// setThreadPriority sets the nice value of a single thread. With
// PRIO_PROCESS, Linux applies setpriority to the thread id, not the process.
func setThreadPriority(tid int64, priority float64) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(tid), niceValue(priority))
}
