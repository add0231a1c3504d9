package runloopthread

import (
	"math"
)

// Priority returns the thread priority, in the range [0, 1].
func (t *Thread) Priority() float64 {
	return math.Float64frombits(t.priority.Load())
}

// SetPriority sets the thread priority, in the range [0, 1], where 0.5 is
// the OS default. It may be called before or after [Thread.Start]; if the
// loop thread is live, the change is applied to it immediately.
//
// Priority is best-effort: it's only applied on Linux, as a per-thread nice
// value, and failures (e.g. insufficient privilege to raise it) are logged,
// rather than returned. Values outside [0, 1] fail with a [UsageError].
func (t *Thread) SetPriority(priority float64) error {
	if !validPriority(priority) {
		return &UsageError{Cause: ErrInvalidPriority, Thread: t.name}
	}

	t.priorityMu.Lock()
	defer t.priorityMu.Unlock()

	t.priority.Store(math.Float64bits(priority))

	if tid := t.osThreadID.Load(); tid != 0 {
		t.applyPriority(tid, priority)
	}

	return nil
}

func validPriority(priority float64) bool {
	return priority >= 0 && priority <= 1
}

// niceValue maps a priority in [0, 1] onto the nice range [-20, 19].
func niceValue(priority float64) int {
	nice := int(math.Round((DefaultPriority - priority) * 40))
	return max(-20, min(19, nice))
}

// attachOSThread publishes the loop thread's id, and applies the current
// priority. Must be called on the (locked) loop thread.
func (t *Thread) attachOSThread() {
	t.priorityMu.Lock()
	defer t.priorityMu.Unlock()

	tid := currentThreadID()
	t.osThreadID.Store(tid)

	if priority := t.Priority(); priority != DefaultPriority {
		t.applyPriority(tid, priority)
	}
}

// detachOSThread clears the published id, so later priority changes can't
// target a recycled thread id.
func (t *Thread) detachOSThread() {
	t.priorityMu.Lock()
	defer t.priorityMu.Unlock()
	t.osThreadID.Store(0)
}

func (t *Thread) applyPriority(tid int64, priority float64) {
	if err := setThreadPriority(tid, priority); err != nil {
		t.logger.Warning().
			Str(`thread`, t.name).
			Float64(`priority`, priority).
			Int64(`tid`, tid).
			Err(err).
			Log(`failed to apply thread priority`)
	}
}
