// Package runloop implements the run-loop primitive hosted by a loop thread:
// a FIFO task queue, wake sources that keep an idle loop alive, and a
// platform-native sleep/wake mechanism (eventfd + epoll on Linux, a self-pipe
// + kqueue on Darwin, a channel elsewhere).
//
// # Thread Safety
//
//   - [Loop.Post], [Loop.AddSource], [Source.Signal] and [Loop.Len] are safe
//     to call from any goroutine.
//   - [Loop.RunOnce] must only be called by the single goroutine that owns
//     the loop.
//   - [Loop.Close] must not be called while [Loop.RunOnce] is in progress.
package runloop

import (
	"errors"
	"sync"
	"sync/atomic"
)

// iterationBudget caps the number of tasks run by a single RunOnce.
const iterationBudget = 1024

var (
	// ErrClosed is returned when operations are attempted on a closed Loop.
	ErrClosed = errors.New("runloop: loop closed")

	// ErrNoSources is returned by RunOnce when there is nothing to run and
	// no registered Source to wait on.
	ErrNoSources = errors.New("runloop: no wake sources registered")
)

// Task is a unit of work posted to a Loop.
type Task struct {
	// Run is executed on the loop goroutine.
	Run func()

	// Discard, if set, is called instead of Run when the Loop is closed
	// with the task still queued.
	Discard func()
}

func (t Task) run() {
	if t.Run != nil {
		t.Run()
	}
}

func (t Task) discard() {
	if t.Discard != nil {
		t.Discard()
	}
}

// Loop is a run-loop primitive. Instances must be initialized using New.
type Loop struct { // betteralign:ignore
	_ [0]func()

	poller *poller

	queue  chunkedQueue
	mu     sync.Mutex
	closed bool

	sources     atomic.Int32
	sleeping    atomic.Bool
	wakePending atomic.Uint32
}

// New creates a Loop, allocating its platform wake mechanism.
func New() (*Loop, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Loop{poller: p}, nil
}

// Post appends a task to the queue, waking the loop if it is sleeping.
func (l *Loop) Post(task Task) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	l.queue.Push(task)

	// must happen under the lock, so Close can't release the fds mid-write
	if l.sleeping.Load() {
		l.wakeLocked()
	}

	return nil
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Length()
}

// AddSource registers a wake source, which prevents RunOnce from returning
// ErrNoSources while the queue is empty. The returned Source should be
// removed once it is no longer needed.
func (l *Loop) AddSource() *Source {
	l.sources.Add(1)
	return &Source{loop: l}
}

// Sources returns the number of registered wake sources.
func (l *Loop) Sources() int {
	return int(l.sources.Load())
}

// RunOnce runs a single iteration of the loop.
//
// Queued tasks are run in FIFO order, up to an internal budget. If stop is
// non-nil, it is consulted after each task, and the iteration ends as soon
// as it reports true, leaving any remaining tasks queued.
//
// If no task was queued, RunOnce blocks until the loop is woken, by Post or
// [Source.Signal], then returns without running anything. If there are no
// registered sources, it returns ErrNoSources instead of blocking.
func (l *Loop) RunOnce(stop func() bool) (int, error) {
	var n int
	for n < iterationBudget {
		task, ok, err := l.pop()
		if err != nil {
			return n, err
		}
		if !ok {
			break
		}
		n++
		task.run()
		if stop != nil && stop() {
			return n, nil
		}
	}

	if n != 0 {
		return n, nil
	}

	if l.sources.Load() <= 0 {
		return 0, ErrNoSources
	}

	return 0, l.sleep()
}

// Close releases the wake mechanism, and discards any queued tasks, calling
// their Discard funcs. Subsequent calls are no-ops.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true

	var discarded []Task
	for {
		task, ok := l.queue.Pop()
		if !ok {
			break
		}
		discarded = append(discarded, task)
	}

	err := l.poller.close()
	l.mu.Unlock()

	for _, task := range discarded {
		task.discard()
	}

	return err
}

func (l *Loop) pop() (Task, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return Task{}, false, ErrClosed
	}
	task, ok := l.queue.Pop()
	return task, ok, nil
}

// sleep blocks in the poller until woken.
//
// The sleeping flag is published before the queue is re-checked, and Post
// reads it after pushing (both under mu), so a task pushed concurrently is
// either seen here or triggers a wake.
func (l *Loop) sleep() error {
	l.sleeping.Store(true)
	defer l.sleeping.Store(false)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	pending := l.queue.Length()
	l.mu.Unlock()
	if pending != 0 {
		return nil
	}

	if err := l.poller.wait(); err != nil {
		return err
	}
	l.wakePending.Store(0)
	return nil
}

// wakeLocked writes to the wake mechanism, deduplicating until the next
// drain. CALLER MUST HOLD mu.
func (l *Loop) wakeLocked() {
	if l.wakePending.CompareAndSwap(0, 1) {
		if err := l.poller.signal(); err != nil {
			l.wakePending.Store(0)
		}
	}
}

// Source is a wake source registered with a Loop.
type Source struct {
	loop    *Loop
	removed atomic.Bool
}

// Signal forces the loop through one extra iteration: if it is sleeping it
// is woken, otherwise its next sleep returns immediately.
func (s *Source) Signal() error {
	l := s.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.wakeLocked()
	return nil
}

// Remove unregisters the source. Subsequent calls are no-ops.
func (s *Source) Remove() {
	if s.removed.CompareAndSwap(false, true) {
		s.loop.sources.Add(-1)
	}
}
