package runloopthread

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
)

// newStartedThread creates and starts a thread, stopping and closing it at
// the end of the test.
func newStartedThread(t *testing.T, opts ...Option) *Thread {
	t.Helper()
	thread, err := New(opts...)
	require.NoError(t, err)
	require.NoError(t, thread.Start())
	t.Cleanup(func() { stopThread(t, thread) })
	return thread
}

// stopThread stops thread with a bounded wait, then closes it.
func stopThread(t *testing.T, thread *Thread) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if thread.State() == StateInitialized {
		require.NoError(t, thread.Close())
		return
	}
	require.NoError(t, thread.Stop(ctx))
	require.NoError(t, thread.Close())
}

// waitDone waits for the thread to reach StateStopped.
func waitDone(t *testing.T, thread *Thread, timeout time.Duration) {
	t.Helper()
	select {
	case <-thread.Done():
	case <-time.After(timeout):
		t.Fatalf("thread %q did not stop within %s (state %s)", thread.Name(), timeout, thread.State())
	}
}

// testEvent is a minimal logiface.Event implementation, recording fields.
type testEvent struct {
	logiface.UnimplementedEvent
	fields map[string]any
	msg    string
	level  logiface.Level
}

func (e *testEvent) Level() logiface.Level { return e.level }

func (e *testEvent) AddField(key string, val any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = val
}

func (e *testEvent) AddMessage(msg string) bool {
	e.msg = msg
	return true
}

// testLogSink captures log events, safe for concurrent use.
type testLogSink struct {
	events []testEvent
	mu     sync.Mutex
}

func (s *testLogSink) Write(event *testEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *testLogSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]string, len(s.events))
	for i, e := range s.events {
		msgs[i] = e.msg
	}
	return msgs
}

func (s *testLogSink) count(msg string) int {
	var n int
	for _, m := range s.messages() {
		if m == msg {
			n++
		}
	}
	return n
}

func (s *testLogSink) logger() *logiface.Logger[logiface.Event] {
	return logiface.New[*testEvent](
		logiface.WithEventFactory[*testEvent](logiface.NewEventFactoryFunc(func(level logiface.Level) *testEvent {
			return &testEvent{level: level}
		})),
		logiface.WithWriter[*testEvent](s),
		logiface.WithLevel[*testEvent](logiface.LevelTrace),
	).Logger()
}
