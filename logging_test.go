package runloopthread

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_Lifecycle(t *testing.T) {
	sink := &testLogSink{}
	thread, err := New(WithName("logged"), WithLogger(sink.logger()))
	require.NoError(t, err)

	require.NoError(t, thread.Start())
	require.NoError(t, thread.Stop(context.Background()))
	require.NoError(t, thread.Close())

	assert.Equal(t, []string{
		`starting run loop thread`,
		`stopping run loop thread`,
		`run loop thread observed stop`,
		`run loop thread stopped`,
	}, sink.messages())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, e := range sink.events {
		assert.Equal(t, "logged", e.fields[`thread`], "message %q", e.msg)
	}
}

func TestLogging_Panic(t *testing.T) {
	sink := &testLogSink{}
	thread := newStartedThread(t, WithLogger(sink.logger()))

	require.Error(t, thread.Sync(func() { panic("boom") }))
	require.Equal(t, 1, sink.count(`work panicked`))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, e := range sink.events {
		if e.msg != `work panicked` {
			continue
		}
		assert.Equal(t, "boom", e.fields[`panic`])
		assert.NotEmpty(t, e.fields[`stack`])
	}
}

// TestLogging_PanicRateLimited verifies repeated panics with the same value
// are logged once per window, while distinct values are not limited by
// each other.
func TestLogging_PanicRateLimited(t *testing.T) {
	sink := &testLogSink{}
	thread := newStartedThread(t,
		WithLogger(sink.logger()),
		WithPanicLogRates(map[time.Duration]int{time.Minute: 1}),
	)

	for i := 0; i < 5; i++ {
		require.NoError(t, thread.Async(func() { panic("repeated") }))
	}
	require.NoError(t, thread.Async(func() { panic("other") }))
	require.NoError(t, thread.Sync(func() {}))

	assert.Equal(t, 2, sink.count(`work panicked`))
	assert.Equal(t, 4, sink.count(`suppressed panic log`))
}

// TestLogging_NilLogger verifies a thread without a logger is silent, and
// otherwise unaffected.
func TestLogging_NilLogger(t *testing.T) {
	thread := newStartedThread(t)
	assert.Nil(t, thread.logger)

	err := thread.Sync(func() { panic("quiet") })
	var perr *PanicError
	require.ErrorAs(t, err, &perr)
}
