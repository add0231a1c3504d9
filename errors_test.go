package runloopthread

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageError(t *testing.T) {
	err := error(&UsageError{Cause: ErrAlreadyStarted, Thread: "t1"})
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, `runloopthread: thread already started (thread "t1")`, err.Error())

	var usageErr *UsageError
	assert.True(t, errors.As(err, &usageErr))
	assert.Equal(t, "t1", usageErr.Thread)

	assert.Equal(t, "runloopthread: usage error", (&UsageError{}).Error())
}

func TestNotRunningError(t *testing.T) {
	err := error(&NotRunningError{Thread: "t1", State: StateStopped})
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.NotErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, `runloopthread: thread "t1" is not running (state Stopped)`, err.Error())
}

func TestPanicError(t *testing.T) {
	err := newPanicError(io.EOF)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Stack, "goroutine")
	assert.Equal(t, "runloopthread: work panicked: EOF", err.Error())

	assert.NoError(t, (&PanicError{Value: "boom"}).Unwrap())
}
