package runloopthread

import (
	"fmt"
)

// logPanic logs a panic recovered from work, rate limited per panic value.
func (t *Thread) logPanic(perr *PanicError) {
	b := t.logger.Err()
	if !b.Enabled() {
		return
	}

	msg := fmt.Sprint(perr.Value)

	if next, ok := t.panicLimiter.Allow(msg); !ok {
		b.Release()
		t.logger.Trace().
			Str(`thread`, t.name).
			Time(`next`, next).
			Log(`suppressed panic log`)
		return
	}

	b.Str(`thread`, t.name).
		Str(`panic`, msg).
		Str(`stack`, perr.Stack).
		Log(`work panicked`)
}
