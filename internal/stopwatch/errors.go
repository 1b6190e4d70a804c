package stopwatch

import "errors"

var (
	// ErrUnbalancedStopwatch means a thread's Start/Stop events were not
	// properly nested: either a Stop arrived with nothing on the stack, or
	// the stream ended with unmatched Starts still pending.
	ErrUnbalancedStopwatch = errors.New("stopwatch: unbalanced start/stop sequence")

	// ErrNegativeDuration means a Stop's timestamp preceded its matching
	// Start's timestamp.
	ErrNegativeDuration = errors.New("stopwatch: negative duration")
)
