package chronevent

import "errors"

var (
	// ErrUnknownEventTag means field[3] of a row was not one of
	// "sw_start", "sw_stop", "sw_summary".
	ErrUnknownEventTag = errors.New("chronevent: unknown event tag")

	// ErrMalformedEvent means the row had fewer than 4 fields or a
	// non-integer timestamp, or its tag was recognized but its field
	// count or a numeric field didn't match that tag's shape.
	ErrMalformedEvent = errors.New("chronevent: malformed event")
)
