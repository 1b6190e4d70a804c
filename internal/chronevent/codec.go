package chronevent

import (
	"fmt"
	"strconv"
)

const (
	tagStart   = "sw_start"
	tagStop    = "sw_stop"
	tagSummary = "sw_summary"

	dash = "-"
)

// Parse turns one CSV row (already split into fields) into a typed Event.
// It is pure: no I/O, no allocation beyond the returned event.
func Parse(fields []string) (Event, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrMalformedEvent, len(fields))
	}

	head := Header{
		ProcessID: fields[0],
		ThreadID:  fields[1],
	}
	ts, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q: %v", ErrMalformedEvent, fields[2], err)
	}
	head.Timestamp = ts

	switch fields[3] {
	case tagStart:
		return parseStart(head, fields)
	case tagStop:
		return parseStop(head, fields)
	case tagSummary:
		return parseSummary(head, fields)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventTag, fields[3])
	}
}

func parseStart(head Header, fields []string) (Event, error) {
	if len(fields) != 7 {
		return nil, fmt.Errorf("%w: sw_start needs 7 fields, got %d", ErrMalformedEvent, len(fields))
	}
	label := optionalString(fields[5])
	index, err := optionalInt(fields[6])
	if err != nil {
		return nil, fmt.Errorf("%w: bad index %q: %v", ErrMalformedEvent, fields[6], err)
	}
	return StopwatchStart{
		Head:         head,
		FunctionName: fields[4],
		Label:        label,
		Index:        index,
	}, nil
}

func parseStop(head Header, fields []string) (Event, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: sw_stop needs 4 fields, got %d", ErrMalformedEvent, len(fields))
	}
	return StopwatchStop{Head: head}, nil
}

func parseSummary(head Header, fields []string) (Event, error) {
	if len(fields) != 13 {
		return nil, fmt.Errorf("%w: sw_summary needs 13 fields, got %d", ErrMalformedEvent, len(fields))
	}
	label := optionalString(fields[5])
	nums := make([]int64, 7)
	for i, f := range fields[6:13] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad numeric field %q: %v", ErrMalformedEvent, f, err)
		}
		nums[i] = v
	}
	return StopwatchSummary{
		Head:                      head,
		FunctionName:              fields[4],
		Label:                     label,
		ExecutionsCount:           nums[0],
		AverageDuration:           nums[1],
		DurationStandardDeviation: nums[2],
		MinDuration:               nums[3],
		MedianDuration:            nums[4],
		MaxDuration:               nums[5],
		TotalDuration:             nums[6],
	}, nil
}

// Encode is the inverse of Parse: it re-serializes an Event into the same
// field layout Parse accepts, so that Parse(Encode(e)) == e for any
// well-formed e.
func Encode(e Event) []string {
	switch ev := e.(type) {
	case StopwatchStart:
		return []string{
			ev.Head.ProcessID, ev.Head.ThreadID, strconv.FormatInt(ev.Head.Timestamp, 10),
			tagStart, ev.FunctionName, fromOptionalString(ev.Label), fromOptionalInt(ev.Index),
		}
	case StopwatchStop:
		return []string{
			ev.Head.ProcessID, ev.Head.ThreadID, strconv.FormatInt(ev.Head.Timestamp, 10),
			tagStop,
		}
	case StopwatchSummary:
		return []string{
			ev.Head.ProcessID, ev.Head.ThreadID, strconv.FormatInt(ev.Head.Timestamp, 10),
			tagSummary, ev.FunctionName, fromOptionalString(ev.Label),
			strconv.FormatInt(ev.ExecutionsCount, 10),
			strconv.FormatInt(ev.AverageDuration, 10),
			strconv.FormatInt(ev.DurationStandardDeviation, 10),
			strconv.FormatInt(ev.MinDuration, 10),
			strconv.FormatInt(ev.MedianDuration, 10),
			strconv.FormatInt(ev.MaxDuration, 10),
			strconv.FormatInt(ev.TotalDuration, 10),
		}
	default:
		panic(fmt.Sprintf("chronevent: Encode: unknown event type %T", e))
	}
}

func optionalString(s string) *string {
	if s == dash {
		return nil
	}
	v := s
	return &v
}

func fromOptionalString(s *string) string {
	if s == nil {
		return dash
	}
	return *s
}

func optionalInt(s string) (*int64, error) {
	if s == dash {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func fromOptionalInt(i *int64) string {
	if i == nil {
		return dash
	}
	return strconv.FormatInt(*i, 10)
}
