// Package metrics turns check-in snapshots into time-bucketed trend
// series, leaderboards, per-machine summaries, and baseline-relative
// comparisons. Everything here is pure computation over rows the
// caller already fetched; no I/O, no shared state.
package metrics

import (
	"errors"
	"fmt"
	"time"
)

// GroupBy selects the trend bucket width.
type GroupBy string

const (
	GroupByDay  GroupBy = "day"
	GroupByHour GroupBy = "hour"
)

// SegmentBy selects the optional secondary grouping dimension.
type SegmentBy string

const (
	SegmentNone    SegmentBy = "none"
	SegmentType    SegmentBy = "type"
	SegmentSubject SegmentBy = "subject"
)

// DefaultLeaderboardLimit is used when the caller does not ask for a
// specific ranking size.
const DefaultLeaderboardLimit = 5

const dateLayout = "2006-01-02"

// ValidationError marks a request whose shape is wrong (unknown enum
// value, non-positive limit). Callers map it to a 400, distinct from
// ErrBaselineNotFound.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrBaselineNotFound is returned by Compare when the requested
// baseline id does not match any known machine.
var ErrBaselineNotFound = errors.New("baseline machine not found")

// TrendOptions configures BuildTrend. From and To are inclusive
// YYYY-MM-DD bounds on the arrival date; empty means unbounded.
type TrendOptions struct {
	From      string
	To        string
	GroupBy   GroupBy
	SegmentBy SegmentBy
}

// normalize applies defaults and validates enum values and date shape.
func (o TrendOptions) normalize() (TrendOptions, error) {
	if o.GroupBy == "" {
		o.GroupBy = GroupByDay
	}
	if o.SegmentBy == "" {
		o.SegmentBy = SegmentNone
	}
	switch o.GroupBy {
	case GroupByDay, GroupByHour:
	default:
		return o, invalidf("invalid group_by %q: must be day or hour", o.GroupBy)
	}
	switch o.SegmentBy {
	case SegmentNone, SegmentType, SegmentSubject:
	default:
		return o, invalidf(
			"invalid segment_by %q: must be none, type, or subject",
			o.SegmentBy,
		)
	}
	for _, d := range []string{o.From, o.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return o, invalidf("invalid date %q: use YYYY-MM-DD", d)
		}
	}
	return o, nil
}
